package server

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"

	"github.com/google/uuid"

	"github.com/99minutos/rental-system/internal/api/metrics"
	"github.com/99minutos/rental-system/internal/protocol"
	"github.com/99minutos/rental-system/internal/session"
)

// handle owns conn until it is closed: greeting, then one reply per line.
// Nothing is written after a failed write.
func (s *Server) handle(ctx context.Context, conn net.Conn) {
	connID := uuid.NewString()
	remote := conn.RemoteAddr().String()
	log := s.log.With().Str("conn_id", connID).Str("remote", remote).Logger()

	metrics.ConnectionsActive.Inc()
	defer func() {
		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			log.Debug().Err(err).Msg("close connection")
		}
		metrics.ConnectionsActive.Dec()
		s.untrack(conn)
		log.Info().Msg("connection closed")
	}()
	log.Info().Msg("connection accepted")

	deps := s.deps
	deps.Log = log
	sess := session.New(deps, connID, remote)

	w := bufio.NewWriter(conn)
	if err := writeLine(w, protocol.Greeting); err != nil {
		log.Warn().Err(err).Msg("failed to send greeting")
		return
	}

	sc := bufio.NewScanner(conn)
	// Scanner caps tokens at max(len limit, cap(buf)), so the initial buffer
	// must not exceed the limit.
	sc.Buffer(make([]byte, 0, min(4096, s.cfg.MaxLineBytes)), s.cfg.MaxLineBytes)
	for sc.Scan() {
		reply := sess.Handle(ctx, sc.Text())
		if err := writeLine(w, reply); err != nil {
			log.Warn().Err(err).Msg("write failed")
			return
		}
	}

	switch err := sc.Err(); {
	case err == nil, errors.Is(err, io.EOF):
	case errors.Is(err, bufio.ErrTooLong):
		log.Warn().Int("max_line_bytes", s.cfg.MaxLineBytes).Msg("request line too long")
	case errors.Is(err, net.ErrClosed):
	default:
		log.Warn().Err(err).Msg("read failed")
	}
}

func writeLine(w *bufio.Writer, line string) error {
	if _, err := w.WriteString(line); err != nil {
		return err
	}
	if err := w.WriteByte('\n'); err != nil {
		return err
	}
	return w.Flush()
}
