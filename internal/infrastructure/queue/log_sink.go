package queue

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/99minutos/rental-system/internal/core/domain"
)

// LogSink writes session events to the structured log. It is the audit sink
// for backends without an audit store.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) InsertSessionEvent(_ context.Context, event *domain.SessionEvent) error {
	e := s.log.Info().
		Str("conn_id", event.ConnID).
		Str("kind", string(event.Kind)).
		Str("email", event.Email).
		Str("remote", event.Remote).
		Time("at", event.At)
	if event.UserID != 0 {
		e = e.Int64("user_id", event.UserID)
	}
	e.Msg("session event")
	return nil
}
