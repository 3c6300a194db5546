// Package session implements the per-connection protocol state machine.
//
// A Session starts Unauthenticated. A successful LOGIN moves it to
// Authenticated with the matching user attached; LOGOUT moves it back. The
// current user is set if and only if the state is Authenticated. A Session is
// owned by exactly one connection goroutine and is not safe for concurrent use.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/rental-system/internal/api/metrics"
	"github.com/99minutos/rental-system/internal/core/domain"
	"github.com/99minutos/rental-system/internal/core/ports"
	"github.com/99minutos/rental-system/internal/protocol"
)

// State is the authentication state of a session.
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "UNAUTHENTICATED"
	case Authenticated:
		return "AUTHENTICATED"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

// Recorder receives session events for the audit trail. Record must not block.
type Recorder interface {
	Record(event domain.SessionEvent)
}

// Deps are the collaborators shared by every session of a server. They must
// be safe for concurrent use; the session itself never locks.
type Deps struct {
	Users    ports.UserDirectory
	Vehicles ports.VehicleCatalog
	Recorder Recorder // optional
	Log      zerolog.Logger
}

// Session holds the state of one client connection.
type Session struct {
	users    ports.UserDirectory
	vehicles ports.VehicleCatalog
	recorder Recorder
	log      zerolog.Logger

	connID string
	remote string
	now    func() time.Time

	state State
	user  *domain.User
}

// New creates an Unauthenticated session for the connection connID.
func New(deps Deps, connID, remote string) *Session {
	return &Session{
		users:    deps.Users,
		vehicles: deps.Vehicles,
		recorder: deps.Recorder,
		log:      deps.Log,
		connID:   connID,
		remote:   remote,
		now:      time.Now,
	}
}

// State returns the current authentication state.
func (s *Session) State() State { return s.state }

// CurrentUser returns a copy of the authenticated user, or nil.
func (s *Session) CurrentUser() *domain.User {
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Handle decodes one request line, processes it and returns the encoded reply
// without a line terminator. It always produces a reply.
func (s *Session) Handle(ctx context.Context, line string) string {
	start := time.Now()

	label := "malformed"
	var resp protocol.Response
	cmd, err := protocol.Decode(line)
	if err != nil {
		resp = protocol.Error(MsgMalformed)
	} else {
		label = metricLabel(cmd.Name)
		resp = s.Process(ctx, cmd)
	}

	out, err := resp.Encode()
	if err != nil {
		s.log.Error().Err(err).Str("command", cmd.Name).Msg("failed to encode reply")
		resp = protocol.Error(MsgInternal)
		out, _ = resp.Encode()
	}

	metrics.CommandsTotal.WithLabelValues(label, string(resp.Status)).Inc()
	metrics.CommandDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	return out
}

// Process runs a decoded command through the dispatch table. Unknown
// commands, the authentication precondition and the argument count are all
// checked here, in that order, before the command handler runs.
func (s *Session) Process(ctx context.Context, cmd protocol.Command) protocol.Response {
	c, ok := commands[cmd.Name]
	if !ok {
		return protocol.Errorf("Unknown command: %s", cmd.Name)
	}
	if c.requiresAuth && s.state != Authenticated {
		return protocol.Error(MsgNotLoggedIn)
	}
	if c.arity != anyArity && len(cmd.Args) != c.arity {
		return protocol.Errorf("Invalid %s format. Use: %s", cmd.Name, c.usage)
	}
	return c.run(s, ctx, cmd.Args)
}

func (s *Session) register(ctx context.Context, a []string) protocol.Response {
	in := registerArgs{Name: a[0], Email: a[1], Password: a[2]}
	if err := argCheck.Validate(in); err != nil {
		return protocol.Error(err.Error())
	}

	user, err := s.users.Create(ctx, ports.NewUser{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Role:     domain.RoleCustomer,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) || errors.Is(err, domain.ErrInvalidCredentials) {
			return protocol.Error(MsgRegisterFailed)
		}
		return s.internalError(err, CmdRegister)
	}

	s.record(domain.EventRegister, user.ID, user.Email)
	s.log.Info().Int64("user_id", user.ID).Str("email", user.Email).Msg("user registered")
	return protocol.OK(CmdRegister, strconv.FormatInt(user.ID, 10))
}

func (s *Session) login(ctx context.Context, a []string) protocol.Response {
	email, password := a[0], a[1]

	user, err := s.users.FindByCredentials(ctx, email, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			s.record(domain.EventLoginFailed, 0, email)
			s.log.Info().Str("email", email).Msg("login failed")
			return protocol.Error(MsgLoginFailed)
		}
		return s.internalError(err, CmdLogin)
	}

	resp := protocol.OK(CmdLogin, user.Name, user.Role)
	if _, err := resp.Encode(); err != nil {
		return s.internalError(fmt.Errorf("user %d: %w", user.ID, err), CmdLogin)
	}

	s.state, s.user = Authenticated, user
	s.record(domain.EventLogin, user.ID, user.Email)
	s.log.Info().Int64("user_id", user.ID).Str("role", user.Role).Msg("user logged in")
	return resp
}

func (s *Session) listVehicles(ctx context.Context, a []string) protocol.Response {
	t, err := domain.ParseVehicleType(a[0])
	if err != nil {
		// No vehicle has an unknown type, so the listing is empty.
		s.log.Debug().Str("type", a[0]).Msg("list of unknown vehicle type")
		return protocol.OK(CmdListVehicles, "0")
	}

	vehicles, err := s.vehicles.ListAvailable(ctx, t)
	if err != nil {
		return s.internalError(err, CmdListVehicles)
	}

	resp, err := protocol.VehicleList(CmdListVehicles, vehicles)
	if err != nil {
		return s.internalError(err, CmdListVehicles)
	}
	return resp
}

func (s *Session) logout(context.Context, []string) protocol.Response {
	if s.state == Authenticated {
		s.record(domain.EventLogout, s.user.ID, s.user.Email)
		s.log.Info().Int64("user_id", s.user.ID).Msg("user logged out")
		s.state, s.user = Unauthenticated, nil
	}
	return protocol.OK(CmdLogout)
}

func (s *Session) internalError(err error, cmd string) protocol.Response {
	s.log.Error().Err(err).Str("command", cmd).Msg("command failed")
	return protocol.Error(MsgInternal)
}

func (s *Session) record(kind domain.SessionEventKind, userID int64, email string) {
	if s.recorder == nil {
		return
	}
	s.recorder.Record(domain.SessionEvent{
		ConnID: s.connID,
		Kind:   kind,
		UserID: userID,
		Email:  email,
		Remote: s.remote,
		At:     s.now().UTC(),
	})
}
