package domain

import "time"

// SessionEventKind identifies what happened on a connection.
type SessionEventKind string

const (
	EventRegister    SessionEventKind = "register"
	EventLogin       SessionEventKind = "login"
	EventLoginFailed SessionEventKind = "login_failed"
	EventLogout      SessionEventKind = "logout"
)

// SessionEvent is an audit record emitted by a connection's session.
type SessionEvent struct {
	ConnID string
	Kind   SessionEventKind
	UserID int64  // zero when no user is known
	Email  string // as supplied by the client
	Remote string
	At     time.Time
}
