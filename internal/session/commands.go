package session

import (
	"context"

	"github.com/99minutos/rental-system/internal/protocol"
)

// Command names understood by the server.
const (
	CmdRegister     = "REGISTER"
	CmdLogin        = "LOGIN"
	CmdListVehicles = "LIST_VEHICLES"
	CmdLogout       = "LOGOUT"
)

// Reply texts shared with clients and tests.
const (
	MsgNotLoggedIn    = "Not logged in"
	MsgLoginFailed    = "Login failed. Invalid email or password."
	MsgRegisterFailed = "Registration failed. Email may already be in use."
	MsgInternal       = "Internal server error"
	MsgMalformed      = "Malformed command"
)

// anyArity disables the argument count check.
const anyArity = -1

type handlerFunc func(s *Session, ctx context.Context, args []string) protocol.Response

// command is one row of the dispatch table. Authentication gating and the
// arity check live in Session.Process, never in the handlers.
type command struct {
	usage        string
	arity        int
	requiresAuth bool
	run          handlerFunc
}

var commands = map[string]command{
	CmdRegister: {
		usage: "REGISTER|name|email|password",
		arity: 3,
		run:   (*Session).register,
	},
	CmdLogin: {
		usage: "LOGIN|email|password",
		arity: 2,
		run:   (*Session).login,
	},
	CmdListVehicles: {
		usage:        "LIST_VEHICLES|CAR or LIST_VEHICLES|BIKE",
		arity:        1,
		requiresAuth: true,
		run:          (*Session).listVehicles,
	},
	CmdLogout: {
		usage: "LOGOUT",
		arity: anyArity,
		run:   (*Session).logout,
	},
}

// metricLabel bounds the command label cardinality.
func metricLabel(name string) string {
	if _, ok := commands[name]; ok {
		return name
	}
	return "unknown"
}
