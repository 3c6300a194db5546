// Package client speaks the rental line protocol from the client side. It is
// used by the console client and by end-to-end tests.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/99minutos/rental-system/internal/core/domain"
	"github.com/99minutos/rental-system/internal/protocol"
)

// ErrUnexpectedReply is returned when an OK reply does not have the shape the
// command promises.
var ErrUnexpectedReply = errors.New("unexpected reply")

// ServerError is an ERROR reply from the server.
type ServerError struct {
	Command string
	Reason  string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Command, e.Reason)
}

// Config holds client configuration.
type Config struct {
	Addr           string
	ConnectTimeout time.Duration
	// RequestTimeout bounds one request/reply round trip; zero disables it.
	RequestTimeout time.Duration
}

// DefaultConfig returns a configuration for a server on addr.
func DefaultConfig(addr string) Config {
	return Config{
		Addr:           addr,
		ConnectTimeout: 10 * time.Second,
		RequestTimeout: 30 * time.Second,
	}
}

// Identity is the account echoed back by a successful LOGIN.
type Identity struct {
	Name string
	Role string
}

// Client is one protocol connection. Requests are serialised; the protocol
// has no pipelining.
type Client struct {
	cfg      Config
	conn     net.Conn
	r        *bufio.Reader
	greeting string

	mu sync.Mutex
}

// Dial connects to the server and consumes the greeting line.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	d := net.Dialer{Timeout: cfg.ConnectTimeout}
	conn, err := d.DialContext(ctx, "tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.Addr, err)
	}

	c := &Client{cfg: cfg, conn: conn, r: bufio.NewReader(conn)}
	if cfg.ConnectTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(cfg.ConnectTimeout))
	}
	greeting, err := c.readLine()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("read greeting: %w", err)
	}
	_ = conn.SetReadDeadline(time.Time{})
	c.greeting = greeting
	return c, nil
}

// Greeting returns the first line the server sent.
func (c *Client) Greeting() string { return c.greeting }

// Close closes the connection without sending LOGOUT.
func (c *Client) Close() error { return c.conn.Close() }

// Do sends one command and returns the decoded reply. An ERROR reply is a
// valid reply, not an error.
func (c *Client) Do(cmd protocol.Command) (protocol.Response, error) {
	line, err := cmd.Encode()
	if err != nil {
		return protocol.Response{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfg.RequestTimeout > 0 {
		_ = c.conn.SetDeadline(time.Now().Add(c.cfg.RequestTimeout))
		defer func() { _ = c.conn.SetDeadline(time.Time{}) }()
	}

	if _, err := c.conn.Write([]byte(line + "\n")); err != nil {
		return protocol.Response{}, fmt.Errorf("send %s: %w", cmd.Name, err)
	}
	reply, err := c.readLine()
	if err != nil {
		return protocol.Response{}, fmt.Errorf("read %s reply: %w", cmd.Name, err)
	}
	return protocol.ParseResponse(reply)
}

// call is Do turning ERROR replies into *ServerError and checking that the
// reply echoes the command name.
func (c *Client) call(name string, args ...string) ([]string, error) {
	resp, err := c.Do(protocol.Command{Name: name, Args: args})
	if err != nil {
		return nil, err
	}
	if !resp.IsOK() {
		return nil, &ServerError{Command: name, Reason: resp.Reason()}
	}
	if len(resp.Fields) == 0 || resp.Fields[0] != name {
		return nil, fmt.Errorf("%w: %s reply %v", ErrUnexpectedReply, name, resp.Fields)
	}
	return resp.Fields[1:], nil
}

// Register creates an account and returns its id. It does not log in.
func (c *Client) Register(name, email, password string) (int64, error) {
	fields, err := c.call("REGISTER", name, email, password)
	if err != nil {
		return 0, err
	}
	if len(fields) != 1 {
		return 0, fmt.Errorf("%w: REGISTER reply %v", ErrUnexpectedReply, fields)
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: user id %q", ErrUnexpectedReply, fields[0])
	}
	return id, nil
}

// Login authenticates the connection.
func (c *Client) Login(email, password string) (Identity, error) {
	fields, err := c.call("LOGIN", email, password)
	if err != nil {
		return Identity{}, err
	}
	if len(fields) != 2 {
		return Identity{}, fmt.Errorf("%w: LOGIN reply %v", ErrUnexpectedReply, fields)
	}
	return Identity{Name: fields[0], Role: fields[1]}, nil
}

// ListVehicles returns the available vehicles of type t. The wire format does
// not carry type or availability; both are filled in from the request.
func (c *Client) ListVehicles(t domain.VehicleType) ([]domain.Vehicle, error) {
	fields, err := c.call("LIST_VEHICLES", string(t))
	if err != nil {
		return nil, err
	}
	vehicles, err := protocol.ParseVehicleList(fields)
	if err != nil {
		return nil, err
	}
	for i := range vehicles {
		vehicles[i].Type = t
		vehicles[i].Available = true
	}
	return vehicles, nil
}

// Logout ends the authenticated session; the connection stays open.
func (c *Client) Logout() error {
	_, err := c.call("LOGOUT")
	return err
}

func (c *Client) readLine() (string, error) {
	line, err := c.r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
