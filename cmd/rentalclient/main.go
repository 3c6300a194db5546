// Command rentalclient is an interactive terminal client for rentald.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sethvargo/go-envconfig"
	"golang.org/x/term"

	"github.com/99minutos/rental-system/internal/client"
	"github.com/99minutos/rental-system/internal/core/domain"
)

type config struct {
	Addr string `env:"RENTAL_SERVER_ADDR, default=localhost:5000"`
}

func main() {
	ctx := context.Background()

	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		fmt.Fprintln(os.Stderr, failure("%v", err))
		os.Exit(1)
	}

	fmt.Println(banner())

	c, err := client.Dial(ctx, client.DefaultConfig(cfg.Addr))
	if err != nil {
		fmt.Fprintln(os.Stderr, failure("could not connect to server: %v", err))
		fmt.Fprintln(os.Stderr, dimStyle.Render("Make sure rentald is running on "+cfg.Addr))
		os.Exit(1)
	}
	defer c.Close()

	fmt.Println(dimStyle.Render("Connected to " + cfg.Addr))
	fmt.Println("Server: " + c.Greeting())

	a := &app{
		client:   c,
		in:       bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		terminal: term.IsTerminal(int(os.Stdin.Fd())),
	}
	if err := a.run(); err != nil {
		fmt.Fprintln(os.Stderr, failure("%v", err))
		os.Exit(1)
	}
}

type app struct {
	client *client.Client
	in     *bufio.Reader
	out    io.Writer
	// terminal enables echo-free password entry on stdin.
	terminal bool
	user     *client.Identity
}

func (a *app) run() error {
	for {
		fmt.Fprintln(a.out)
		who := ""
		if a.user != nil {
			who = a.user.Name
		}
		fmt.Fprintln(a.out, menu(a.user != nil, who))

		choice, err := a.prompt("Enter your choice: ")
		if err != nil {
			return ignoreClosedInput(err)
		}

		var cmdErr error
		switch choice {
		case "1":
			cmdErr = a.register()
		case "2":
			cmdErr = a.login()
		case "3":
			cmdErr = a.list(domain.VehicleCar)
		case "4":
			cmdErr = a.list(domain.VehicleBike)
		case "5":
			cmdErr = a.logout()
		case "0":
			fmt.Fprintln(a.out, okStyle.Render("Thank you for using the rental system. Goodbye!"))
			return nil
		default:
			fmt.Fprintln(a.out, failure("invalid choice, please try again"))
			continue
		}

		var (
			serverErr *client.ServerError
			inputErr  inputError
		)
		switch {
		case cmdErr == nil:
		case errors.As(cmdErr, &serverErr):
			fmt.Fprintln(a.out, failure("%s", serverErr.Reason))
		case errors.As(cmdErr, &inputErr):
			fmt.Fprintln(a.out, failure("%s", inputErr))
		case errors.Is(cmdErr, errInputClosed):
			return nil
		default:
			return fmt.Errorf("connection lost: %w", cmdErr)
		}
	}
}

// inputError is a local validation failure; nothing was sent.
type inputError string

func (e inputError) Error() string { return string(e) }

var errInputClosed = errors.New("input closed")

func ignoreClosedInput(err error) error {
	if errors.Is(err, errInputClosed) {
		return nil
	}
	return err
}

func (a *app) register() error {
	fmt.Fprintln(a.out, sectionStyle.Render("Register"))
	name, err := a.prompt("Name: ")
	if err != nil {
		return err
	}
	email, err := a.prompt("Email: ")
	if err != nil {
		return err
	}
	password, err := a.password("Password: ")
	if err != nil {
		return err
	}
	if name == "" || email == "" || password == "" {
		return inputError("all fields are required")
	}

	id, err := a.client.Register(name, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, success("registered, your user id is %d. You can now log in.", id))
	return nil
}

func (a *app) login() error {
	fmt.Fprintln(a.out, sectionStyle.Render("Login"))
	email, err := a.prompt("Email: ")
	if err != nil {
		return err
	}
	password, err := a.password("Password: ")
	if err != nil {
		return err
	}
	if email == "" || password == "" {
		return inputError("email and password are required")
	}

	id, err := a.client.Login(email, password)
	if err != nil {
		return err
	}
	a.user = &id
	fmt.Fprintln(a.out, success("welcome, %s (%s)", id.Name, id.Role))
	return nil
}

func (a *app) list(t domain.VehicleType) error {
	if a.user == nil {
		return inputError("please log in first")
	}
	vehicles, err := a.client.ListVehicles(t)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, vehicleTable(t, vehicles))
	return nil
}

func (a *app) logout() error {
	if a.user == nil {
		return inputError("you are not logged in")
	}
	if err := a.client.Logout(); err != nil {
		return err
	}
	a.user = nil
	fmt.Fprintln(a.out, success("logged out"))
	return nil
}

func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	switch {
	case errors.Is(err, io.EOF) && line == "":
		return "", errInputClosed
	case err != nil && !errors.Is(err, io.EOF):
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// password reads without echo when stdin is a terminal.
func (a *app) password(label string) (string, error) {
	if !a.terminal {
		return a.prompt(label)
	}
	fmt.Fprint(a.out, label)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(a.out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
