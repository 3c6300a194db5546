// Package protocol implements the pipe-delimited line protocol spoken between
// rental clients and the server.
//
// A request is one line: COMMAND|arg|arg|... The command name is
// case-insensitive, arguments are taken verbatim. A response is one line:
// STATUS|field|field|... where STATUS is OK or ERROR. No escaping exists, so
// encoding a field that contains the delimiter or a line break fails.
package protocol

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// Delimiter separates the command and its arguments, and response fields.
	Delimiter = "|"
	// Greeting is the first line the server sends on every connection.
	Greeting = "WELCOME"
)

var (
	ErrMalformedCommand  = errors.New("malformed command")
	ErrMalformedResponse = errors.New("malformed response")
	ErrReservedCharacter = errors.New("field contains a reserved character")
)

// Command is a decoded request line.
type Command struct {
	Name string   // upper-cased
	Args []string // verbatim, possibly empty strings
}

// Decode parses one request line. The trailing line terminator, if still
// present, is ignored. Empty and whitespace-only lines are malformed.
func Decode(line string) (Command, error) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return Command{}, ErrMalformedCommand
	}

	parts := strings.Split(line, Delimiter)
	name := cases.Upper(language.Und).String(strings.TrimSpace(parts[0]))
	return Command{Name: name, Args: parts[1:]}, nil
}

// Encode renders a request line without the terminator. It is the inverse of
// Decode and is used by clients.
func (c Command) Encode() (string, error) {
	if err := checkFields(c.Args, ""); err != nil {
		return "", err
	}
	if strings.ContainsAny(c.Name, Delimiter+"\r\n") {
		return "", fmt.Errorf("%w: command name %q", ErrReservedCharacter, c.Name)
	}
	return strings.Join(append([]string{c.Name}, c.Args...), Delimiter), nil
}

func checkFields(fields []string, extra string) error {
	for i, f := range fields {
		if strings.ContainsAny(f, Delimiter+"\r\n"+extra) {
			return fmt.Errorf("%w: field %d %q", ErrReservedCharacter, i, f)
		}
	}
	return nil
}

func checkLineBreaks(fields []string) error {
	for i, f := range fields {
		if strings.ContainsAny(f, "\r\n") {
			return fmt.Errorf("%w: field %d %q", ErrReservedCharacter, i, f)
		}
	}
	return nil
}
