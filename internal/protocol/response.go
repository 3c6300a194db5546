package protocol

import (
	"fmt"
	"strings"
)

// Status is the leading token of every response line.
type Status string

const (
	StatusOK    Status = "OK"
	StatusError Status = "ERROR"
)

// Response is one reply line.
type Response struct {
	Status Status
	Fields []string
}

// OK builds a success response.
func OK(fields ...string) Response {
	return Response{Status: StatusOK, Fields: fields}
}

// Error builds a failure response carrying a human-readable reason.
func Error(reason string) Response {
	return Response{Status: StatusError, Fields: []string{reason}}
}

// Errorf is Error with formatting.
func Errorf(format string, args ...any) Response {
	return Error(fmt.Sprintf(format, args...))
}

// IsOK reports whether the response is a success.
func (r Response) IsOK() bool { return r.Status == StatusOK }

// Reason returns the text of an ERROR response. The reason is free text and
// may itself contain the delimiter, so every field after the status is part
// of it.
func (r Response) Reason() string {
	if r.Status != StatusError {
		return ""
	}
	return strings.Join(r.Fields, Delimiter)
}

// Encode renders the response without the line terminator.
func (r Response) Encode() (string, error) {
	if r.Status != StatusOK && r.Status != StatusError {
		return "", fmt.Errorf("%w: unknown status %q", ErrMalformedResponse, r.Status)
	}
	if r.Status == StatusError {
		if err := checkLineBreaks(r.Fields); err != nil {
			return "", err
		}
	} else if err := checkFields(r.Fields, ""); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(string(r.Status))
	for _, f := range r.Fields {
		b.WriteString(Delimiter)
		b.WriteString(f)
	}
	return b.String(), nil
}

// ParseResponse decodes a reply line received from a server.
func ParseResponse(line string) (Response, error) {
	line = strings.TrimRight(line, "\r\n")
	parts := strings.Split(line, Delimiter)

	status := Status(parts[0])
	if status != StatusOK && status != StatusError {
		return Response{}, fmt.Errorf("%w: %q", ErrMalformedResponse, line)
	}
	return Response{Status: status, Fields: parts[1:]}, nil
}
