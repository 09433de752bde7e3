package llm

import (
	"fmt"
	"net/http"
	"strings"
)

type ErrorKind string

const (
	ErrKindAuth      ErrorKind = "auth"
	ErrKindServer    ErrorKind = "server"
	ErrKindRequest   ErrorKind = "request"
	ErrKindTimeout   ErrorKind = "timeout"
	ErrKindTransport ErrorKind = "transport"
	ErrKindParse     ErrorKind = "parse"
	ErrKindUnknown   ErrorKind = "unknown"
)

// Error is the classified failure of a call.
//
// Body and Message are redacted before the error is constructed; Request
// holds a snapshot with credential headers masked.
type Error struct {
	Provider Provider
	Kind     ErrorKind

	// StatusCode is 0 for failures that never produced a response.
	StatusCode int
	Message    string
	Body       string
	RequestID  string

	// Header holds the response headers of a non-2xx response.
	Header http.Header

	Request *RequestSnapshot

	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	var b strings.Builder
	b.WriteString("llm")
	if e.Provider != "" {
		b.WriteString(" ")
		b.WriteString(string(e.Provider))
	}
	b.WriteString(": ")
	b.WriteString(string(e.Kind))
	if e.StatusCode != 0 {
		b.WriteString(fmt.Sprintf(" (http %d)", e.StatusCode))
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	}
	if e.RequestID != "" {
		b.WriteString(" request_id=")
		b.WriteString(e.RequestID)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }
