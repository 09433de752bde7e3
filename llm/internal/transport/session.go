package transport

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/lgc202/llmkit/llm"
)

// Session is one open streaming exchange.
type Session struct {
	Response *http.Response
	Snapshot *llm.RequestSnapshot

	ctx    context.Context
	ex     Exchange
	lines  *LineReader
	cancel context.CancelCauseFunc

	closeOnce sync.Once
	closed    atomic.Bool
	closeErr  error
}

func newSession(ctx context.Context, ex Exchange, snap *llm.RequestSnapshot, resp *http.Response, cancel context.CancelCauseFunc) *Session {
	return &Session{
		Response: resp,
		Snapshot: snap,
		ctx:      ctx,
		ex:       ex,
		lines:    NewLineReader(resp.Body),
		cancel:   cancel,
	}
}

// Lines returns the line reader over the response body.
func (s *Session) Lines() *LineReader { return s.lines }

// RequestID returns the vendor request id from the response headers.
func (s *Session) RequestID() string { return extractRequestID(s.Response.Header) }

// Err classifies a read failure on the body.
func (s *Session) Err(err error) *llm.Error {
	return networkError(s.ctx, s.ex, s.Snapshot, err)
}

// Close releases the connection. Only the first call has an effect.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.closeErr = s.Response.Body.Close()
		s.cancel(nil)
	})
	return s.closeErr
}

func (s *Session) Closed() bool { return s.closed.Load() }
