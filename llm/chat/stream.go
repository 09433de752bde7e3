package chat

import (
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lgc202/llmkit/llm"
	"github.com/lgc202/llmkit/llm/internal/transport"
)

// Stream is a pull based sequence of streamed results.
//
// Recv returns results in arrival order and io.EOF once the vendor ends the
// stream. The underlying connection is released exactly once: at the natural
// end, on the first error, or on Close, whichever comes first. Errors are
// sticky; every Recv after a failure returns the same error.
//
// Recv must not be called concurrently; Close may be called from any
// goroutine to abort a blocked Recv.
type Stream struct {
	ctx    context.Context
	sess   *transport.Session
	frames transport.FrameReader
	decode func([]byte) (*llm.ChatResult, bool, error)

	req       *llm.ChatRequest
	provider  llm.Provider
	model     string
	cred      llm.Credentials
	requestID string
	header    http.Header
	started   time.Time

	intercept llm.Interceptor
	logger    *slog.Logger

	mu      sync.Mutex
	err     error
	done    bool
	emitted int

	closeOnce sync.Once
	closed    atomic.Bool
}

func newStream(ctx context.Context, c *Client, cl *call, sess *transport.Session) *Stream {
	return &Stream{
		ctx:       ctx,
		sess:      sess,
		frames:    transport.NewSSEReader(sess.Lines()),
		decode:    cl.adapter.FrameDecoder(),
		req:       &cl.req,
		provider:  cl.adapter.Provider,
		model:     cl.req.Model.Name,
		cred:      cl.ex.Credentials,
		requestID: sess.RequestID(),
		header:    sess.Response.Header,
		started:   time.Now(),
		intercept: c.intercept,
		logger:    c.logger,
	}
}

// closedStream is returned when a handshake failure was handled by the
// caller's OnHTTPError handler.
func closedStream() *Stream {
	s := &Stream{err: io.EOF}
	s.closed.Store(true)
	return s
}

func (s *Stream) Recv() (*llm.ChatResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	if s.closed.Load() {
		s.err = llm.ErrStreamClosed
		return nil, s.err
	}
	if s.done {
		s.finish()
		return nil, s.err
	}

	for {
		frame, err := s.frames.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.finish()
				return nil, s.err
			}
			if s.closed.Load() {
				s.err = llm.ErrStreamClosed
				return nil, s.err
			}
			s.fail(s.sess.Err(err))
			return nil, s.err
		}

		res, done, err := s.decode(frame)
		if err != nil {
			s.fail(s.annotate(err))
			return nil, s.err
		}
		if done {
			s.done = true
		}
		if res == nil {
			if done {
				s.finish()
				return nil, s.err
			}
			continue
		}

		s.stamp(res, frame)
		s.emitted++
		return res, nil
	}
}

// Close releases the connection. It is safe to call more than once and
// concurrently with Recv.
func (s *Stream) Close() error {
	s.release()
	return nil
}

// Closed reports whether the connection has been released.
func (s *Stream) Closed() bool { return s.closed.Load() }

// All returns an iterator over the remaining results. Breaking out of the
// loop closes the stream; a failure is yielded once as the final element.
func (s *Stream) All() iter.Seq2[*llm.ChatResult, error] {
	return func(yield func(*llm.ChatResult, error) bool) {
		defer s.Close()
		for {
			res, err := s.Recv()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					yield(nil, err)
				}
				return
			}
			if !yield(res, nil) {
				return
			}
		}
	}
}

func (s *Stream) release() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		if s.sess != nil {
			_ = s.sess.Close()
		}
	})
}

// finish ends the stream naturally and runs the completion interceptor.
func (s *Stream) finish() {
	s.err = io.EOF
	s.release()

	s.logger.Debug("llm stream completed",
		"provider", s.provider,
		"frames", s.emitted,
		"duration", time.Since(s.started),
	)
	if s.intercept != nil {
		if err := s.intercept(s.ctx, s.req, nil); err != nil {
			s.logger.Warn("llm interceptor failed", "provider", s.provider, "err", err)
		}
	}
}

func (s *Stream) fail(err error) {
	s.err = err
	s.release()
	s.logger.Debug("llm stream failed", "provider", s.provider, "err", err)
}

func (s *Stream) annotate(err error) error {
	var e *llm.Error
	if !errors.As(err, &e) {
		return err
	}
	e.Body = s.cred.Redact(e.Body)
	e.Message = s.cred.Redact(e.Message)
	if e.Provider == "" {
		e.Provider = s.provider
	}
	if e.Request == nil && s.sess != nil {
		e.Request = s.sess.Snapshot
	}
	if e.RequestID == "" {
		e.RequestID = s.requestID
	}
	return e
}

func (s *Stream) stamp(res *llm.ChatResult, frame []byte) {
	if res.Provider == "" {
		res.Provider = s.provider
	}
	if res.Model == "" {
		res.Model = s.model
	}
	res.Meta = llm.ResponseMeta{
		RequestID:      s.requestID,
		ProcessingTime: time.Since(s.started),
		Header:         s.header,
		Raw:            append([]byte(nil), frame...),
	}
}

// Drain reads s to the end and folds every delta into one result.
func Drain(s *Stream) (*llm.ChatResult, error) {
	return llm.Drain(s)
}
