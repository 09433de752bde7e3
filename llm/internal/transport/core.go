package transport

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lgc202/llmkit/llm"
)

const (
	httpContentTypeJSON = "application/json"

	// DefaultTimeout bounds a blocking call or a stream handshake.
	DefaultTimeout = 600 * time.Second
)

// Options configures a Core. Timeout and UserAgent apply to every vendor and
// are fixed once the Core is built.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Factory   Factory
	Logger    *slog.Logger
}

// Core executes exchanges against vendor endpoints and classifies the outcome.
type Core struct {
	pool      *Pool
	timeout   time.Duration
	userAgent string
	logger    *slog.Logger
}

func New(opts Options) *Core {
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Core{
		pool:      NewPool(opts.Factory),
		timeout:   opts.Timeout,
		userAgent: opts.UserAgent,
		logger:    opts.Logger,
	}
}

// Exchange is one outbound call. Header must already carry the vendor's
// authentication; Credentials are only used for redaction.
type Exchange struct {
	Provider    llm.Provider
	Method      string
	URL         string
	Header      http.Header
	Body        []byte
	Credentials llm.Credentials
}

// Response is a fully read 2xx response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RequestID  string
	Request    *llm.RequestSnapshot
	Duration   time.Duration
}

func (c *Core) newRequest(ctx context.Context, ex Exchange, accept string) (*http.Request, *llm.RequestSnapshot, error) {
	method := ex.Method
	if method == "" {
		method = http.MethodPost
	}

	h := make(http.Header, len(ex.Header)+3)
	h.Set("Content-Type", httpContentTypeJSON)
	h.Set("Accept", accept)
	for k, vs := range ex.Header {
		h[k] = append([]string(nil), vs...)
	}
	if c.userAgent != "" && h.Get("User-Agent") == "" {
		h.Set("User-Agent", c.userAgent)
	}

	snap := llm.SnapshotRequest(method, ex.URL, h, ex.Body, ex.Credentials)

	req, err := http.NewRequestWithContext(ctx, method, ex.URL, bytes.NewReader(ex.Body))
	if err != nil {
		return nil, snap, err
	}
	req.Header = h
	return req, snap, nil
}

// Do sends ex and reads the whole response body. Non-2xx statuses and network
// failures are returned as *llm.Error.
func (c *Core) Do(ctx context.Context, ex Exchange) (*Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, snap, err := c.newRequest(ctx, ex, httpContentTypeJSON)
	if err != nil {
		return nil, networkError(ctx, ex, snap, err)
	}

	t0 := time.Now()
	resp, err := c.pool.Client(ex.Provider).Do(req)
	if err != nil {
		return nil, networkError(ctx, ex, snap, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e := statusError(ex, snap, resp)
		c.logger.Debug("llm http error", "provider", ex.Provider, "status", resp.StatusCode, "kind", e.Kind)
		return nil, e
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(ctx, ex, snap, err)
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       raw,
		RequestID:  extractRequestID(resp.Header),
		Request:    snap,
		Duration:   time.Since(t0),
	}, nil
}

// Open sends ex and returns as soon as response headers arrive. The returned
// Session owns the connection until it is closed.
//
// The Core timeout applies to the handshake only; the body is bounded by ctx.
func (c *Core) Open(ctx context.Context, ex Exchange) (*Session, error) {
	ctx, cancel := context.WithCancelCause(ctx)

	var timer *time.Timer
	if c.timeout > 0 {
		timer = time.AfterFunc(c.timeout, func() { cancel(errHandshakeTimeout) })
	}
	// stopTimer reports false when the handshake timeout already fired.
	stopTimer := func() bool {
		return timer == nil || timer.Stop()
	}

	req, snap, err := c.newRequest(ctx, ex, "text/event-stream")
	if err != nil {
		stopTimer()
		cancel(nil)
		return nil, networkError(ctx, ex, snap, err)
	}

	resp, err := c.pool.Client(ex.Provider).Do(req)
	inTime := stopTimer()
	if err != nil {
		e := networkError(ctx, ex, snap, err)
		cancel(nil)
		return nil, e
	}
	if !inTime {
		// Headers raced the timer; the context is or will be cancelled, so
		// the body is unusable.
		_ = resp.Body.Close()
		cancel(errHandshakeTimeout)
		return nil, networkError(ctx, ex, snap, errHandshakeTimeout)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e := statusError(ex, snap, resp)
		_ = resp.Body.Close()
		cancel(nil)
		return nil, e
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "event-stream") {
		c.logger.Debug("llm stream with unexpected content type", "provider", ex.Provider, "content_type", ct)
	}
	return newSession(ctx, ex, snap, resp, cancel), nil
}
