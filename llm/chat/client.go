// Package chat is the entry point of llmkit: a Client that turns one
// canonical llm.ChatRequest into a call against any supported vendor.
//
// A Client owns its adapter registry and its per-vendor HTTP clients; both
// are built lazily, once per vendor. Clients are safe for concurrent use.
//
//	c := chat.New(chat.WithAPIKey(llm.ProviderOpenAI, key))
//	res, err := c.Chat(ctx, llm.NewRequest(nil,
//		llm.WithModel("gpt-4o-mini"),
//		llm.WithMessages(llm.User("hello")),
//	))
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/lgc202/llmkit/httpx"
	"github.com/lgc202/llmkit/llm"
	"github.com/lgc202/llmkit/llm/adapter"
	"github.com/lgc202/llmkit/llm/internal/transport"
	"github.com/lgc202/llmkit/version"
)

type Client struct {
	auth      llm.AuthProvider
	catalog   llm.Catalog
	defaults  llm.ChatRequest
	intercept llm.Interceptor
	logger    *slog.Logger

	registry *registry
	core     *transport.Core
}

func New(opts ...Option) *Client {
	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.auth == nil {
		o.auth = llm.EnvAuth{}
	}
	if o.keys != nil {
		o.auth = llm.ChainAuth(o.keys, o.auth)
	}
	if o.catalog == nil {
		o.catalog = llm.DefaultCatalog()
	}
	if o.userAgent == "" {
		o.userAgent = version.UserAgent("llmkit")
	}

	var factory transport.Factory
	if o.factory != nil {
		factory = transport.Factory(o.factory)
	} else {
		factory = defaultFactory(o)
	}

	c := &Client{
		auth:     o.auth,
		catalog:  o.catalog,
		defaults: o.defaults,
		logger:   o.logger,
		registry: newRegistry(o.adapters, o.baseURLs),
		core: transport.New(transport.Options{
			Timeout:   o.timeout,
			UserAgent: o.userAgent,
			Factory:   factory,
			Logger:    o.logger,
		}),
	}
	if len(o.interceptors) > 0 {
		c.intercept = llm.ChainInterceptors(o.interceptors...)
	}
	return c
}

// defaultFactory builds vendor clients with httpx. Each vendor gets its own
// transport so connection limits apply per vendor.
func defaultFactory(o options) transport.Factory {
	base := []httpx.Option{
		httpx.WithMiddleware(o.middleware...),
		httpx.WithLogger(o.logger),
	}
	if o.requestID != nil {
		base = append(base, httpx.WithRequestID(*o.requestID))
	}
	if o.transport.IsZero() {
		return transport.HTTPXFactory(base...)
	}
	return func(p llm.Provider) *http.Client {
		opts := base[:len(base):len(base)]
		t, err := httpx.NewTransport(o.transport)
		if err != nil {
			o.logger.Warn("llm transport config ignored", "provider", p, "err", err)
		} else {
			opts = append(opts, httpx.WithTransport(t))
		}
		return httpx.NewClient(opts...)
	}
}

// call is one prepared exchange.
type call struct {
	req     llm.ChatRequest
	adapter adapter.Adapter
	ex      transport.Exchange
}

// prepare merges req onto the client defaults, resolves the model and its
// vendor, and serializes the wire request.
func (c *Client) prepare(req llm.ChatRequest, stream bool) (*call, error) {
	merged := llm.Merge(c.defaults, req)
	merged.Stream = stream
	merged.Model = c.resolveModel(merged.Model)

	a, err := c.registry.resolve(merged.Model.Provider)
	if err != nil {
		return nil, err
	}

	wire, err := a.Serialize(merged)
	if err != nil {
		var e *llm.Error
		if errors.As(err, &e) {
			return nil, e
		}
		return nil, &llm.Error{
			Provider: a.Provider,
			Kind:     llm.ErrKindRequest,
			Message:  err.Error(),
			Cause:    err,
		}
	}

	cred, ok := c.auth.Credentials(a.Provider)
	if !ok {
		c.logger.Debug("llm no credentials", "provider", a.Provider)
	}
	h := make(http.Header)
	a.Authorize(h, cred)

	url := a.ResolveURL(wire)
	c.logger.Debug("llm dispatch",
		"provider", a.Provider,
		"model", merged.Model.Name,
		"stream", stream,
		"url", llm.RedactURL(url, cred),
	)

	return &call{
		req:     merged,
		adapter: a,
		ex: transport.Exchange{
			Provider:    a.Provider,
			Method:      http.MethodPost,
			URL:         url,
			Header:      h,
			Body:        wire.Body,
			Credentials: cred,
		},
	}, nil
}

func (c *Client) resolveModel(m llm.Model) llm.Model {
	if m.IsZero() {
		return llm.DefaultModel
	}
	if known, ok := c.catalog.Lookup(m.Name); ok {
		if m.Provider == "" {
			m.Provider = known.Provider
		}
		if m.ContextTokens == 0 {
			m.ContextTokens = known.ContextTokens
		}
		m.Reasoning = m.Reasoning || known.Reasoning
	}
	if m.Provider == "" {
		m.Provider = llm.ProviderOpenAI
	}
	return m
}

// Chat performs a blocking completion.
func (c *Client) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResult, error) {
	res, _, err := c.do(ctx, req)
	return res, err
}

// ChatSafe is Chat without an error return: failures are reported in the
// CallResult. Interceptors only see successful calls.
func (c *Client) ChatSafe(ctx context.Context, req llm.ChatRequest) llm.CallResult {
	res, status, err := c.do(ctx, req)
	if err != nil {
		if status == 0 {
			status = llm.StatusCode(err)
		}
		return llm.CallResult{StatusCode: status, Err: err}
	}
	return llm.CallResult{OK: true, StatusCode: status, Result: res}
}

func (c *Client) do(ctx context.Context, req llm.ChatRequest) (*llm.ChatResult, int, error) {
	cl, err := c.prepare(req, false)
	if err != nil {
		return nil, 0, err
	}

	resp, err := c.core.Do(ctx, cl.ex)
	if err != nil {
		return nil, 0, err
	}

	res, err := cl.adapter.DecodeFull(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, c.annotate(err, cl, resp.Request, resp.RequestID)
	}
	fill(res, cl)
	res.Meta = llm.ResponseMeta{
		RequestID:      resp.RequestID,
		ProcessingTime: resp.Duration,
		Header:         resp.Header,
		Raw:            resp.Body,
	}

	if c.intercept != nil {
		if err := c.intercept(ctx, &cl.req, res); err != nil {
			c.logger.Warn("llm interceptor failed", "provider", cl.adapter.Provider, "err", err)
			return nil, resp.StatusCode, fmt.Errorf("chat: interceptor: %w", err)
		}
	}
	return res, resp.StatusCode, nil
}

// ChatStream starts a streaming completion. The returned Stream must be
// closed, or read to the end, to release the connection.
func (c *Client) ChatStream(ctx context.Context, req llm.ChatRequest, opts ...StreamOption) (*Stream, error) {
	var so streamOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&so)
		}
	}

	cl, err := c.prepare(req, true)
	if err != nil {
		return nil, err
	}

	sess, err := c.core.Open(ctx, cl.ex)
	if err != nil {
		var e *llm.Error
		if !errors.As(err, &e) {
			return nil, err
		}
		c.logger.Warn("llm stream handshake failed",
			"provider", e.Provider,
			"kind", e.Kind,
			"status", e.StatusCode,
		)
		if so.onHTTPError == nil {
			return nil, e
		}
		if herr := so.onHTTPError(ctx, &llm.FailedRequest{
			Provider:   e.Provider,
			Err:        e,
			Request:    e.Request,
			StatusCode: e.StatusCode,
			Header:     e.Header,
		}); herr != nil {
			return nil, herr
		}
		return closedStream(), nil
	}

	if so.onOutbound != nil {
		if err := so.onOutbound(ctx, sess.Snapshot); err != nil {
			_ = sess.Close()
			return nil, err
		}
	}
	return newStream(ctx, c, cl, sess), nil
}

// annotate attaches request context to a decode failure and redacts it.
func (c *Client) annotate(err error, cl *call, snap *llm.RequestSnapshot, requestID string) error {
	var e *llm.Error
	if !errors.As(err, &e) {
		return err
	}
	cred := cl.ex.Credentials
	e.Body = cred.Redact(e.Body)
	e.Message = cred.Redact(e.Message)
	if e.Provider == "" {
		e.Provider = cl.adapter.Provider
	}
	if e.Request == nil {
		e.Request = snap
	}
	if e.RequestID == "" {
		e.RequestID = requestID
	}
	return e
}

// fill sets result fields the vendor response may leave empty.
func fill(res *llm.ChatResult, cl *call) {
	if res.Provider == "" {
		res.Provider = cl.adapter.Provider
	}
	if res.Model == "" {
		res.Model = cl.req.Model.Name
	}
}
