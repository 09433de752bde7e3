package chat

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/lgc202/llmkit/httpx"
	"github.com/lgc202/llmkit/llm"
	"github.com/lgc202/llmkit/llm/adapter"
)

// HTTPClientFactory builds the pooled *http.Client for one vendor. A Client
// invokes it at most once per vendor.
type HTTPClientFactory func(p llm.Provider) *http.Client

type options struct {
	auth         llm.AuthProvider
	keys         *llm.StaticAuth
	catalog      llm.Catalog
	defaults     llm.ChatRequest
	timeout      time.Duration
	userAgent    string
	factory      HTTPClientFactory
	transport    httpx.TransportConfig
	requestID    *httpx.RequestIDConfig
	middleware   []httpx.Middleware
	baseURLs     map[llm.Provider]string
	adapters     map[llm.Provider]adapter.Adapter
	interceptors []llm.Interceptor
	logger       *slog.Logger
}

// Option 客户端配置选项
type Option func(*options)

// WithAuth sets the credential source. The default reads the conventional
// environment variables (llm.EnvAuth).
func WithAuth(a llm.AuthProvider) Option {
	return func(o *options) { o.auth = a }
}

// WithAPIKey sets a static key for provider p. Static credentials take
// precedence over the AuthProvider.
func WithAPIKey(p llm.Provider, key string) Option {
	return WithCredentials(p, llm.Credentials{APIKey: key})
}

func WithCredentials(p llm.Provider, cred llm.Credentials) Option {
	return func(o *options) {
		if o.keys == nil {
			o.keys = llm.NewStaticAuth()
		}
		o.keys.Set(p, cred)
	}
}

func WithCatalog(c llm.Catalog) Option {
	return func(o *options) { o.catalog = c }
}

// WithDefaults sets the request every call is merged onto. Fields set on the
// call's own request win.
func WithDefaults(req llm.ChatRequest) Option {
	return func(o *options) { o.defaults = req }
}

// WithTimeout bounds blocking calls and stream handshakes for every vendor.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// WithHTTPClientFactory replaces the default httpx based client construction.
// Middleware set with WithMiddleware is not applied to factory built clients.
func WithHTTPClientFactory(f HTTPClientFactory) Option {
	return func(o *options) { o.factory = f }
}

// WithTransportConfig tunes the connection pool of every default vendor
// client, e.g. to route through a proxy.
func WithTransportConfig(cfg httpx.TransportConfig) Option {
	return func(o *options) { o.transport = cfg }
}

// WithRequestIDHeader sets the header carrying a generated correlation id on
// every outbound request of the default vendor clients. The default is
// X-Request-ID; an empty header disables it.
func WithRequestIDHeader(header string) Option {
	return func(o *options) {
		o.requestID = &httpx.RequestIDConfig{Header: header, New: httpx.DefaultRequestID}
	}
}

// WithMiddleware wraps the default per-vendor transports.
func WithMiddleware(mws ...httpx.Middleware) Option {
	return func(o *options) { o.middleware = append(o.middleware, mws...) }
}

// WithBaseURL points vendor p at a different endpoint, e.g. a proxy or a
// self-hosted OpenAI compatible server.
func WithBaseURL(p llm.Provider, baseURL string) Option {
	return func(o *options) {
		if o.baseURLs == nil {
			o.baseURLs = make(map[llm.Provider]string)
		}
		o.baseURLs[p] = baseURL
	}
}

// WithAdapter registers a, replacing any built-in adapter of a.Provider.
func WithAdapter(a adapter.Adapter) Option {
	return func(o *options) {
		if o.adapters == nil {
			o.adapters = make(map[llm.Provider]adapter.Adapter)
		}
		o.adapters[a.Provider] = a
	}
}

// WithInterceptor adds a completion interceptor. Interceptors run in the order
// they were added.
func WithInterceptor(it llm.Interceptor) Option {
	return func(o *options) {
		if it != nil {
			o.interceptors = append(o.interceptors, it)
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

type streamOptions struct {
	onHTTPError llm.HTTPErrorHandler
	onOutbound  llm.RequestObserver
}

// StreamOption configures a single ChatStream call.
type StreamOption func(*streamOptions)

// OnHTTPError handles a failed stream handshake. With a handler installed
// ChatStream returns an empty, already closed stream unless the handler
// returns an error.
func OnHTTPError(h func(ctx context.Context, f *llm.FailedRequest) error) StreamOption {
	return func(o *streamOptions) { o.onHTTPError = h }
}

// OnOutboundRequest observes the redacted outbound request once the stream
// is connected. A returned error closes the stream and fails the call.
func OnOutboundRequest(h func(ctx context.Context, snap *llm.RequestSnapshot) error) StreamOption {
	return func(o *streamOptions) { o.onOutbound = h }
}
