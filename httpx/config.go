package httpx

import (
	"log/slog"
	"net/http"
	"time"
)

// Config configures a client built by NewClient. Use DefaultConfig() as a baseline.
type Config struct {
	// Timeout is copied to http.Client.Timeout and bounds the whole exchange,
	// including reading the body. Leave it zero for streaming clients and bound
	// calls with a context instead.
	Timeout time.Duration

	// Transport is the underlying RoundTripper. If nil, a tuned default is used.
	Transport http.RoundTripper

	// DefaultHeaders are copied into every request (caller headers win).
	DefaultHeaders http.Header

	// UserAgent is set when the request does not already have a User-Agent header.
	UserAgent string

	// RequestID configures correlation id propagation.
	RequestID RequestIDConfig

	// Middleware wraps the transport; the first entry is the outermost.
	Middleware []Middleware

	// Logger receives one debug record per round trip. Nil disables logging.
	Logger *slog.Logger
}

// DefaultConfig returns a conservative baseline suitable for most services.
func DefaultConfig() Config {
	return Config{
		Transport:      DefaultTransport(),
		DefaultHeaders: make(http.Header),
		RequestID:      DefaultRequestIDConfig(),
	}
}
