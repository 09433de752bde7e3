package httpx

import (
	"log/slog"
	"net/http"
	"time"
)

// BeforeHook runs before a request is sent; an error aborts the round trip.
type BeforeHook func(req *http.Request) error

// AfterHook runs once the round trip returned. resp is nil when err is not.
type AfterHook func(req *http.Request, resp *http.Response, err error, dur time.Duration)

type Middleware func(next http.RoundTripper) http.RoundTripper

func chain(rt http.RoundTripper, mws []Middleware) http.RoundTripper {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] == nil {
			continue
		}
		rt = mws[i](rt)
	}
	return rt
}

// Hooks adapts before/after hooks to a Middleware.
func Hooks(before []BeforeHook, after []AfterHook) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			for _, h := range before {
				if h == nil {
					continue
				}
				if err := h(req); err != nil {
					return nil, err
				}
			}

			t0 := time.Now()
			resp, err := next.RoundTrip(req)
			dur := time.Since(t0)

			for _, h := range after {
				if h != nil {
					h(req, resp, err, dur)
				}
			}
			return resp, err
		})
	}
}

// After is shorthand for Hooks(nil, []AfterHook{h}).
func After(h AfterHook) Middleware { return Hooks(nil, []AfterHook{h}) }

// Logging logs every round trip at debug level. Query strings are dropped
// from the logged URL since some APIs carry keys there.
func Logging(l *slog.Logger, requestIDHeader string) Middleware {
	return After(func(req *http.Request, resp *http.Response, err error, dur time.Duration) {
		attrs := []any{
			"method", req.Method,
			"host", req.URL.Host,
			"path", req.URL.Path,
			"dur", dur,
		}
		if requestIDHeader != "" {
			if id := req.Header.Get(requestIDHeader); id != "" {
				attrs = append(attrs, "request_id", id)
			}
		}
		if err != nil {
			l.Debug("http round trip failed", append(attrs, "err", err)...)
			return
		}
		l.Debug("http round trip", append(attrs, "status", resp.StatusCode)...)
	})
}
