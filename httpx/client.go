package httpx

import "net/http"

// NewClient constructs an *http.Client from DefaultConfig() plus the provided options.
func NewClient(opts ...Option) *http.Client {
	cfg := DefaultConfig()
	for _, o := range opts {
		if o != nil {
			o.apply(&cfg)
		}
	}
	return NewClientWithConfig(cfg)
}

// NewClientWithConfig builds the client. The resulting round tripper chain is,
// from the outside in: header injection, cfg.Middleware, logging, Transport.
func NewClientWithConfig(cfg Config) *http.Client {
	rt := cfg.Transport
	if rt == nil {
		rt = DefaultTransport()
	}

	if cfg.Logger != nil {
		rt = Logging(cfg.Logger, cfg.RequestID.Header)(rt)
	}
	rt = chain(rt, cfg.Middleware)

	// Clone headers to avoid caller mutation.
	hdr := cfg.DefaultHeaders.Clone()
	rid := cfg.RequestID
	if rid.New == nil && rid.Header != "" {
		rid.New = DefaultRequestID
	}
	rt = injectHeaders(hdr, cfg.UserAgent, rid)(rt)

	return &http.Client{
		Transport: rt,
		Timeout:   cfg.Timeout,
	}
}

func injectHeaders(defaults http.Header, userAgent string, rid RequestIDConfig) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			needUA := userAgent != "" && req.Header.Get("User-Agent") == ""
			needID := rid.Header != "" && req.Header.Get(rid.Header) == ""
			if len(defaults) == 0 && !needUA && !needID {
				return next.RoundTrip(req)
			}

			// RoundTrippers must not modify the caller's request.
			r := req.Clone(req.Context())
			for k, vv := range defaults {
				if _, ok := r.Header[k]; ok {
					continue
				}
				for _, v := range vv {
					r.Header.Add(k, v)
				}
			}
			if needUA {
				r.Header.Set("User-Agent", userAgent)
			}
			if needID {
				if id := rid.New(); id != "" {
					r.Header.Set(rid.Header, id)
				}
			}
			return next.RoundTrip(r)
		})
	}
}
