package httpx

import (
	"log/slog"
	"net/http"
	"time"
)

type Option interface{ apply(*Config) }

type optionFunc func(*Config)

func (f optionFunc) apply(c *Config) { f(c) }

func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *Config) { c.Timeout = d })
}

func WithTransport(rt http.RoundTripper) Option {
	return optionFunc(func(c *Config) { c.Transport = rt })
}

func WithDefaultHeader(key, value string) Option {
	return optionFunc(func(c *Config) {
		if c.DefaultHeaders == nil {
			c.DefaultHeaders = make(http.Header)
		}
		c.DefaultHeaders.Set(key, value)
	})
}

func WithUserAgent(ua string) Option {
	return optionFunc(func(c *Config) { c.UserAgent = ua })
}

func WithRequestID(cfg RequestIDConfig) Option {
	return optionFunc(func(c *Config) { c.RequestID = cfg })
}

func WithMiddleware(mws ...Middleware) Option {
	return optionFunc(func(c *Config) { c.Middleware = append(c.Middleware, mws...) })
}

func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *Config) { c.Logger = l })
}
