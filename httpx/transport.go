package httpx

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

// TransportConfig tunes the connection pool behind one client. Zero fields
// keep the DefaultTransport value. The mapstructure tags let it be embedded
// in file based settings.
type TransportConfig struct {
	// ProxyURL overrides the environment proxy (HTTPS_PROXY etc.).
	ProxyURL string `mapstructure:"proxy_url"`

	DialTimeout           time.Duration `mapstructure:"dial_timeout"`
	TLSHandshakeTimeout   time.Duration `mapstructure:"tls_handshake_timeout"`
	ResponseHeaderTimeout time.Duration `mapstructure:"response_header_timeout"`
	IdleConnTimeout       time.Duration `mapstructure:"idle_conn_timeout"`

	MaxIdleConnsPerHost int  `mapstructure:"max_idle_conns_per_host"`
	MaxConnsPerHost     int  `mapstructure:"max_conns_per_host"`
	DisableHTTP2        bool `mapstructure:"disable_http2"`
}

// IsZero reports whether cfg changes nothing.
func (cfg TransportConfig) IsZero() bool { return cfg == TransportConfig{} }

// NewTransport builds an *http.Transport from DefaultTransport() with cfg
// applied. It fails only on an unparsable ProxyURL.
func NewTransport(cfg TransportConfig) (*http.Transport, error) {
	t := DefaultTransport()
	if cfg.ProxyURL != "" {
		u, err := url.Parse(cfg.ProxyURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("httpx: invalid proxy url %q", cfg.ProxyURL)
		}
		t.Proxy = http.ProxyURL(u)
	}
	if cfg.DialTimeout > 0 {
		t.DialContext = (&net.Dialer{
			Timeout:   cfg.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext
	}
	if cfg.TLSHandshakeTimeout > 0 {
		t.TLSHandshakeTimeout = cfg.TLSHandshakeTimeout
	}
	if cfg.ResponseHeaderTimeout > 0 {
		t.ResponseHeaderTimeout = cfg.ResponseHeaderTimeout
	}
	if cfg.IdleConnTimeout > 0 {
		t.IdleConnTimeout = cfg.IdleConnTimeout
	}
	if cfg.MaxIdleConnsPerHost > 0 {
		t.MaxIdleConnsPerHost = cfg.MaxIdleConnsPerHost
	}
	if cfg.MaxConnsPerHost > 0 {
		t.MaxConnsPerHost = cfg.MaxConnsPerHost
	}
	if cfg.DisableHTTP2 {
		t.ForceAttemptHTTP2 = false
		t.TLSNextProto = map[string]func(string, *tls.Conn) http.RoundTripper{}
	}
	return t, nil
}

// DefaultTransport returns a tuned clone of http.DefaultTransport.
func DefaultTransport() *http.Transport {
	base, _ := http.DefaultTransport.(*http.Transport)
	if base == nil {
		return &http.Transport{}
	}
	t := base.Clone()

	t.DialContext = (&net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext
	t.TLSHandshakeTimeout = 5 * time.Second
	// Model responses routinely take minutes before the first byte; the caller's
	// context bounds the wait instead of ResponseHeaderTimeout.
	t.ResponseHeaderTimeout = 0
	t.ExpectContinueTimeout = 1 * time.Second
	t.IdleConnTimeout = 90 * time.Second
	if t.MaxIdleConns == 0 {
		t.MaxIdleConns = 200
	}
	// One client talks to one vendor host, so most idle conns belong to it.
	if t.MaxIdleConnsPerHost == 0 {
		t.MaxIdleConnsPerHost = 100
	}
	t.ForceAttemptHTTP2 = true
	return t
}
