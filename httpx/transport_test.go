package httpx

import (
	"net/http"
	"testing"
	"time"
)

func TestNewTransport(t *testing.T) {
	t.Parallel()

	tr, err := NewTransport(TransportConfig{
		ProxyURL:            "http://proxy.internal:3128",
		TLSHandshakeTimeout: 2 * time.Second,
		MaxConnsPerHost:     16,
		DisableHTTP2:        true,
	})
	if err != nil {
		t.Fatalf("NewTransport: %v", err)
	}
	if tr.TLSHandshakeTimeout != 2*time.Second || tr.MaxConnsPerHost != 16 {
		t.Errorf("overrides not applied: tls=%v conns=%d", tr.TLSHandshakeTimeout, tr.MaxConnsPerHost)
	}
	if tr.ForceAttemptHTTP2 || tr.TLSNextProto == nil {
		t.Errorf("http2 still enabled")
	}
	if tr.MaxIdleConnsPerHost != DefaultTransport().MaxIdleConnsPerHost {
		t.Errorf("zero field changed MaxIdleConnsPerHost to %d", tr.MaxIdleConnsPerHost)
	}

	req, _ := http.NewRequest(http.MethodGet, "https://api.openai.com/v1/models", nil)
	u, err := tr.Proxy(req)
	if err != nil || u == nil || u.Host != "proxy.internal:3128" {
		t.Errorf("Proxy = %v, %v", u, err)
	}
}

func TestNewTransport_InvalidProxy(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"proxy.internal:3128", "://bad"} {
		if _, err := NewTransport(TransportConfig{ProxyURL: raw}); err == nil {
			t.Errorf("NewTransport(%q): expected error", raw)
		}
	}
	if !(TransportConfig{}).IsZero() {
		t.Errorf("zero config not reported as zero")
	}
}
