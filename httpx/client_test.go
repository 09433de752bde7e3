package httpx

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewClient_InjectsHeaders(t *testing.T) {
	t.Parallel()

	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(
		WithUserAgent("llmkit/test"),
		WithDefaultHeader("X-Team", "core"),
	)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("X-Team", "caller")
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	_ = resp.Body.Close()

	if ua := got.Get("User-Agent"); ua != "llmkit/test" {
		t.Errorf("User-Agent = %q, want llmkit/test", ua)
	}
	if v := got.Get("X-Team"); v != "caller" {
		t.Errorf("X-Team = %q, want caller (caller headers win)", v)
	}
	if _, err := uuid.Parse(got.Get("X-Request-ID")); err != nil {
		t.Errorf("X-Request-ID = %q is not a uuid: %v", got.Get("X-Request-ID"), err)
	}
	if req.Header.Get("X-Request-ID") != "" {
		t.Errorf("caller request was mutated")
	}
}

func TestNewClient_MiddlewareOrder(t *testing.T) {
	t.Parallel()

	var order []string
	mark := func(name string) Middleware {
		return func(next http.RoundTripper) http.RoundTripper {
			return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.RoundTrip(r)
			})
		}
	}
	base := RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		order = append(order, "base")
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("")), Header: make(http.Header), Request: r}, nil
	})

	c := NewClient(WithTransport(base), WithMiddleware(mark("a"), nil, mark("b")))
	req, _ := http.NewRequest(http.MethodGet, "https://example.test/", nil)
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	_ = resp.Body.Close()

	if got := strings.Join(order, ","); got != "a,b,base" {
		t.Fatalf("order = %s, want a,b,base", got)
	}
}

func TestHooks_BeforeErrorAborts(t *testing.T) {
	t.Parallel()

	var sent, after int32
	base := RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		atomic.AddInt32(&sent, 1)
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: r}, nil
	})
	stop := errors.New("stop")
	mw := Hooks(
		[]BeforeHook{func(*http.Request) error { return stop }},
		[]AfterHook{func(*http.Request, *http.Response, error, time.Duration) { atomic.AddInt32(&after, 1) }},
	)

	req, _ := http.NewRequest(http.MethodGet, "https://example.test/", nil)
	_, err := mw(base).RoundTrip(req)
	if !errors.Is(err, stop) {
		t.Fatalf("err = %v, want stop", err)
	}
	if sent != 0 || after != 0 {
		t.Fatalf("sent=%d after=%d, want 0/0", sent, after)
	}
}

func TestLogging_OmitsQuery(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	base := RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusTeapot, Body: http.NoBody, Request: r}, nil
	})

	c := NewClient(WithTransport(base), WithLogger(logger))
	req, _ := http.NewRequest(http.MethodGet, "https://example.test/v1/models?key=secret", nil)
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	_ = resp.Body.Close()

	out := buf.String()
	if !strings.Contains(out, "status=418") || !strings.Contains(out, "path=/v1/models") {
		t.Fatalf("log = %q", out)
	}
	if strings.Contains(out, "secret") {
		t.Fatalf("log leaks query: %q", out)
	}
	if !strings.Contains(out, "request_id=") {
		t.Fatalf("log misses request id: %q", out)
	}
}

func TestNewClient_Timeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(WithTimeout(50 * time.Millisecond))
	_, err := c.Get(srv.URL)
	if err == nil {
		t.Fatalf("expected timeout error")
	}
}
