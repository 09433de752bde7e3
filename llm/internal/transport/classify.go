package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/lgc202/llmkit/llm"
)

// 限制错误响应体最大读取 1MB
const maxErrorBodyBytes = 1 << 20

// errHandshakeTimeout is the cancel cause of a stream whose headers did not
// arrive within the configured timeout.
var errHandshakeTimeout = fmt.Errorf("handshake timeout: %w", context.DeadlineExceeded)

func classifyStatus(code int) llm.ErrorKind {
	switch {
	case code == http.StatusUnauthorized:
		return llm.ErrKindAuth
	case code >= 500:
		return llm.ErrKindServer
	default:
		return llm.ErrKindRequest
	}
}

// statusError reads the (limited) error body of resp and classifies it. The
// caller still owns resp.Body.
func statusError(ex Exchange, snap *llm.RequestSnapshot, resp *http.Response) *llm.Error {
	raw, rerr := readLimited(resp.Body, maxErrorBodyBytes)
	body := ex.Credentials.Redact(string(raw))

	msg := strings.TrimSpace(ex.Credentials.Redact(vendorMessage(raw)))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	if rerr != nil {
		msg += " (also failed to read error body)"
	}

	return &llm.Error{
		Provider:   ex.Provider,
		Kind:       classifyStatus(resp.StatusCode),
		StatusCode: resp.StatusCode,
		Message:    msg,
		Body:       body,
		RequestID:  extractRequestID(resp.Header),
		Header:     resp.Header.Clone(),
		Request:    snap,
	}
}

// networkError classifies a failure that produced no response (or broke while
// reading one). ctx is the context the request ran under.
func networkError(ctx context.Context, ex Exchange, snap *llm.RequestSnapshot, err error) *llm.Error {
	target := snap.Method + " " + snap.URL

	var (
		kind   llm.ErrorKind
		reason string
	)
	cause := context.Cause(ctx)
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(cause, context.DeadlineExceeded):
		kind, reason = llm.ErrKindTimeout, "request timeout"
	case errors.Is(err, context.Canceled) || (cause != nil && errors.Is(cause, context.Canceled)):
		kind, reason = llm.ErrKindTimeout, "request cancelled"
	default:
		var netErr net.Error
		var urlErr *url.Error
		switch {
		case errors.As(err, &netErr) && netErr.Timeout():
			kind, reason = llm.ErrKindTimeout, "request timeout"
		case errors.As(err, &urlErr), errors.As(err, &netErr),
			errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
			kind, reason = llm.ErrKindTransport, "network error"
		default:
			kind, reason = llm.ErrKindUnknown, "unexpected error"
		}
	}

	// Cancellation errors carry no useful detail beyond the reason.
	detail := rootMessage(err)
	msg := fmt.Sprintf("%s: %s", target, reason)
	if detail != "" && kind != llm.ErrKindTimeout {
		msg += ": " + ex.Credentials.Redact(detail)
	}

	if cause != nil && !errors.Is(err, cause) && errors.Is(cause, context.DeadlineExceeded) {
		err = fmt.Errorf("%w (%w)", err, cause)
	}
	return &llm.Error{
		Provider: ex.Provider,
		Kind:     kind,
		Message:  msg,
		Request:  snap,
		Cause:    err,
	}
}

// rootMessage strips *url.Error wrapping, whose text repeats the URL.
func rootMessage(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err.Error()
	}
	return err.Error()
}

// vendorMessage extracts a human readable message from the common error
// envelopes: {"error":{"message":..}}, {"error":".."}, {"message":..} and the
// single element array some Google endpoints return.
func vendorMessage(raw []byte) string {
	raw = []byte(strings.TrimSpace(string(raw)))
	if len(raw) == 0 {
		return ""
	}
	if raw[0] == '[' {
		var arr []json.RawMessage
		if err := json.Unmarshal(raw, &arr); err == nil && len(arr) > 0 {
			return vendorMessage(arr[0])
		}
		return ""
	}

	var env struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return string(raw)
	}
	if len(env.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(env.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
		var s string
		if err := json.Unmarshal(env.Error, &s); err == nil && s != "" {
			return s
		}
	}
	return env.Message
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	lr := &io.LimitedReader{R: r, N: limit}
	return io.ReadAll(lr)
}

func extractRequestID(h http.Header) string {
	if h == nil {
		return ""
	}
	for _, k := range []string{
		"X-Request-Id",
		"Request-Id",
		"X-Goog-Request-Id",
		"X-Trace-Id",
		"X-Amzn-RequestId",
	} {
		if v := strings.TrimSpace(h.Get(k)); v != "" {
			return v
		}
	}
	return ""
}
