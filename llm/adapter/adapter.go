// Package adapter defines the per-vendor translation contract between the
// canonical llm model and a vendor's HTTP wire format.
//
// An Adapter is a plain struct of functions, one registry entry per vendor.
// Adapters are stateless and safe for concurrent use; Serialize must never
// mutate the request it is given beyond its own by-value copy.
package adapter

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/lgc202/llmkit/llm"
)

// Wire is a serialized request. URL is either absolute or a path relative to
// the adapter's BaseURL.
type Wire struct {
	Body []byte
	URL  string
}

type Adapter struct {
	Provider llm.Provider
	BaseURL  string

	// Authorize sets the vendor's authentication headers.
	Authorize func(h http.Header, cred llm.Credentials)

	Serialize func(req llm.ChatRequest) (Wire, error)

	// DecodeFull decodes a complete 2xx response body.
	DecodeFull func(body []byte) (*llm.ChatResult, error)

	// DecodeFrame decodes one server-sent-event payload. A nil result with
	// done == false means the frame carries nothing to emit; done reports a
	// vendor end-of-stream marker. A frame may carry a final result and done
	// together, in which case the result is emitted before the stream ends.
	DecodeFrame func(frame []byte) (res *llm.ChatResult, done bool, err error)

	// NewFrameDecoder is optional. When set, each stream decodes its frames
	// with a fresh decoder from it instead of DecodeFrame, for vendors whose
	// chunks only make sense relative to the earlier ones.
	NewFrameDecoder func() func(frame []byte) (*llm.ChatResult, bool, error)
}

func (a Adapter) Validate() error {
	var missing []string
	if a.Provider == "" {
		missing = append(missing, "Provider")
	}
	if a.Authorize == nil {
		missing = append(missing, "Authorize")
	}
	if a.Serialize == nil {
		missing = append(missing, "Serialize")
	}
	if a.DecodeFull == nil {
		missing = append(missing, "DecodeFull")
	}
	if a.DecodeFrame == nil {
		missing = append(missing, "DecodeFrame")
	}
	if len(missing) > 0 {
		return fmt.Errorf("adapter: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// FrameDecoder returns the frame decoder for one new stream.
func (a Adapter) FrameDecoder() func(frame []byte) (*llm.ChatResult, bool, error) {
	if a.NewFrameDecoder != nil {
		return a.NewFrameDecoder()
	}
	return a.DecodeFrame
}

// ResolveURL returns the absolute endpoint of w.
func (a Adapter) ResolveURL(w Wire) string {
	if strings.HasPrefix(w.URL, "http://") || strings.HasPrefix(w.URL, "https://") {
		return w.URL
	}
	return JoinPath(a.BaseURL, w.URL)
}

// JoinPath joins a base URL and a path with exactly one slash between them.
// url.JoinPath would clean too aggressively for some base URLs with paths.
func JoinPath(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if a[len(a)-1] == '/' {
		if b[0] == '/' {
			return a + b[1:]
		}
		return a + b
	}
	if b[0] == '/' {
		return a + b
	}
	return a + "/" + b
}

// BearerAuth sets "Authorization: Bearer <key>".
func BearerAuth(h http.Header, cred llm.Credentials) {
	if cred.APIKey != "" {
		h.Set("Authorization", "Bearer "+cred.APIKey)
	}
}

// ParseError reports a body the adapter could not decode.
func ParseError(p llm.Provider, what string, raw []byte, err error) *llm.Error {
	return &llm.Error{
		Provider: p,
		Kind:     llm.ErrKindParse,
		Message:  "decode " + what,
		Body:     truncate(string(raw), 4096),
		Cause:    err,
	}
}

// StreamError reports an error event sent by the vendor inside a 2xx stream.
func StreamError(p llm.Provider, msg string, raw []byte) *llm.Error {
	if msg == "" {
		msg = "error event in stream"
	}
	return &llm.Error{
		Provider: p,
		Kind:     llm.ErrKindServer,
		Message:  msg,
		Body:     truncate(string(raw), 4096),
	}
}

// UnsupportedError reports request content the vendor cannot represent.
func UnsupportedError(p llm.Provider, what string) *llm.Error {
	return &llm.Error{
		Provider: p,
		Kind:     llm.ErrKindRequest,
		Message:  what + " is not supported",
	}
}

var ErrExtensionConflict = errors.New("adapter: vendor extension conflicts with a built-in field")

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
