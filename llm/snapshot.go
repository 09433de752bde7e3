package llm

import (
	"net/http"
	"net/url"
	"strings"
)

const redactedHeader = "[REDACTED]"

// sensitiveHeaders never leave the process in a snapshot.
var sensitiveHeaders = []string{
	"Authorization",
	"X-Api-Key",
	"X-Goog-Api-Key",
	"Api-Key",
	"Openai-Organization",
	"Proxy-Authorization",
}

// RequestSnapshot is a credential free copy of an outbound request.
type RequestSnapshot struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// SnapshotRequest captures method, URL, headers and body of an outbound
// request, masking credential headers and query parameters. cred is redacted
// from the body as well.
func SnapshotRequest(method, rawURL string, h http.Header, body []byte, cred Credentials) *RequestSnapshot {
	hdr := h.Clone()
	if hdr == nil {
		hdr = make(http.Header)
	}
	for _, k := range sensitiveHeaders {
		if hdr.Get(k) != "" {
			hdr.Set(k, redactedHeader)
		}
	}
	return &RequestSnapshot{
		Method: method,
		URL:    RedactURL(rawURL, cred),
		Header: hdr,
		Body:   []byte(cred.Redact(string(body))),
	}
}

// RedactURL masks the key query parameter and any credential text in u.
func RedactURL(rawURL string, cred Credentials) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return cred.Redact(rawURL)
	}
	q := u.Query()
	changed := false
	for k := range q {
		switch strings.ToLower(k) {
		case "key", "api_key", "apikey":
			q.Set(k, redactedHeader)
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return cred.Redact(u.String())
}
