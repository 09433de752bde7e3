package adapter

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/lgc202/llmkit/llm"
)

// Encode marshals the wire struct v and adds ext as extra top-level fields.
// An extension key that is already present in the encoded body is an error.
func Encode(v any, ext map[string]any) ([]byte, error) {
	base, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(ext) == 0 {
		return base, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, fmt.Errorf("adapter: request is not a json object: %w", err)
	}

	keys := make([]string, 0, len(ext))
	for k := range ext {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, ok := fields[k]; ok {
			return nil, fmt.Errorf("%w: %q", ErrExtensionConflict, k)
		}
		b, err := json.Marshal(ext[k])
		if err != nil {
			return nil, fmt.Errorf("adapter: marshal extension %q: %w", k, err)
		}
		fields[k] = b
	}
	return json.Marshal(fields)
}

// DataURL renders inline bytes as a data: URL.
func DataURL(mime string, data []byte) string {
	if mime == "" {
		mime = "application/octet-stream"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// PartURL returns p.URL, or a data: URL built from p.Data.
func PartURL(p llm.ContentPart) string {
	if p.URL != "" {
		return p.URL
	}
	return DataURL(p.MIME, p.Data)
}

// SplitDataURL parses "data:<mime>;base64,<data>" into its MIME type and
// still encoded payload.
func SplitDataURL(u string) (mime, data string, ok bool) {
	rest, found := strings.CutPrefix(u, "data:")
	if !found {
		return "", "", false
	}
	meta, data, found := strings.Cut(rest, ",")
	if !found {
		return "", "", false
	}
	mime, enc, _ := strings.Cut(meta, ";")
	if enc != "base64" {
		return "", "", false
	}
	return mime, data, true
}

// ToolArgs returns the call arguments as a JSON value, defaulting to {}.
func ToolArgs(args string) json.RawMessage {
	b := bytes.TrimSpace([]byte(args))
	if len(b) == 0 || !json.Valid(b) {
		return json.RawMessage("{}")
	}
	return json.RawMessage(b)
}

// JSONText is the inverse of ToolArgs for vendors that return arguments as
// an object: it renders raw as a compact string.
func JSONText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// Schema returns t.Parameters or an empty object schema.
func Schema(t llm.Tool) json.RawMessage {
	if len(bytes.TrimSpace(t.Parameters)) == 0 {
		return json.RawMessage(`{"type":"object","properties":{}}`)
	}
	return t.Parameters
}

// SchemaBody unwraps the "schema" member of an OpenAI style json_schema
// object ({"name":..,"schema":..}). Anything else is returned unchanged.
func SchemaBody(raw json.RawMessage) json.RawMessage {
	var wrapped struct {
		Schema json.RawMessage `json:"schema"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && len(wrapped.Schema) > 0 {
		return wrapped.Schema
	}
	return raw
}
