// Package anthropic implements the Anthropic Messages API wire format.
//
// System messages are lifted into the top-level system field, tool results
// travel as tool_result blocks inside user turns, and consecutive messages of
// the same wire role are merged. Frequency and presence penalties, seed,
// logit bias, n and response format have no Messages API equivalent and are
// not sent.
package anthropic

import (
	"net/http"

	"github.com/lgc202/llmkit/llm"
	"github.com/lgc202/llmkit/llm/adapter"
)

const (
	DefaultBaseURL = "https://api.anthropic.com/v1"
	APIVersion     = "2023-06-01"

	// DefaultMaxTokens is sent when the request leaves MaxTokens unset; the
	// Messages API requires the field.
	DefaultMaxTokens = 4096
)

func New() adapter.Adapter {
	return adapter.Adapter{
		Provider:    llm.ProviderAnthropic,
		BaseURL:     DefaultBaseURL,
		Authorize:   authorize,
		Serialize:   serialize,
		DecodeFull:  decodeFull,
		DecodeFrame: decodeFrame,
	}
}

func authorize(h http.Header, cred llm.Credentials) {
	if cred.APIKey != "" {
		h.Set("x-api-key", cred.APIKey)
	}
	h.Set("anthropic-version", APIVersion)
}
