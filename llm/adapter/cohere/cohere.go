// Package cohere implements the Cohere v2 chat wire format.
//
// The v2 API is close to OpenAI's: messages carry roles, tool calls and tool
// results the same way. It differs in parameter names (p, stop_sequences),
// upper-case tool_choice values, and a typed event stream.
package cohere

import (
	"github.com/lgc202/llmkit/llm"
	"github.com/lgc202/llmkit/llm/adapter"
)

const DefaultBaseURL = "https://api.cohere.com/v2"

func New() adapter.Adapter {
	return adapter.Adapter{
		Provider:    llm.ProviderCohere,
		BaseURL:     DefaultBaseURL,
		Authorize:   adapter.BearerAuth,
		Serialize:   serialize,
		DecodeFull:  decodeFull,
		DecodeFrame: decodeFrame,
	}
}
