// Package google implements the Gemini generateContent wire format.
//
// Gemini has no plain string content: every message becomes a parts array.
// The model name is part of the URL, assistant turns use the "model" role,
// and streamed chunks are whole responses delivered over SSE without an
// end-of-stream marker.
package google

import (
	"net/http"

	"github.com/lgc202/llmkit/llm"
	"github.com/lgc202/llmkit/llm/adapter"
)

const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

func New() adapter.Adapter {
	return adapter.Adapter{
		Provider:    llm.ProviderGoogle,
		BaseURL:     DefaultBaseURL,
		Authorize:   authorize,
		Serialize:   serialize,
		DecodeFull:  decodeFull,
		DecodeFrame: decodeFrame,

		NewFrameDecoder: newFrameDecoder,
	}
}

func authorize(h http.Header, cred llm.Credentials) {
	if cred.APIKey != "" {
		h.Set("x-goog-api-key", cred.APIKey)
	}
}
