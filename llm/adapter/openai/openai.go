// Package openai implements the OpenAI chat completions wire format. It is the
// reference adapter: Groq and every vendor without a dedicated adapter reuse it.
package openai

import (
	"net/http"

	"github.com/lgc202/llmkit/llm"
	"github.com/lgc202/llmkit/llm/adapter"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	GroqBaseURL    = "https://api.groq.com/openai/v1"
)

// compatibleBaseURLs 已知 OpenAI 兼容厂商的默认地址
var compatibleBaseURLs = map[llm.Provider]string{
	llm.ProviderDeepSeek: "https://api.deepseek.com",
	llm.ProviderKimi:     "https://api.moonshot.cn/v1",
	llm.ProviderQwen:     "https://dashscope.aliyuncs.com/compatible-mode/v1",
	llm.ProviderOllama:   "http://localhost:11434/v1",
}

// New returns the OpenAI adapter.
func New() adapter.Adapter {
	return compatible(llm.ProviderOpenAI, DefaultBaseURL, nil)
}

// NewGroq returns the Groq adapter. Groq speaks the OpenAI format but rejects
// logit_bias, which is dropped from the outgoing body.
func NewGroq() adapter.Adapter {
	return compatible(llm.ProviderGroq, GroqBaseURL, func(r *llm.ChatRequest) {
		r.LogitBias = nil
	})
}

// Fallback returns an OpenAI shaped adapter for a vendor that has no adapter
// of its own. Known compatible vendors get their endpoint; any other vendor
// starts at the OpenAI endpoint and is expected to have its base URL
// configured.
func Fallback(p llm.Provider) adapter.Adapter {
	base, ok := compatibleBaseURLs[p]
	if !ok {
		base = DefaultBaseURL
	}
	return compatible(p, base, nil)
}

func compatible(p llm.Provider, baseURL string, strip func(*llm.ChatRequest)) adapter.Adapter {
	return adapter.Adapter{
		Provider:    p,
		BaseURL:     baseURL,
		Authorize:   authorize,
		Serialize:   serializer(p, strip),
		DecodeFull:  decodeFull(p),
		DecodeFrame: decodeFrame(p),
	}
}

func authorize(h http.Header, cred llm.Credentials) {
	adapter.BearerAuth(h, cred)
	if cred.Organization != "" {
		h.Set("OpenAI-Organization", cred.Organization)
	}
}
