package llm

import "strings"

// Provider is the canonical identifier of a model vendor.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderCohere    Provider = "cohere"
	ProviderGoogle    Provider = "google"
	ProviderGroq      Provider = "groq"

	// OpenAI 兼容厂商，没有专属适配器，走默认的 OpenAI 形状序列化
	ProviderDeepSeek Provider = "deepseek"
	ProviderKimi     Provider = "kimi"
	ProviderQwen     Provider = "qwen"
	ProviderOllama   Provider = "ollama"
)

// ParseProvider normalizes a user supplied vendor name.
func ParseProvider(s string) Provider {
	return Provider(strings.ToLower(strings.TrimSpace(s)))
}

func (p Provider) String() string { return string(p) }
