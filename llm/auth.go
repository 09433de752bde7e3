package llm

import (
	"os"
	"strings"
	"sync"
)

const (
	redactedAPIKey       = "[API KEY REDACTED FOR SECURITY]"
	redactedOrganization = "[ORGANIZATION REDACTED FOR SECURITY]"
)

// Credentials authenticate calls to one vendor.
type Credentials struct {
	APIKey       string
	Organization string
}

// Redact replaces every occurrence of the key and organization in s.
func (c Credentials) Redact(s string) string {
	if s == "" {
		return s
	}
	if k := strings.TrimSpace(c.APIKey); k != "" {
		s = strings.ReplaceAll(s, k, redactedAPIKey)
	}
	if o := strings.TrimSpace(c.Organization); o != "" {
		s = strings.ReplaceAll(s, o, redactedOrganization)
	}
	return s
}

// AuthProvider supplies per-vendor credentials.
type AuthProvider interface {
	Credentials(p Provider) (Credentials, bool)
}

// AuthFunc adapts a function to an AuthProvider.
type AuthFunc func(p Provider) (Credentials, bool)

func (f AuthFunc) Credentials(p Provider) (Credentials, bool) { return f(p) }

// StaticAuth is a fixed, concurrency-safe credential table.
type StaticAuth struct {
	mu    sync.RWMutex
	creds map[Provider]Credentials
}

func NewStaticAuth() *StaticAuth {
	return &StaticAuth{creds: make(map[Provider]Credentials)}
}

func (a *StaticAuth) Set(p Provider, c Credentials) *StaticAuth {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.creds[p] = c
	return a
}

func (a *StaticAuth) Credentials(p Provider) (Credentials, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	c, ok := a.creds[p]
	return c, ok
}

// envKeys 各厂商默认读取的环境变量
var envKeys = map[Provider]string{
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
	ProviderCohere:    "COHERE_API_KEY",
	ProviderGoogle:    "GEMINI_API_KEY",
	ProviderGroq:      "GROQ_API_KEY",
	ProviderDeepSeek:  "DEEPSEEK_API_KEY",
	ProviderKimi:      "MOONSHOT_API_KEY",
	ProviderQwen:      "DASHSCOPE_API_KEY",
}

// EnvAuth reads credentials from the conventional environment variables,
// e.g. OPENAI_API_KEY and OPENAI_ORG_ID.
type EnvAuth struct{}

func (EnvAuth) Credentials(p Provider) (Credentials, bool) {
	name, ok := envKeys[p]
	if !ok {
		name = strings.ToUpper(string(p)) + "_API_KEY"
	}
	key := strings.TrimSpace(os.Getenv(name))
	if key == "" {
		return Credentials{}, false
	}
	c := Credentials{APIKey: key}
	if p == ProviderOpenAI {
		c.Organization = strings.TrimSpace(os.Getenv("OPENAI_ORG_ID"))
	}
	return c, true
}

// ChainAuth returns the first credentials found.
func ChainAuth(providers ...AuthProvider) AuthProvider {
	return AuthFunc(func(p Provider) (Credentials, bool) {
		for _, ap := range providers {
			if ap == nil {
				continue
			}
			if c, ok := ap.Credentials(p); ok {
				return c, true
			}
		}
		return Credentials{}, false
	})
}
