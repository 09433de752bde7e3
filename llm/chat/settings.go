package chat

import (
	"strings"
	"time"

	"github.com/lgc202/llmkit/config"
	"github.com/lgc202/llmkit/httpx"
	"github.com/lgc202/llmkit/llm"
)

// EnvPrefix is the environment prefix of settings keys, e.g.
// LLMKIT_PROVIDERS_OPENAI_API_KEY.
const EnvPrefix = "LLMKIT"

// Settings is the file form of a client configuration.
//
//	timeout: 120s
//	default_model: claude-3-haiku-20240307
//	transport:
//	  proxy_url: http://proxy.internal:3128
//	providers:
//	  anthropic:
//	    api_key: sk-ant-...
//	  deepseek:
//	    api_key: sk-...
//	    base_url: https://api.deepseek.com
type Settings struct {
	Timeout      time.Duration               `mapstructure:"timeout"`
	UserAgent    string                      `mapstructure:"user_agent"`
	DefaultModel string                      `mapstructure:"default_model"`
	Providers    map[string]ProviderSettings `mapstructure:"providers"`

	Transport httpx.TransportConfig `mapstructure:"transport"`
}

type ProviderSettings struct {
	APIKey       string `mapstructure:"api_key"`
	Organization string `mapstructure:"organization"`
	BaseURL      string `mapstructure:"base_url"`
}

// LoadSettings reads settings from path with LLMKIT_ environment overrides.
// The file is watched; see SettingsAuth for picking up rotated keys.
func LoadSettings(path string, opts ...config.Option[Settings]) (*config.Config[Settings], error) {
	all := append([]config.Option[Settings]{
		config.WithEnv[Settings](EnvPrefix),
	}, opts...)
	return config.Load[Settings](path, all...)
}

// Provider returns the settings of provider p.
func (s Settings) Provider(p llm.Provider) (ProviderSettings, bool) {
	for name, ps := range s.Providers {
		if llm.ParseProvider(name) == p {
			return ps, true
		}
	}
	return ProviderSettings{}, false
}

// Options turns s into client options. Credentials are captured as they are
// now, with the environment as fallback; a later WithAuth(SettingsAuth(cfg))
// replaces them to follow changes on disk.
func (s Settings) Options() []Option {
	var opts []Option
	if s.Timeout > 0 {
		opts = append(opts, WithTimeout(s.Timeout))
	}
	if ua := strings.TrimSpace(s.UserAgent); ua != "" {
		opts = append(opts, WithUserAgent(ua))
	}
	if m := strings.TrimSpace(s.DefaultModel); m != "" {
		opts = append(opts, WithDefaults(llm.NewRequest(nil, llm.WithModel(m))))
	}

	if !s.Transport.IsZero() {
		opts = append(opts, WithTransportConfig(s.Transport))
	}

	keys := llm.NewStaticAuth()
	for name, ps := range s.Providers {
		p := llm.ParseProvider(name)
		if ps.BaseURL != "" {
			opts = append(opts, WithBaseURL(p, ps.BaseURL))
		}
		if ps.APIKey != "" {
			keys.Set(p, llm.Credentials{APIKey: ps.APIKey, Organization: ps.Organization})
		}
	}
	return append(opts, WithAuth(llm.ChainAuth(keys, llm.EnvAuth{})))
}

// SettingsAuth reads credentials from the live configuration on every call.
func SettingsAuth(cfg *config.Config[Settings]) llm.AuthProvider {
	return llm.AuthFunc(func(p llm.Provider) (llm.Credentials, bool) {
		ps, ok := cfg.Get().Provider(p)
		if !ok || ps.APIKey == "" {
			return llm.Credentials{}, false
		}
		return llm.Credentials{APIKey: ps.APIKey, Organization: ps.Organization}, true
	})
}
