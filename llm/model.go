package llm

import "sync"

// DefaultModel is used when neither the request nor the client defaults name a model.
var DefaultModel = Model{Name: "gpt-4o-mini", Provider: ProviderOpenAI, ContextTokens: 128_000}

// Model identifies a model together with the vendor that serves it.
type Model struct {
	Name     string
	Provider Provider

	// ContextTokens 上下文窗口大小，未知时为 0
	ContextTokens int

	// Reasoning marks models that only accept max_completion_tokens.
	Reasoning bool
}

// ModelName is shorthand for a model known only by name; the vendor is
// resolved through the client's Catalog.
func ModelName(name string) Model { return Model{Name: name} }

func (m Model) IsZero() bool { return m.Name == "" }

func (m Model) String() string {
	if m.Provider == "" {
		return m.Name
	}
	return string(m.Provider) + "/" + m.Name
}

// Catalog resolves model names to vendor metadata.
type Catalog interface {
	Lookup(name string) (Model, bool)
}

// StaticCatalog is a concurrency-safe in-memory Catalog.
type StaticCatalog struct {
	mu     sync.RWMutex
	models map[string]Model
}

func NewStaticCatalog(models ...Model) *StaticCatalog {
	c := &StaticCatalog{models: make(map[string]Model, len(models))}
	for _, m := range models {
		c.models[m.Name] = m
	}
	return c
}

func (c *StaticCatalog) Lookup(name string) (Model, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.models[name]
	return m, ok
}

// Register adds or replaces a model.
func (c *StaticCatalog) Register(m Model) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.models[m.Name] = m
}

var (
	defaultCatalogOnce sync.Once
	defaultCatalog     *StaticCatalog
)

// DefaultCatalog returns a catalog of commonly used models.
func DefaultCatalog() *StaticCatalog {
	defaultCatalogOnce.Do(func() {
		defaultCatalog = NewStaticCatalog(
			Model{Name: "gpt-4o", Provider: ProviderOpenAI, ContextTokens: 128_000},
			Model{Name: "gpt-4o-mini", Provider: ProviderOpenAI, ContextTokens: 128_000},
			Model{Name: "gpt-4-turbo", Provider: ProviderOpenAI, ContextTokens: 128_000},
			Model{Name: "gpt-3.5-turbo", Provider: ProviderOpenAI, ContextTokens: 16_385},
			Model{Name: "o1-preview", Provider: ProviderOpenAI, ContextTokens: 128_000, Reasoning: true},
			Model{Name: "o1-mini", Provider: ProviderOpenAI, ContextTokens: 128_000, Reasoning: true},

			Model{Name: "claude-3-5-sonnet-20240620", Provider: ProviderAnthropic, ContextTokens: 200_000},
			Model{Name: "claude-3-opus-20240229", Provider: ProviderAnthropic, ContextTokens: 200_000},
			Model{Name: "claude-3-haiku-20240307", Provider: ProviderAnthropic, ContextTokens: 200_000},

			Model{Name: "command-r-plus", Provider: ProviderCohere, ContextTokens: 128_000},
			Model{Name: "command-r", Provider: ProviderCohere, ContextTokens: 128_000},
			Model{Name: "command", Provider: ProviderCohere, ContextTokens: 4_000},
			Model{Name: "command-light", Provider: ProviderCohere, ContextTokens: 4_000},

			Model{Name: "gemini-1.5-pro", Provider: ProviderGoogle, ContextTokens: 2_097_152},
			Model{Name: "gemini-1.5-flash", Provider: ProviderGoogle, ContextTokens: 1_048_576},

			Model{Name: "llama-3.1-70b-versatile", Provider: ProviderGroq, ContextTokens: 131_072},
			Model{Name: "llama-3.1-8b-instant", Provider: ProviderGroq, ContextTokens: 131_072},
			Model{Name: "mixtral-8x7b-32768", Provider: ProviderGroq, ContextTokens: 32_768},
		)
	})
	return defaultCatalog
}
