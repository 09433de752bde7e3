package chat

import (
	"fmt"
	"sync"

	"github.com/lgc202/llmkit/llm"
	"github.com/lgc202/llmkit/llm/adapter"
	"github.com/lgc202/llmkit/llm/adapter/anthropic"
	"github.com/lgc202/llmkit/llm/adapter/cohere"
	"github.com/lgc202/llmkit/llm/adapter/google"
	"github.com/lgc202/llmkit/llm/adapter/openai"
)

// builtin 内置厂商适配器，其余厂商回退到 OpenAI 形状
var builtin = map[llm.Provider]func() adapter.Adapter{
	llm.ProviderOpenAI:    openai.New,
	llm.ProviderGroq:      openai.NewGroq,
	llm.ProviderAnthropic: anthropic.New,
	llm.ProviderCohere:    cohere.New,
	llm.ProviderGoogle:    google.New,
}

// registry resolves and caches one adapter per vendor for a single Client.
type registry struct {
	custom   map[llm.Provider]adapter.Adapter
	baseURLs map[llm.Provider]string

	mu    sync.Mutex
	cells map[llm.Provider]*registryCell
}

type registryCell struct {
	once sync.Once
	a    adapter.Adapter
	err  error
}

func newRegistry(custom map[llm.Provider]adapter.Adapter, baseURLs map[llm.Provider]string) *registry {
	return &registry{
		custom:   custom,
		baseURLs: baseURLs,
		cells:    make(map[llm.Provider]*registryCell),
	}
}

// resolve returns the adapter for p, constructing it on first use.
func (r *registry) resolve(p llm.Provider) (adapter.Adapter, error) {
	r.mu.Lock()
	c, ok := r.cells[p]
	if !ok {
		c = &registryCell{}
		r.cells[p] = c
	}
	r.mu.Unlock()

	c.once.Do(func() {
		c.a, c.err = r.build(p)
	})
	return c.a, c.err
}

func (r *registry) build(p llm.Provider) (adapter.Adapter, error) {
	var a adapter.Adapter
	if custom, ok := r.custom[p]; ok {
		a = custom
	} else if ctor, ok := builtin[p]; ok {
		a = ctor()
	} else {
		a = openai.Fallback(p)
	}

	if u := r.baseURLs[p]; u != "" {
		a.BaseURL = u
	}
	if err := a.Validate(); err != nil {
		return adapter.Adapter{}, fmt.Errorf("chat: adapter for %s: %w", p, err)
	}
	return a, nil
}

// Registered reports whether p has a dedicated adapter in this client.
func (c *Client) Registered(p llm.Provider) bool {
	if _, ok := c.registry.custom[p]; ok {
		return true
	}
	_, ok := builtin[p]
	return ok
}
