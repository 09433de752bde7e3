package transport

import (
	"net/http"
	"sync"

	"github.com/lgc202/llmkit/httpx"
	"github.com/lgc202/llmkit/llm"
)

// Factory builds the pooled client for one vendor. It is invoked at most once
// per vendor and Pool.
type Factory func(p llm.Provider) *http.Client

// HTTPXFactory returns a Factory building every vendor client with httpx.
// No client level timeout is set; Core bounds calls with contexts.
func HTTPXFactory(opts ...httpx.Option) Factory {
	return func(llm.Provider) *http.Client {
		return httpx.NewClient(opts...)
	}
}

// Pool lazily constructs and caches one *http.Client per vendor.
type Pool struct {
	factory Factory

	mu    sync.Mutex
	cells map[llm.Provider]*poolCell
}

type poolCell struct {
	once   sync.Once
	client *http.Client
}

func NewPool(f Factory) *Pool {
	if f == nil {
		f = HTTPXFactory()
	}
	return &Pool{factory: f, cells: make(map[llm.Provider]*poolCell)}
}

// Client returns the client for p, building it on first use. Concurrent first
// calls for the same vendor share one factory invocation.
func (p *Pool) Client(provider llm.Provider) *http.Client {
	p.mu.Lock()
	c, ok := p.cells[provider]
	if !ok {
		c = &poolCell{}
		p.cells[provider] = c
	}
	p.mu.Unlock()

	c.once.Do(func() {
		c.client = p.factory(provider)
		if c.client == nil {
			c.client = httpx.NewClient()
		}
	})
	return c.client
}
