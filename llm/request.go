package llm

// MaxTokensField selects the wire name of the token limit.
type MaxTokensField int

const (
	// MaxTokensAuto picks max_completion_tokens for reasoning models and max_tokens otherwise.
	MaxTokensAuto MaxTokensField = iota
	MaxTokensLegacy
	MaxTokensCompletion
)

// ChatRequest is the canonical, vendor neutral request.
//
// Pointer, slice and map fields are "not set" when nil; Merge relies on that.
type ChatRequest struct {
	Model    Model
	Messages []Message

	Temperature      *float64
	TopP             *float64
	MaxTokens        *int
	FrequencyPenalty *float64
	PresencePenalty  *float64
	Seed             *int64
	LogitBias        map[string]float64

	// StopSequences 与 Stop/SetStop 始终保持一致
	StopSequences []string

	Tools             []Tool
	ToolChoice        *ToolChoice
	ParallelToolCalls *bool

	// N 每条消息生成的候选数
	N    *int
	User string

	ResponseFormat *ResponseFormat
	StreamOptions  *StreamOptions

	// Stream is set by the client for streaming calls. Chat and ChatStream
	// overwrite it, so a value set by callers has no effect there.
	Stream bool

	MaxTokensField MaxTokensField

	// VendorExtensions carries vendor specific top-level fields that have no
	// canonical representation. Only the entry of the resolved vendor is sent.
	VendorExtensions map[Provider]map[string]any

	// URLOverride replaces the endpoint URL computed by the adapter.
	URLOverride string
}

// Stop returns the first stop sequence, or "" when none is set.
func (r *ChatRequest) Stop() string {
	if len(r.StopSequences) == 0 {
		return ""
	}
	return r.StopSequences[0]
}

// SetStop replaces the stop sequences with the single value s.
// An empty s clears them.
func (r *ChatRequest) SetStop(s string) {
	if s == "" {
		r.StopSequences = nil
		return
	}
	r.StopSequences = []string{s}
}

// Extensions returns the extension bag for provider p.
func (r *ChatRequest) Extensions(p Provider) map[string]any {
	if r.VendorExtensions == nil {
		return nil
	}
	return r.VendorExtensions[p]
}

// Merge returns base with every field explicitly set in overrides replacing
// the corresponding base field. The message list is shared, not copied.
//
// Stream is a plain bool, so overrides can turn it on but never off; callers
// that need it off set it on the result.
func Merge(base, overrides ChatRequest) ChatRequest {
	out := base

	if !overrides.Model.IsZero() {
		out.Model = overrides.Model
	}
	if overrides.Messages != nil {
		out.Messages = overrides.Messages
	}
	if overrides.Temperature != nil {
		out.Temperature = overrides.Temperature
	}
	if overrides.TopP != nil {
		out.TopP = overrides.TopP
	}
	if overrides.MaxTokens != nil {
		out.MaxTokens = overrides.MaxTokens
	}
	if overrides.FrequencyPenalty != nil {
		out.FrequencyPenalty = overrides.FrequencyPenalty
	}
	if overrides.PresencePenalty != nil {
		out.PresencePenalty = overrides.PresencePenalty
	}
	if overrides.Seed != nil {
		out.Seed = overrides.Seed
	}
	if overrides.LogitBias != nil {
		out.LogitBias = overrides.LogitBias
	}
	if overrides.StopSequences != nil {
		out.StopSequences = overrides.StopSequences
	}
	if overrides.Tools != nil {
		out.Tools = overrides.Tools
	}
	if overrides.ToolChoice != nil {
		out.ToolChoice = overrides.ToolChoice
	}
	if overrides.ParallelToolCalls != nil {
		out.ParallelToolCalls = overrides.ParallelToolCalls
	}
	if overrides.N != nil {
		out.N = overrides.N
	}
	if overrides.User != "" {
		out.User = overrides.User
	}
	if overrides.ResponseFormat != nil {
		out.ResponseFormat = overrides.ResponseFormat
	}
	if overrides.StreamOptions != nil {
		out.StreamOptions = overrides.StreamOptions
	}
	if overrides.Stream {
		out.Stream = true
	}
	if overrides.MaxTokensField != MaxTokensAuto {
		out.MaxTokensField = overrides.MaxTokensField
	}
	if overrides.VendorExtensions != nil {
		out.VendorExtensions = overrides.VendorExtensions
	}
	if overrides.URLOverride != "" {
		out.URLOverride = overrides.URLOverride
	}
	return out
}

// RequestOption mutates a ChatRequest.
type RequestOption func(*ChatRequest)

// NewRequest returns a request based on base with opts applied on top.
// A nil base starts from the zero request.
func NewRequest(base *ChatRequest, opts ...RequestOption) ChatRequest {
	var req ChatRequest
	if base != nil {
		req = *base
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&req)
		}
	}
	return req
}

func WithModel(name string) RequestOption {
	return func(r *ChatRequest) { r.Model = ModelName(name) }
}

// WithModelInfo 设置带厂商信息的模型
func WithModelInfo(m Model) RequestOption {
	return func(r *ChatRequest) { r.Model = m }
}

func WithMessages(messages ...Message) RequestOption {
	return func(r *ChatRequest) { r.Messages = messages }
}

func WithTemperature(v float64) RequestOption {
	return func(r *ChatRequest) { r.Temperature = &v }
}

// WithTopP 设置核采样阈值（0-1）
func WithTopP(v float64) RequestOption {
	return func(r *ChatRequest) { r.TopP = &v }
}

func WithMaxTokens(v int) RequestOption {
	return func(r *ChatRequest) { r.MaxTokens = &v }
}

func WithMaxTokensField(f MaxTokensField) RequestOption {
	return func(r *ChatRequest) { r.MaxTokensField = f }
}

func WithFrequencyPenalty(v float64) RequestOption {
	return func(r *ChatRequest) { r.FrequencyPenalty = &v }
}

func WithPresencePenalty(v float64) RequestOption {
	return func(r *ChatRequest) { r.PresencePenalty = &v }
}

func WithSeed(v int64) RequestOption {
	return func(r *ChatRequest) { r.Seed = &v }
}

func WithLogitBias(bias map[string]float64) RequestOption {
	return func(r *ChatRequest) { r.LogitBias = bias }
}

func WithStop(stop ...string) RequestOption {
	return func(r *ChatRequest) {
		if len(stop) == 0 {
			r.StopSequences = nil
			return
		}
		r.StopSequences = append([]string(nil), stop...)
	}
}

func WithTools(tools ...Tool) RequestOption {
	return func(r *ChatRequest) { r.Tools = append([]Tool(nil), tools...) }
}

func WithToolChoice(choice ToolChoice) RequestOption {
	return func(r *ChatRequest) { r.ToolChoice = &choice }
}

func WithParallelToolCalls(enabled bool) RequestOption {
	return func(r *ChatRequest) { r.ParallelToolCalls = &enabled }
}

// WithN 设置候选数量
func WithN(n int) RequestOption {
	return func(r *ChatRequest) { r.N = &n }
}

func WithUser(user string) RequestOption {
	return func(r *ChatRequest) { r.User = user }
}

func WithResponseFormatJSONObject() RequestOption {
	return func(r *ChatRequest) { r.ResponseFormat = &ResponseFormat{Type: ResponseFormatJSONObject} }
}

func WithResponseFormatJSONSchema(schema []byte) RequestOption {
	return func(r *ChatRequest) {
		r.ResponseFormat = &ResponseFormat{Type: ResponseFormatJSONSchema, JSONSchema: append([]byte(nil), schema...)}
	}
}

func WithStreamIncludeUsage(enabled bool) RequestOption {
	return func(r *ChatRequest) { r.StreamOptions = &StreamOptions{IncludeUsage: enabled} }
}

// WithVendorExtension sets a top-level body field sent only to provider p.
func WithVendorExtension(p Provider, key string, value any) RequestOption {
	return func(r *ChatRequest) {
		exts := make(map[Provider]map[string]any, len(r.VendorExtensions)+1)
		for k, v := range r.VendorExtensions {
			exts[k] = v
		}
		bag := make(map[string]any, len(exts[p])+1)
		for k, v := range exts[p] {
			bag[k] = v
		}
		bag[key] = value
		exts[p] = bag
		r.VendorExtensions = exts
	}
}

func WithURLOverride(url string) RequestOption {
	return func(r *ChatRequest) { r.URLOverride = url }
}
