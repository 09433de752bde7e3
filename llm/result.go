package llm

import (
	"encoding/json"
	"net/http"
	"time"
)

type FinishReason string

const (
	FinishReasonStop          FinishReason = "stop"
	FinishReasonLength        FinishReason = "length"
	FinishReasonToolCalls     FinishReason = "tool_calls"
	FinishReasonContentFilter FinishReason = "content_filter"
	FinishReasonUnknown       FinishReason = "unknown"
)

// Choice is one candidate of a result.
//
// Blocking calls fill Message; streamed frames fill Delta.
type Choice struct {
	Index        int
	Message      *Message
	Delta        *Message
	FinishReason FinishReason
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int

	CachedTokens    int
	ReasoningTokens int
}

// ResponseMeta carries transport level details of the response.
type ResponseMeta struct {
	RequestID      string
	ProcessingTime time.Duration
	Header         http.Header

	// Raw is the undecoded body (blocking) or frame (streaming).
	Raw json.RawMessage
}

// ChatResult is a decoded response or stream frame. It is never modified after
// being handed to the caller.
type ChatResult struct {
	ID       string
	Model    string
	Provider Provider
	Created  time.Time

	Choices []Choice
	Usage   *Usage

	Meta ResponseMeta
}

// FirstText returns the text of the first choice's message or delta.
func (r *ChatResult) FirstText() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	c := r.Choices[0]
	if c.Message != nil {
		return c.Message.Text()
	}
	if c.Delta != nil {
		return c.Delta.Text()
	}
	return ""
}

// CallResult is the outcome of a ChatSafe call.
type CallResult struct {
	OK         bool
	StatusCode int
	Result     *ChatResult
	Err        error
}
