package cohere

import "encoding/json"

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
	Stream   bool          `json:"stream,omitempty"`

	Temperature      *float64 `json:"temperature,omitempty"`
	P                *float64 `json:"p,omitempty"`
	MaxTokens        *int     `json:"max_tokens,omitempty"`
	StopSequences    []string `json:"stop_sequences,omitempty"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty"`
	Seed             *int64   `json:"seed,omitempty"`

	Tools          []wireTool          `json:"tools,omitempty"`
	ToolChoice     string              `json:"tool_choice,omitempty"`
	ResponseFormat *wireResponseFormat `json:"response_format,omitempty"`
}

// wireMessage.Content is a string or a []wirePart.
type wireMessage struct {
	Role       string         `json:"role"`
	Content    any            `json:"content,omitempty"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type wirePart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *wireImageURL `json:"image_url,omitempty"`
}

type wireImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type wireToolCall struct {
	ID       string       `json:"id,omitempty"`
	Type     string       `json:"type,omitempty"`
	Function wireFunction `json:"function"`
}

type wireFunction struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments"`
}

type wireTool struct {
	Type     string          `json:"type"`
	Function wireFunctionDef `json:"function"`
}

type wireFunctionDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters"`
}

type wireResponseFormat struct {
	Type       string          `json:"type"`
	JSONSchema json.RawMessage `json:"json_schema,omitempty"`
}

type chatResponse struct {
	ID           string      `json:"id"`
	FinishReason string      `json:"finish_reason"`
	Message      respMessage `json:"message"`
	Usage        *chatUsage  `json:"usage,omitempty"`
}

type respMessage struct {
	Role      string         `json:"role"`
	Content   []respContent  `json:"content"`
	ToolCalls []wireToolCall `json:"tool_calls"`
	ToolPlan  string         `json:"tool_plan"`
}

type respContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type chatUsage struct {
	BilledUnits *tokenCounts `json:"billed_units,omitempty"`
	Tokens      *tokenCounts `json:"tokens,omitempty"`
}

type tokenCounts struct {
	InputTokens  float64 `json:"input_tokens"`
	OutputTokens float64 `json:"output_tokens"`
}

// streamEvent is the union of the v2 chat stream events.
type streamEvent struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Index int    `json:"index"`

	Delta *struct {
		Message *struct {
			Role      string          `json:"role"`
			Content   json.RawMessage `json:"content"`
			ToolCalls *wireToolCall   `json:"tool_calls"`
		} `json:"message"`
		FinishReason string     `json:"finish_reason"`
		Usage        *chatUsage `json:"usage"`
		Error        string     `json:"error"`
	} `json:"delta,omitempty"`
}
