package llm

import (
	"encoding/json"
	"strings"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

type ContentPartType string

const (
	ContentPartText  ContentPartType = "text"
	ContentPartImage ContentPartType = "image_url"
	ContentPartAudio ContentPartType = "audio_url"
)

// ContentPart is one segment of a multi-part message.
//
// Image and audio parts carry either a URL (which may be a data: URL) or raw
// Data with its MIME type; adapters pick whichever their vendor accepts.
type ContentPart struct {
	Type ContentPartType

	Text string

	URL    string
	Data   []byte
	MIME   string
	Detail string
}

func TextPart(text string) ContentPart { return ContentPart{Type: ContentPartText, Text: text} }

func ImageURLPart(url string) ContentPart { return ContentPart{Type: ContentPartImage, URL: url} }

func ImageDataPart(mime string, data []byte) ContentPart {
	return ContentPart{Type: ContentPartImage, MIME: mime, Data: data}
}

func AudioURLPart(url string) ContentPart { return ContentPart{Type: ContentPartAudio, URL: url} }

// ToolCall is an assistant issued function call.
//
// In streamed deltas Index identifies the call being extended and Arguments
// holds only the newly received fragment.
type ToolCall struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

// Message is a canonical chat message.
//
// A message is encoded as plain text when Parts is empty and as a structured
// content array otherwise. Tool results use RoleTool with ToolCallID set.
type Message struct {
	Role Role

	// Name 可选的发送者名称，空白时不写入请求
	Name string

	Content string
	Parts   []ContentPart

	ToolCallID string
	ToolCalls  []ToolCall
}

func System(text string) Message    { return Message{Role: RoleSystem, Content: text} }
func User(text string) Message      { return Message{Role: RoleUser, Content: text} }
func Assistant(text string) Message { return Message{Role: RoleAssistant, Content: text} }

// UserParts builds a multi-part user message.
func UserParts(parts ...ContentPart) Message {
	return Message{Role: RoleUser, Parts: parts}
}

func ToolResult(toolCallID, content string) Message {
	return Message{Role: RoleTool, ToolCallID: toolCallID, Content: content}
}

func AssistantToolCalls(calls ...ToolCall) Message {
	return Message{Role: RoleAssistant, ToolCalls: calls}
}

// HasParts reports whether the message must be encoded as a content array.
func (m Message) HasParts() bool { return len(m.Parts) > 0 }

// HasContent reports whether the message carries any text or parts.
func (m Message) HasContent() bool { return m.Content != "" || len(m.Parts) > 0 }

// OmitContent reports whether the content field must be left out of the wire
// message entirely: tool results without content, and assistant messages that
// only carry tool calls.
func (m Message) OmitContent() bool {
	if m.HasContent() {
		return false
	}
	switch m.Role {
	case RoleTool:
		return true
	case RoleAssistant:
		return len(m.ToolCalls) > 0
	default:
		return false
	}
}

// Text returns Content followed by the text of every text part.
func (m Message) Text() string {
	if len(m.Parts) == 0 {
		return m.Content
	}
	var b strings.Builder
	b.WriteString(m.Content)
	for _, p := range m.Parts {
		if p.Type == ContentPartText {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// Tool describes a function the model may call.
type Tool struct {
	Name        string
	Description string
	// Parameters is a JSON schema object.
	Parameters json.RawMessage
	Strict     *bool
}

type ToolChoiceMode string

const (
	ToolChoiceAuto     ToolChoiceMode = "auto"
	ToolChoiceNone     ToolChoiceMode = "none"
	ToolChoiceRequired ToolChoiceMode = "required"
	ToolChoiceFunction ToolChoiceMode = "function"
)

type ToolChoice struct {
	Mode ToolChoiceMode
	// FunctionName is used when Mode is ToolChoiceFunction.
	FunctionName string
}

type ResponseFormatType string

const (
	ResponseFormatText       ResponseFormatType = "text"
	ResponseFormatJSONObject ResponseFormatType = "json_object"
	ResponseFormatJSONSchema ResponseFormatType = "json_schema"
)

type ResponseFormat struct {
	Type ResponseFormatType
	// JSONSchema holds the OpenAI style {"name":..,"schema":..,"strict":..} object.
	JSONSchema json.RawMessage
}

type StreamOptions struct {
	IncludeUsage bool
}
