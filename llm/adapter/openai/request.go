package openai

import (
	"encoding/base64"
	"strings"

	"github.com/lgc202/llmkit/llm"
	"github.com/lgc202/llmkit/llm/adapter"
)

const chatPath = "/chat/completions"

func serializer(p llm.Provider, strip func(*llm.ChatRequest)) func(llm.ChatRequest) (adapter.Wire, error) {
	return func(req llm.ChatRequest) (adapter.Wire, error) {
		// req is a private copy; strip may clear fields on it freely.
		if strip != nil {
			strip(&req)
		}
		body, err := buildRequest(p, req)
		if err != nil {
			return adapter.Wire{}, err
		}
		b, err := adapter.Encode(body, req.Extensions(p))
		if err != nil {
			return adapter.Wire{}, err
		}
		url := chatPath
		if req.URLOverride != "" {
			url = req.URLOverride
		}
		return adapter.Wire{Body: b, URL: url}, nil
	}
}

func buildRequest(p llm.Provider, req llm.ChatRequest) (*chatRequest, error) {
	out := &chatRequest{
		Model:             req.Model.Name,
		Temperature:       req.Temperature,
		TopP:              req.TopP,
		N:                 req.N,
		Stream:            req.Stream,
		PresencePenalty:   req.PresencePenalty,
		FrequencyPenalty:  req.FrequencyPenalty,
		LogitBias:         req.LogitBias,
		User:              req.User,
		Seed:              req.Seed,
		ParallelToolCalls: req.ParallelToolCalls,
		Stop:              compileStop(req.StopSequences),
	}

	if useCompletionTokens(req) {
		out.MaxCompletionTokens = req.MaxTokens
	} else {
		out.MaxTokens = req.MaxTokens
	}

	if req.Stream && req.StreamOptions != nil {
		out.StreamOptions = &wireStreamOptions{IncludeUsage: req.StreamOptions.IncludeUsage}
	}

	out.Messages = make([]wireMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		wm, err := mapMessage(p, m)
		if err != nil {
			return nil, err
		}
		out.Messages = append(out.Messages, wm)
	}

	for _, t := range req.Tools {
		out.Tools = append(out.Tools, wireTool{
			Type: "function",
			Function: wireFunctionDef{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  adapter.Schema(t),
				Strict:      t.Strict,
			},
		})
	}
	if req.ToolChoice != nil {
		out.ToolChoice = mapToolChoice(*req.ToolChoice)
	}
	if rf := req.ResponseFormat; rf != nil {
		out.ResponseFormat = &wireResponseFormat{Type: string(rf.Type)}
		if rf.Type == llm.ResponseFormatJSONSchema {
			out.ResponseFormat.JSONSchema = rf.JSONSchema
		}
	}
	return out, nil
}

// compileStop sends a single sequence as a string and several as an array.
func compileStop(stop []string) any {
	switch len(stop) {
	case 0:
		return nil
	case 1:
		return stop[0]
	default:
		return stop
	}
}

func useCompletionTokens(req llm.ChatRequest) bool {
	switch req.MaxTokensField {
	case llm.MaxTokensCompletion:
		return true
	case llm.MaxTokensLegacy:
		return false
	default:
		return req.Model.Reasoning
	}
}

func mapMessage(p llm.Provider, m llm.Message) (wireMessage, error) {
	wm := wireMessage{Role: string(m.Role)}
	if strings.TrimSpace(m.Name) != "" {
		wm.Name = m.Name
	}

	switch m.Role {
	case llm.RoleTool:
		wm.ToolCallID = m.ToolCallID
	case llm.RoleAssistant:
		for _, tc := range m.ToolCalls {
			wm.ToolCalls = append(wm.ToolCalls, wireToolCall{
				ID:   tc.ID,
				Type: "function",
				Function: wireFunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
	}

	if m.OmitContent() {
		return wm, nil
	}
	if !m.HasParts() {
		wm.Content = m.Content
		return wm, nil
	}

	parts := make([]wirePart, 0, len(m.Parts)+1)
	if m.Content != "" {
		parts = append(parts, wirePart{Type: "text", Text: m.Content})
	}
	for _, part := range m.Parts {
		switch part.Type {
		case llm.ContentPartText:
			parts = append(parts, wirePart{Type: "text", Text: part.Text})
		case llm.ContentPartImage:
			parts = append(parts, wirePart{
				Type:     "image_url",
				ImageURL: &wireImageURL{URL: adapter.PartURL(part), Detail: part.Detail},
			})
		case llm.ContentPartAudio:
			if len(part.Data) == 0 {
				return wireMessage{}, adapter.UnsupportedError(p, "audio by url")
			}
			parts = append(parts, wirePart{
				Type: "input_audio",
				InputAudio: &wireInputAudio{
					Data:   base64.StdEncoding.EncodeToString(part.Data),
					Format: audioFormat(part.MIME),
				},
			})
		default:
			return wireMessage{}, adapter.UnsupportedError(p, "content part "+string(part.Type))
		}
	}
	wm.Content = parts
	return wm, nil
}

func audioFormat(mime string) string {
	switch {
	case strings.Contains(mime, "mpeg"), strings.Contains(mime, "mp3"):
		return "mp3"
	default:
		return "wav"
	}
}

func mapToolChoice(tc llm.ToolChoice) any {
	switch tc.Mode {
	case llm.ToolChoiceNone:
		return "none"
	case llm.ToolChoiceRequired:
		return "required"
	case llm.ToolChoiceFunction:
		return map[string]any{
			"type": "function",
			"function": map[string]any{
				"name": tc.FunctionName,
			},
		}
	default:
		return "auto"
	}
}
