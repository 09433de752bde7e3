package cohere

import (
	"github.com/lgc202/llmkit/llm"
	"github.com/lgc202/llmkit/llm/adapter"
)

const chatPath = "/chat"

func serialize(req llm.ChatRequest) (adapter.Wire, error) {
	body, err := buildRequest(req)
	if err != nil {
		return adapter.Wire{}, err
	}
	b, err := adapter.Encode(body, req.Extensions(llm.ProviderCohere))
	if err != nil {
		return adapter.Wire{}, err
	}
	url := chatPath
	if req.URLOverride != "" {
		url = req.URLOverride
	}
	return adapter.Wire{Body: b, URL: url}, nil
}

func buildRequest(req llm.ChatRequest) (*chatRequest, error) {
	out := &chatRequest{
		Model:            req.Model.Name,
		Stream:           req.Stream,
		Temperature:      req.Temperature,
		P:                req.TopP,
		MaxTokens:        req.MaxTokens,
		StopSequences:    req.StopSequences,
		FrequencyPenalty: req.FrequencyPenalty,
		PresencePenalty:  req.PresencePenalty,
		Seed:             req.Seed,
	}

	out.Messages = make([]wireMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		wm, err := mapMessage(m)
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
			},
		})
	}
	if req.ToolChoice != nil {
		switch req.ToolChoice.Mode {
		case llm.ToolChoiceNone:
			out.ToolChoice = "NONE"
		case llm.ToolChoiceRequired, llm.ToolChoiceFunction:
			// no named function forcing in v2; REQUIRED is the closest
			out.ToolChoice = "REQUIRED"
		}
	}

	if rf := req.ResponseFormat; rf != nil && rf.Type != llm.ResponseFormatText {
		out.ResponseFormat = &wireResponseFormat{Type: "json_object"}
		if rf.Type == llm.ResponseFormatJSONSchema {
			out.ResponseFormat.JSONSchema = adapter.SchemaBody(rf.JSONSchema)
		}
	}
	return out, nil
}

func mapMessage(m llm.Message) (wireMessage, error) {
	wm := wireMessage{Role: string(m.Role)}

	switch m.Role {
	case llm.RoleTool:
		wm.ToolCallID = m.ToolCallID
	case llm.RoleAssistant:
		for _, tc := range m.ToolCalls {
			wm.ToolCalls = append(wm.ToolCalls, wireToolCall{
				ID:       tc.ID,
				Type:     "function",
				Function: wireFunction{Name: tc.Name, Arguments: tc.Arguments},
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
	for _, p := range m.Parts {
		switch p.Type {
		case llm.ContentPartText:
			parts = append(parts, wirePart{Type: "text", Text: p.Text})
		case llm.ContentPartImage:
			parts = append(parts, wirePart{
				Type:     "image_url",
				ImageURL: &wireImageURL{URL: adapter.PartURL(p), Detail: p.Detail},
			})
		default:
			return wireMessage{}, adapter.UnsupportedError(llm.ProviderCohere, "content part "+string(p.Type))
		}
	}
	wm.Content = parts
	return wm, nil
}
