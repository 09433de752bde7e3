package anthropic

import (
	"encoding/base64"
	"strings"

	"github.com/lgc202/llmkit/llm"
	"github.com/lgc202/llmkit/llm/adapter"
)

const messagesPath = "/messages"

func serialize(req llm.ChatRequest) (adapter.Wire, error) {
	body, err := buildRequest(req)
	if err != nil {
		return adapter.Wire{}, err
	}
	b, err := adapter.Encode(body, req.Extensions(llm.ProviderAnthropic))
	if err != nil {
		return adapter.Wire{}, err
	}
	url := messagesPath
	if req.URLOverride != "" {
		url = req.URLOverride
	}
	return adapter.Wire{Body: b, URL: url}, nil
}

func buildRequest(req llm.ChatRequest) (*messagesRequest, error) {
	out := &messagesRequest{
		Model:         req.Model.Name,
		MaxTokens:     DefaultMaxTokens,
		Temperature:   req.Temperature,
		TopP:          req.TopP,
		StopSequences: req.StopSequences,
		Stream:        req.Stream,
	}
	if req.MaxTokens != nil {
		out.MaxTokens = *req.MaxTokens
	}
	if req.User != "" {
		out.Metadata = &wireMetadata{UserID: req.User}
	}

	var system []string
	for _, m := range req.Messages {
		if m.Role == llm.RoleSystem {
			if t := m.Text(); t != "" {
				system = append(system, t)
			}
			continue
		}
		wm, err := mapMessage(m)
		if err != nil {
			return nil, err
		}
		if len(wm.Content) == 0 {
			continue
		}
		if n := len(out.Messages); n > 0 && out.Messages[n-1].Role == wm.Role {
			out.Messages[n-1].Content = append(out.Messages[n-1].Content, wm.Content...)
			continue
		}
		out.Messages = append(out.Messages, wm)
	}
	out.System = strings.Join(system, "\n\n")
	if out.Messages == nil {
		out.Messages = []wireMessage{}
	}

	for _, t := range req.Tools {
		out.Tools = append(out.Tools, wireTool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: adapter.Schema(t),
		})
	}
	if len(out.Tools) > 0 {
		out.ToolChoice = mapToolChoice(req.ToolChoice, req.ParallelToolCalls)
	}
	return out, nil
}

func mapMessage(m llm.Message) (wireMessage, error) {
	switch m.Role {
	case llm.RoleTool:
		return wireMessage{Role: "user", Content: []wireBlock{{
			Type:      "tool_result",
			ToolUseID: m.ToolCallID,
			Content:   m.Text(),
		}}}, nil

	case llm.RoleAssistant:
		wm := wireMessage{Role: "assistant"}
		if t := m.Text(); t != "" {
			wm.Content = append(wm.Content, wireBlock{Type: "text", Text: t})
		}
		for _, tc := range m.ToolCalls {
			wm.Content = append(wm.Content, wireBlock{
				Type:  "tool_use",
				ID:    tc.ID,
				Name:  tc.Name,
				Input: adapter.ToolArgs(tc.Arguments),
			})
		}
		return wm, nil

	default:
		wm := wireMessage{Role: "user"}
		if m.Content != "" {
			wm.Content = append(wm.Content, wireBlock{Type: "text", Text: m.Content})
		}
		for _, p := range m.Parts {
			switch p.Type {
			case llm.ContentPartText:
				if p.Text != "" {
					wm.Content = append(wm.Content, wireBlock{Type: "text", Text: p.Text})
				}
			case llm.ContentPartImage:
				wm.Content = append(wm.Content, wireBlock{Type: "image", Source: imageSourceOf(p)})
			default:
				return wireMessage{}, adapter.UnsupportedError(llm.ProviderAnthropic, "content part "+string(p.Type))
			}
		}
		return wm, nil
	}
}

func imageSourceOf(p llm.ContentPart) *imageSource {
	if len(p.Data) > 0 {
		return &imageSource{
			Type:      "base64",
			MediaType: p.MIME,
			Data:      base64.StdEncoding.EncodeToString(p.Data),
		}
	}
	if mime, data, ok := adapter.SplitDataURL(p.URL); ok {
		return &imageSource{Type: "base64", MediaType: mime, Data: data}
	}
	return &imageSource{Type: "url", URL: p.URL}
}

func mapToolChoice(tc *llm.ToolChoice, parallel *bool) *wireToolChoice {
	if tc == nil && parallel == nil {
		return nil
	}

	out := &wireToolChoice{Type: "auto"}
	if tc != nil {
		switch tc.Mode {
		case llm.ToolChoiceNone:
			return &wireToolChoice{Type: "none"}
		case llm.ToolChoiceRequired:
			out.Type = "any"
		case llm.ToolChoiceFunction:
			out.Type = "tool"
			out.Name = tc.FunctionName
		}
	}
	if parallel != nil && !*parallel {
		disable := true
		out.DisableParallelToolUse = &disable
	}
	return out
}
