package anthropic

import (
	"bytes"
	"encoding/json"

	"github.com/lgc202/llmkit/llm"
	"github.com/lgc202/llmkit/llm/adapter"
)

func decodeFull(body []byte) (*llm.ChatResult, error) {
	var resp messagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, adapter.ParseError(llm.ProviderAnthropic, "message", body, err)
	}

	msg := llm.Message{Role: llm.RoleAssistant}
	for _, b := range resp.Content {
		switch b.Type {
		case "text":
			msg.Content += b.Text
		case "tool_use":
			msg.ToolCalls = append(msg.ToolCalls, llm.ToolCall{
				Index:     len(msg.ToolCalls),
				ID:        b.ID,
				Name:      b.Name,
				Arguments: adapter.JSONText(b.Input),
			})
		}
	}

	return &llm.ChatResult{
		ID:       resp.ID,
		Model:    resp.Model,
		Provider: llm.ProviderAnthropic,
		Choices: []llm.Choice{{
			Message:      &msg,
			FinishReason: mapStopReason(resp.StopReason),
		}},
		Usage: mapUsage(resp.Usage),
	}, nil
}

func decodeFrame(frame []byte) (*llm.ChatResult, bool, error) {
	frame = bytes.TrimSpace(frame)
	if len(frame) == 0 {
		return nil, false, nil
	}

	var ev streamEvent
	if err := json.Unmarshal(frame, &ev); err != nil {
		return nil, false, adapter.ParseError(llm.ProviderAnthropic, "stream event", frame, err)
	}

	switch ev.Type {
	case "message_start":
		if ev.Message == nil {
			return nil, false, nil
		}
		return &llm.ChatResult{
			ID:       ev.Message.ID,
			Model:    ev.Message.Model,
			Provider: llm.ProviderAnthropic,
			Choices:  []llm.Choice{{Delta: &llm.Message{Role: llm.RoleAssistant}}},
			Usage:    mapUsage(ev.Message.Usage),
		}, false, nil

	case "content_block_start":
		if ev.ContentBlock == nil {
			return nil, false, nil
		}
		switch ev.ContentBlock.Type {
		case "tool_use":
			return delta(llm.Message{ToolCalls: []llm.ToolCall{{
				Index: ev.Index,
				ID:    ev.ContentBlock.ID,
				Name:  ev.ContentBlock.Name,
			}}}), false, nil
		case "text":
			if ev.ContentBlock.Text != "" {
				return delta(llm.Message{Content: ev.ContentBlock.Text}), false, nil
			}
		}
		return nil, false, nil

	case "content_block_delta":
		if ev.Delta == nil {
			return nil, false, nil
		}
		switch ev.Delta.Type {
		case "text_delta":
			return delta(llm.Message{Content: ev.Delta.Text}), false, nil
		case "input_json_delta":
			return delta(llm.Message{ToolCalls: []llm.ToolCall{{
				Index:     ev.Index,
				Arguments: ev.Delta.PartialJSON,
			}}}), false, nil
		}
		return nil, false, nil

	case "message_delta":
		res := &llm.ChatResult{
			Provider: llm.ProviderAnthropic,
			Choices:  []llm.Choice{{Delta: &llm.Message{}}},
			Usage:    mapUsage(ev.Usage),
		}
		if ev.Delta != nil {
			res.Choices[0].FinishReason = mapStopReason(ev.Delta.StopReason)
		}
		return res, false, nil

	case "message_stop":
		return nil, true, nil

	case "error":
		msg := ""
		if ev.Error != nil {
			msg = ev.Error.Message
		}
		return nil, false, adapter.StreamError(llm.ProviderAnthropic, msg, frame)

	default:
		// ping, content_block_stop and event types added later
		return nil, false, nil
	}
}

func delta(m llm.Message) *llm.ChatResult {
	return &llm.ChatResult{
		Provider: llm.ProviderAnthropic,
		Choices:  []llm.Choice{{Delta: &m}},
	}
}

func mapUsage(u *messagesUsage) *llm.Usage {
	if u == nil {
		return nil
	}
	return &llm.Usage{
		PromptTokens:     u.InputTokens,
		CompletionTokens: u.OutputTokens,
		TotalTokens:      u.InputTokens + u.OutputTokens,
		CachedTokens:     u.CacheReadInputTokens,
	}
}

func mapStopReason(s string) llm.FinishReason {
	switch s {
	case "":
		return ""
	case "end_turn", "stop_sequence", "pause_turn":
		return llm.FinishReasonStop
	case "max_tokens":
		return llm.FinishReasonLength
	case "tool_use":
		return llm.FinishReasonToolCalls
	case "refusal":
		return llm.FinishReasonContentFilter
	default:
		return llm.FinishReasonUnknown
	}
}
