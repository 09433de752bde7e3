package cohere

import (
	"bytes"
	"encoding/json"

	"github.com/lgc202/llmkit/llm"
	"github.com/lgc202/llmkit/llm/adapter"
)

func decodeFull(body []byte) (*llm.ChatResult, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, adapter.ParseError(llm.ProviderCohere, "chat response", body, err)
	}

	msg := llm.Message{Role: llm.RoleAssistant}
	for _, c := range resp.Message.Content {
		if c.Type == "" || c.Type == "text" {
			msg.Content += c.Text
		}
	}
	for i, tc := range resp.Message.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, llm.ToolCall{
			Index:     i,
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	return &llm.ChatResult{
		ID:       resp.ID,
		Provider: llm.ProviderCohere,
		Choices: []llm.Choice{{
			Message:      &msg,
			FinishReason: mapFinishReason(resp.FinishReason),
		}},
		Usage: mapUsage(resp.Usage),
	}, nil
}

// decodeFrame handles one v2 stream event. message-end carries the finish
// reason and usage and ends the stream.
func decodeFrame(frame []byte) (*llm.ChatResult, bool, error) {
	frame = bytes.TrimSpace(frame)
	if len(frame) == 0 {
		return nil, false, nil
	}

	var ev streamEvent
	if err := json.Unmarshal(frame, &ev); err != nil {
		return nil, false, adapter.ParseError(llm.ProviderCohere, "stream event", frame, err)
	}
	if ev.Delta == nil {
		return nil, false, nil
	}

	switch ev.Type {
	case "message-start":
		return &llm.ChatResult{
			ID:       ev.ID,
			Provider: llm.ProviderCohere,
			Choices:  []llm.Choice{{Delta: &llm.Message{Role: llm.RoleAssistant}}},
		}, false, nil

	case "content-start", "content-delta":
		if ev.Delta.Message == nil || len(ev.Delta.Message.Content) == 0 {
			return nil, false, nil
		}
		var c respContent
		if err := json.Unmarshal(ev.Delta.Message.Content, &c); err != nil {
			return nil, false, adapter.ParseError(llm.ProviderCohere, "content delta", frame, err)
		}
		if c.Text == "" {
			return nil, false, nil
		}
		return delta(llm.Message{Content: c.Text}), false, nil

	case "tool-call-start", "tool-call-delta":
		if ev.Delta.Message == nil || ev.Delta.Message.ToolCalls == nil {
			return nil, false, nil
		}
		tc := ev.Delta.Message.ToolCalls
		return delta(llm.Message{ToolCalls: []llm.ToolCall{{
			Index:     ev.Index,
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		}}}), false, nil

	case "message-end":
		if ev.Delta.Error != "" {
			return nil, false, adapter.StreamError(llm.ProviderCohere, ev.Delta.Error, frame)
		}
		return &llm.ChatResult{
			Provider: llm.ProviderCohere,
			Choices: []llm.Choice{{
				Delta:        &llm.Message{},
				FinishReason: mapFinishReason(ev.Delta.FinishReason),
			}},
			Usage: mapUsage(ev.Delta.Usage),
		}, true, nil

	default:
		// content-end, tool-plan-delta, tool-call-end, citation events
		return nil, false, nil
	}
}

func delta(m llm.Message) *llm.ChatResult {
	return &llm.ChatResult{
		Provider: llm.ProviderCohere,
		Choices:  []llm.Choice{{Delta: &m}},
	}
}

func mapUsage(u *chatUsage) *llm.Usage {
	if u == nil {
		return nil
	}
	counts := u.Tokens
	if counts == nil {
		counts = u.BilledUnits
	}
	if counts == nil {
		return nil
	}
	in, out := int(counts.InputTokens), int(counts.OutputTokens)
	return &llm.Usage{PromptTokens: in, CompletionTokens: out, TotalTokens: in + out}
}

func mapFinishReason(s string) llm.FinishReason {
	switch s {
	case "":
		return ""
	case "COMPLETE", "STOP_SEQUENCE":
		return llm.FinishReasonStop
	case "MAX_TOKENS":
		return llm.FinishReasonLength
	case "TOOL_CALL":
		return llm.FinishReasonToolCalls
	case "ERROR_TOXIC":
		return llm.FinishReasonContentFilter
	default:
		return llm.FinishReasonUnknown
	}
}
