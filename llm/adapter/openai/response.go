package openai

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/lgc202/llmkit/llm"
	"github.com/lgc202/llmkit/llm/adapter"
)

var doneMarker = []byte("[DONE]")

func decodeFull(p llm.Provider) func([]byte) (*llm.ChatResult, error) {
	return func(body []byte) (*llm.ChatResult, error) {
		var resp chatCompletionResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, adapter.ParseError(p, "chat completion", body, err)
		}

		out := &llm.ChatResult{
			ID:       resp.ID,
			Model:    resp.Model,
			Provider: p,
			Created:  unixTime(resp.Created),
			Usage:    mapUsage(resp.Usage),
		}
		for _, c := range resp.Choices {
			msg := mapDelta(c.Message)
			if msg.Role == "" {
				msg.Role = llm.RoleAssistant
			}
			out.Choices = append(out.Choices, llm.Choice{
				Index:        c.Index,
				Message:      &msg,
				FinishReason: mapFinishReason(c.FinishReason),
			})
		}
		return out, nil
	}
}

func decodeFrame(p llm.Provider) func([]byte) (*llm.ChatResult, bool, error) {
	return func(frame []byte) (*llm.ChatResult, bool, error) {
		frame = bytes.TrimSpace(frame)
		if len(frame) == 0 {
			return nil, false, nil
		}
		if bytes.Equal(frame, doneMarker) {
			return nil, true, nil
		}

		var chunk chatCompletionChunk
		if err := json.Unmarshal(frame, &chunk); err != nil {
			return nil, false, adapter.ParseError(p, "stream chunk", frame, err)
		}
		if chunk.Error != nil {
			return nil, false, adapter.StreamError(p, chunk.Error.Message, frame)
		}
		if len(chunk.Choices) == 0 && chunk.Usage == nil {
			return nil, false, nil
		}

		out := &llm.ChatResult{
			ID:       chunk.ID,
			Model:    chunk.Model,
			Provider: p,
			Created:  unixTime(chunk.Created),
			Usage:    mapUsage(chunk.Usage),
		}
		for _, c := range chunk.Choices {
			d := mapDelta(c.Delta)
			ch := llm.Choice{Index: c.Index, Delta: &d}
			if c.FinishReason != nil && *c.FinishReason != "" {
				ch.FinishReason = mapFinishReason(*c.FinishReason)
			}
			out.Choices = append(out.Choices, ch)
		}
		return out, false, nil
	}
}

func mapDelta(d wireRespDelta) llm.Message {
	m := llm.Message{Role: llm.Role(d.Role)}
	if d.Content != nil {
		m.Content = *d.Content
	} else if d.Refusal != nil {
		m.Content = *d.Refusal
	}
	for i, tc := range d.ToolCalls {
		idx := i
		if tc.Index != nil {
			idx = *tc.Index
		}
		m.ToolCalls = append(m.ToolCalls, llm.ToolCall{
			Index:     idx,
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return m
}

func mapUsage(u *chatCompletionUsage) *llm.Usage {
	if u == nil {
		return nil
	}
	out := &llm.Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
	if u.PromptTokensDetails != nil {
		out.CachedTokens = u.PromptTokensDetails.CachedTokens
	}
	if u.CompletionTokensDetails != nil {
		out.ReasoningTokens = u.CompletionTokensDetails.ReasoningTokens
	}
	return out
}

func mapFinishReason(s string) llm.FinishReason {
	switch s {
	case "":
		return ""
	case "stop":
		return llm.FinishReasonStop
	case "length":
		return llm.FinishReasonLength
	case "tool_calls", "function_call":
		return llm.FinishReasonToolCalls
	case "content_filter":
		return llm.FinishReasonContentFilter
	default:
		return llm.FinishReasonUnknown
	}
}

func unixTime(sec int64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
