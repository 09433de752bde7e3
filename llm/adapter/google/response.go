package google

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/lgc202/llmkit/llm"
	"github.com/lgc202/llmkit/llm/adapter"
)

func decodeFull(body []byte) (*llm.ChatResult, error) {
	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, adapter.ParseError(llm.ProviderGoogle, "generateContent response", body, err)
	}
	return mapResponse(resp, false, callCounter{}), nil
}

// Gemini numbers nothing across chunks: every chunk's function calls start
// over at zero. callCounter hands out call indices per candidate so that calls
// from later chunks do not land on the slots of earlier ones.
type callCounter map[int]int

func (c callCounter) next(candidate int) int {
	n := c[candidate]
	c[candidate] = n + 1
	return n
}

// newFrameDecoder returns a decoder that numbers tool calls across the whole
// stream.
func newFrameDecoder() func([]byte) (*llm.ChatResult, bool, error) {
	calls := callCounter{}
	return func(frame []byte) (*llm.ChatResult, bool, error) {
		return decodeChunk(frame, calls)
	}
}

// decodeFrame decodes one streamed chunk on its own. Gemini ends the stream
// by closing the connection, so done is never reported.
func decodeFrame(frame []byte) (*llm.ChatResult, bool, error) {
	return decodeChunk(frame, callCounter{})
}

func decodeChunk(frame []byte, calls callCounter) (*llm.ChatResult, bool, error) {
	frame = bytes.TrimSpace(frame)
	if len(frame) == 0 {
		return nil, false, nil
	}

	var resp generateResponse
	if err := json.Unmarshal(frame, &resp); err != nil {
		return nil, false, adapter.ParseError(llm.ProviderGoogle, "stream chunk", frame, err)
	}
	if resp.Error != nil {
		return nil, false, adapter.StreamError(llm.ProviderGoogle, resp.Error.Message, frame)
	}
	if len(resp.Candidates) == 0 && resp.UsageMetadata == nil && resp.PromptFeedback == nil {
		return nil, false, nil
	}
	return mapResponse(resp, true, calls), false, nil
}

func mapResponse(resp generateResponse, stream bool, calls callCounter) *llm.ChatResult {
	out := &llm.ChatResult{
		ID:       resp.ResponseID,
		Model:    resp.ModelVersion,
		Provider: llm.ProviderGoogle,
		Usage:    mapUsage(resp.UsageMetadata),
	}

	for _, c := range resp.Candidates {
		msg := llm.Message{}
		if !stream {
			msg.Role = llm.RoleAssistant
		}
		if c.Content != nil {
			for _, p := range c.Content.Parts {
				switch {
				case p.FunctionCall != nil:
					n := calls.next(c.Index)
					id := p.FunctionCall.ID
					if id == "" {
						id = "call_" + strconv.Itoa(c.Index) + "_" + strconv.Itoa(n)
					}
					msg.ToolCalls = append(msg.ToolCalls, llm.ToolCall{
						Index:     n,
						ID:        id,
						Name:      p.FunctionCall.Name,
						Arguments: adapter.JSONText(p.FunctionCall.Args),
					})
				case p.Thought:
				default:
					msg.Content += p.Text
				}
			}
		}

		ch := llm.Choice{Index: c.Index, FinishReason: mapFinishReason(c.FinishReason)}
		if ch.FinishReason == llm.FinishReasonStop && len(msg.ToolCalls) > 0 {
			ch.FinishReason = llm.FinishReasonToolCalls
		}
		if stream {
			ch.Delta = &msg
		} else {
			ch.Message = &msg
		}
		out.Choices = append(out.Choices, ch)
	}

	if len(out.Choices) == 0 && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		ch := llm.Choice{FinishReason: llm.FinishReasonContentFilter}
		if stream {
			ch.Delta = &llm.Message{}
		} else {
			ch.Message = &llm.Message{Role: llm.RoleAssistant}
		}
		out.Choices = append(out.Choices, ch)
	}
	return out
}

func mapUsage(u *usageMetadata) *llm.Usage {
	if u == nil {
		return nil
	}
	return &llm.Usage{
		PromptTokens:     u.PromptTokenCount,
		CompletionTokens: u.CandidatesTokenCount,
		TotalTokens:      u.TotalTokenCount,
		CachedTokens:     u.CachedContentTokenCount,
		ReasoningTokens:  u.ThoughtsTokenCount,
	}
}

func mapFinishReason(s string) llm.FinishReason {
	switch s {
	case "", "FINISH_REASON_UNSPECIFIED":
		return ""
	case "STOP":
		return llm.FinishReasonStop
	case "MAX_TOKENS":
		return llm.FinishReasonLength
	case "SAFETY", "RECITATION", "BLOCKLIST", "PROHIBITED_CONTENT", "SPII", "IMAGE_SAFETY":
		return llm.FinishReasonContentFilter
	default:
		return llm.FinishReasonUnknown
	}
}
