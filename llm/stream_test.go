package llm

import (
	"errors"
	"io"
	"testing"
)

type sliceStream struct {
	results []*ChatResult
	err     error
	closed  int
}

func (s *sliceStream) Recv() (*ChatResult, error) {
	if s.closed > 0 {
		return nil, ErrStreamClosed
	}
	if len(s.results) == 0 {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	r := s.results[0]
	s.results = s.results[1:]
	return r, nil
}

func (s *sliceStream) Close() error {
	s.closed++
	return nil
}

func delta(idx int, m Message, fr FinishReason) *ChatResult {
	return &ChatResult{ID: "r1", Model: "m", Choices: []Choice{{Index: idx, Delta: &m, FinishReason: fr}}}
}

func TestDrain_TextAndToolCalls(t *testing.T) {
	t.Parallel()

	s := &sliceStream{results: []*ChatResult{
		delta(0, Message{Role: RoleAssistant, Content: "Hel"}, ""),
		delta(0, Message{Content: "lo"}, ""),
		delta(1, Message{ToolCalls: []ToolCall{{Index: 0, ID: "c1", Name: "get_weather", Arguments: `{"city":`}}}, ""),
		delta(1, Message{ToolCalls: []ToolCall{{Index: 0, Arguments: `"SF"}`}}}, FinishReasonToolCalls),
		delta(0, Message{}, FinishReasonStop),
		{Usage: &Usage{PromptTokens: 3, CompletionTokens: 4, TotalTokens: 7}},
	}}

	res, err := Drain(s)
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if s.closed != 1 {
		t.Fatalf("closed %d times, want 1", s.closed)
	}
	if len(res.Choices) != 2 {
		t.Fatalf("choices = %d, want 2", len(res.Choices))
	}
	if got := res.Choices[0].Message.Content; got != "Hello" {
		t.Errorf("choice 0 content = %q, want Hello", got)
	}
	if res.Choices[0].FinishReason != FinishReasonStop {
		t.Errorf("choice 0 finish = %q", res.Choices[0].FinishReason)
	}
	calls := res.Choices[1].Message.ToolCalls
	if len(calls) != 1 || calls[0].ID != "c1" || calls[0].Arguments != `{"city":"SF"}` {
		t.Errorf("tool calls = %+v", calls)
	}
	if res.Usage == nil || res.Usage.TotalTokens != 7 {
		t.Errorf("usage = %+v", res.Usage)
	}
	if res.ID != "r1" {
		t.Errorf("ID = %q, want r1", res.ID)
	}
}

func TestDrain_PropagatesError(t *testing.T) {
	t.Parallel()

	boom := &Error{Kind: ErrKindParse, Message: "bad frame"}
	s := &sliceStream{results: []*ChatResult{delta(0, Message{Content: "a"}, "")}, err: boom}

	_, err := Drain(s)
	if !errors.Is(err, boom) {
		t.Fatalf("Drain err = %v, want %v", err, boom)
	}
	if s.closed != 1 {
		t.Fatalf("closed %d times, want 1", s.closed)
	}
}

func TestAccumulator_NewIDAtSameIndex(t *testing.T) {
	t.Parallel()

	var acc Accumulator
	acc.Apply(delta(0, Message{ToolCalls: []ToolCall{{Index: 0, ID: "a", Name: "get_weather", Arguments: `{"city":"Paris"}`}}}, ""))
	acc.Apply(delta(0, Message{ToolCalls: []ToolCall{{Index: 0, ID: "b", Name: "get_time", Arguments: `{"tz":`}}}, ""))
	acc.Apply(delta(0, Message{ToolCalls: []ToolCall{{Index: 0, Arguments: `"CET"}`}}}, FinishReasonToolCalls))

	calls := acc.Result().Choices[0].Message.ToolCalls
	if len(calls) != 2 {
		t.Fatalf("tool calls = %+v, want 2", calls)
	}
	if calls[0].ID != "a" || calls[0].Arguments != `{"city":"Paris"}` || calls[0].Index != 0 {
		t.Errorf("first call = %+v", calls[0])
	}
	if calls[1].ID != "b" || calls[1].Name != "get_time" || calls[1].Arguments != `{"tz":"CET"}` || calls[1].Index != 1 {
		t.Errorf("second call = %+v", calls[1])
	}
}
