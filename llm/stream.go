package llm

import (
	"errors"
	"io"
	"sort"
)

// Stream yields canonical results until io.EOF.
//
// Implementations must release their network resources exactly once, whether
// the stream ends naturally, fails, or is closed early by the caller.
type Stream interface {
	Recv() (*ChatResult, error)
	Close() error
}

var ErrStreamClosed = errors.New("llm: stream closed")

// Accumulator folds streamed deltas into complete messages.
//
// It tolerates partial tool call deltas: arguments are concatenated per index
// until a delta with a different id arrives at that index.
type Accumulator struct {
	ID       string
	Model    string
	Provider Provider
	Usage    *Usage

	choices map[int]*accChoice
}

type accChoice struct {
	msg Message

	// calls in order of first arrival; open maps a delta index to the call
	// it currently extends.
	calls []*ToolCall
	open  map[int]*ToolCall

	finish FinishReason
}

func (a *Accumulator) Apply(res *ChatResult) {
	if res == nil {
		return
	}
	if a.ID == "" {
		a.ID = res.ID
	}
	if a.Model == "" {
		a.Model = res.Model
	}
	if a.Provider == "" {
		a.Provider = res.Provider
	}
	if res.Usage != nil {
		a.Usage = mergeUsage(a.Usage, *res.Usage)
	}
	for _, c := range res.Choices {
		ch := a.choice(c.Index)
		if c.FinishReason != "" {
			ch.finish = c.FinishReason
		}
		d := c.Delta
		if d == nil {
			d = c.Message
		}
		if d == nil {
			continue
		}
		if d.Role != "" {
			ch.msg.Role = d.Role
		}
		ch.msg.Content += d.Text()
		for _, tc := range d.ToolCalls {
			cur, ok := ch.open[tc.Index]
			// A different id at an index already in use starts a new call.
			if !ok || (tc.ID != "" && cur.ID != "" && tc.ID != cur.ID) {
				cur = &ToolCall{Index: tc.Index}
				ch.open[tc.Index] = cur
				ch.calls = append(ch.calls, cur)
			}
			if tc.ID != "" {
				cur.ID = tc.ID
			}
			if tc.Name != "" {
				cur.Name = tc.Name
			}
			cur.Arguments += tc.Arguments
		}
	}
}

// mergeUsage overlays the non-zero counters of u on cur. Some vendors report
// prompt and completion tokens in separate frames.
func mergeUsage(cur *Usage, u Usage) *Usage {
	if cur == nil {
		cur = &Usage{}
	}
	if u.PromptTokens != 0 {
		cur.PromptTokens = u.PromptTokens
	}
	if u.CompletionTokens != 0 {
		cur.CompletionTokens = u.CompletionTokens
	}
	if u.CachedTokens != 0 {
		cur.CachedTokens = u.CachedTokens
	}
	if u.ReasoningTokens != 0 {
		cur.ReasoningTokens = u.ReasoningTokens
	}
	if u.TotalTokens != 0 {
		cur.TotalTokens = u.TotalTokens
	}
	if sum := cur.PromptTokens + cur.CompletionTokens; cur.TotalTokens < sum {
		cur.TotalTokens = sum
	}
	return cur
}

func (a *Accumulator) choice(idx int) *accChoice {
	if a.choices == nil {
		a.choices = make(map[int]*accChoice)
	}
	ch, ok := a.choices[idx]
	if !ok {
		ch = &accChoice{msg: Message{Role: RoleAssistant}, open: make(map[int]*ToolCall)}
		a.choices[idx] = ch
	}
	return ch
}

// Result returns the accumulated result with one complete message per choice.
func (a *Accumulator) Result() *ChatResult {
	out := &ChatResult{ID: a.ID, Model: a.Model, Provider: a.Provider, Usage: a.Usage}

	idxs := make([]int, 0, len(a.choices))
	for i := range a.choices {
		idxs = append(idxs, i)
	}
	sort.Ints(idxs)

	for _, i := range idxs {
		ch := a.choices[i]
		msg := ch.msg
		if len(ch.calls) > 0 {
			msg.ToolCalls = make([]ToolCall, 0, len(ch.calls))
			for n, c := range ch.calls {
				tc := *c
				tc.Index = n
				msg.ToolCalls = append(msg.ToolCalls, tc)
			}
		}
		out.Choices = append(out.Choices, Choice{Index: i, Message: &msg, FinishReason: ch.finish})
	}
	return out
}

// Drain reads s to the end and returns the accumulated result. s is always closed.
func Drain(s Stream) (*ChatResult, error) {
	defer s.Close()

	var acc Accumulator
	for {
		res, err := s.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		acc.Apply(res)
	}
	return acc.Result(), nil
}
