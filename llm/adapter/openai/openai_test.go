package openai

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/lgc202/llmkit/llm"
	"github.com/lgc202/llmkit/llm/adapter"
)

func serialize(t *testing.T, a adapter.Adapter, req llm.ChatRequest) (map[string]any, adapter.Wire) {
	t.Helper()
	w, err := a.Serialize(req)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(w.Body, &m); err != nil {
		t.Fatalf("Unmarshal body: %v\n%s", err, w.Body)
	}
	return m, w
}

func TestSerialize_StopEncoding(t *testing.T) {
	t.Parallel()

	a := New()
	tests := []struct {
		name string
		stop []string
		want any
	}{
		{"none", nil, nil},
		{"single", []string{"X"}, "X"},
		{"many", []string{"a", "b"}, []any{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := llm.NewRequest(nil, llm.WithModel("gpt-4o"), llm.WithMessages(llm.User("hi")), llm.WithStop(tt.stop...))
			m, _ := serialize(t, a, req)
			got, ok := m["stop"]
			if tt.want == nil {
				if ok {
					t.Fatalf("stop = %v, want omitted", got)
				}
				return
			}
			gb, _ := json.Marshal(got)
			wb, _ := json.Marshal(tt.want)
			if string(gb) != string(wb) {
				t.Fatalf("stop = %s, want %s", gb, wb)
			}
		})
	}
}

func TestSerialize_MaxTokensField(t *testing.T) {
	t.Parallel()

	a := New()
	base := llm.NewRequest(nil, llm.WithMessages(llm.User("hi")), llm.WithMaxTokens(64))

	tests := []struct {
		name  string
		model llm.Model
		field llm.MaxTokensField
		want  string
	}{
		{"auto regular", llm.Model{Name: "gpt-4o"}, llm.MaxTokensAuto, "max_tokens"},
		{"auto reasoning", llm.Model{Name: "o1-mini", Reasoning: true}, llm.MaxTokensAuto, "max_completion_tokens"},
		{"forced completion", llm.Model{Name: "gpt-4o"}, llm.MaxTokensCompletion, "max_completion_tokens"},
		{"forced legacy", llm.Model{Name: "o1-mini", Reasoning: true}, llm.MaxTokensLegacy, "max_tokens"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := llm.NewRequest(&base, llm.WithModelInfo(tt.model), llm.WithMaxTokensField(tt.field))
			m, _ := serialize(t, a, req)
			if m[tt.want] != float64(64) {
				t.Fatalf("%s = %v, body = %v", tt.want, m[tt.want], m)
			}
			other := "max_tokens"
			if tt.want == other {
				other = "max_completion_tokens"
			}
			if _, ok := m[other]; ok {
				t.Fatalf("%s unexpectedly present", other)
			}
		})
	}
}

func TestSerialize_MessageContentRules(t *testing.T) {
	t.Parallel()

	req := llm.NewRequest(nil,
		llm.WithModel("gpt-4o"),
		llm.WithMessages(
			llm.System("be brief"),
			llm.Message{Role: llm.RoleUser, Name: "  ", Content: "plain"},
			llm.UserParts(llm.TextPart("look"), llm.ImageDataPart("image/png", []byte{1, 2})),
			llm.AssistantToolCalls(llm.ToolCall{ID: "call_1", Name: "get_weather", Arguments: `{"city":"SF"}`}),
			llm.Message{Role: llm.RoleTool, ToolCallID: "call_1"},
			llm.ToolResult("call_1", "sunny"),
		),
	)
	_, w := serialize(t, New(), req)

	var body struct {
		Messages []map[string]json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal(w.Body, &body); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	msgs := body.Messages
	if len(msgs) != 6 {
		t.Fatalf("messages = %d, want 6", len(msgs))
	}

	if string(msgs[1]["content"]) != `"plain"` {
		t.Errorf("plain content = %s", msgs[1]["content"])
	}
	if _, ok := msgs[1]["name"]; ok {
		t.Errorf("blank name was written")
	}
	if !strings.HasPrefix(string(msgs[2]["content"]), "[") || !strings.Contains(string(msgs[2]["content"]), "data:image/png;base64,AQI=") {
		t.Errorf("parts content = %s", msgs[2]["content"])
	}
	if _, ok := msgs[3]["content"]; ok {
		t.Errorf("assistant tool-call message has content: %s", msgs[3]["content"])
	}
	if !strings.Contains(string(msgs[3]["tool_calls"]), `"arguments":"{\"city\":\"SF\"}"`) {
		t.Errorf("tool_calls = %s", msgs[3]["tool_calls"])
	}
	if _, ok := msgs[4]["content"]; ok {
		t.Errorf("empty tool message has content: %s", msgs[4]["content"])
	}
	if string(msgs[4]["tool_call_id"]) != `"call_1"` {
		t.Errorf("tool_call_id = %s", msgs[4]["tool_call_id"])
	}
	if string(msgs[5]["content"]) != `"sunny"` {
		t.Errorf("tool content = %s", msgs[5]["content"])
	}
}

func TestSerialize_ToolsAndOptions(t *testing.T) {
	t.Parallel()

	req := llm.NewRequest(nil,
		llm.WithModel("gpt-4o"),
		llm.WithMessages(llm.User("hi")),
		llm.WithTools(llm.Tool{Name: "lookup", Parameters: json.RawMessage(`{"type":"object"}`)}),
		llm.WithToolChoice(llm.ToolChoice{Mode: llm.ToolChoiceFunction, FunctionName: "lookup"}),
		llm.WithParallelToolCalls(false),
		llm.WithStreamIncludeUsage(true),
		llm.WithN(2),
		llm.WithUser("u-1"),
		llm.WithResponseFormatJSONObject(),
	)

	m, w := serialize(t, New(), req)
	if w.URL != chatPath {
		t.Errorf("URL = %q", w.URL)
	}
	if _, ok := m["stream_options"]; ok {
		t.Errorf("stream_options sent on a blocking request")
	}
	if m["n"] != float64(2) || m["user"] != "u-1" || m["parallel_tool_calls"] != false {
		t.Errorf("body = %v", m)
	}
	tc, _ := json.Marshal(m["tool_choice"])
	if string(tc) != `{"function":{"name":"lookup"},"type":"function"}` {
		t.Errorf("tool_choice = %s", tc)
	}
	if rf, _ := json.Marshal(m["response_format"]); string(rf) != `{"type":"json_object"}` {
		t.Errorf("response_format = %s", rf)
	}

	req.Stream = true
	m, _ = serialize(t, New(), req)
	if so, _ := json.Marshal(m["stream_options"]); string(so) != `{"include_usage":true}` {
		t.Errorf("stream_options = %s", so)
	}
}

func TestSerialize_Extensions(t *testing.T) {
	t.Parallel()

	req := llm.NewRequest(nil,
		llm.WithModel("m"),
		llm.WithMessages(llm.User("hi")),
		llm.WithVendorExtension(llm.ProviderOpenAI, "store", true),
		llm.WithVendorExtension(llm.ProviderAnthropic, "ignored", 1),
	)
	m, _ := serialize(t, New(), req)
	if m["store"] != true {
		t.Errorf("store = %v", m["store"])
	}
	if _, ok := m["ignored"]; ok {
		t.Errorf("another vendor's extension was sent")
	}

	bad := llm.NewRequest(&req, llm.WithVendorExtension(llm.ProviderOpenAI, "model", "x"))
	if _, err := New().Serialize(bad); !errors.Is(err, adapter.ErrExtensionConflict) {
		t.Fatalf("err = %v, want ErrExtensionConflict", err)
	}
}

func TestGroq_DropsLogitBiasOnCopy(t *testing.T) {
	t.Parallel()

	bias := map[string]float64{"50256": -100}
	req := llm.NewRequest(nil, llm.WithModel("llama-3.1-8b-instant"), llm.WithMessages(llm.User("hi")), llm.WithLogitBias(bias))

	g := NewGroq()
	m, _ := serialize(t, g, req)
	if _, ok := m["logit_bias"]; ok {
		t.Fatalf("groq body carries logit_bias")
	}
	if req.LogitBias == nil || bias["50256"] != -100 {
		t.Fatalf("caller request was mutated")
	}
	if g.BaseURL != GroqBaseURL || g.Provider != llm.ProviderGroq {
		t.Fatalf("adapter = %s %s", g.Provider, g.BaseURL)
	}

	m, _ = serialize(t, New(), req)
	if _, ok := m["logit_bias"]; !ok {
		t.Fatalf("openai body lost logit_bias")
	}
}

func TestSerialize_URLOverride(t *testing.T) {
	t.Parallel()

	req := llm.NewRequest(nil, llm.WithModel("deepseek-chat"), llm.WithURLOverride("https://api.deepseek.com/chat/completions"))
	a := Fallback(llm.ProviderDeepSeek)
	w, err := a.Serialize(req)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if got := a.ResolveURL(w); got != "https://api.deepseek.com/chat/completions" {
		t.Fatalf("ResolveURL = %q", got)
	}
	if got := New().ResolveURL(adapter.Wire{URL: chatPath}); got != "https://api.openai.com/v1/chat/completions" {
		t.Fatalf("ResolveURL = %q", got)
	}
}

func TestDecodeFull(t *testing.T) {
	t.Parallel()

	body := `{"id":"chatcmpl-1","object":"chat.completion","created":1700000000,"model":"gpt-4o",
		"choices":[{"index":0,"message":{"role":"assistant","content":"hello"},"finish_reason":"stop"},
		           {"index":1,"message":{"role":"assistant","content":null,"tool_calls":[{"id":"call_1","type":"function","function":{"name":"f","arguments":"{}"}}]},"finish_reason":"tool_calls"}],
		"usage":{"prompt_tokens":5,"completion_tokens":7,"total_tokens":12,"completion_tokens_details":{"reasoning_tokens":3}}}`

	res, err := New().DecodeFull([]byte(body))
	if err != nil {
		t.Fatalf("DecodeFull: %v", err)
	}
	if len(res.Choices) != 2 {
		t.Fatalf("choices = %d", len(res.Choices))
	}
	if got := res.Choices[0].Message.Content; got != "hello" {
		t.Errorf("content = %q, want hello", got)
	}
	if res.Choices[0].FinishReason != llm.FinishReasonStop {
		t.Errorf("finish = %q", res.Choices[0].FinishReason)
	}
	tc := res.Choices[1].Message.ToolCalls
	if len(tc) != 1 || tc[0].ID != "call_1" || tc[0].Name != "f" {
		t.Errorf("tool calls = %+v", tc)
	}
	if res.Usage.TotalTokens != 12 || res.Usage.ReasoningTokens != 3 {
		t.Errorf("usage = %+v", res.Usage)
	}
	if res.Created.IsZero() || res.Provider != llm.ProviderOpenAI {
		t.Errorf("meta = %v %v", res.Created, res.Provider)
	}
}

func TestDecodeFull_ParseError(t *testing.T) {
	t.Parallel()

	_, err := New().DecodeFull([]byte(`{"choices":"nope"`))
	if !llm.IsKind(err, llm.ErrKindParse) {
		t.Fatalf("err = %v, want parse error", err)
	}
}

func TestDecodeFrame(t *testing.T) {
	t.Parallel()

	dec := New().DecodeFrame

	res, done, err := dec([]byte(`{"id":"c","choices":[{"index":0,"delta":{"role":"assistant","content":"Hel"},"finish_reason":null}]}`))
	if err != nil || done || res.FirstText() != "Hel" || res.Choices[0].Delta.Role != llm.RoleAssistant {
		t.Fatalf("text frame = %+v, %v, %v", res, done, err)
	}

	res, _, err = dec([]byte(`{"id":"c","choices":[{"index":0,"delta":{"tool_calls":[{"index":1,"function":{"arguments":"{\"a\""}}]},"finish_reason":null}]}`))
	if err != nil || res.Choices[0].Delta.ToolCalls[0].Index != 1 || res.Choices[0].Delta.ToolCalls[0].Arguments != `{"a"` {
		t.Fatalf("tool frame = %+v, %v", res, err)
	}

	res, _, err = dec([]byte(`{"id":"c","choices":[],"usage":{"prompt_tokens":1,"completion_tokens":2,"total_tokens":3}}`))
	if err != nil || res == nil || res.Usage.TotalTokens != 3 {
		t.Fatalf("usage frame = %+v, %v", res, err)
	}

	res, done, err = dec([]byte(`{"id":"c","choices":[]}`))
	if res != nil || done || err != nil {
		t.Fatalf("empty frame = %+v, %v, %v", res, done, err)
	}

	res, done, err = dec([]byte("[DONE]"))
	if res != nil || !done || err != nil {
		t.Fatalf("done frame = %+v, %v, %v", res, done, err)
	}

	if _, _, err = dec([]byte(`{"error":{"message":"overloaded"}}`)); !llm.IsKind(err, llm.ErrKindServer) {
		t.Fatalf("error frame err = %v", err)
	}
	if _, _, err = dec([]byte(`{not json`)); !llm.IsKind(err, llm.ErrKindParse) {
		t.Fatalf("bad frame err = %v", err)
	}
}
