package google

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/lgc202/llmkit/llm"
)

func TestSerialize_Endpoint(t *testing.T) {
	t.Parallel()

	a := New()
	req := llm.NewRequest(nil, llm.WithModel("models/gemini-1.5-flash"), llm.WithMessages(llm.User("hi")))

	w, err := a.Serialize(req)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if got := a.ResolveURL(w); got != DefaultBaseURL+"/models/gemini-1.5-flash:generateContent" {
		t.Errorf("blocking URL = %q", got)
	}

	req.Stream = true
	w, err = a.Serialize(req)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if w.URL != "/models/gemini-1.5-flash:streamGenerateContent?alt=sse" {
		t.Errorf("stream URL = %q", w.URL)
	}

	h := make(http.Header)
	a.Authorize(h, llm.Credentials{APIKey: "g-key"})
	if h.Get("X-Goog-Api-Key") != "g-key" {
		t.Errorf("headers = %v", h)
	}
}

func TestSerialize_Body(t *testing.T) {
	t.Parallel()

	req := llm.NewRequest(nil,
		llm.WithModel("gemini-1.5-pro"),
		llm.WithTemperature(0.2),
		llm.WithMaxTokens(100),
		llm.WithStop("###"),
		llm.WithTools(llm.Tool{Name: "lookup", Parameters: json.RawMessage(`{"type":"object"}`)}),
		llm.WithToolChoice(llm.ToolChoice{Mode: llm.ToolChoiceFunction, FunctionName: "lookup"}),
		llm.WithResponseFormatJSONObject(),
		llm.WithMessages(
			llm.System("be terse"),
			llm.User("find go"),
			llm.AssistantToolCalls(llm.ToolCall{ID: "call_0_0", Name: "lookup", Arguments: `{"q":"go"}`}),
			llm.ToolResult("call_0_0", "not json"),
			llm.ToolResult("call_0_0", `{"hits":3}`),
			llm.UserParts(llm.ImageURLPart("data:image/webp;base64,AAAA")),
		),
	)

	w, err := New().Serialize(req)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	var body generateRequest
	if err := json.Unmarshal(w.Body, &body); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if body.SystemInstruction == nil || body.SystemInstruction.Parts[0].Text != "be terse" {
		t.Errorf("systemInstruction = %+v", body.SystemInstruction)
	}
	gc := body.GenerationConfig
	if gc == nil || *gc.Temperature != 0.2 || *gc.MaxOutputTokens != 100 || gc.StopSequences[0] != "###" || gc.ResponseMIMEType != "application/json" {
		t.Errorf("generationConfig = %+v", gc)
	}
	if body.ToolConfig == nil || body.ToolConfig.FunctionCallingConfig.Mode != "ANY" ||
		body.ToolConfig.FunctionCallingConfig.AllowedFunctionNames[0] != "lookup" {
		t.Errorf("toolConfig = %+v", body.ToolConfig)
	}

	// user, model, user(two function responses + image)
	if len(body.Contents) != 3 {
		t.Fatalf("contents = %d: %s", len(body.Contents), w.Body)
	}
	if body.Contents[1].Role != "model" || body.Contents[1].Parts[0].FunctionCall.Name != "lookup" {
		t.Errorf("model turn = %+v", body.Contents[1])
	}
	last := body.Contents[2].Parts
	if len(last) != 3 {
		t.Fatalf("last turn parts = %d", len(last))
	}
	if fr := last[0].FunctionResponse; fr == nil || fr.Name != "lookup" || string(fr.Response) != `{"content":"not json"}` {
		t.Errorf("wrapped response = %+v", fr)
	}
	if fr := last[1].FunctionResponse; fr == nil || string(fr.Response) != `{"hits":3}` {
		t.Errorf("object response = %+v", fr)
	}
	if d := last[2].InlineData; d == nil || d.MIMEType != "image/webp" || d.Data != "AAAA" {
		t.Errorf("inline data = %+v", d)
	}
}

func TestSerialize_PlainTextStillUsesParts(t *testing.T) {
	t.Parallel()

	w, err := New().Serialize(llm.NewRequest(nil, llm.WithModel("g"), llm.WithMessages(llm.User("hi"))))
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if string(w.Body) != `{"contents":[{"role":"user","parts":[{"text":"hi"}]}]}` {
		t.Fatalf("body = %s", w.Body)
	}
}

func TestDecodeFull(t *testing.T) {
	t.Parallel()

	body := `{"candidates":[{"index":0,"finishReason":"STOP","content":{"role":"model","parts":[
			{"text":"hel"},{"text":"lo"},{"functionCall":{"name":"lookup","args":{"q":"go"}}}]}}],
		"usageMetadata":{"promptTokenCount":4,"candidatesTokenCount":6,"totalTokenCount":10},
		"modelVersion":"gemini-1.5-pro-002","responseId":"resp-1"}`

	res, err := New().DecodeFull([]byte(body))
	if err != nil {
		t.Fatalf("DecodeFull: %v", err)
	}
	if res.ID != "resp-1" || res.Model != "gemini-1.5-pro-002" || res.FirstText() != "hello" {
		t.Errorf("result = %+v", res)
	}
	c := res.Choices[0]
	if c.Message.Role != llm.RoleAssistant || c.FinishReason != llm.FinishReasonToolCalls {
		t.Errorf("choice = %+v", c)
	}
	tc := c.Message.ToolCalls
	if len(tc) != 1 || tc[0].ID != "call_0_0" || tc[0].Arguments != `{"q":"go"}` {
		t.Errorf("tool calls = %+v", tc)
	}
	if res.Usage.TotalTokens != 10 {
		t.Errorf("usage = %+v", res.Usage)
	}
}

func TestDecodeFull_Blocked(t *testing.T) {
	t.Parallel()

	res, err := New().DecodeFull([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
	if err != nil {
		t.Fatalf("DecodeFull: %v", err)
	}
	if len(res.Choices) != 1 || res.Choices[0].FinishReason != llm.FinishReasonContentFilter {
		t.Fatalf("choices = %+v", res.Choices)
	}
}

func TestDecodeFrame(t *testing.T) {
	t.Parallel()

	res, done, err := New().DecodeFrame([]byte(`{"candidates":[{"index":0,"content":{"role":"model","parts":[{"text":"Hi"}]}}]}`))
	if err != nil || done || res.FirstText() != "Hi" || res.Choices[0].Delta == nil {
		t.Fatalf("frame = %+v, %v, %v", res, done, err)
	}

	res, done, err = New().DecodeFrame([]byte(`{}`))
	if res != nil || done || err != nil {
		t.Fatalf("empty frame = %+v, %v, %v", res, done, err)
	}

	_, _, err = New().DecodeFrame([]byte(`{"error":{"code":500,"message":"internal","status":"INTERNAL"}}`))
	if !llm.IsKind(err, llm.ErrKindServer) {
		t.Fatalf("err = %v", err)
	}
}

func TestFrameDecoder_ToolCallsAcrossChunks(t *testing.T) {
	t.Parallel()

	frames := []string{
		`{"candidates":[{"index":0,"content":{"role":"model","parts":[{"functionCall":{"name":"get_weather","args":{"city":"Paris"}}}]}}]}`,
		`{"candidates":[{"index":0,"finishReason":"STOP","content":{"role":"model","parts":[{"functionCall":{"name":"get_time","args":{"tz":"CET"}}}]}}]}`,
	}

	decode := New().FrameDecoder()
	var acc llm.Accumulator
	for _, f := range frames {
		res, _, err := decode([]byte(f))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		acc.Apply(res)
	}

	c := acc.Result().Choices[0]
	calls := c.Message.ToolCalls
	if len(calls) != 2 {
		t.Fatalf("tool calls = %+v, want 2", calls)
	}
	want := []struct{ id, name, args string }{
		{"call_0_0", "get_weather", `{"city":"Paris"}`},
		{"call_0_1", "get_time", `{"tz":"CET"}`},
	}
	for i, w := range want {
		got := calls[i]
		if got.ID != w.id || got.Name != w.name || got.Arguments != w.args || got.Index != i {
			t.Errorf("call %d = %+v", i, got)
		}
		if !json.Valid([]byte(got.Arguments)) {
			t.Errorf("call %d arguments not JSON: %s", i, got.Arguments)
		}
	}
	if c.FinishReason != llm.FinishReasonToolCalls {
		t.Errorf("finish = %q", c.FinishReason)
	}

	// A second stream numbers from zero again.
	res, _, err := New().FrameDecoder()([]byte(frames[1]))
	if err != nil || res.Choices[0].Delta.ToolCalls[0].ID != "call_0_0" {
		t.Fatalf("fresh stream = %+v, %v", res, err)
	}
}
