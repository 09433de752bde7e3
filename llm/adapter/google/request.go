package google

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/lgc202/llmkit/llm"
	"github.com/lgc202/llmkit/llm/adapter"
)

func serialize(req llm.ChatRequest) (adapter.Wire, error) {
	body, err := buildRequest(req)
	if err != nil {
		return adapter.Wire{}, err
	}
	b, err := adapter.Encode(body, req.Extensions(llm.ProviderGoogle))
	if err != nil {
		return adapter.Wire{}, err
	}
	u := req.URLOverride
	if u == "" {
		u = endpoint(req.Model.Name, req.Stream)
	}
	return adapter.Wire{Body: b, URL: u}, nil
}

func endpoint(model string, stream bool) string {
	model = url.PathEscape(strings.TrimPrefix(model, "models/"))
	if stream {
		return "/models/" + model + ":streamGenerateContent?alt=sse"
	}
	return "/models/" + model + ":generateContent"
}

func buildRequest(req llm.ChatRequest) (*generateRequest, error) {
	out := &generateRequest{Contents: []content{}}

	// functionResponse needs the function name, which tool messages only
	// reference through the call id.
	callNames := make(map[string]string)

	var system []part
	for _, m := range req.Messages {
		if m.Role == llm.RoleSystem {
			if t := m.Text(); t != "" {
				system = append(system, part{Text: t})
			}
			continue
		}
		for _, tc := range m.ToolCalls {
			callNames[tc.ID] = tc.Name
		}

		c, err := mapMessage(m, callNames)
		if err != nil {
			return nil, err
		}
		if len(c.Parts) == 0 {
			continue
		}
		if n := len(out.Contents); n > 0 && out.Contents[n-1].Role == c.Role {
			out.Contents[n-1].Parts = append(out.Contents[n-1].Parts, c.Parts...)
			continue
		}
		out.Contents = append(out.Contents, c)
	}
	if len(system) > 0 {
		out.SystemInstruction = &content{Parts: system}
	}

	out.GenerationConfig = mapGenerationConfig(req)

	if len(req.Tools) > 0 {
		decls := make([]functionDeclaration, 0, len(req.Tools))
		for _, t := range req.Tools {
			decls = append(decls, functionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  adapter.Schema(t),
			})
		}
		out.Tools = []tool{{FunctionDeclarations: decls}}
	}
	if tc := req.ToolChoice; tc != nil {
		cfg := functionCallingConfig{Mode: "AUTO"}
		switch tc.Mode {
		case llm.ToolChoiceNone:
			cfg.Mode = "NONE"
		case llm.ToolChoiceRequired:
			cfg.Mode = "ANY"
		case llm.ToolChoiceFunction:
			cfg.Mode = "ANY"
			cfg.AllowedFunctionNames = []string{tc.FunctionName}
		}
		out.ToolConfig = &toolConfig{FunctionCallingConfig: cfg}
	}
	return out, nil
}

func mapGenerationConfig(req llm.ChatRequest) *generationConfig {
	cfg := generationConfig{
		Temperature:      req.Temperature,
		TopP:             req.TopP,
		MaxOutputTokens:  req.MaxTokens,
		StopSequences:    req.StopSequences,
		CandidateCount:   req.N,
		PresencePenalty:  req.PresencePenalty,
		FrequencyPenalty: req.FrequencyPenalty,
		Seed:             req.Seed,
	}
	if rf := req.ResponseFormat; rf != nil {
		switch rf.Type {
		case llm.ResponseFormatJSONObject:
			cfg.ResponseMIMEType = "application/json"
		case llm.ResponseFormatJSONSchema:
			cfg.ResponseMIMEType = "application/json"
			cfg.ResponseSchema = adapter.SchemaBody(rf.JSONSchema)
		}
	}
	if cfg.Temperature == nil && cfg.TopP == nil && cfg.MaxOutputTokens == nil &&
		len(cfg.StopSequences) == 0 && cfg.CandidateCount == nil && cfg.PresencePenalty == nil &&
		cfg.FrequencyPenalty == nil && cfg.Seed == nil && cfg.ResponseMIMEType == "" {
		return nil
	}
	return &cfg
}

func mapMessage(m llm.Message, callNames map[string]string) (content, error) {
	switch m.Role {
	case llm.RoleTool:
		name := callNames[m.ToolCallID]
		if name == "" {
			name = m.ToolCallID
		}
		return content{Role: "user", Parts: []part{{
			FunctionResponse: &functionResponse{
				Name:     name,
				Response: toolResponse(m.Text()),
			},
		}}}, nil

	case llm.RoleAssistant:
		c := content{Role: "model"}
		if t := m.Text(); t != "" {
			c.Parts = append(c.Parts, part{Text: t})
		}
		for _, tc := range m.ToolCalls {
			c.Parts = append(c.Parts, part{FunctionCall: &functionCall{
				Name: tc.Name,
				Args: adapter.ToolArgs(tc.Arguments),
			}})
		}
		return c, nil

	default:
		c := content{Role: "user"}
		if m.Content != "" {
			c.Parts = append(c.Parts, part{Text: m.Content})
		}
		for _, p := range m.Parts {
			switch p.Type {
			case llm.ContentPartText:
				if p.Text != "" {
					c.Parts = append(c.Parts, part{Text: p.Text})
				}
			case llm.ContentPartImage:
				c.Parts = append(c.Parts, mediaPart(p, "image/jpeg"))
			case llm.ContentPartAudio:
				c.Parts = append(c.Parts, mediaPart(p, "audio/mpeg"))
			default:
				return content{}, adapter.UnsupportedError(llm.ProviderGoogle, "content part "+string(p.Type))
			}
		}
		return c, nil
	}
}

func mediaPart(p llm.ContentPart, defaultMIME string) part {
	mime := p.MIME
	if mime == "" {
		mime = defaultMIME
	}
	if len(p.Data) > 0 {
		return part{InlineData: &blob{MIMEType: mime, Data: base64.StdEncoding.EncodeToString(p.Data)}}
	}
	if dm, data, ok := adapter.SplitDataURL(p.URL); ok {
		if dm != "" {
			mime = dm
		}
		return part{InlineData: &blob{MIMEType: mime, Data: data}}
	}
	return part{FileData: &fileData{MIMEType: mime, FileURI: p.URL}}
}

// toolResponse wraps a tool result as the JSON object functionResponse
// requires. JSON object results are passed through.
func toolResponse(text string) json.RawMessage {
	b := bytes.TrimSpace([]byte(text))
	if len(b) > 0 && b[0] == '{' && json.Valid(b) {
		return json.RawMessage(b)
	}
	wrapped, _ := json.Marshal(map[string]string{"content": text})
	return wrapped
}
