package llm

import (
	"context"
	"encoding/json"
	"strings"

	"songbird/config"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiProvider calls Google Gemini. The client is shared; a GenerativeModel is
// built per call so concurrent requests never share system prompt or tool settings.
type GeminiProvider struct {
	client *genai.Client
	config config.LLMConfig
}

func NewGeminiProvider(ctx context.Context, cfg config.LLMConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("missing LLM_API_KEY for gemini")
	}
	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.APIURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.APIURL))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create gemini client")
	}
	return &GeminiProvider{client: client, config: cfg}, nil
}

func (p *GeminiProvider) Name() string {
	return "gemini"
}

func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

func (p *GeminiProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	respMsg, err := p.ChatWithTools(ctx, "", messages, nil)
	if err != nil {
		return "", err
	}
	return respMsg.Content, nil
}

func (p *GeminiProvider) ChatWithTools(ctx context.Context, system string, messages []Message, tools []ToolDefinition) (*Message, error) {
	modelName := p.config.ModelName
	if modelName == "" {
		modelName = defaultGeminiModel
	}
	model := p.client.GenerativeModel(modelName)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	if len(tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(tools))
		for _, t := range tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  toGenAISchema(t.Parameters),
			})
		}
		model.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	contents := toGenAIContents(messages)
	if len(contents) == 0 {
		return nil, errors.New("gemini: empty conversation")
	}
	last := contents[len(contents)-1]
	if last.Role != "user" {
		return nil, errors.Errorf("gemini: conversation must end with a user turn, got %q", last.Role)
	}

	session := model.StartChat()
	session.History = contents[:len(contents)-1]
	resp, err := session.SendMessage(ctx, last.Parts...)
	if err != nil {
		return nil, errors.Wrap(err, "gemini request failed")
	}
	return fromGenAIResponse(resp)
}

func fromGenAIResponse(resp *genai.GenerateContentResponse) (*Message, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, errors.New("empty response from LLM")
	}
	cand := resp.Candidates[0]
	msg := &Message{Role: RoleAssistant}
	if cand.Content == nil {
		return msg, nil
	}
	var text strings.Builder
	for _, part := range cand.Content.Parts {
		switch v := part.(type) {
		case genai.Text:
			text.WriteString(string(v))
		case genai.FunctionCall:
			args := v.Args
			if args == nil {
				args = map[string]any{}
			}
			msg.ToolCalls = append(msg.ToolCalls, ToolCall{
				ID:        uuid.NewString(),
				Name:      v.Name,
				Arguments: args,
			})
		}
	}
	msg.Content = text.String()
	return msg, nil
}

// toGenAIContents folds the log into alternating user/model turns. Tool results
// travel as FunctionResponse parts of a user turn.
func toGenAIContents(messages []Message) []*genai.Content {
	var contents []*genai.Content
	push := func(role string, parts ...genai.Part) {
		if len(parts) == 0 {
			return
		}
		if n := len(contents); n > 0 && contents[n-1].Role == role {
			contents[n-1].Parts = append(contents[n-1].Parts, parts...)
			return
		}
		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}

	for _, m := range messages {
		switch m.Role {
		case RoleUser, RoleSystem:
			push("user", genai.Text(m.Content))
		case RoleAssistant:
			var parts []genai.Part
			if m.Content != "" {
				parts = append(parts, genai.Text(m.Content))
			}
			for _, call := range m.ToolCalls {
				parts = append(parts, genai.FunctionCall{Name: call.Name, Args: call.Arguments})
			}
			push("model", parts...)
		case RoleTool:
			push("user", genai.FunctionResponse{Name: m.ToolName, Response: toolResponse(m.Content)})
		}
	}
	return contents
}

func toolResponse(content string) map[string]any {
	var obj map[string]any
	if json.Unmarshal([]byte(content), &obj) == nil && obj != nil {
		return obj
	}
	return map[string]any{"result": content}
}

func toGenAISchema(s map[string]any) *genai.Schema {
	if s == nil {
		return nil
	}
	gs := &genai.Schema{}
	switch s["type"] {
	case "string":
		gs.Type = genai.TypeString
	case "number":
		gs.Type = genai.TypeNumber
	case "integer":
		gs.Type = genai.TypeInteger
	case "boolean":
		gs.Type = genai.TypeBoolean
	case "array":
		gs.Type = genai.TypeArray
		if items, ok := s["items"].(map[string]any); ok {
			gs.Items = toGenAISchema(items)
		}
	default:
		gs.Type = genai.TypeObject
	}
	if d, ok := s["description"].(string); ok {
		gs.Description = d
	}
	if props, ok := s["properties"].(map[string]any); ok && len(props) > 0 {
		gs.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if ps, ok := raw.(map[string]any); ok {
				gs.Properties[name] = toGenAISchema(ps)
			}
		}
	}
	switch req := s["required"].(type) {
	case []string:
		gs.Required = req
	case []any:
		for _, r := range req {
			if name, ok := r.(string); ok {
				gs.Required = append(gs.Required, name)
			}
		}
	}
	switch enum := s["enum"].(type) {
	case []string:
		gs.Enum = enum
	case []any:
		for _, e := range enum {
			if v, ok := e.(string); ok {
				gs.Enum = append(gs.Enum, v)
			}
		}
	}
	return gs
}
