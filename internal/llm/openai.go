package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"songbird/config"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// OpenAIProvider talks to any OpenAI-compatible /chat/completions endpoint (OpenAI, DeepSeek, ...).
type OpenAIProvider struct {
	client *resty.Client
	config config.LLMConfig
}

type openAIRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
	Tools    []openAITool    `json:"tools,omitempty"`
}

type openAIMessage struct {
	Role       string           `json:"role"`
	Content    string           `json:"content"`
	ToolCalls  []openAIToolCall `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
	Name       string           `json:"name,omitempty"`
}

type openAIToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type openAITool struct {
	Type     string         `json:"type"`
	Function ToolDefinition `json:"function"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewOpenAIProvider(cfg config.LLMConfig) *OpenAIProvider {
	return &OpenAIProvider{
		client: resty.New(),
		config: cfg,
	}
}

func (p *OpenAIProvider) Name() string {
	if p.config.Provider != "" {
		return p.config.Provider
	}
	return "openai"
}

func (p *OpenAIProvider) model() string {
	if p.config.ModelName != "" {
		return p.config.ModelName
	}
	// Adjust model name based on provider
	if p.config.Provider == "deepseek" {
		return "deepseek-chat"
	}
	return "gpt-4o-mini"
}

func (p *OpenAIProvider) baseURL() string {
	if p.config.APIURL != "" {
		return strings.TrimRight(p.config.APIURL, "/")
	}
	if p.config.Provider == "deepseek" {
		return "https://api.deepseek.com"
	}
	return "https://api.openai.com/v1"
}

func (p *OpenAIProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	respMsg, err := p.ChatWithTools(ctx, "", messages, nil)
	if err != nil {
		return "", err
	}
	return respMsg.Content, nil
}

func (p *OpenAIProvider) ChatWithTools(ctx context.Context, system string, messages []Message, tools []ToolDefinition) (*Message, error) {
	reqBody := openAIRequest{
		Model: p.model(),
	}
	if system != "" {
		reqBody.Messages = append(reqBody.Messages, openAIMessage{Role: string(RoleSystem), Content: system})
	}
	for _, m := range messages {
		wire, err := toOpenAIMessage(m)
		if err != nil {
			return nil, err
		}
		reqBody.Messages = append(reqBody.Messages, wire)
	}
	for _, t := range tools {
		reqBody.Tools = append(reqBody.Tools, openAITool{Type: "function", Function: t})
	}

	var respBody openAIResponse

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+p.config.APIKey).
		SetHeader("Content-Type", "application/json").
		SetBody(reqBody).
		SetResult(&respBody).
		SetError(&respBody).
		Post(p.baseURL() + "/chat/completions")

	if err != nil {
		return nil, errors.Wrap(err, "LLM request failed")
	}

	if resp.IsError() {
		if respBody.Error != nil && respBody.Error.Message != "" {
			return nil, fmt.Errorf("LLM API error (%d): %s", resp.StatusCode(), respBody.Error.Message)
		}
		return nil, fmt.Errorf("LLM API error (%d): %s", resp.StatusCode(), resp.String())
	}

	if len(respBody.Choices) == 0 {
		return nil, fmt.Errorf("empty response from LLM")
	}

	return fromOpenAIMessage(respBody.Choices[0].Message)
}

func toOpenAIMessage(m Message) (openAIMessage, error) {
	wire := openAIMessage{
		Role:       string(m.Role),
		Content:    m.Content,
		ToolCallID: m.ToolCallID,
	}
	if m.Role == RoleTool {
		wire.Name = m.ToolName
	}
	for _, call := range m.ToolCalls {
		args := call.Arguments
		if args == nil {
			args = map[string]any{}
		}
		raw, err := json.Marshal(args)
		if err != nil {
			return openAIMessage{}, errors.Wrapf(err, "encode arguments of tool call %s", call.ID)
		}
		tc := openAIToolCall{ID: call.ID, Type: "function"}
		tc.Function.Name = call.Name
		tc.Function.Arguments = string(raw)
		wire.ToolCalls = append(wire.ToolCalls, tc)
	}
	return wire, nil
}

func fromOpenAIMessage(wire openAIMessage) (*Message, error) {
	msg := &Message{
		Role:    RoleAssistant,
		Content: wire.Content,
	}
	for _, tc := range wire.ToolCalls {
		args := map[string]any{}
		if strings.TrimSpace(tc.Function.Arguments) != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return nil, errors.Wrapf(err, "malformed arguments for tool call %s", tc.ID)
			}
		}
		msg.ToolCalls = append(msg.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}
	return msg, nil
}
