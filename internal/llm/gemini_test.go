package llm

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToGenAIContentsFoldsTurns(t *testing.T) {
	msgs := []Message{
		UserMessage("seed"),
		{Role: RoleAssistant, Content: "looking", ToolCalls: []ToolCall{
			{ID: "a", Name: "web_search", Arguments: map[string]any{"query": "one"}},
			{ID: "b", Name: "web_search", Arguments: map[string]any{"query": "two"}},
		}},
		ToolMessage("a", "web_search", "plain text"),
		ToolMessage("b", "web_search", `{"hits":2}`),
	}

	contents := toGenAIContents(msgs)
	require.Len(t, contents, 3)

	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
	require.Len(t, contents[1].Parts, 3)
	assert.Equal(t, genai.Text("looking"), contents[1].Parts[0])
	assert.Equal(t, genai.FunctionCall{Name: "web_search", Args: map[string]any{"query": "one"}}, contents[1].Parts[1])

	assert.Equal(t, "user", contents[2].Role)
	require.Len(t, contents[2].Parts, 2)
	assert.Equal(t, genai.FunctionResponse{Name: "web_search", Response: map[string]any{"result": "plain text"}}, contents[2].Parts[0])
	assert.Equal(t, genai.FunctionResponse{Name: "web_search", Response: map[string]any{"hits": float64(2)}}, contents[2].Parts[1])
}

func TestFromGenAIResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: "model", Parts: []genai.Part{
				genai.Text("Song A\n"),
				genai.FunctionCall{Name: "web_search", Args: map[string]any{"query": "x"}},
				genai.FunctionCall{Name: "web_search"},
			}},
		}},
	}

	msg, err := fromGenAIResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, RoleAssistant, msg.Role)
	assert.Equal(t, "Song A\n", msg.Content)
	require.Len(t, msg.ToolCalls, 2)
	assert.NotEmpty(t, msg.ToolCalls[0].ID)
	assert.NotEqual(t, msg.ToolCalls[0].ID, msg.ToolCalls[1].ID)
	assert.Equal(t, map[string]any{}, msg.ToolCalls[1].Arguments)
}

func TestFromGenAIResponseEmpty(t *testing.T) {
	_, err := fromGenAIResponse(&genai.GenerateContentResponse{})
	require.Error(t, err)
}

func TestToGenAISchema(t *testing.T) {
	s := toGenAISchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string", "description": "the query"},
			"tags":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"mode":  map[string]any{"type": "string", "enum": []any{"fast", "slow"}},
		},
		"required": []string{"query"},
	})

	require.NotNil(t, s)
	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, []string{"query"}, s.Required)
	assert.Equal(t, genai.TypeString, s.Properties["query"].Type)
	assert.Equal(t, "the query", s.Properties["query"].Description)
	assert.Equal(t, genai.TypeArray, s.Properties["tags"].Type)
	assert.Equal(t, genai.TypeString, s.Properties["tags"].Items.Type)
	assert.Equal(t, []string{"fast", "slow"}, s.Properties["mode"].Enum)
}
