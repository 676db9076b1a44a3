package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"walletbot/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAIProvider(config.LLMConfig{
		APIKey:    "sk-test",
		APIURL:    srv.URL + "/v1/",
		ModelName: "gpt-test",
	})
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestOpenAIProvider_ChatWithTools_SendsToolsAndChoice(t *testing.T) {
	var got map[string]any
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":null,"tool_calls":[{"id":"call_1","type":"function","function":{"name":"get_balance","arguments":"{}"}}]}}]}`)
	})

	tools := []ToolDefinition{{
		Type: "function",
		Function: FunctionDefinition{
			Name:        "get_balance",
			Description: "balance",
			Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
		},
	}}
	msg, err := p.ChatWithTools(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, tools, ToolChoiceAuto)
	require.NoError(t, err)

	assert.Equal(t, "gpt-test", got["model"])
	assert.Equal(t, "auto", got["tool_choice"])
	assert.Len(t, got["tools"], 1)

	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "call_1", msg.ToolCalls[0].ID)
	assert.Equal(t, "get_balance", msg.ToolCalls[0].Function.Name)
	assert.Empty(t, msg.Content)
}

func TestOpenAIProvider_Chat_OmitsToolChoiceWithoutTools(t *testing.T) {
	var got map[string]any
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"hola"}}]}`)
	})

	text, err := p.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hola"}})
	require.NoError(t, err)
	assert.Equal(t, "hola", text)
	assert.NotContains(t, got, "tool_choice")
	assert.NotContains(t, got, "tools")
}

func TestOpenAIProvider_APIError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"error":{"message":"invalid api key","type":"auth"}}`)
	})

	_, err := p.Chat(context.Background(), []Message{{Role: RoleUser, Content: "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestOpenAIProvider_NoChoices(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"choices":[]}`)
	})

	_, err := p.Chat(context.Background(), []Message{{Role: RoleUser, Content: "x"}})
	assert.EqualError(t, err, "empty response from LLM")
}
