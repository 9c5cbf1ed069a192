package generate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	client, err := NewClient("claude-sonnet-4-20250514", WithBaseURL(server.URL))
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	_, err := NewClient("claude-sonnet-4-20250514")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestGenerate_TextReply(t *testing.T) {
	var captured map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(map[string]any{
			"content":     []map[string]any{{"type": "text", "text": "RAG retrieves then generates."}},
			"stop_reason": "end_turn",
		})
	})

	reply, err := client.Generate(context.Background(), "You are helpful.",
		[]Message{TextMessage("user", "What is RAG?")}, nil)
	require.NoError(t, err)

	assert.Equal(t, "RAG retrieves then generates.", reply.Text)
	assert.Empty(t, reply.ToolCalls)
	assert.Equal(t, "end_turn", reply.StopReason)

	assert.Equal(t, "You are helpful.", captured["system"])
	assert.Equal(t, float64(0), captured["temperature"], "temperature must be sent explicitly")
	assert.NotContains(t, captured, "tools")
	assert.NotContains(t, captured, "tool_choice")
}

func TestGenerate_ToolUseReply(t *testing.T) {
	var captured map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": "Let me search."},
				{
					"type":  "tool_use",
					"id":    "toolu_123",
					"name":  "search_course_content",
					"input": map[string]any{"query": "chunking"},
				},
			},
			"stop_reason": "tool_use",
		})
	})

	tools := []Tool{{
		Name:        "search_course_content",
		Description: "Search course materials",
		InputSchema: map[string]any{"type": "object"},
	}}
	reply, err := client.Generate(context.Background(), "", []Message{TextMessage("user", "chunking?")}, tools)
	require.NoError(t, err)

	assert.Equal(t, "tool_use", reply.StopReason)
	require.Len(t, reply.ToolCalls, 1)
	assert.Equal(t, "toolu_123", reply.ToolCalls[0].ID)
	assert.Equal(t, "search_course_content", reply.ToolCalls[0].Name)
	assert.Equal(t, "chunking", reply.ToolCalls[0].Args["query"])

	choice, ok := captured["tool_choice"].(map[string]any)
	require.True(t, ok, "tool_choice must be set when tools are offered")
	assert.Equal(t, "auto", choice["type"])
}

func TestGenerate_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"type": "invalid_request_error", "message": "max_tokens required"},
		})
	})

	_, err := client.Generate(context.Background(), "", []Message{TextMessage("user", "hi")}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_request_error")
	assert.Contains(t, err.Error(), "max_tokens required")
}

func TestGenerate_DeadlineExceeded(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Generate(ctx, "", []Message{TextMessage("user", "hi")}, nil)
	assert.ErrorIs(t, err, ErrDeadlineExceeded)
}

func TestGenerate_DeadlineDuringBodyRead(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Headers go out immediately; the body stalls past the deadline.
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		time.Sleep(200 * time.Millisecond)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Generate(ctx, "", []Message{TextMessage("user", "hi")}, nil)
	assert.ErrorIs(t, err, ErrDeadlineExceeded)
}

func TestAssistantMessage_EchoesToolUse(t *testing.T) {
	reply := &Reply{
		Text: "Searching.",
		ToolCalls: []ToolCall{
			{ID: "toolu_1", Name: "search_course_content", Args: map[string]any{"query": "x"}},
		},
	}

	msg := AssistantMessage(reply)
	assert.Equal(t, "assistant", msg.Role)
	require.Len(t, msg.Content, 2)
	assert.Equal(t, "text", msg.Content[0].Type)
	assert.Equal(t, "tool_use", msg.Content[1].Type)
	assert.Equal(t, "toolu_1", msg.Content[1].ID)
}

func TestToolResultMessage(t *testing.T) {
	msg := ToolResultMessage([]ToolResult{{ToolUseID: "toolu_1", Content: "results here"}})
	assert.Equal(t, "user", msg.Role)
	require.Len(t, msg.Content, 1)
	assert.Equal(t, "tool_result", msg.Content[0].Type)
	assert.Equal(t, "toolu_1", msg.Content[0].ToolUseID)
	assert.Equal(t, "results here", msg.Content[0].Content)
}
