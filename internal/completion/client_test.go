package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsecoach/pulsecoach/internal/config"
	"github.com/pulsecoach/pulsecoach/internal/schema"
)

func newTestClient(url string) *Client {
	return NewClient(config.LLMConfig{
		APIKey:  "test-key",
		APIBase: url,
		Model:   "gpt-4o-mini",
	}, 5*time.Second)
}

func chatResponse(t *testing.T, message map[string]any) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"choices": []map[string]any{{"message": message, "finish_reason": "stop"}},
	})
	require.NoError(t, err)
	return raw
}

func TestComplete_FinalAnswer(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write(chatResponse(t, map[string]any{"content": "Drink more water."}))
	}))
	defer srv.Close()

	msgs := schema.NewMessages(schema.NewSystemMessage("be brief"))
	msgs.AddUser("hydration tips?")

	comp, err := newTestClient(srv.URL).Complete(context.Background(), msgs, nil)
	require.NoError(t, err)
	assert.Equal(t, "Drink more water.", comp.Content)
	assert.False(t, comp.HasToolCalls())

	assert.Equal(t, "gpt-4o-mini", captured["model"])
	wired := captured["messages"].([]any)
	require.Len(t, wired, 2)
	assert.NotContains(t, captured, "tools", "no tools advertised when none are registered")
}

func TestComplete_ToolCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(chatResponse(t, map[string]any{
			"content": nil,
			"tool_calls": []map[string]any{{
				"id":   "call_1",
				"type": "function",
				"function": map[string]any{
					"name":      "analyze_trend",
					"arguments": `{"series":[1,2,3],"window":1}`,
				},
			}},
		}))
	}))
	defer srv.Close()

	msgs := schema.NewMessages(schema.NewUserMessage("trend?"))
	comp, err := newTestClient(srv.URL).Complete(context.Background(), msgs, []map[string]any{{"type": "function"}})
	require.NoError(t, err)
	require.True(t, comp.HasToolCalls())
	require.Len(t, comp.ToolCalls, 1)
	assert.Equal(t, "call_1", comp.ToolCalls[0].ID)
	assert.Equal(t, "analyze_trend", comp.ToolCalls[0].Name)
	assert.Equal(t, []any{1.0, 2.0, 3.0}, comp.ToolCalls[0].Arguments["series"])
}

func TestComplete_EmptyArgumentsTolerated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(chatResponse(t, map[string]any{
			"tool_calls": []map[string]any{{
				"id":       "call_1",
				"function": map[string]any{"name": "read_steps", "arguments": ""},
			}},
		}))
	}))
	defer srv.Close()

	comp, err := newTestClient(srv.URL).Complete(context.Background(), schema.NewMessages(schema.NewUserMessage("steps?")), nil)
	require.NoError(t, err)
	require.Len(t, comp.ToolCalls, 1)
	assert.NotNil(t, comp.ToolCalls[0].Arguments)
	assert.Empty(t, comp.ToolCalls[0].Arguments)
}

func TestComplete_ToolTurnWireFields(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write(chatResponse(t, map[string]any{"content": "ok"}))
	}))
	defer srv.Close()

	msgs := schema.NewMessages(schema.NewUserMessage("steps?"))
	msgs.AddAssistant("", []schema.ToolCall{{ID: "call_1", Name: "read_steps", Arguments: map[string]any{}}})
	msgs.AddToolResult("call_1", "read_steps", `{"success":true,"data":{"steps":8500}}`)

	_, err := newTestClient(srv.URL).Complete(context.Background(), msgs, nil)
	require.NoError(t, err)

	wired := captured["messages"].([]any)
	require.Len(t, wired, 3)

	assistant := wired[1].(map[string]any)
	require.Contains(t, assistant, "tool_calls")

	toolTurn := wired[2].(map[string]any)
	assert.Equal(t, "tool", toolTurn["role"])
	assert.Equal(t, "call_1", toolTurn["tool_call_id"])
	assert.Equal(t, "read_steps", toolTurn["name"])
}

func TestComplete_ServerErrorIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Complete(context.Background(), schema.NewMessages(schema.NewUserMessage("hi")), nil)
	require.Error(t, err)
	assert.True(t, IsTransport(err))

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusServiceUnavailable, te.StatusCode)
}

func TestComplete_RateLimitIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Complete(context.Background(), schema.NewMessages(schema.NewUserMessage("hi")), nil)
	require.Error(t, err)
	assert.True(t, IsTransport(err))
}

func TestComplete_ClientErrorIsNotTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid model"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Complete(context.Background(), schema.NewMessages(schema.NewUserMessage("hi")), nil)
	require.Error(t, err)
	assert.False(t, IsTransport(err), "a 4xx is the caller's fault, retrying cannot help")
	assert.Contains(t, err.Error(), "400")
}

func TestComplete_ConnectionRefusedIsTransport(t *testing.T) {
	// Grab a port that nothing listens on.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).Complete(context.Background(), schema.NewMessages(schema.NewUserMessage("hi")), nil)
	require.Error(t, err)
	assert.True(t, IsTransport(err))
}

func TestComplete_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Complete(context.Background(), schema.NewMessages(schema.NewUserMessage("hi")), nil)
	require.Error(t, err)
	assert.False(t, IsTransport(err))
}
