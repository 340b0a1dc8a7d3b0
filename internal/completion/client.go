// Package completion implements the completion-service contract against
// any OpenAI-compatible chat completions endpoint.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pulsecoach/pulsecoach/internal/config"
	"github.com/pulsecoach/pulsecoach/internal/metrics"
	"github.com/pulsecoach/pulsecoach/internal/schema"
)

// Client makes direct HTTP calls to an OpenAI-compatible endpoint.
// It implements schema.CompletionService.
type Client struct {
	apiKey       string
	apiBase      string
	model        string
	maxTokens    int
	temperature  float64
	extraHeaders map[string]string
	httpClient   *http.Client
}

// NewClient constructs a Client from config values. timeout bounds each
// HTTP round trip.
func NewClient(cfg config.LLMConfig, timeout time.Duration) *Client {
	apiBase := strings.TrimRight(cfg.APIBase, "/")
	if apiBase == "" {
		apiBase = "https://api.openai.com/v1"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	return &Client{
		apiKey:       cfg.APIKey,
		apiBase:      apiBase,
		model:        cfg.Model,
		maxTokens:    maxTokens,
		temperature:  cfg.Temperature,
		extraHeaders: cfg.ExtraHeaders,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// Complete implements schema.CompletionService.
func (c *Client) Complete(ctx context.Context, messages schema.Messages, tools []map[string]any) (schema.Completion, error) {
	body := map[string]any{
		"model":       c.model,
		"messages":    wireMessages(messages),
		"max_tokens":  c.maxTokens,
		"temperature": c.temperature,
	}
	if len(tools) > 0 {
		body["tools"] = tools
		body["tool_choice"] = "auto"
	}

	data, err := json.Marshal(body)
	if err != nil {
		return schema.Completion{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.apiBase+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return schema.Completion{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	for k, v := range c.extraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.CompletionCalls.WithLabelValues("error").Inc()
		return schema.Completion{}, &TransportError{Err: fmt.Errorf("HTTP request: %w", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.CompletionCalls.WithLabelValues("error").Inc()
		return schema.Completion{}, &TransportError{Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		metrics.CompletionCalls.WithLabelValues("error").Inc()
		err := fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(string(raw), 200))
		if retryableStatus(resp.StatusCode) {
			return schema.Completion{}, &TransportError{StatusCode: resp.StatusCode, Err: err}
		}
		return schema.Completion{}, err
	}

	completion, err := parseResponse(raw)
	if err != nil {
		metrics.CompletionCalls.WithLabelValues("error").Inc()
		return schema.Completion{}, err
	}

	metrics.CompletionCalls.WithLabelValues("ok").Inc()
	return completion, nil
}

// retryableStatus reports whether a status code indicates a transient
// condition worth retrying: rate limiting or server-side failure.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// ---------------------------------------------------------------------------
// Wire format
// ---------------------------------------------------------------------------

func wireMessages(messages schema.Messages) []map[string]any {
	out := make([]map[string]any, 0, len(messages.Messages))
	for _, m := range messages.Messages {
		out = append(out, messageToWireMap(m))
	}
	return out
}

func messageToWireMap(m schema.Message) map[string]any {
	wire := map[string]any{
		"role":    m.Role,
		"content": m.Content,
	}
	if len(m.ToolCalls) > 0 {
		calls := make([]map[string]any, 0, len(m.ToolCalls))
		for _, tc := range m.ToolCalls {
			calls = append(calls, tc.ToWireMap())
		}
		wire["tool_calls"] = calls
	}
	if m.Role == schema.RoleTool {
		wire["tool_call_id"] = m.ToolCallID
		wire["name"] = m.ToolName
	}
	return wire
}

// respBody models the OpenAI chat completions response.
type respBody struct {
	Choices []struct {
		Message struct {
			Content   any `json:"content"`
			ToolCalls []struct {
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(raw []byte) (schema.Completion, error) {
	var body respBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return schema.Completion{}, fmt.Errorf("parse completion response: %w", err)
	}
	if len(body.Choices) == 0 {
		return schema.Completion{}, fmt.Errorf("empty choices in response")
	}

	msg := body.Choices[0].Message

	content := ""
	if s, ok := msg.Content.(string); ok {
		content = s
	}

	var toolCalls []schema.ToolCallRequest
	for _, tc := range msg.ToolCalls {
		args, err := decodeArguments(tc.Function.Arguments)
		if err != nil {
			slog.Warn("failed to parse tool arguments", "tool_name", tc.Function.Name, "err", err)
			args = map[string]any{}
		}
		toolCalls = append(toolCalls, schema.ToolCallRequest{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}

	return schema.Completion{Content: content, ToolCalls: toolCalls}, nil
}

// decodeArguments unmarshals a tool-call argument string, tolerating the
// empty string some models emit for zero-argument tools.
func decodeArguments(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("unmarshal arguments: %w", err)
	}
	return args, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
