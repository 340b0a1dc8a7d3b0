// Package schema contains the core contracts shared across pulsecoach
// packages. Concrete implementations live in their respective packages;
// this package is the single canonical source of truth for every shared
// type and interface definition.
package schema

import (
	"context"
	"encoding/json"
)

// ToolSchema describes one tool a capability provider exposes to the
// completion service: a globally unique name, a human-readable description,
// and a JSON Schema for its parameters.
type ToolSchema struct {
	Name        string
	Description string
	// Parameters is the JSON Schema (as raw JSON bytes) for this tool's
	// parameters, including its required-parameter list.
	Parameters json.RawMessage
}

// Definition returns the schema in OpenAI function-calling format.
func (ts ToolSchema) Definition() map[string]any {
	var params any
	if err := json.Unmarshal(ts.Parameters, &params); err != nil || params == nil {
		params = map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return map[string]any{
		"type": "function",
		"function": map[string]any{
			"name":        ts.Name,
			"description": ts.Description,
			"parameters":  params,
		},
	}
}

// ToolResult is the structured outcome of one tool execution.
//
// The Success/Data/Error pairing is enforced by the constructors: a failed
// result never carries data and always carries a non-empty error string.
// Callers must use OKResult / FailResult rather than struct literals.
type ToolResult struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// OKResult returns a successful ToolResult carrying data.
func OKResult(data map[string]any) ToolResult {
	return ToolResult{Success: true, Data: data}
}

// FailResult returns a failed ToolResult carrying only an error string.
// An empty message is normalised to a generic one so the invariant
// "failure implies non-empty error" always holds.
func FailResult(message string) ToolResult {
	if message == "" {
		message = "tool execution failed"
	}
	return ToolResult{Success: false, Error: message}
}

// Serialize renders the result as the JSON string appended to the
// transcript as a tool turn. Failures serialize too — they are context
// the completion service uses to self-correct, never dropped.
func (r ToolResult) Serialize() string {
	data, err := json.Marshal(r)
	if err != nil {
		return `{"success":false,"error":"unserializable tool result"}`
	}
	return string(data)
}

// CapabilityProvider is the contract every external-integration adapter
// (fitness APIs, on-device health-store bridges, deep-link launchers)
// must satisfy. The core never reaches into a provider's internals.
type CapabilityProvider interface {
	// Name is the stable registry routing key for this provider.
	Name() string
	// ToolSchemas returns the provider's current tool set. It is consulted
	// fresh on every schema-list request: providers may expose different
	// tools per user (e.g. which third-party accounts are connected).
	ToolSchemas(userID string) []ToolSchema
	// Execute runs one tool the provider declared. toolName has already
	// been validated as owned by this provider.
	Execute(ctx context.Context, toolName string, args map[string]any, userID string) ToolResult
}
