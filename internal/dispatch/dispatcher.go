// Package dispatch routes named tool calls to the capability provider
// that declares them and aggregates the full tool schema list used to
// build each completion-service prompt.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pulsecoach/pulsecoach/internal/metrics"
	"github.com/pulsecoach/pulsecoach/internal/registry"
	"github.com/pulsecoach/pulsecoach/internal/schema"
)

// Dispatcher resolves tool calls against the live registry contents.
// It never caches schema lists: providers may expose different tools per
// user, so both listing and routing consult providers fresh each time.
type Dispatcher struct {
	registry    *registry.Registry
	toolTimeout time.Duration
}

// New creates a Dispatcher over reg. toolTimeout bounds each provider
// execution; zero disables the per-call timeout.
func New(reg *registry.Registry, toolTimeout time.Duration) *Dispatcher {
	return &Dispatcher{registry: reg, toolTimeout: toolTimeout}
}

// ListAllToolSchemas flattens every registered provider's current tool
// schemas, in provider registration order, as OpenAI function-calling
// definitions ready for the prompt's tools parameter.
func (d *Dispatcher) ListAllToolSchemas(userID string) []map[string]any {
	var defs []map[string]any
	for _, p := range d.registry.All() {
		for _, ts := range p.ToolSchemas(userID) {
			defs = append(defs, ts.Definition())
		}
	}
	return defs
}

// Execute routes one tool call to its owning provider and returns the
// result. Every failure mode — unknown tool, provider error, provider
// panic, timeout — is converted into a failed ToolResult so the agent
// loop can feed it back into the transcript; a raw error never escapes.
func (d *Dispatcher) Execute(ctx context.Context, toolName string, args map[string]any, userID string) schema.ToolResult {
	provider := d.findOwner(toolName, userID)
	if provider == nil {
		slog.Warn("tool not found", "error_kind", "tool_not_found", "user_id", userID, "tool_name", toolName)
		metrics.ToolExecutions.WithLabelValues(toolName, "error").Inc()
		return schema.FailResult(fmt.Sprintf("tool %q is not available", toolName))
	}

	if d.toolTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.toolTimeout)
		defer cancel()
	}

	result := d.safeExecute(ctx, provider, toolName, args, userID)

	if ctx.Err() != nil && !result.Success {
		// Timed-out tool calls are provider failures, not session failures.
		slog.Warn("tool timed out", "error_kind", "tool_timeout", "user_id", userID, "tool_name", toolName)
		result = schema.FailResult(fmt.Sprintf("tool %q timed out", toolName))
	}

	outcome := "ok"
	if !result.Success {
		outcome = "error"
		slog.Warn("tool failed", "error_kind", "tool_failure", "user_id", userID, "tool_name", toolName, "err", result.Error)
	}
	metrics.ToolExecutions.WithLabelValues(toolName, outcome).Inc()

	return result
}

// findOwner scans each provider's current schema list for toolName.
// A scan, not a static index: schemas can be session- or user-dependent.
func (d *Dispatcher) findOwner(toolName, userID string) schema.CapabilityProvider {
	for _, p := range d.registry.All() {
		for _, ts := range p.ToolSchemas(userID) {
			if ts.Name == toolName {
				return p
			}
		}
	}
	return nil
}

// safeExecute invokes the provider, converting a panic into a failed
// result so one misbehaving adapter cannot take down the session.
func (d *Dispatcher) safeExecute(ctx context.Context, p schema.CapabilityProvider, toolName string, args map[string]any, userID string) (result schema.ToolResult) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("provider panicked", "error_kind", "provider_panic", "user_id", userID, "tool_name", toolName, "panic", rec)
			result = schema.FailResult(fmt.Sprintf("tool %q failed unexpectedly", toolName))
		}
	}()
	return p.Execute(ctx, toolName, args, userID)
}
