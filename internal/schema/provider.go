package schema

import (
	"context"
	"time"
)

// ToolCallRequest represents one tool invocation requested by the
// completion service.
type ToolCallRequest struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// Completion is the normalised response from the completion service:
// either a final answer (no tool calls) or a batch of tool-call requests
// to execute in order.
type Completion struct {
	Content   string
	ToolCalls []ToolCallRequest
}

// HasToolCalls reports whether the completion requests at least one tool.
func (c Completion) HasToolCalls() bool { return len(c.ToolCalls) > 0 }

// CompletionService is the opaque remote service that decides the next
// step of a conversation. Implementations are subject to transport
// failure; the orchestrator owns the retry policy.
type CompletionService interface {
	Complete(ctx context.Context, messages Messages, tools []map[string]any) (Completion, error)
}

// SubscriptionTier identifies a user's plan for quota accounting.
type SubscriptionTier string

const (
	TierFree SubscriptionTier = "free"
	TierPaid SubscriptionTier = "paid"
)

// CounterStore is the shared atomic counter backing quota accounting.
// IncrementAndGet atomically increments key and returns the new count;
// when the increment created the key, ttlIfNew is attached so the record
// expires at the period boundary without a cleanup job. Used exclusively
// by the quota guard.
type CounterStore interface {
	IncrementAndGet(ctx context.Context, key string, ttlIfNew time.Duration) (int64, error)
}
