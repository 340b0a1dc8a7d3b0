// Package agent implements the orchestration core: the stateful
// multi-turn driver that turns one user message into a bounded sequence
// of completion-service calls and tool executions, and synthesizes an
// optional coaching insight from the data those tools returned.
package agent

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/pulsecoach/pulsecoach/internal/completion"
	"github.com/pulsecoach/pulsecoach/internal/config"
	"github.com/pulsecoach/pulsecoach/internal/dispatch"
	"github.com/pulsecoach/pulsecoach/internal/metrics"
	"github.com/pulsecoach/pulsecoach/internal/quota"
	"github.com/pulsecoach/pulsecoach/internal/schema"
)

// Fixed user-facing terminal messages. No terminal path ever leaks a raw
// provider error or stack trace.
const (
	quotaExceededMessage = "You've reached today's coaching limit. Your check-ins reset at midnight — see you tomorrow!"
	apologyMessage       = "Sorry, I'm having trouble reaching the coaching service right now. Please try again in a moment."
	turnBudgetMessage    = "I'm having trouble finishing that one. Could you rephrase, or try again in a bit?"
)

// Reply is the outcome of one ProcessMessage call.
type Reply struct {
	Answer string
	// Insight is a single synthesized coaching sentence, empty when no
	// tool returned data worth analyzing.
	Insight string
}

// TierResolver maps a user to their subscription tier. The surrounding
// auth layer owns tier knowledge; the core only consumes it.
type TierResolver func(userID string) schema.SubscriptionTier

// Orchestrator drives agent sessions. Construct one per process and
// share it; per-request state lives in the Session it creates.
type Orchestrator struct {
	completions schema.CompletionService
	dispatcher  *dispatch.Dispatcher
	guard       *quota.Guard
	settings    config.AgentConfig
	tierFor     TierResolver
	// retryInterval overrides the backoff's initial interval; zero keeps
	// the library default. Tests shrink it.
	retryInterval time.Duration
}

// New creates an Orchestrator. tierFor may be nil, in which case every
// user is treated as free tier.
func New(
	completions schema.CompletionService,
	dispatcher *dispatch.Dispatcher,
	guard *quota.Guard,
	settings config.AgentConfig,
	tierFor TierResolver,
) *Orchestrator {
	if settings.MaxTurns <= 0 {
		settings.MaxTurns = 5
	}
	if settings.CompletionRetries <= 0 {
		settings.CompletionRetries = 3
	}
	if tierFor == nil {
		tierFor = func(string) schema.SubscriptionTier { return schema.TierFree }
	}
	return &Orchestrator{
		completions: completions,
		dispatcher:  dispatcher,
		guard:       guard,
		settings:    settings,
		tierFor:     tierFor,
	}
}

// ProcessMessage is the single entry point the chat layer calls. It is
// synchronous from the caller's point of view even though it may perform
// several sequential network round trips internally.
//
// The returned error is non-nil only when ctx was cancelled; every other
// failure surfaces as a fixed user-facing message in the Reply.
func (o *Orchestrator) ProcessMessage(ctx context.Context, userID, message string, prior schema.Messages) (Reply, error) {
	sess := newSession(userID, message, prior)

	// The completion call is the rationed resource: deny before making
	// one. The check itself consumes quota, allowed or not.
	allowed, err := o.guard.IsAllowed(ctx, userID, o.tierFor(userID))
	if err != nil {
		sess.State = StateAborted
		metrics.SessionsAborted.WithLabelValues(string(AbortTransportFailure)).Inc()
		return Reply{Answer: apologyMessage}, nil
	}
	if !allowed {
		sess.State = StateAborted
		metrics.SessionsAborted.WithLabelValues(string(AbortQuotaExceeded)).Inc()
		return Reply{Answer: quotaExceededMessage}, nil
	}

	answer, err := o.runLoop(ctx, sess)
	if err != nil {
		// Cancellation: stop at the turn boundary, release without
		// completing pending iterations.
		return Reply{}, err
	}

	return Reply{Answer: answer, Insight: sess.harvest.synthesize()}, nil
}

// runLoop drives the state machine until a terminal state. It returns
// the user-facing answer, or ctx.Err() on cancellation.
func (o *Orchestrator) runLoop(ctx context.Context, sess *Session) (string, error) {
	for sess.CompletionVisits < o.settings.MaxTurns {
		// Turn boundary: the safe cancellation point.
		if err := ctx.Err(); err != nil {
			sess.State = StateAborted
			return "", err
		}

		sess.State = StateAwaitingCompletion
		sess.CompletionVisits++

		comp, err := o.completeWithRetry(ctx, sess)
		if err != nil {
			if ctx.Err() != nil {
				sess.State = StateAborted
				return "", ctx.Err()
			}
			slog.Error("completion failed", "error_kind", "transport_failure", "user_id", sess.UserID, "err", err)
			sess.State = StateAborted
			metrics.SessionsAborted.WithLabelValues(string(AbortTransportFailure)).Inc()
			return apologyMessage, nil
		}

		if !comp.HasToolCalls() {
			sess.Transcript.AddAssistant(comp.Content, nil)
			sess.State = StateDone
			return comp.Content, nil
		}

		o.executeTools(ctx, sess, comp)
	}

	// Turn budget exhausted: terminal but not an error. This is the
	// guard against a malformed or adversarial completion response
	// causing unbounded tool execution.
	slog.Warn("turn budget exhausted", "error_kind", "turn_budget", "user_id", sess.UserID, "visits", sess.CompletionVisits)
	sess.State = StateAborted
	metrics.SessionsAborted.WithLabelValues(string(AbortTurnBudget)).Inc()
	return turnBudgetMessage, nil
}

// executeTools runs the completion's tool-call batch sequentially, in
// the order the completion service returned it. Ordering is a
// correctness requirement, not an optimization opportunity: providers
// may depend on a prior call's side effect within the same turn, and
// the completion service may associate results with requests
// positionally. Every result — success or failure — is appended as a
// tool turn; failures are never retried here, they are context the
// completion service uses to pick its own recovery.
func (o *Orchestrator) executeTools(ctx context.Context, sess *Session, comp schema.Completion) {
	sess.State = StateExecutingTools

	calls := make([]schema.ToolCall, 0, len(comp.ToolCalls))
	for _, tc := range comp.ToolCalls {
		calls = append(calls, schema.ToolCall{ID: tc.ID, Name: tc.Name, Arguments: tc.Arguments})
	}
	sess.Transcript.AddAssistant(comp.Content, calls)

	for _, tc := range comp.ToolCalls {
		slog.Info("tool call", "user_id", sess.UserID, "tool_name", tc.Name)
		result := o.dispatcher.Execute(ctx, tc.Name, tc.Arguments, sess.UserID)
		sess.harvest.observe(tc.Name, result)
		sess.Transcript.AddToolResult(tc.ID, tc.Name, result.Serialize())
	}
}

// completeWithRetry calls the completion service, retrying transport
// failures with bounded exponential backoff before giving up. Tool
// schemas are listed fresh for every attempt — providers may change
// capabilities under the live user.
func (o *Orchestrator) completeWithRetry(ctx context.Context, sess *Session) (schema.Completion, error) {
	operation := func() (schema.Completion, error) {
		cctx := ctx
		if o.settings.CompletionTimeout() > 0 {
			var cancel context.CancelFunc
			cctx, cancel = context.WithTimeout(ctx, o.settings.CompletionTimeout())
			defer cancel()
		}

		comp, err := o.completions.Complete(cctx, sess.Transcript, o.dispatcher.ListAllToolSchemas(sess.UserID))
		if err != nil {
			if completion.IsTransport(err) {
				slog.Warn("completion transport failure, retrying", "error_kind", "transport_failure", "user_id", sess.UserID, "err", err)
				return schema.Completion{}, err
			}
			return schema.Completion{}, backoff.Permanent(err)
		}
		return comp, nil
	}

	expo := backoff.NewExponentialBackOff()
	if o.retryInterval > 0 {
		expo.InitialInterval = o.retryInterval
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(expo, uint64(o.settings.CompletionRetries-1)),
		ctx,
	)
	return backoff.RetryWithData(operation, policy)
}
