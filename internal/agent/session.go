package agent

import (
	"github.com/google/uuid"

	"github.com/pulsecoach/pulsecoach/internal/schema"
)

// State is the orchestrator's explicit state machine position. Modelling
// the "ask the completion service what to do next" flow as a state
// machine keeps the turn-budget termination and cancellation points
// auditable.
type State string

const (
	StateAwaitingCompletion State = "awaiting_completion"
	StateExecutingTools     State = "executing_tools"
	StateDone               State = "done"
	StateAborted            State = "aborted"
)

// AbortReason distinguishes why a session ended in StateAborted.
type AbortReason string

const (
	AbortQuotaExceeded    AbortReason = "quota_exceeded"
	AbortTransportFailure AbortReason = "transport_failure"
	AbortTurnBudget       AbortReason = "turn_budget"
)

// Session is the ephemeral state of one ProcessMessage invocation: the
// growing transcript, the completion-visit counter, and the user the
// call is accounted against. Sessions are created fresh per request,
// never shared, and discarded when the call returns; persistence of
// history across calls belongs to the storage layer that supplies the
// prior transcript.
type Session struct {
	ID         string
	UserID     string
	State      State
	Transcript schema.Messages
	// CompletionVisits counts entries to StateAwaitingCompletion; the
	// orchestrator's turn budget is a hard ceiling on it.
	CompletionVisits int

	harvest harvest
}

// newSession seeds a session transcript with the fixed system
// instruction, the caller-supplied prior history, and the new user
// message.
func newSession(userID, message string, prior schema.Messages) *Session {
	transcript := schema.NewMessages(schema.NewSystemMessage(systemPrompt))
	transcript.Append(prior)
	transcript.AddUser(message)

	return &Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		State:      StateAwaitingCompletion,
		Transcript: transcript,
	}
}

// systemPrompt is the fixed instruction seeding every session.
const systemPrompt = `You are PulseCoach, a friendly and knowledgeable health coach.

You help users understand their fitness and health data, stay on track with
their goals, and build sustainable habits. Use the available tools to read
the user's data before answering questions about it. Ground every claim in
actual numbers from tool results. Keep answers short, encouraging, and
concrete; never invent data you did not read.`
