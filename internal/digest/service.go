// Package digest runs the scheduled daily check-in: a canned coaching
// prompt pushed through the orchestrator for every enrolled user.
package digest

import (
	"context"
	"log/slog"

	robfigcron "github.com/robfig/cron/v3"

	"github.com/pulsecoach/pulsecoach/internal/agent"
	"github.com/pulsecoach/pulsecoach/internal/config"
	"github.com/pulsecoach/pulsecoach/internal/schema"
)

// digestPrompt is the canned check-in message sent on each fire.
const digestPrompt = "Give me a quick summary of how I'm doing today — steps, calories, and progress toward my goals."

// OnReplyFunc receives each user's digest reply. The excluded push layer
// hooks in here; by default replies are only logged.
type OnReplyFunc func(userID string, reply agent.Reply)

// Service schedules and runs the daily digest.
type Service struct {
	orch    *agent.Orchestrator
	cfg     config.DigestConfig
	cron    *robfigcron.Cron
	onReply OnReplyFunc
}

// NewService creates a digest Service from config.
func NewService(orch *agent.Orchestrator, cfg config.DigestConfig) *Service {
	return &Service{
		orch: orch,
		cfg:  cfg,
		cron: robfigcron.New(),
	}
}

// SetOnReply registers the reply callback. Must be called before Start.
func (s *Service) SetOnReply(fn OnReplyFunc) { s.onReply = fn }

// Start arms the schedule and blocks until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	if !s.cfg.Enabled || len(s.cfg.Users) == 0 {
		slog.Info("digest: disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	_, err := s.cron.AddFunc(s.cfg.Schedule, func() { s.runAll(ctx) })
	if err != nil {
		return err
	}

	s.cron.Start()
	slog.Info("digest: started", "schedule", s.cfg.Schedule, "users", len(s.cfg.Users))

	<-ctx.Done()
	<-s.cron.Stop().Done()
	return ctx.Err()
}

// runAll processes the digest prompt for each enrolled user in turn.
// Users are independent: one failing digest never blocks the rest.
func (s *Service) runAll(ctx context.Context) {
	for _, user := range s.cfg.Users {
		if ctx.Err() != nil {
			return
		}

		reply, err := s.orch.ProcessMessage(ctx, user.ID, digestPrompt, schema.NewMessages())
		if err != nil {
			slog.Warn("digest: cancelled", "user_id", user.ID, "err", err)
			return
		}

		slog.Info("digest: reply", "user_id", user.ID, "answer_len", len(reply.Answer), "insight", reply.Insight)
		if s.onReply != nil {
			s.onReply(user.ID, reply)
		}
	}
}

// TierResolver builds an agent.TierResolver from the digest enrollment
// list; unknown users default to the free tier.
func TierResolver(cfg config.DigestConfig) agent.TierResolver {
	tiers := make(map[string]schema.SubscriptionTier, len(cfg.Users))
	for _, u := range cfg.Users {
		if u.Tier == string(schema.TierPaid) {
			tiers[u.ID] = schema.TierPaid
		} else {
			tiers[u.ID] = schema.TierFree
		}
	}
	return func(userID string) schema.SubscriptionTier {
		if t, ok := tiers[userID]; ok {
			return t
		}
		return schema.TierFree
	}
}
