// Package dependency wires the core pulsecoach services using
// go.uber.org/dig. Registry state and quota counters are constructed
// once per process and injected, never reached through ambient
// singletons, so sessions stay testable in isolation.
package dependency

import (
	"fmt"

	"go.uber.org/dig"

	"github.com/pulsecoach/pulsecoach/internal/agent"
	"github.com/pulsecoach/pulsecoach/internal/completion"
	"github.com/pulsecoach/pulsecoach/internal/config"
	"github.com/pulsecoach/pulsecoach/internal/digest"
	"github.com/pulsecoach/pulsecoach/internal/dispatch"
	"github.com/pulsecoach/pulsecoach/internal/quota"
	"github.com/pulsecoach/pulsecoach/internal/reasoning"
	"github.com/pulsecoach/pulsecoach/internal/registry"
	"github.com/pulsecoach/pulsecoach/internal/schema"
)

// Container holds the resolved core service singletons.
// Callers use the typed getter methods; they never import dig directly.
type Container struct {
	registry     *registry.Registry
	orchestrator *agent.Orchestrator
	digestSvc    *digest.Service
}

func (c *Container) Registry() *registry.Registry      { return c.registry }
func (c *Container) Orchestrator() *agent.Orchestrator { return c.orchestrator }
func (c *Container) Digest() *digest.Service           { return c.digestSvc }

// New builds the container from cfg. Capability providers beyond the
// built-in reasoning tools are registered by the caller via Registry().
func New(cfg *config.Config) (*Container, error) {
	d := dig.New()

	for _, provide := range []any{
		func() *config.Config { return cfg },
		newCounterStore,
		newGuard,
		newRegistry,
		newDispatcher,
		newCompletionService,
		newOrchestrator,
		newDigestService,
	} {
		if err := d.Provide(provide); err != nil {
			return nil, err
		}
	}

	var result *Container
	err := d.Invoke(func(
		reg *registry.Registry,
		orch *agent.Orchestrator,
		digestSvc *digest.Service,
	) {
		result = &Container{
			registry:     reg,
			orchestrator: orch,
			digestSvc:    digestSvc,
		}
	})
	return result, err
}

func newCounterStore(cfg *config.Config) schema.CounterStore {
	return quota.NewRedisStore(cfg.Quota.RedisAddr, cfg.Quota.RedisPassword, cfg.Quota.RedisDB)
}

func newGuard(cfg *config.Config, store schema.CounterStore) *quota.Guard {
	return quota.NewGuard(store, quota.Limits{
		Free: cfg.Quota.FreeDailyLimit,
		Paid: cfg.Quota.PaidDailyLimit,
	})
}

func newRegistry() (*registry.Registry, error) {
	reg := registry.New()
	if err := reg.Register(reasoning.NewProvider()); err != nil {
		return nil, fmt.Errorf("register reasoning provider: %w", err)
	}
	return reg, nil
}

func newDispatcher(cfg *config.Config, reg *registry.Registry) *dispatch.Dispatcher {
	return dispatch.New(reg, cfg.Agent.ToolTimeout())
}

func newCompletionService(cfg *config.Config) (schema.CompletionService, error) {
	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("no API key configured — edit %s", config.ConfigPath())
	}
	return completion.NewClient(cfg.LLM, cfg.Agent.CompletionTimeout()), nil
}

func newOrchestrator(
	cfg *config.Config,
	completions schema.CompletionService,
	dispatcher *dispatch.Dispatcher,
	guard *quota.Guard,
) *agent.Orchestrator {
	return agent.New(completions, dispatcher, guard, cfg.Agent, digest.TierResolver(cfg.Digest))
}

func newDigestService(cfg *config.Config, orch *agent.Orchestrator) *digest.Service {
	return digest.NewService(orch, cfg.Digest)
}
