// Package config defines the configuration schema for the pulsecoach
// agent core and its JSON file loader.
package config

import "time"

// LLMConfig holds credentials and defaults for the completion service.
type LLMConfig struct {
	APIKey       string            `json:"apiKey"`
	APIBase      string            `json:"apiBase,omitempty"`
	Model        string            `json:"model"`
	MaxTokens    int               `json:"maxTokens"`
	Temperature  float64           `json:"temperature"`
	ExtraHeaders map[string]string `json:"extraHeaders,omitempty"`
}

func defaultLLMConfig() LLMConfig {
	return LLMConfig{
		Model:       "gpt-4o-mini",
		MaxTokens:   4096,
		Temperature: 0.7,
	}
}

// AgentConfig holds orchestrator behaviour settings.
type AgentConfig struct {
	// MaxTurns bounds the number of completion-service round trips per
	// message; reaching it aborts the session with a fallback reply.
	MaxTurns int `json:"maxTurns"`
	// CompletionTimeoutSec bounds one completion-service call.
	CompletionTimeoutSec int `json:"completionTimeoutSec"`
	// ToolTimeoutSec bounds one tool execution; a timed-out tool call is
	// a provider failure, not a session failure.
	ToolTimeoutSec int `json:"toolTimeoutSec"`
	// CompletionRetries is the attempt ceiling for transport failures.
	CompletionRetries int `json:"completionRetries"`
}

func defaultAgentConfig() AgentConfig {
	return AgentConfig{
		MaxTurns:             5,
		CompletionTimeoutSec: 120,
		ToolTimeoutSec:       30,
		CompletionRetries:    3,
	}
}

// CompletionTimeout returns CompletionTimeoutSec as a duration.
func (a AgentConfig) CompletionTimeout() time.Duration {
	return time.Duration(a.CompletionTimeoutSec) * time.Second
}

// ToolTimeout returns ToolTimeoutSec as a duration.
func (a AgentConfig) ToolTimeout() time.Duration {
	return time.Duration(a.ToolTimeoutSec) * time.Second
}

// QuotaConfig holds per-day tool-call budget settings.
type QuotaConfig struct {
	RedisAddr     string `json:"redisAddr"`
	RedisPassword string `json:"redisPassword,omitempty"`
	RedisDB       int    `json:"redisDb,omitempty"`
	// FreeDailyLimit and PaidDailyLimit are the per-user daily message
	// ceilings for the two subscription tiers.
	FreeDailyLimit int `json:"freeDailyLimit"`
	PaidDailyLimit int `json:"paidDailyLimit"`
}

func defaultQuotaConfig() QuotaConfig {
	return QuotaConfig{
		RedisAddr:      "localhost:6379",
		FreeDailyLimit: 20,
		PaidDailyLimit: 200,
	}
}

// DigestUser is one user enrolled in the scheduled daily check-in.
type DigestUser struct {
	ID   string `json:"id"`
	Tier string `json:"tier"` // "free" | "paid"
}

// DigestConfig configures the cron-driven daily check-in.
type DigestConfig struct {
	Enabled bool `json:"enabled"`
	// Schedule is a cron expression; default fires at 08:00 every day.
	Schedule string       `json:"schedule"`
	Users    []DigestUser `json:"users,omitempty"`
}

func defaultDigestConfig() DigestConfig {
	return DigestConfig{Schedule: "0 8 * * *"}
}

// MetricsConfig configures the Prometheus metrics listener.
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{Addr: ":9473"}
}

// Config is the root configuration object.
type Config struct {
	LLM     LLMConfig     `json:"llm"`
	Agent   AgentConfig   `json:"agent"`
	Quota   QuotaConfig   `json:"quota"`
	Digest  DigestConfig  `json:"digest"`
	Metrics MetricsConfig `json:"metrics"`
}

// DefaultConfig returns a Config populated with every default value.
func DefaultConfig() Config {
	return Config{
		LLM:     defaultLLMConfig(),
		Agent:   defaultAgentConfig(),
		Quota:   defaultQuotaConfig(),
		Digest:  defaultDigestConfig(),
		Metrics: defaultMetricsConfig(),
	}
}
