package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pulsecoach/pulsecoach/internal/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pulsecoach status",
	RunE:  runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfgPath := config.ConfigPath()

	fmt.Printf("%s pulsecoach Status\n\n", logo)

	_, statErr := os.Stat(cfgPath)
	cfgMark := "✗"
	if statErr == nil {
		cfgMark = "✓"
	}
	fmt.Printf("Config:   %s %s\n", cfgPath, cfgMark)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  (could not load config: %v)\n", err)
		return nil
	}

	keyMark := "✗ not set"
	if cfg.LLM.APIKey != "" {
		keyMark = "✓ set"
	}
	fmt.Printf("Model:    %s\n", cfg.LLM.Model)
	fmt.Printf("API key:  %s\n", keyMark)
	fmt.Printf("Redis:    %s\n", cfg.Quota.RedisAddr)
	fmt.Printf("Quota:    free %d/day, paid %d/day\n", cfg.Quota.FreeDailyLimit, cfg.Quota.PaidDailyLimit)
	fmt.Printf("Turns:    max %d per message\n", cfg.Agent.MaxTurns)

	digestMark := "disabled"
	if cfg.Digest.Enabled {
		digestMark = fmt.Sprintf("%q, %d users", cfg.Digest.Schedule, len(cfg.Digest.Users))
	}
	fmt.Printf("Digest:   %s\n", digestMark)

	return nil
}
