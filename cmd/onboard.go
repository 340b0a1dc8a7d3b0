package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pulsecoach/pulsecoach/internal/config"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize configuration",
	RunE:  runOnboard,
}

func runOnboard(_ *cobra.Command, _ []string) error {
	cfgPath := config.ConfigPath()

	if _, err := os.Stat(cfgPath); err == nil {
		fmt.Printf("Config already exists at %s\n", cfgPath)
		fmt.Printf("Press Enter to refresh (keep existing values) or Ctrl+C to cancel: ")
		fmt.Scanln()
		existing, loadErr := config.Load(cfgPath)
		if loadErr != nil {
			def := config.DefaultConfig()
			existing = &def
		}
		if err := config.Save(existing, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Config refreshed at %s\n", cfgPath)
		return nil
	}

	cfg := config.DefaultConfig()
	if err := config.Save(&cfg, cfgPath); err != nil {
		return err
	}
	fmt.Printf("✓ Created config at %s\n", cfgPath)
	fmt.Println("Next: add your API key under \"llm\" and point \"quota.redisAddr\" at your Redis.")

	return nil
}
