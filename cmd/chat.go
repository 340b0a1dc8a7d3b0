package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pulsecoach/pulsecoach/internal/config"
	"github.com/pulsecoach/pulsecoach/internal/dependency"
	"github.com/pulsecoach/pulsecoach/internal/schema"
)

var (
	chatMessage string
	chatUser    string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the coaching agent",
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatMessage, "message", "m", "", "Send a single message and exit")
	chatCmd.Flags().StringVarP(&chatUser, "user", "u", "local", "User ID for quota accounting")
}

var exitCommands = map[string]bool{
	"exit":  true,
	"quit":  true,
	"/exit": true,
	"/quit": true,
	":q":    true,
}

func runChat(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	container, err := dependency.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch := container.Orchestrator()

	if chatMessage != "" {
		reply, err := orch.ProcessMessage(ctx, chatUser, chatMessage, schema.NewMessages())
		if err != nil {
			return err
		}
		printReply(reply.Answer, reply.Insight)
		return nil
	}

	// Interactive session: the transcript of earlier exchanges is fed
	// back as prior history so the agent keeps context across turns.
	fmt.Printf("%s pulsecoach — type a message (exit to quit)\n\n", logo)
	history := schema.NewMessages()
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if exitCommands[strings.ToLower(line)] {
			return nil
		}

		reply, err := orch.ProcessMessage(ctx, chatUser, line, history)
		if err != nil {
			return err
		}
		printReply(reply.Answer, reply.Insight)

		history.AddUser(line)
		history.AddAssistant(reply.Answer, nil)
	}
}

func printReply(answer, insight string) {
	fmt.Printf("\ncoach> %s\n", answer)
	if insight != "" {
		fmt.Printf("insight> %s\n", insight)
	}
	fmt.Println()
}
