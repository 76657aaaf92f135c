package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tbxark/bureaubot/agent"
)

var chatSession string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant in the terminal",
	Long: `Chat runs the assistant as an interactive terminal session. Type /reset
to start over and /quit to leave.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatSession, "session", "", "session id to resume (default: new)")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Log.File == "" {
		cfg.Log.Level = "warn"
	}
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	id := chatSession
	if id == "" {
		id = uuid.NewString()
	}
	ctx = agent.WithSessionID(ctx, id)
	runner := adk.NewRunner(ctx, adk.RunnerConfig{
		Agent: agent.NewAgent("BureauBot", "Helps users pick and fill government forms", a.orch),
	})

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "BureauBot (session %s). Describe your situation.\n", id)
	reader := bufio.NewReader(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "\nYou: ")
		line, rErr := reader.ReadString('\n')
		input := strings.TrimSpace(line)
		if input == "" {
			if rErr != nil {
				return nil
			}
			continue
		}
		switch input {
		case "/quit", "/exit":
			return nil
		case "/reset":
			if err := a.orch.Reset(ctx, id); err != nil {
				return err
			}
			fmt.Fprintln(out, "Session cleared.")
			continue
		}

		iter := runner.Run(ctx, []*schema.Message{schema.UserMessage(input)})
		for {
			event, ok := iter.Next()
			if !ok {
				break
			}
			if event.Err != nil {
				return event.Err
			}
			msg, mErr := event.Output.MessageOutput.GetMessage()
			if mErr != nil {
				return mErr
			}
			fmt.Fprintf(out, "\nBureauBot: %s\n", msg.Content)
		}
		if rErr != nil {
			return nil
		}
	}
}
