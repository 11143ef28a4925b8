package commands

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tanami-dev/tanami/internal/chat/wire"
)

// NewChatCmd creates the chat command
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Ask NamiBot, the farming assistant",
		Long: `Ask NamiBot a question. With a message argument the answer is printed
and the command exits; without one, an interactive conversation starts.
Type "exit" or press Ctrl-D to leave.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), strings.Join(args, " "))
		},
	}

	return cmd
}

func runChat(ctx context.Context, message string, opts ...RunOption) error {
	return run(ctx, opts, func(rc *runConfig) error {
		ask := func(history []wire.Message) (string, error) {
			reply, err := rc.env.Client.Chat(ctx, rc.env.Config.Chat.URL, history)
			if err != nil {
				return "", err
			}
			return reply.Content, nil
		}

		if message != "" {
			answer, err := ask([]wire.Message{{Role: "user", Content: message}})
			if err != nil {
				return fmt.Errorf("chat failed: %w", err)
			}
			fmt.Fprintln(rc.out, answer)
			return nil
		}

		if rc.interactive {
			fmt.Fprintln(rc.out, "NamiBot siap membantu. Ketik \"exit\" untuk keluar.")
		}

		var history []wire.Message
		scanner := bufio.NewScanner(rc.in)
		for {
			if rc.interactive {
				fmt.Fprint(rc.out, "> ")
			}
			if !scanner.Scan() {
				break
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == "exit" || line == "quit" {
				break
			}

			history = append(history, wire.Message{Role: "user", Content: line})
			answer, err := ask(history)
			if err != nil {
				// Drop the unanswered turn so the user can retry
				history = history[:len(history)-1]
				fmt.Fprintf(rc.out, "Error: %v\n", err)
				continue
			}

			history = append(history, wire.Message{Role: "assistant", Content: answer})
			fmt.Fprintln(rc.out, answer)
		}

		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		return ctx.Err()
	})
}
