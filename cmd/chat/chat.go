package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dtroode/gophchat/internal/client"
)

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <peer>",
		Short: "Open an interactive conversation with peer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			peer := args[0]
			out := cmd.OutOrStdout()

			id, _, err := a.identity()
			if err != nil {
				return err
			}
			api, err := a.dialAPI()
			if err != nil {
				return err
			}
			defer api.Close()

			sessions, err := a.sessions(id, api)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			socket, err := client.DialSocket(ctx, a.cfg.ServerURL, id.Username(), id.PublicKey(), a.logger)
			if err != nil {
				return err
			}
			defer socket.Close()

			m := client.NewMessenger(id.Username(), sessions, api, socket, a.cfg.TypingQuiet, a.logger)

			history, err := m.Conversation(ctx, peer)
			if err != nil {
				a.logger.Warn("Chat: failed to load history", "error", err.Error())
			}
			for _, msg := range history {
				printMessage(out, msg)
			}

			runErr := make(chan error, 1)
			go func() { runErr <- m.Run(ctx) }()

			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case msg := <-m.Messages():
						if msg.From == peer {
							printMessage(out, msg)
						}
					case notice := <-m.TypingNotices():
						if notice.From == peer && notice.IsTyping {
							fmt.Fprintf(out, "%s is typing...\n", peer)
						}
					case <-m.Presence():
					}
				}
			}()

			lines := make(chan string)
			go func() {
				defer close(lines)
				scanner := bufio.NewScanner(os.Stdin)
				for scanner.Scan() {
					lines <- scanner.Text()
				}
			}()

			fmt.Fprintf(out, "Chatting with %s as %s. Ctrl-D to quit.\n", peer, id.Username())
			for {
				select {
				case err := <-runErr:
					if err != nil && !isCanceled(err) {
						return err
					}
					return nil
				case line, ok := <-lines:
					if !ok {
						return nil
					}
					text := strings.TrimSpace(line)
					if text == "" {
						continue
					}
					if _, err := m.Send(ctx, peer, text); err != nil {
						fmt.Fprintf(out, "! not sent: %v\n", err)
					}
				}
			}
		},
	}
}
