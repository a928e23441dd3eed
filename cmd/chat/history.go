package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/dtroode/gophchat/internal/client"
	"github.com/dtroode/gophchat/internal/model"
)

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history <peer>",
		Short: "Print the stored conversation with peer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			// No transport: history is read over gRPC only.
			m := client.NewMessenger(id.Username(), sessions, api, nil, a.cfg.TypingQuiet, a.logger)
			msgs, err := m.Conversation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, msg := range msgs {
				printMessage(cmd.OutOrStdout(), msg)
			}
			return nil
		},
	}
}

func printMessage(w io.Writer, msg model.Message) {
	ts := msg.CreatedAt.Local().Format(time.TimeOnly)
	if msg.Undecryptable {
		fmt.Fprintf(w, "[%s] %s: <undecryptable message>\n", ts, msg.From)
		return
	}
	fmt.Fprintf(w, "[%s] %s: %s\n", ts, msg.From, msg.Text)
}
