package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dtroode/gophchat/internal/model"
)

func newRegisterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Create your key pair and publish it to the directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, created, err := a.identity()
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Generated new key pair in %s\n", a.cfg.KeyFile)
			}

			api, err := a.dialAPI()
			if err != nil {
				return err
			}
			defer api.Close()

			err = api.Register(cmd.Context(), id.Username(), id.PublicKey())
			switch {
			case errors.Is(err, model.ErrAlreadyExists):
				return fmt.Errorf("username %q is taken", id.Username())
			case err != nil:
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (key %s)\n", id.Username(), id.PublicKey().Fingerprint())
			return nil
		},
	}
}
