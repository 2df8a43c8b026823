package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/userdb/internal/config"
)

func newResetCmd(cfg *config.Config) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset --yes",
		Short: "Delete every stored user and child",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				fmt.Fprintln(cmd.ErrOrStderr(), "reset deletes all stored users; pass --yes to confirm")
				return errUsage
			}
			return runReset(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}

func runReset(ctx context.Context, out io.Writer, cfg *config.Config) error {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	res, err := st.Reset(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "deleted: %d users, %d children\n", res.Users, res.Children)
	return nil
}
