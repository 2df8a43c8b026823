package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/userdb/internal/artifact"
	"github.com/JonMunkholm/userdb/internal/config"
	"github.com/JonMunkholm/userdb/internal/core"
	"github.com/JonMunkholm/userdb/internal/store"
)

func newLoadCmd(cfg *config.Config) *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "load ARTIFACT.csv",
		Short: "Load a canonical artifact written by ingest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd.Context(), cmd.OutOrStdout(), cfg, args[0], replace)
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "Delete stored users before loading, in the same transaction")
	return cmd
}

// runLoad decodes every row before opening the store, so a bad children
// column leaves the store untouched.
func runLoad(ctx context.Context, out io.Writer, cfg *config.Config, path string, replace bool) error {
	rows, err := artifact.ReadFile(path)
	if err != nil {
		return err
	}
	users, err := artifact.Users(rows)
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	loaded, err := loadUsers(ctx, st, users, replace)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "loaded: %d users, %d children\n", loaded.Users, loaded.Children)
	return nil
}

func loadUsers(ctx context.Context, st *store.Store, users []core.User, replace bool) (store.LoadResult, error) {
	if replace {
		return st.Replace(ctx, users)
	}
	return st.Load(ctx, users)
}
