package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/userdb/internal/config"
	"github.com/JonMunkholm/userdb/internal/query"
	"github.com/JonMunkholm/userdb/internal/store"
)

var (
	// errUsage means usage was printed instead of running anything.
	errUsage = errors.New("usage")

	// errReported means the outcome was already printed for the user.
	errReported = errors.New("reported")
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var login, password string

	cmd := &cobra.Command{
		Use:   "userdb <command> --login <login> --password <password>",
		Short: "Ingest user exports and query them by role",
		Long:  "Ingest user exports and query them by role.\n\nQuery commands:\n" + commandHelp(),
		Args:  cobra.ArbitraryArgs,
		// Errors and usage are printed by this command and main.
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 || login == "" || password == "" {
				cmd.Usage()
				return errUsage
			}
			return runQuery(cmd.Context(), cmd.OutOrStdout(), cfg, args[0], login, password)
		},
	}

	cmd.Flags().StringVar(&login, "login", "", "Email address or telephone number")
	cmd.Flags().StringVar(&password, "password", "", "Account password")

	cmd.AddCommand(newIngestCmd(cfg), newLoadCmd(cfg), newResetCmd(cfg), newServeCmd(cfg))
	return cmd
}

func commandHelp() string {
	var b strings.Builder
	for _, c := range query.Commands() {
		role := "any user"
		if c.AdminOnly {
			role = "admin"
		}
		fmt.Fprintf(&b, "  %-30s %s (%s)\n", c.Name, c.Description, role)
	}
	return b.String()
}

func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	return store.Open(ctx, cfg.Store.DSN, store.Options{
		MaxOpenConns:    cfg.Store.MaxOpenConns,
		MaxIdleConns:    cfg.Store.MaxIdleConns,
		ConnMaxLifetime: cfg.Store.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Store.ConnMaxIdleTime,
	})
}

// runQuery logs in and runs one command, printing its lines or the
// plain-text outcome for a rejected login, role, or command.
func runQuery(ctx context.Context, out io.Writer, cfg *config.Config, name, login, password string) error {
	if cfg.Store.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Store.QueryTimeout)
		defer cancel()
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := query.NewService(st)

	sess, err := svc.Login(ctx, login, password)
	if errors.Is(err, query.ErrInvalidLogin) {
		fmt.Fprintln(out, "Invalid Login")
		return errReported
	}
	if err != nil {
		return err
	}

	res, err := svc.Execute(ctx, sess, name)
	switch {
	case errors.Is(err, query.ErrAccessDenied):
		fmt.Fprintln(out, "Access denied.")
		return errReported
	case errors.Is(err, query.ErrInvalidCommand):
		fmt.Fprintln(out, "Invalid command.")
		return errReported
	case err != nil:
		return err
	}

	for _, line := range res.Lines() {
		fmt.Fprintln(out, line)
	}
	return nil
}
