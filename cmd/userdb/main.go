// Command userdb ingests user exports into a relational store and answers
// role-gated queries against it.
//
// Usage:
//
//	userdb ingest [--dry-run] [--replace] [--output DIR]
//	userdb load [--replace] ARTIFACT.csv
//	userdb reset --yes
//	userdb serve
//	userdb <command> --login <email|phone> --password <password>
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/userdb/internal/config"
	"github.com/JonMunkholm/userdb/internal/core"
	"github.com/JonMunkholm/userdb/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err == nil {
		slog.Debug("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return exitCode(newRootCmd(cfg).ExecuteContext(ctx))
}

// exitCode reports err and maps it to a process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		return 2
	case errors.Is(err, errReported):
		return 1
	default:
		slog.Error("command failed", "error", err)
		fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		return 1
	}
}
