package main

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/userdb/internal/artifact"
	"github.com/JonMunkholm/userdb/internal/config"
	"github.com/JonMunkholm/userdb/internal/core"
	"github.com/JonMunkholm/userdb/internal/logging"
	"github.com/JonMunkholm/userdb/internal/source"
)

type ingestOptions struct {
	dryRun    bool
	replace   bool
	outputDir string
}

func newIngestCmd(cfg *config.Config) *cobra.Command {
	var opts ingestOptions

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Read every source, normalize the records and load them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd.Context(), cmd.OutOrStdout(), cfg, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Run the pipeline without touching the store")
	cmd.Flags().BoolVar(&opts.replace, "replace", false, "Delete stored users before loading, in the same transaction")
	cmd.Flags().StringVar(&opts.outputDir, "output", cfg.Output.Dir, "Directory for the canonical artifact (empty: none)")
	return cmd
}

func runIngest(ctx context.Context, out io.Writer, cfg *config.Config, opts ingestOptions) error {
	runID := uuid.New().String()
	ctx = logging.WithRunID(ctx, runID)
	if cfg.Ingest.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Ingest.Timeout)
		defer cancel()
	}
	log := logging.FromContext(ctx)

	files, err := cfg.ResolveSources()
	if err != nil {
		return err
	}
	specs := make([]source.Spec, len(files))
	for i, f := range files {
		specs[i] = source.Spec{Path: f.Path, Format: f.Format}
	}

	sources, err := source.ReadAll(ctx, specs)
	if err != nil {
		return err
	}

	res, err := core.Run(ctx, sources)
	if err != nil {
		return err
	}

	// The loader consumes the canonical artifact, either the file written to
	// the output directory or an in-memory copy.
	var rows []artifact.Row
	if opts.outputDir != "" {
		path, err := artifact.WriteFile(opts.outputDir, res.Users)
		if err != nil {
			return err
		}
		log.Info("artifact written", "path", path, "users", len(res.Users))
		fmt.Fprintf(out, "artifact: %s\n", path)
		rows, err = artifact.ReadFile(path)
		if err != nil {
			return err
		}
	} else {
		var buf bytes.Buffer
		if err := artifact.Write(&buf, res.Users); err != nil {
			return err
		}
		rows, err = artifact.Read(&buf)
		if err != nil {
			return err
		}
	}

	users, err := artifact.Users(rows)
	if err != nil {
		return err
	}

	printStats(out, runID, res)

	if opts.dryRun {
		fmt.Fprintln(out, "dry run: store not modified")
		return nil
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	loaded, err := loadUsers(ctx, st, users, opts.replace)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "loaded: %d users, %d children\n", loaded.Users, loaded.Children)

	log.Info("ingest complete",
		"users", loaded.Users,
		"children", loaded.Children,
		"pipeline_ms", res.Duration.Milliseconds(),
		"load_ms", loaded.Duration.Milliseconds(),
	)
	return nil
}

func printStats(out io.Writer, runID string, res *core.Result) {
	s := res.Stats
	fmt.Fprintf(out, "run: %s\n", runID)
	for _, src := range s.Sources {
		fmt.Fprintf(out, "source %s: %d records\n", src.Source, src.Count)
	}
	fmt.Fprintf(out, "merged: %d\n", s.Merged)
	fmt.Fprintf(out, "emails: %d valid, %d invalid\n", s.ValidEmails, s.InvalidEmails)
	fmt.Fprintf(out, "phones: %d with, %d without\n", s.WithPhone, s.WithoutPhone)
	fmt.Fprintf(out, "deduplicated: %d kept, %d dropped\n", s.Deduplicated, s.DuplicatesDrop)
}
