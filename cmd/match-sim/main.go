// Command match-sim plays a seeded random match against a running scorebook
// service and verifies every answer against a local ledger.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/scorebook/internal/config"
	"github.com/okian/scorebook/internal/matchsim"
	"github.com/okian/scorebook/pkg/logger"
)

// Flag names.
const (
	flagURL     = "url"
	flagRallies = "rallies"
	flagEdits   = "edits"
	flagDeletes = "deletes"
	flagSeed    = "seed"
	flagRoster  = "roster"
	flagCatalog = "catalog"
	flagTimeout = "timeout"
	flagCleanup = "cleanup"
	flagVerbose = "verbose"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := matchsim.DefaultConfig()
	var catalogFile string

	rootCmd := &cobra.Command{
		Use:   "match-sim",
		Short: "Simulate a match against a scorebook service",
		Long: `match-sim creates a match, records a seeded random rally script with
retroactive edits and deletes, and checks the service's score, event log and
statistics pivot against a local ledger fed the same commands.`,
		Example: `  match-sim --url http://localhost:9080 --rallies 50 --seed 7
  match-sim --catalog catalog.yaml --edits 10 --deletes 5 --verbose`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, cfg, catalogFile)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&cfg.BaseURL, flagURL, "u", cfg.BaseURL, "base URL of the service")
	flags.IntVarP(&cfg.Rallies, flagRallies, "r", cfg.Rallies, "number of rallies to play")
	flags.IntVar(&cfg.Edits, flagEdits, cfg.Edits, "number of retroactive edits")
	flags.IntVar(&cfg.Deletes, flagDeletes, cfg.Deletes, "number of retroactive deletes")
	flags.Int64VarP(&cfg.Seed, flagSeed, "s", cfg.Seed, "script seed (default: current time)")
	flags.StringSliceVar(&cfg.Roster, flagRoster, cfg.Roster, "starting participants")
	flags.StringVarP(&catalogFile, flagCatalog, "c", "", "catalog YAML file the service was started with")
	flags.DurationVar(&cfg.Timeout, flagTimeout, cfg.Timeout, "HTTP request timeout")
	flags.BoolVar(&cfg.Cleanup, flagCleanup, false, "delete the match after verification")
	flags.BoolVarP(&cfg.Verbose, flagVerbose, "v", false, "log every command")

	return rootCmd
}

func run(cmd *cobra.Command, cfg *matchsim.Config, catalogFile string) error {
	ctx := cmd.Context()

	if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr())); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if cfg.Verbose {
		_ = logger.SetLevelString("debug")
	}

	cat, err := config.LoadCatalog(ctx, catalogFile)
	if err != nil {
		return err
	}
	cfg.Catalog = cat

	started := time.Now()
	report, err := matchsim.Run(ctx, cfg)
	if err == nil || errors.Is(err, matchsim.ErrMismatch) {
		matchsim.Print(cmd.OutOrStdout(), report)
	}
	if err != nil {
		return err
	}
	logger.Get().Debug(ctx, "match-sim finished", logger.Duration("elapsed", time.Since(started)))
	return nil
}
