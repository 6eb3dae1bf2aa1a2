// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the squad-localize CLI.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pdiddy/squad-localize/internal/config"
	"github.com/pdiddy/squad-localize/internal/secrets"
	"github.com/pdiddy/squad-localize/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loader is created by the root command before any subcommand runs.
var loader *config.Loader

// rootCmd is the base command for the squad-localize CLI.
var rootCmd = &cobra.Command{
	Use:   "squad-localize",
	Short: "Translate SQuAD datasets and repair their answer spans",
	Long: `squad-localize builds extractive question-answering data for a new language
from an English SQuAD v1.1 dataset.

The translate stage sends contexts, questions, and answers through a machine
translation backend. The clean stage rejects pairs that still contain source
script, relocates every answer inside its translated context, and writes the
failures to an error report. The run command chains both stages.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		setupLogger(debug)

		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			slog.Default().Warn("could not load .env", "error", err)
		}

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			slog.Default().Debug("loaded secrets", "keys", keys)
		}

		cfgFile, _ := cmd.Flags().GetString("config")
		loader, err = config.NewLoader(cfgFile, s)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./squad-localize.yaml or ~/.config/squad-localize/squad-localize.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})))
}

// loadConfig binds the command's flags (config key to flag name) and loads
// the configuration.
func loadConfig(cmd *cobra.Command, flags map[string]string) (*types.PipelineConfig, error) {
	for key, name := range flags {
		if err := loader.BindFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return nil, err
		}
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	if used := loader.ConfigFileUsed(); used != "" {
		slog.Default().Info("using config file", "path", used)
	}
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
