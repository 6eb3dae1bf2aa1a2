// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pdiddy/squad-localize/internal/clean"
	"github.com/pdiddy/squad-localize/internal/datasetio"
	"github.com/pdiddy/squad-localize/internal/script"
	"github.com/pdiddy/squad-localize/internal/span"
	"github.com/pdiddy/squad-localize/pkg/types"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Validate and repair answer spans in a translated dataset",
	Long: `Clean checks every QA pair of a translated dataset. Pairs whose question or
answer still contains source-script characters, or whose answer text cannot
be found in the translated context, are moved to the error report. Surviving
pairs get answer_start recomputed in characters; empty paragraphs and
articles are dropped.`,
	RunE: runClean,
}

// cleanFlags maps config keys to the clean command's flags.
var cleanFlags = map[string]string{
	"cleaning.input_file":          "input",
	"cleaning.cleaned_output_file": "output",
	"cleaning.error_output_file":   "errors",
	"cleaning.locator":             "locator",
	"cleaning.answer_policy":       "answer-policy",
	"cleaning.report_format":       "report-format",
	"cleaning.workers":             "workers",
}

func init() {
	cleanCmd.Flags().String("input", "", "translated dataset to clean")
	cleanCmd.Flags().String("output", "", "where to write the cleaned dataset")
	cleanCmd.Flags().String("errors", "", "where to write the error report")
	cleanCmd.Flags().String("locator", "", "answer placement: first or nearest")
	cleanCmd.Flags().String("answer-policy", "", "pairs with several answers: reject or first")
	cleanCmd.Flags().String("report-format", "", "error report format: json or yaml")
	cleanCmd.Flags().Int("workers", 0, "articles cleaned concurrently (default NumCPU)")

	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(scriptsCmd)
}

var scriptsCmd = &cobra.Command{
	Use:   "scripts",
	Short: "List the Unicode script names accepted by cleaning.filter.allowed_scripts",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range script.KnownScripts() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, cleanFlags)
	if err != nil {
		return err
	}
	_, err = cleanStage(cmd.Context(), cfg.Cleaning, cmd.OutOrStdout())
	return err
}

// cleanStage runs the cleaning stage and writes both outputs. Rejected pairs
// are not an error.
func cleanStage(ctx context.Context, cfg types.CleaningConfig, w io.Writer) (clean.Summary, error) {
	ds, err := datasetio.Load(cfg.InputFile)
	if err != nil {
		return clean.Summary{}, err
	}

	filter, err := script.FromConfig(cfg.Filter)
	if err != nil {
		return clean.Summary{}, err
	}

	res, err := clean.Clean(ctx, ds, clean.Options{
		Filter:       filter,
		Locator:      span.ForStrategy(cfg.Locator),
		AnswerPolicy: cfg.AnswerPolicy,
		Workers:      cfg.Workers,
	})
	if err != nil {
		return clean.Summary{}, err
	}

	if err := datasetio.Save(cfg.CleanedOutputFile, &res.Dataset); err != nil {
		return res.Summary, err
	}
	if err := datasetio.SaveReport(cfg.ErrorOutputFile, res.Reports, cfg.ReportFormat); err != nil {
		return res.Summary, err
	}

	printCleanSummary(w, res.Summary, cfg)
	return res.Summary, nil
}

func printCleanSummary(w io.Writer, s clean.Summary, cfg types.CleaningConfig) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Original QA pairs: %d\n", s.Original)
	color.New(color.FgGreen).Fprintf(w, "Cleaned QA pairs:  %d\n", s.Cleaned)
	if s.HasErrors() {
		color.New(color.FgRed).Fprintf(w, "Errors found:      %d\n", s.Errors)
	} else {
		fmt.Fprintf(w, "Errors found:      %d\n", s.Errors)
	}
	for _, kind := range types.ErrorKinds {
		if n := s.ByKind[kind]; n > 0 {
			color.New(color.FgYellow).Fprintf(w, "  %s: %d\n", kind, n)
		}
	}
	fmt.Fprintf(w, "Cleaned dataset:   %s\n", cfg.CleanedOutputFile)
	fmt.Fprintf(w, "Error report:      %s\n", cfg.ErrorOutputFile)
}
