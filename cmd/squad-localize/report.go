// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pdiddy/squad-localize/internal/datasetio"
	"github.com/pdiddy/squad-localize/pkg/types"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize the error report written by the clean stage",
	Long: `Report reads a JSON or YAML error report and prints how many QA pairs were
rejected for each reason. With --show, it also prints the first rejected pairs
for a manual audit.`,
	RunE: runReport,
}

var reportFlags = map[string]string{
	"cleaning.error_output_file": "errors",
}

func init() {
	reportCmd.Flags().String("errors", "", "error report to summarize")
	reportCmd.Flags().Int("show", 0, "print the first n rejected pairs")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, reportFlags)
	if err != nil {
		return err
	}
	show, _ := cmd.Flags().GetInt("show")

	reports, err := datasetio.LoadReport(cfg.Cleaning.ErrorOutputFile)
	if err != nil {
		return err
	}
	printReport(cmd.OutOrStdout(), cfg.Cleaning.ErrorOutputFile, reports, show)
	return nil
}

func printReport(w io.Writer, path string, reports []types.ErrorReport, show int) {
	counts := make(map[types.ErrorKind]int)
	for _, r := range reports {
		counts[r.Error]++
	}

	fmt.Fprintf(w, "%s: %d rejected QA pairs\n", path, len(reports))
	for _, kind := range types.ErrorKinds {
		if n := counts[kind]; n > 0 {
			color.New(color.FgYellow).Fprintf(w, "  %s: %d\n", kind, n)
		}
		delete(counts, kind)
	}

	// Kinds written by another version of the tool.
	other := make([]string, 0, len(counts))
	for kind := range counts {
		other = append(other, string(kind))
	}
	sort.Strings(other)
	for _, kind := range other {
		fmt.Fprintf(w, "  %s: %d\n", kind, counts[types.ErrorKind(kind)])
	}

	for i, r := range reports {
		if i >= show {
			break
		}
		answer := "<none>"
		if r.Answer != nil {
			answer = r.Answer.Text
		}
		fmt.Fprintf(w, "\n[%s] %s\n  question: %s\n  answer:   %s\n", r.ID, r.Error, r.Question, answer)
	}
}
