// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Translate a dataset and clean the result",
	Long: `Run executes the translate stage followed by the clean stage. The clean
stage reads the translate stage's output file regardless of
cleaning.input_file.`,
	RunE: runPipeline,
}

var runFlags = map[string]string{
	"translation.input_file":      "input",
	"translation.backend":         "backend",
	"translation.target_language": "target",
	"translation.max_contexts":    "max-contexts",
}

func init() {
	runCmd.Flags().String("input", "", "English SQuAD dataset to translate")
	runCmd.Flags().String("backend", "", "translation backend: google, libretranslate, or openai")
	runCmd.Flags().String("target", "", "target language tag (e.g. si)")
	runCmd.Flags().Int("max-contexts", 0, "maximum number of paragraphs to translate (default 1000)")
	runCmd.Flags().Bool("resume", false, "continue from the checkpoint of an interrupted run")

	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, runFlags)
	if err != nil {
		return err
	}
	resume, _ := cmd.Flags().GetBool("resume")

	if _, err := translateStage(cmd.Context(), cfg.Translation, resume, cmd.OutOrStdout()); err != nil {
		return err
	}

	cleaning := cfg.Cleaning
	if cleaning.InputFile != cfg.Translation.OutputFile {
		slog.Default().Debug("cleaning translated output", "path", cfg.Translation.OutputFile)
		cleaning.InputFile = cfg.Translation.OutputFile
	}
	_, err = cleanStage(cmd.Context(), cleaning, cmd.OutOrStdout())
	return err
}
