// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pdiddy/squad-localize/internal/checkpoint"
	"github.com/pdiddy/squad-localize/internal/datasetio"
	"github.com/pdiddy/squad-localize/internal/memory"
	"github.com/pdiddy/squad-localize/internal/translate"
	"github.com/pdiddy/squad-localize/pkg/types"
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate a SQuAD dataset into the target language",
	Long: `Translate reads an English SQuAD v1.1 dataset and translates every paragraph
context, question, and answer text with the configured backend. Titles, ids,
and answer_start offsets are copied unchanged; the clean stage repairs the
offsets afterwards.

Finished articles are checkpointed. After an interruption, --resume continues
where the previous run stopped.`,
	RunE: runTranslate,
}

// translateFlags maps config keys to the translate command's flags.
var translateFlags = map[string]string{
	"translation.input_file":      "input",
	"translation.output_file":     "output",
	"translation.backend":         "backend",
	"translation.target_language": "target",
	"translation.max_contexts":    "max-contexts",
	"translation.batch_size":      "batch-size",
}

func init() {
	translateCmd.Flags().String("input", "", "English SQuAD dataset to translate")
	translateCmd.Flags().String("output", "", "where to write the translated dataset")
	translateCmd.Flags().String("backend", "", "translation backend: google, libretranslate, or openai")
	translateCmd.Flags().String("target", "", "target language tag (e.g. si)")
	translateCmd.Flags().Int("max-contexts", 0, "maximum number of paragraphs to translate (default 1000)")
	translateCmd.Flags().Int("batch-size", 0, "paragraph contexts per request (default 5)")
	translateCmd.Flags().Bool("resume", false, "continue from the checkpoint of an interrupted run")

	rootCmd.AddCommand(translateCmd)
}

func runTranslate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, translateFlags)
	if err != nil {
		return err
	}
	resume, _ := cmd.Flags().GetBool("resume")

	_, err = translateStage(cmd.Context(), cfg.Translation, resume, cmd.OutOrStdout())
	return err
}

// translateStage runs the translation stage end to end and writes the
// translated dataset to cfg.OutputFile.
func translateStage(ctx context.Context, cfg types.TranslationConfig, resume bool, w io.Writer) (translate.Summary, error) {
	ds, err := datasetio.Load(cfg.InputFile)
	if err != nil {
		return translate.Summary{}, err
	}

	backend, err := translate.NewBackend(cfg)
	if err != nil {
		return translate.Summary{}, err
	}
	if c, ok := backend.(io.Closer); ok {
		defer c.Close()
	}

	var (
		mem   translate.Memory
		store *memory.Store
	)
	if cfg.CacheDir != "" {
		store, err = memory.NewStore(cfg.CacheDir)
		if err != nil {
			return translate.Summary{}, err
		}
		defer store.Close()
		mem = store
	}

	cp, err := openCheckpoint(cfg, resume)
	if err != nil {
		return translate.Summary{}, err
	}
	defer cp.Close()

	fmt.Fprintf(w, "Translating %s: %d articles, %d contexts, %d QA pairs (%s → %s via %s, run %s)\n",
		cfg.InputFile, len(ds.Data), ds.CountParagraphs(), ds.CountQAs(),
		cfg.SourceLanguage, cfg.TargetLanguage, backend.Name(), cp.RunID())

	tr := translate.NewTranslator(backend, cfg, mem)
	out, summary, err := translate.TranslateDataset(ctx, tr, ds, translate.DatasetOptions{
		MaxContexts: cfg.MaxContexts,
		BatchSize:   cfg.BatchSize,
		Checkpoint:  cp,
		Resume:      resume,
	}, w)
	if err != nil {
		color.New(color.FgRed).Fprintf(w, "Translation stopped after %d contexts; rerun with --resume to continue\n", summary.Contexts)
		return summary, err
	}

	if err := datasetio.Save(cfg.OutputFile, out); err != nil {
		return summary, err
	}

	memEntries := -1
	if store != nil {
		if memEntries, err = store.Count(ctx, cfg.SourceLanguage, cfg.TargetLanguage); err != nil {
			slog.Default().Warn("could not count translation memory", "error", err)
			memEntries = -1
		}
	}

	printTranslateSummary(w, summary, tr.Stats(), memEntries, cfg.OutputFile)
	return summary, nil
}

// openCheckpoint opens the checkpoint for cfg's language pair. A fresh run
// replaces a checkpoint left by a different language pair; a resumed run
// refuses to.
func openCheckpoint(cfg types.TranslationConfig, resume bool) (*checkpoint.Checkpoint, error) {
	cp, err := checkpoint.Open(cfg.CheckpointDir, cfg.SourceLanguage, cfg.TargetLanguage)
	if err == nil {
		return cp, nil
	}
	if resume || !errors.Is(err, checkpoint.ErrLanguageMismatch) {
		return nil, err
	}
	slog.Default().Info("replacing checkpoint from a different language pair", "dir", cfg.CheckpointDir)
	if err := checkpoint.Remove(cfg.CheckpointDir); err != nil {
		return nil, err
	}
	return checkpoint.Open(cfg.CheckpointDir, cfg.SourceLanguage, cfg.TargetLanguage)
}

// printTranslateSummary writes the run totals. memEntries is the size of the
// translation memory for the language pair, or -1 when no memory is in use.
func printTranslateSummary(w io.Writer, s translate.Summary, stats translate.Stats, memEntries int, output string) {
	fmt.Fprintln(w)
	color.New(color.FgGreen).Fprintf(w, "Translated %d contexts and %d QA pairs in %d articles (%.1f min)\n",
		s.Contexts, s.QAPairs, s.Articles, s.Elapsed.Minutes())
	if s.Resumed > 0 {
		color.New(color.FgYellow).Fprintf(w, "  %d articles reused from checkpoint\n", s.Resumed)
	}
	fmt.Fprintf(w, "  requests: %d, strings sent: %d, cache hits: %d\n", stats.Requests, stats.Strings, stats.CacheHits)
	if memEntries >= 0 {
		fmt.Fprintf(w, "  translation memory: %d entries\n", memEntries)
	}
	fmt.Fprintf(w, "  output: %s\n", output)
}
