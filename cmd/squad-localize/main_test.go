// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/squad-localize/internal/checkpoint"
	"github.com/pdiddy/squad-localize/internal/clean"
	"github.com/pdiddy/squad-localize/internal/datasetio"
	"github.com/pdiddy/squad-localize/internal/translate"
	"github.com/pdiddy/squad-localize/pkg/types"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

const englishDataset = `{
  "version": "1.1",
  "data": [{
    "title": "Colombo",
    "paragraphs": [{
      "context": "Colombo is the capital.",
      "qas": [
        {"id": "q1", "question": "What is the capital?", "answers": [{"text": "Colombo", "answer_start": 0}]},
        {"id": "q2", "question": "Is it big?", "answers": [{"text": "capital", "answer_start": 15}]}
      ]
    }]
  }]
}`

// dictionary plays the part of a LibreTranslate server.
var dictionary = map[string]string{
	"Colombo is the capital.": "කොළඹ අගනුවරයි.",
	"What is the capital?":    "අගනුවර කුමක්ද?",
	"Colombo":                 "කොළඹ",
	"Is it big?":              "එය විශාලද?",
	"capital":                 "capital",
}

func libreServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Q []string `json:"q"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		out := make([]string, len(req.Q))
		for i, q := range req.Q {
			out[i] = dictionary[q]
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string][]string{"translatedText": out})
	}))
	t.Cleanup(ts.Close)
	return ts
}

func translationConfig(dir, baseURL string) types.TranslationConfig {
	return types.TranslationConfig{
		HTTPConfig:     types.HTTPConfig{Timeout: 5 * time.Second, BaseURL: baseURL},
		Backend:        types.BackendLibreTranslate,
		SourceLanguage: "en",
		TargetLanguage: "si",
		InputFile:      filepath.Join(dir, "train.json"),
		OutputFile:     filepath.Join(dir, "translated.json"),
		MaxContexts:    1000,
		BatchSize:      5,
		SegmentLimit:   128,
		CacheDir:       filepath.Join(dir, "cache"),
		CheckpointDir:  filepath.Join(dir, "checkpoint"),
	}
}

func cleaningConfig(dir string) types.CleaningConfig {
	return types.CleaningConfig{
		InputFile:         filepath.Join(dir, "translated.json"),
		CleanedOutputFile: filepath.Join(dir, "cleaned.json"),
		ErrorOutputFile:   filepath.Join(dir, "errors.json"),
		ReportFormat:      types.ReportJSON,
		Locator:           types.LocatorFirst,
		AnswerPolicy:      types.AnswerPolicyReject,
	}
}

func TestTranslateThenClean(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "train.json"), []byte(englishDataset), 0o644))
	ts := libreServer(t)

	var out bytes.Buffer
	tsum, err := translateStage(context.Background(), translationConfig(dir, ts.URL), false, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, tsum.Contexts)
	assert.Equal(t, 2, tsum.QAPairs)
	assert.Contains(t, out.String(), "Translated 1 contexts and 2 QA pairs")
	assert.Contains(t, out.String(), "translation memory: 5 entries")

	translated, err := datasetio.Load(filepath.Join(dir, "translated.json"))
	require.NoError(t, err)
	assert.Equal(t, "කොළඹ අගනුවරයි.", translated.Data[0].Paragraphs[0].Context)

	out.Reset()
	csum, err := cleanStage(context.Background(), cleaningConfig(dir), &out)
	require.NoError(t, err)
	assert.Equal(t, 2, csum.Original)
	assert.Equal(t, 1, csum.Cleaned)
	assert.Equal(t, 1, csum.Errors)
	assert.Contains(t, out.String(), "Original QA pairs: 2")
	assert.Contains(t, out.String(), "Contains English characters: 1")

	cleaned, err := datasetio.Load(filepath.Join(dir, "cleaned.json"))
	require.NoError(t, err)
	qas := cleaned.Data[0].Paragraphs[0].QAs
	require.Len(t, qas, 1)
	assert.Equal(t, "q1", qas[0].ID)
	assert.Equal(t, types.Answer{Text: "කොළඹ", AnswerStart: 0}, qas[0].Answers[0])

	reports, err := datasetio.LoadReport(filepath.Join(dir, "errors.json"))
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "q2", reports[0].ID)
	assert.Equal(t, types.KindUntranslated, reports[0].Error)

	out.Reset()
	printReport(&out, "errors.json", reports, 1)
	assert.Contains(t, out.String(), "errors.json: 1 rejected QA pairs")
	assert.Contains(t, out.String(), "  Contains English characters: 1")
	assert.Contains(t, out.String(), "[q2] Contains English characters")
	assert.Contains(t, out.String(), "answer:   capital")
}

func TestTranslateStage_ResumeSkipsFinishedArticles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "train.json"), []byte(englishDataset), 0o644))
	cfg := translationConfig(dir, libreServer(t).URL)

	_, err := translateStage(context.Background(), cfg, false, &bytes.Buffer{})
	require.NoError(t, err)

	// A server that always fails proves nothing is re-sent.
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer down.Close()
	cfg.BaseURL = down.URL
	cfg.CacheDir = ""

	summary, err := translateStage(context.Background(), cfg, true, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Resumed)
	assert.Equal(t, 1, summary.Contexts)
}

func TestOpenCheckpoint_ReplacesOtherLanguagePair(t *testing.T) {
	dir := t.TempDir()
	cfg := translationConfig(dir, "")

	cp, err := checkpoint.Open(cfg.CheckpointDir, "en", "ta")
	require.NoError(t, err)
	require.NoError(t, cp.Close())

	_, err = openCheckpoint(cfg, true)
	assert.ErrorIs(t, err, checkpoint.ErrLanguageMismatch)

	cp, err = openCheckpoint(cfg, false)
	require.NoError(t, err)
	assert.NotEmpty(t, cp.RunID())
	require.NoError(t, cp.Close())
}

func TestTranslateStage_MissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := translateStage(context.Background(), translationConfig(dir, ""), false, &bytes.Buffer{})
	require.Error(t, err)
}

func TestPrintCleanSummary_NoErrors(t *testing.T) {
	var buf bytes.Buffer
	printCleanSummary(&buf, clean.Summary{Original: 3, Cleaned: 3}, cleaningConfig("out"))
	s := buf.String()
	assert.Contains(t, s, "Errors found:      0")
	assert.False(t, strings.Contains(s, "Contains English characters"))
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "squad-localize dev\n", buf.String())
}

func TestScriptsCommand(t *testing.T) {
	var buf bytes.Buffer
	scriptsCmd.SetOut(&buf)
	scriptsCmd.Run(scriptsCmd, nil)
	assert.Contains(t, strings.Split(buf.String(), "\n"), "Sinhala")
}

func TestPrintTranslateSummary_WithoutMemory(t *testing.T) {
	var buf bytes.Buffer
	printTranslateSummary(&buf, translate.Summary{Contexts: 2, QAPairs: 3, Articles: 1}, translate.Stats{Requests: 2}, -1, "out.json")
	assert.Contains(t, buf.String(), "Translated 2 contexts and 3 QA pairs in 1 articles")
	assert.NotContains(t, buf.String(), "translation memory")
}

func TestPrintReport_CountsKindsAndLimitsShown(t *testing.T) {
	reports := []types.ErrorReport{
		{ID: "a", Question: "q", Error: types.KindNotFound, Answer: &types.Answer{Text: "x"}},
		{ID: "b", Question: "q", Error: types.KindNoAnswer},
		{ID: "c", Question: "q", Error: types.KindNotFound, Answer: &types.Answer{Text: "y"}},
		{ID: "d", Question: "q", Error: "Legacy reason"},
	}

	var buf bytes.Buffer
	printReport(&buf, "errors.yaml", reports, 2)
	s := buf.String()
	assert.Contains(t, s, "errors.yaml: 4 rejected QA pairs")
	assert.Contains(t, s, "  Answer text not found in context: 2")
	assert.Contains(t, s, "  No answer provided: 1")
	assert.Contains(t, s, "  Legacy reason: 1")
	assert.Contains(t, s, "[a] Answer text not found in context")
	assert.Contains(t, s, "[b] No answer provided")
	assert.Contains(t, s, "answer:   <none>")
	assert.NotContains(t, s, "[c]")
}
