// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package datasetio reads and writes SQuAD-format datasets and error reports.
// Output is UTF-8 JSON with non-ASCII characters kept literal, so translated
// text stays readable on disk.
package datasetio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/squad-localize/pkg/types"
)

// ErrInvalidDataset wraps structural problems found in a loaded dataset.
var ErrInvalidDataset = errors.New("invalid dataset")

var validate = validator.New()

// Load reads a dataset from path. A missing version defaults to "1.1".
// Malformed JSON and records without an id fail the whole load.
func Load(path string) (*types.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", path, err)
	}
	return Decode(data)
}

// Decode parses and validates a dataset document.
func Decode(data []byte) (*types.Dataset, error) {
	var ds types.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataset, err)
	}
	if err := validate.Struct(&ds); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, fmt.Errorf("%w: %s failed on %q (%d problem(s))",
				ErrInvalidDataset, verrs[0].Namespace(), verrs[0].Tag(), len(verrs))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataset, err)
	}
	if ds.Version == "" {
		ds.Version = types.DefaultDatasetVersion
	}
	return &ds, nil
}

// Save writes ds to path as indented JSON.
func Save(path string, ds *types.Dataset) error {
	data, err := encodeJSON(ds)
	if err != nil {
		return fmt.Errorf("encoding dataset: %w", err)
	}
	return writeAtomic(path, data)
}

// SaveReport writes the error report to path in the given format.
func SaveReport(path string, reports []types.ErrorReport, format types.ReportFormat) error {
	if reports == nil {
		reports = []types.ErrorReport{}
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case types.ReportYAML:
		data, err = yaml.Marshal(reports)
	case types.ReportJSON, "":
		data, err = encodeJSON(reports)
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
	if err != nil {
		return fmt.Errorf("encoding error report: %w", err)
	}
	return writeAtomic(path, data)
}

// LoadReport reads an error report written by SaveReport. Files ending in
// .yaml or .yml are decoded as YAML, anything else as JSON.
func LoadReport(path string) ([]types.ErrorReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading error report %s: %w", path, err)
	}
	var reports []types.ErrorReport
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &reports)
	default:
		err = json.Unmarshal(data, &reports)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing error report %s: %w", path, err)
	}
	return reports, nil
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeAtomic writes to a temp file next to path and renames it into place.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	return nil
}
