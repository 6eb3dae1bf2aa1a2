// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package script detects text left untranslated by the translation stage.
// The excluded character class is injected so the cleaner works for any
// target language.
package script

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/pdiddy/squad-localize/pkg/types"
)

// DefaultExcludedPattern flags any ASCII Latin letter.
const DefaultExcludedPattern = "[a-zA-Z]"

// Filter reports whether text contains characters from a script that should
// not survive translation.
type Filter interface {
	HasForeignScript(text string) bool
}

// PatternFilter matches an excluded character class.
type PatternFilter struct {
	re *regexp.Regexp
}

// NewPatternFilter compiles pattern into a filter.
func NewPatternFilter(pattern string) (*PatternFilter, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling excluded pattern %q: %w", pattern, err)
	}
	return &PatternFilter{re: re}, nil
}

// NewLatinFilter returns the filter for DefaultExcludedPattern.
func NewLatinFilter() *PatternFilter {
	return &PatternFilter{re: regexp.MustCompile(DefaultExcludedPattern)}
}

// HasForeignScript reports whether any character of text matches the pattern.
func (f *PatternFilter) HasForeignScript(text string) bool {
	return f.re.MatchString(text)
}

// AllowedScriptsFilter rejects letters outside a set of Unicode scripts.
// Digits, punctuation, spaces, and Common/Inherited characters always pass.
type AllowedScriptsFilter struct {
	tables []*unicode.RangeTable
}

// NewAllowedScriptsFilter builds a filter from Unicode script names such as
// "Sinhala" or "Devanagari".
func NewAllowedScriptsFilter(names []string) (*AllowedScriptsFilter, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no allowed scripts given")
	}
	tables := []*unicode.RangeTable{unicode.Common, unicode.Inherited}
	for _, name := range names {
		t, ok := unicode.Scripts[name]
		if !ok {
			return nil, fmt.Errorf("unknown Unicode script %q", name)
		}
		tables = append(tables, t)
	}
	return &AllowedScriptsFilter{tables: tables}, nil
}

// HasForeignScript reports whether any letter of text lies outside the allowed scripts.
func (f *AllowedScriptsFilter) HasForeignScript(text string) bool {
	for _, r := range text {
		if !unicode.IsLetter(r) && !unicode.IsMark(r) {
			continue
		}
		if !unicode.IsOneOf(f.tables, r) {
			return true
		}
	}
	return false
}

// IsKnownScript reports whether name is a Unicode script known to the runtime.
func IsKnownScript(name string) bool {
	_, ok := unicode.Scripts[name]
	return ok
}

// KnownScripts returns the sorted Unicode script names, for help text.
func KnownScripts() []string {
	names := make([]string, 0, len(unicode.Scripts))
	for name := range unicode.Scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FromConfig builds the configured filter. AllowedScripts takes precedence
// over ExcludedPattern; an empty config yields the Latin filter.
func FromConfig(cfg types.FilterConfig) (Filter, error) {
	if len(cfg.AllowedScripts) > 0 {
		f, err := NewAllowedScriptsFilter(cfg.AllowedScripts)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	if strings.TrimSpace(cfg.ExcludedPattern) == "" {
		return NewLatinFilter(), nil
	}
	f, err := NewPatternFilter(cfg.ExcludedPattern)
	if err != nil {
		return nil, err
	}
	return f, nil
}
