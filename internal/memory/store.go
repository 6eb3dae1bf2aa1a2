// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package memory persists translations so re-runs and resumed runs do not
// pay for the same segment twice.
package memory

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const dbFile = "translations.db"

// Pair is one source text and its translation.
type Pair struct {
	Source      string
	Translation string
}

// Store manages the translation memory SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the translation memory at dir/translations.db
// and creates the schema if it does not exist.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS translations (
			source_lang TEXT NOT NULL,
			target_lang TEXT NOT NULL,
			source_hash TEXT NOT NULL,
			source_text TEXT NOT NULL,
			translated_text TEXT NOT NULL,
			backend TEXT,
			created_at TEXT,
			PRIMARY KEY (source_lang, target_lang, source_hash)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_translations_backend ON translations(backend)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// hashText keys a source string; the full text is stored alongside to rule
// out collisions on lookup.
func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Lookup returns the stored translations for texts, keyed by source text.
// Texts without a stored translation are absent from the map.
func (s *Store) Lookup(ctx context.Context, source, target string, texts []string) (map[string]string, error) {
	found := make(map[string]string, len(texts))
	if len(texts) == 0 {
		return found, nil
	}

	stmt, err := s.db.PrepareContext(ctx,
		`SELECT source_text, translated_text FROM translations
		 WHERE source_lang = ? AND target_lang = ? AND source_hash = ?`)
	if err != nil {
		return nil, fmt.Errorf("preparing lookup: %w", err)
	}
	defer stmt.Close()

	for _, text := range texts {
		if _, ok := found[text]; ok {
			continue
		}
		var src, dst string
		err := stmt.QueryRowContext(ctx, source, target, hashText(text)).Scan(&src, &dst)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("looking up translation: %w", err)
		}
		if src == text {
			found[text] = dst
		}
	}
	return found, nil
}

// Put stores translations in one transaction, replacing earlier entries for
// the same source text and language pair.
func (s *Store) Put(ctx context.Context, source, target, backend string, pairs []Pair) error {
	if len(pairs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO translations (source_lang, target_lang, source_hash, source_text, translated_text, backend, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(source_lang, target_lang, source_hash) DO UPDATE SET
			translated_text=excluded.translated_text, backend=excluded.backend, created_at=excluded.created_at`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, p := range pairs {
		if _, err := stmt.ExecContext(ctx, source, target, hashText(p.Source), p.Source, p.Translation, backend, now); err != nil {
			return fmt.Errorf("inserting translation: %w", err)
		}
	}

	return tx.Commit()
}

// Count returns the number of stored translations for a language pair.
func (s *Store) Count(ctx context.Context, source, target string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM translations WHERE source_lang = ? AND target_lang = ?`,
		source, target,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting translations: %w", err)
	}
	return n, nil
}
