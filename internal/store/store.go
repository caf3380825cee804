// Package store provides SQLite-backed persistence for translation
// memory, terminology, and finished jobs. One database file serves the
// whole CLI; every call site passes a context so slow disks cannot hang
// a localization run.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/hpitta26/locflow/internal/pipeline"
	"github.com/hpitta26/locflow/internal/segment"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	-- translation_memory caches approved item translations across jobs
	CREATE TABLE IF NOT EXISTS translation_memory (
		id TEXT PRIMARY KEY,
		source_text TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		translated_text TEXT NOT NULL,
		category TEXT,
		usage_count INTEGER DEFAULT 1,
		invalidated BOOLEAN DEFAULT FALSE,
		last_used TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(source_text, target_lang)
	);

	-- glossary stores user-defined terminology per target language
	CREATE TABLE IF NOT EXISTS glossary (
		id TEXT PRIMARY KEY,
		target_lang TEXT NOT NULL,
		source_term TEXT NOT NULL,
		target_term TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(target_lang, source_term)
	);

	-- brand_terms must survive translation byte for byte
	CREATE TABLE IF NOT EXISTS brand_terms (
		term TEXT PRIMARY KEY,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		target_lang TEXT NOT NULL,
		batches INTEGER NOT NULL,
		approved INTEGER NOT NULL,
		questions INTEGER NOT NULL,
		missed_paths INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS job_batches (
		job_id TEXT NOT NULL,
		batch_id TEXT NOT NULL,
		content_group TEXT,
		status TEXT NOT NULL,
		items INTEGER NOT NULL,
		iterations INTEGER NOT NULL,
		PRIMARY KEY (job_id, batch_id),
		FOREIGN KEY (job_id) REFERENCES jobs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_memory_lookup ON translation_memory(source_text, target_lang);
	CREATE INDEX IF NOT EXISTS idx_glossary_lookup ON glossary(target_lang);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Lookup returns a cached translation for the exact normalized source
// text, bumping its usage counters on a hit. Invalidated entries do not
// match. Errors are swallowed into a miss: the cache is an optimization,
// never a hard dependency.
func (s *Store) Lookup(ctx context.Context, sourceText, targetLang string) (string, bool) {
	var translated string
	var invalidated bool

	err := s.db.QueryRowContext(ctx,
		`SELECT translated_text, invalidated FROM translation_memory WHERE source_text = ? AND target_lang = ?`,
		normalizeText(sourceText), targetLang).Scan(&translated, &invalidated)
	if err != nil || invalidated {
		return "", false
	}

	_, _ = s.db.ExecContext(ctx,
		`UPDATE translation_memory SET usage_count = usage_count + 1, last_used = ? WHERE source_text = ? AND target_lang = ?`,
		time.Now(), normalizeText(sourceText), targetLang)

	return translated, true
}

// Save stores an approved translation, replacing any previous entry for
// the same source text and target language.
func (s *Store) Save(ctx context.Context, sourceText, targetLang, translated, category string) error {
	id := "mem_" + uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO translation_memory (id, source_text, target_lang, translated_text, category, usage_count, invalidated, last_used, created_at) VALUES (?, ?, ?, ?, ?, 1, FALSE, ?, ?)`,
		id, normalizeText(sourceText), targetLang, translated, category, time.Now(), time.Now())
	return err
}

// SaveJob archives a finished job and its per-batch outcomes.
func (s *Store) SaveJob(ctx context.Context, result *pipeline.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	approved := 0
	for _, b := range result.Batches {
		if b.Status == segment.StatusApproved {
			approved++
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO jobs (id, target_lang, batches, approved, questions, missed_paths) VALUES (?, ?, ?, ?, ?, ?)`,
		result.JobID, result.TargetLanguage, len(result.Batches), approved, len(result.Questions), len(result.MissedPaths))
	if err != nil {
		return err
	}

	for _, b := range result.Batches {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO job_batches (job_id, batch_id, content_group, status, items, iterations) VALUES (?, ?, ?, ?, ?, ?)`,
			result.JobID, b.BatchID, b.Group, string(b.Status), b.Items, b.Iterations)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// MemoryEntry is a row from the translation_memory table.
type MemoryEntry struct {
	ID          string
	SourceText  string
	TargetLang  string
	Translated  string
	Category    string
	UsageCount  int
	Invalidated bool
	LastUsed    time.Time
}

// MemoryStats summarises translation memory usage.
type MemoryStats struct {
	TotalEntries   int
	ActiveEntries  int
	InvalidEntries int
	TotalUsage     int
}

func (s *Store) InvalidateMemory(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE translation_memory SET invalidated = TRUE WHERE id = ?`, id)
	return err
}

// DeleteMemory permanently removes a translation memory entry by ID.
func (s *Store) DeleteMemory(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM translation_memory WHERE id = ?`, id)
	return err
}

// ClearMemory removes all translation memory entries.
func (s *Store) ClearMemory(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM translation_memory`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListMemory returns all translation memory entries ordered by most recently used.
func (s *Store) ListMemory(ctx context.Context) ([]MemoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_text, target_lang, translated_text, COALESCE(category, ''), usage_count, invalidated, last_used FROM translation_memory ORDER BY last_used DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []MemoryEntry
	for rows.Next() {
		var e MemoryEntry
		if err := rows.Scan(&e.ID, &e.SourceText, &e.TargetLang, &e.Translated, &e.Category, &e.UsageCount, &e.Invalidated, &e.LastUsed); err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, rows.Err()
}

// MemoryUsage returns summary statistics for the translation memory.
func (s *Store) MemoryUsage(ctx context.Context) (*MemoryStats, error) {
	stats := &MemoryStats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN NOT invalidated THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN invalidated THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(usage_count), 0)
		FROM translation_memory`).Scan(
		&stats.TotalEntries,
		&stats.ActiveEntries,
		&stats.InvalidEntries,
		&stats.TotalUsage,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// GlossaryEntry represents a row in the glossary table.
type GlossaryEntry struct {
	ID         string
	TargetLang string
	SourceTerm string
	TargetTerm string
	CreatedAt  time.Time
}

// AddGlossaryTerm inserts or replaces a glossary entry.
func (s *Store) AddGlossaryTerm(ctx context.Context, targetLang, sourceTerm, targetTerm string) error {
	id := "gl_" + uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO glossary (id, target_lang, source_term, target_term) VALUES (?, ?, ?, ?)`,
		id, targetLang, sourceTerm, targetTerm)
	return err
}

// GetGlossaryTerms returns all glossary terms for a target language as a
// source-term → target-term map, ready to merge into the constraint set.
func (s *Store) GetGlossaryTerms(ctx context.Context, targetLang string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_term, target_term FROM glossary WHERE target_lang = ?`, targetLang)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	terms := make(map[string]string)
	for rows.Next() {
		var src, tgt string
		if err := rows.Scan(&src, &tgt); err != nil {
			return nil, err
		}
		terms[src] = tgt
	}
	return terms, rows.Err()
}

// ListGlossaryTerms returns all glossary entries, optionally filtered by
// target language (pass "" to return everything).
func (s *Store) ListGlossaryTerms(ctx context.Context, targetLang string) ([]GlossaryEntry, error) {
	query := `SELECT id, target_lang, source_term, target_term, created_at FROM glossary`
	var args []interface{}
	if targetLang != "" {
		query += ` WHERE target_lang = ?`
		args = append(args, targetLang)
	}
	query += ` ORDER BY target_lang, source_term`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []GlossaryEntry
	for rows.Next() {
		var e GlossaryEntry
		if err := rows.Scan(&e.ID, &e.TargetLang, &e.SourceTerm, &e.TargetTerm, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteGlossaryTerm removes a glossary entry by ID.
func (s *Store) DeleteGlossaryTerm(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM glossary WHERE id = ?`, id)
	return err
}

// AddBrandTerm registers a term that must pass through translation unchanged.
func (s *Store) AddBrandTerm(ctx context.Context, term string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return fmt.Errorf("brand term cannot be empty")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO brand_terms (term) VALUES (?)`, term)
	return err
}

// BrandTerms returns all registered brand terms in insertion order.
func (s *Store) BrandTerms(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT term FROM brand_terms ORDER BY created_at, term`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var terms []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

// DeleteBrandTerm removes a brand term.
func (s *Store) DeleteBrandTerm(ctx context.Context, term string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM brand_terms WHERE term = ?`, term)
	return err
}

// normalizeText trims whitespace and applies Unicode NFC normalization
// for consistent cache key comparison.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
