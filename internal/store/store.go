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

	"github.com/valpere/figtrans/internal/reconcile"
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
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS translation_memory (
		id TEXT PRIMARY KEY,
		source_text TEXT NOT NULL,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		final_text TEXT NOT NULL,
		service_used TEXT,
		usage_count INTEGER DEFAULT 1,
		invalidated BOOLEAN DEFAULT FALSE,
		last_used TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(source_text, source_lang, target_lang)
	);

	-- reconcile_runs records every batch written back to a document
	CREATE TABLE IF NOT EXISTS reconcile_runs (
		id TEXT PRIMARY KEY,
		document TEXT NOT NULL,
		success_count INTEGER NOT NULL,
		error_count INTEGER NOT NULL,
		warning_count INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- reconcile_outcomes stores the per-unit result of a run
	CREATE TABLE IF NOT EXISTS reconcile_outcomes (
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		unit_id TEXT NOT NULL,
		node_id TEXT NOT NULL,
		status TEXT NOT NULL,
		reason TEXT,
		overflow_percent INTEGER,
		hyperlink_warning TEXT,
		PRIMARY KEY (run_id, seq),
		FOREIGN KEY (run_id) REFERENCES reconcile_runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_memory_lookup ON translation_memory(source_text, source_lang, target_lang);
	CREATE INDEX IF NOT EXISTS idx_outcomes_run ON reconcile_outcomes(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) GetCachedTranslation(ctx context.Context, sourceText, sourceLang, targetLang string) (string, bool, error) {
	var finalText string
	var invalidated bool

	key := normalizeText(sourceText)
	src := normalizeLang(sourceLang)
	lang := normalizeLang(targetLang)

	err := s.db.QueryRowContext(ctx,
		`SELECT final_text, invalidated FROM translation_memory WHERE source_text = ? AND source_lang = ? AND target_lang = ?`,
		key, src, lang).Scan(&finalText, &invalidated)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	if invalidated {
		return "", false, nil
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE translation_memory SET usage_count = usage_count + 1, last_used = ? WHERE source_text = ? AND source_lang = ? AND target_lang = ?`,
		time.Now(), key, src, lang)

	return finalText, true, err
}

func (s *Store) SaveToMemory(ctx context.Context, sourceText, sourceLang, targetLang, finalText, serviceUsed string) error {
	id := fmt.Sprintf("mem_%d", time.Now().UnixNano())
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO translation_memory (id, source_text, source_lang, target_lang, final_text, service_used, usage_count, invalidated, last_used, created_at) VALUES (?, ?, ?, ?, ?, ?, 1, FALSE, ?, ?)`,
		id, normalizeText(sourceText), normalizeLang(sourceLang), normalizeLang(targetLang), finalText, serviceUsed, time.Now(), time.Now())
	return err
}

// MemoryEntry is a row from the translation_memory table.
type MemoryEntry struct {
	ID          string
	SourceText  string
	SourceLang  string
	TargetLang  string
	FinalText   string
	ServiceUsed string
	UsageCount  int
	Invalidated bool
	LastUsed    time.Time
}

// CacheStats summarises translation memory usage.
type CacheStats struct {
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
		`SELECT id, source_text, source_lang, target_lang, final_text, COALESCE(service_used, ''), usage_count, invalidated, last_used FROM translation_memory ORDER BY last_used DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []MemoryEntry
	for rows.Next() {
		var e MemoryEntry
		if err := rows.Scan(&e.ID, &e.SourceText, &e.SourceLang, &e.TargetLang, &e.FinalText, &e.ServiceUsed, &e.UsageCount, &e.Invalidated, &e.LastUsed); err != nil {
			return nil, err
		}
		results = append(results, e)
	}

	return results, rows.Err()
}

// Stats returns summary statistics for the translation memory.
func (s *Store) Stats(ctx context.Context) (*CacheStats, error) {
	stats := &CacheStats{}

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

// RunEntry is a row from the reconcile_runs table.
type RunEntry struct {
	ID           string
	Document     string
	SuccessCount int
	ErrorCount   int
	WarningCount int
	CreatedAt    time.Time
}

// OutcomeEntry is a row from the reconcile_outcomes table.
type OutcomeEntry struct {
	UnitID           string
	NodeID           string
	Status           string
	Reason           string
	OverflowPercent  int
	HyperlinkWarning string
}

// RecordRun stores an apply report and returns the new run ID.
func (s *Store) RecordRun(ctx context.Context, document string, report *reconcile.Report) (string, error) {
	id := uuid.New().String()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO reconcile_runs (id, document, success_count, error_count, warning_count, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, document, report.SuccessCount, report.ErrorCount, len(report.Warnings), time.Now()); err != nil {
		return "", err
	}

	for i, o := range report.Outcomes {
		var overflow sql.NullInt64
		if o.Overflow != nil {
			overflow = sql.NullInt64{Int64: int64(o.Overflow.GrowthPercent), Valid: true}
		}
		var linkWarning sql.NullString
		if o.Hyperlink != nil {
			linkWarning = sql.NullString{String: o.Hyperlink.Reason, Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO reconcile_outcomes (run_id, seq, unit_id, node_id, status, reason, overflow_percent, hyperlink_warning) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i, o.UnitID, o.NodeID, o.Status.String(), o.Reason, overflow, linkWarning); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunEntry, error) {
	query := `SELECT id, document, success_count, error_count, warning_count, created_at FROM reconcile_runs ORDER BY created_at DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunEntry
	for rows.Next() {
		var r RunEntry
		if err := rows.Scan(&r.ID, &r.Document, &r.SuccessCount, &r.ErrorCount, &r.WarningCount, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunOutcomes returns the per-unit results of a run in input order.
func (s *Store) RunOutcomes(ctx context.Context, runID string) ([]OutcomeEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT unit_id, node_id, status, COALESCE(reason, ''), COALESCE(overflow_percent, 0), COALESCE(hyperlink_warning, '')
		 FROM reconcile_outcomes WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OutcomeEntry
	for rows.Next() {
		var o OutcomeEntry
		if err := rows.Scan(&o.UnitID, &o.NodeID, &o.Status, &o.Reason, &o.OverflowPercent, &o.HyperlinkWarning); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeText applies Unicode NFC normalization for consistent cache key
// comparison. Surrounding whitespace is part of the key, since it is part of
// the text written back.
func normalizeText(text string) string {
	return norm.NFC.String(text)
}

// normalizeLang folds language codes so "fr", "FR" and " fr " share entries.
// An unknown source is stored as AUTO.
func normalizeLang(lang string) string {
	lang = strings.ToUpper(strings.TrimSpace(lang))
	if lang == "" {
		return "AUTO"
	}
	return lang
}
