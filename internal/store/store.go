package store

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/suggestbox/suggestbox/pkg/suggest"
)

// ShortcutStat is one row of the click log: the aggregate of every click on
// one suggestion (identified by source and intent key) made under one exact
// historical query string.
type ShortcutStat struct {
	ID                 int64 `db:"id"`
	suggest.Suggestion       // payload as of the last click or refresh
	// IntentKey is the derived entity identity. The payload's shortcut id is
	// stored verbatim, including empty, so clicks round-trip untouched.
	IntentKey   string `db:"intent_key"`
	Query       string `db:"query"`
	HitCount    int    `db:"hit_count"`
	LastHitTime int64  `db:"last_hit_time"` // unix millis
}

// LastHit returns the row's most recent click time.
func (s ShortcutStat) LastHit() time.Time {
	return time.UnixMilli(s.LastHitTime)
}

// SourceTotal is the per-source click aggregate used for source ranking.
type SourceTotal struct {
	Source      suggest.SourceID `db:"source"`
	Clicks      int              `db:"clicks"`
	LastHitTime int64            `db:"last_hit_time"`
}

// CandidateOpts controls candidate selection.
type CandidateOpts struct {
	Prefix string    // typed query; matches rows whose stored query it prefixes
	Since  time.Time // zero = no age cutoff
}

// Store is the persistence interface for the click log.
type Store interface {
	RecordClick(ctx context.Context, query string, s suggest.Suggestion, at time.Time) error
	Candidates(ctx context.Context, opts CandidateOpts) ([]ShortcutStat, error)
	RefreshEntity(ctx context.Context, source suggest.SourceID, shortcutID string, payload *suggest.Suggestion) error
	SourceTotals(ctx context.Context, since time.Time) ([]SourceTotal, error)
	HasHistory(ctx context.Context) (bool, error)
	Clear(ctx context.Context) error
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database at path (":memory:" for tests), configures
// pragmas, and runs migrations. Any failure here is fatal for the caller; no
// operation is attempted on a store that did not open cleanly.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if path == ":memory:" {
		// Each pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordClick creates or merges the row for (source, intent key, query).
// A repeat click increments hit_count, advances last_hit_time, and replaces
// the cached payload with the clicking suggestion's current fields. The
// shortcut id column carries the payload's id verbatim; merging keys on the
// derived intent key, so empty-id suggestions still accumulate.
func (s *SQLiteStore) RecordClick(ctx context.Context, query string, sg suggest.Suggestion, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clicklog (source, intent_key, shortcut_id, query, hit_count, last_hit_time,
			format, text1, text2, text2_url, icon1, icon2,
			intent_action, intent_data, intent_extra, suggest_query, log_type, spinner)
		VALUES (?, ?, ?, ?, 1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source, intent_key, query) DO UPDATE SET
			hit_count = hit_count + 1,
			last_hit_time = MAX(last_hit_time, excluded.last_hit_time),
			shortcut_id = excluded.shortcut_id,
			format = excluded.format,
			text1 = excluded.text1,
			text2 = excluded.text2,
			text2_url = excluded.text2_url,
			icon1 = excluded.icon1,
			icon2 = excluded.icon2,
			intent_action = excluded.intent_action,
			intent_data = excluded.intent_data,
			intent_extra = excluded.intent_extra,
			suggest_query = excluded.suggest_query,
			log_type = excluded.log_type,
			spinner = excluded.spinner
	`, sg.Source, sg.Key(), sg.ShortcutID, query, at.UnixMilli(),
		sg.Format, sg.Text1, sg.Text2, sg.Text2URL, sg.Icon1, sg.Icon2,
		sg.IntentAction, sg.IntentData, sg.IntentExtra, sg.SuggestQuery, sg.LogType,
		sg.SpinnerWhileRefreshing)
	if err != nil {
		return fmt.Errorf("record click %s/%s: %w", sg.Source, sg.Key(), err)
	}
	return nil
}

const statColumns = `id, source, intent_key, shortcut_id, query, hit_count, last_hit_time,
	format, text1, text2, text2_url, icon1, icon2,
	intent_action, intent_data, intent_extra, suggest_query, log_type, spinner`

// Candidates returns every row whose stored query has opts.Prefix as an exact,
// case-sensitive prefix. The empty prefix matches all rows.
func (s *SQLiteStore) Candidates(ctx context.Context, opts CandidateOpts) ([]ShortcutStat, error) {
	// substr counts characters, not bytes.
	query := "SELECT " + statColumns + " FROM clicklog WHERE substr(query, 1, ?) = ?"
	args := []any{utf8.RuneCountInString(opts.Prefix), opts.Prefix}

	if !opts.Since.IsZero() {
		query += " AND last_hit_time >= ?"
		args = append(args, opts.Since.UnixMilli())
	}

	var stats []ShortcutStat
	if err := s.db.SelectContext(ctx, &stats, query, args...); err != nil {
		return nil, fmt.Errorf("select candidates %q: %w", opts.Prefix, err)
	}
	return stats, nil
}

// RefreshEntity updates or removes every row belonging to one entity, in a
// single transaction. With a payload, the cached suggestion fields are
// replaced and hit counts and times are left alone; with nil, the entity's
// rows are deleted and its next click starts over at hit_count 1.
func (s *SQLiteStore) RefreshEntity(ctx context.Context, source suggest.SourceID, shortcutID string, payload *suggest.Suggestion) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin refresh %s/%s: %w", source, shortcutID, err)
	}
	defer tx.Rollback()

	if payload == nil {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM clicklog WHERE source = ? AND shortcut_id = ?",
			source, shortcutID); err != nil {
			return fmt.Errorf("invalidate %s/%s: %w", source, shortcutID, err)
		}
	} else {
		if _, err := tx.ExecContext(ctx, `
			UPDATE clicklog SET
				format = ?, text1 = ?, text2 = ?, text2_url = ?, icon1 = ?, icon2 = ?,
				intent_action = ?, intent_data = ?, intent_extra = ?,
				suggest_query = ?, log_type = ?, spinner = ?
			WHERE source = ? AND shortcut_id = ?
		`, payload.Format, payload.Text1, payload.Text2, payload.Text2URL,
			payload.Icon1, payload.Icon2,
			payload.IntentAction, payload.IntentData, payload.IntentExtra,
			payload.SuggestQuery, payload.LogType, payload.SpinnerWhileRefreshing,
			source, shortcutID); err != nil {
			return fmt.Errorf("refresh %s/%s: %w", source, shortcutID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit refresh %s/%s: %w", source, shortcutID, err)
	}
	return nil
}

// SourceTotals sums clicks per source over rows at or after since.
func (s *SQLiteStore) SourceTotals(ctx context.Context, since time.Time) ([]SourceTotal, error) {
	var totals []SourceTotal
	err := s.db.SelectContext(ctx, &totals, `
		SELECT source, SUM(hit_count) AS clicks, MAX(last_hit_time) AS last_hit_time
		FROM clicklog
		WHERE last_hit_time >= ?
		GROUP BY source
	`, since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("source totals: %w", err)
	}
	return totals, nil
}

// HasHistory reports whether any click has been recorded.
func (s *SQLiteStore) HasHistory(ctx context.Context) (bool, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT EXISTS(SELECT 1 FROM clicklog)"); err != nil {
		return false, fmt.Errorf("has history: %w", err)
	}
	return n != 0, nil
}

// Clear deletes all rows.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM clicklog"); err != nil {
		return fmt.Errorf("clear clicklog: %w", err)
	}
	return nil
}

// PurgeOlderThan physically deletes rows last hit before cutoff and returns
// how many went. Aged rows are already invisible to ranking; purging just
// keeps the log from growing without bound.
func (s *SQLiteStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM clicklog WHERE last_hit_time < ?", cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("purge clicklog: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
