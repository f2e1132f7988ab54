package database

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

const runColumns = `id, topic, keyword, slug, tone, COALESCE(article_type, ''), provider, COALESCE(model, ''),
	COALESCE(file_path, ''), word_count, seo_passed, seo_warnings, seo_failures, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var r Run
	if err := s.Scan(&r.ID, &r.Topic, &r.Keyword, &r.Slug, &r.Tone, &r.ArticleType, &r.Provider, &r.Model,
		&r.FilePath, &r.WordCount, &r.SEOPassed, &r.SEOWarnings, &r.SEOFailures, &r.CreatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// InsertRun records a run and returns its ID. A new UUID is assigned when
// r.ID is empty.
func (db *DB) InsertRun(r Run) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := db.conn.Exec(
		`INSERT INTO runs
		(id, topic, keyword, slug, tone, article_type, provider, model, file_path,
		 word_count, seo_passed, seo_warnings, seo_failures)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Topic, r.Keyword, r.Slug, r.Tone, nullable(r.ArticleType), r.Provider, nullable(r.Model),
		nullable(r.FilePath), r.WordCount, r.SEOPassed, r.SEOWarnings, r.SEOFailures,
	)
	if err != nil {
		return "", err
	}
	return r.ID, nil
}

// GetRun returns a run by ID, or nil when absent.
func (db *DB) GetRun(id string) (*Run, error) {
	r, err := scanRun(db.conn.QueryRow("SELECT "+runColumns+" FROM runs WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

// GetLatestRunBySlug returns the newest run for a slug, or nil when absent.
func (db *DB) GetLatestRunBySlug(slug string) (*Run, error) {
	r, err := scanRun(db.conn.QueryRow(
		"SELECT "+runColumns+" FROM runs WHERE slug = ? ORDER BY created_at DESC, rowid DESC LIMIT 1", slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

// GetRecentRuns returns up to limit runs, newest first.
func (db *DB) GetRecentRuns(limit int) ([]Run, error) {
	rows, err := db.conn.Query(
		"SELECT "+runColumns+" FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// GetSavedRuns returns the newest run per saved draft file, newest first.
func (db *DB) GetSavedRuns() ([]Run, error) {
	rows, err := db.conn.Query(
		`SELECT ` + runColumns + ` FROM runs r
		WHERE file_path IS NOT NULL
		  AND rowid = (SELECT MAX(rowid) FROM runs WHERE file_path = r.file_path)
		ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}
