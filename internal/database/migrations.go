package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "generation runs",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    topic TEXT NOT NULL,
    keyword TEXT NOT NULL,
    slug TEXT NOT NULL,
    tone TEXT NOT NULL,
    article_type TEXT,
    provider TEXT NOT NULL,
    model TEXT,
    file_path TEXT,
    word_count INTEGER DEFAULT 0,
    seo_passed INTEGER DEFAULT 0,
    seo_warnings INTEGER DEFAULT 0,
    seo_failures INTEGER DEFAULT 0,
    created_at TEXT DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_slug ON runs(slug);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`)
			return err
		},
	},
	{
		Version:     2,
		Description: "wordpress publications",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS publications (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT REFERENCES runs(id) ON DELETE SET NULL,
    slug TEXT NOT NULL,
    post_id INTEGER NOT NULL,
    edit_url TEXT,
    images_status TEXT,
    internal_links INTEGER DEFAULT 0,
    rankmath_set INTEGER DEFAULT 0,
    kind TEXT NOT NULL DEFAULT 'publish' CHECK(kind IN ('publish', 'upload-images')),
    published_at TEXT DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now'))
);

CREATE INDEX IF NOT EXISTS idx_publications_slug ON publications(slug);
`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
