package database

import (
	"database/sql"
	"errors"
)

// InsertPublication records a WordPress write and returns its row ID.
func (db *DB) InsertPublication(p Publication) (int64, error) {
	kind := p.Kind
	if kind == "" {
		kind = KindPublish
	}
	result, err := db.conn.Exec(
		`INSERT INTO publications
		(run_id, slug, post_id, edit_url, images_status, internal_links, rankmath_set, kind)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.RunID, p.Slug, p.PostID, nullable(p.EditURL), nullable(p.ImagesStatus),
		p.InternalLinks, p.RankMathSet, kind,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const publicationColumns = `id, run_id, slug, post_id, COALESCE(edit_url, ''), COALESCE(images_status, ''),
	internal_links, rankmath_set, kind, published_at`

func scanPublication(s scanner) (*Publication, error) {
	var p Publication
	var runID sql.NullString
	if err := s.Scan(&p.ID, &runID, &p.Slug, &p.PostID, &p.EditURL, &p.ImagesStatus,
		&p.InternalLinks, &p.RankMathSet, &p.Kind, &p.PublishedAt); err != nil {
		return nil, err
	}
	if runID.Valid {
		p.RunID = &runID.String
	}
	return &p, nil
}

// GetPublications returns publications for slug, or for every slug when
// slug is empty, newest first.
func (db *DB) GetPublications(slug string, limit int) ([]Publication, error) {
	query := "SELECT " + publicationColumns + " FROM publications"
	var args []any
	if slug != "" {
		query += " WHERE slug = ?"
		args = append(args, slug)
	}
	query += " ORDER BY published_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pubs []Publication
	for rows.Next() {
		p, err := scanPublication(rows)
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, *p)
	}
	return pubs, rows.Err()
}

// GetLatestPublication returns the newest publication for slug, or nil.
func (db *DB) GetLatestPublication(slug string) (*Publication, error) {
	p, err := scanPublication(db.conn.QueryRow(
		"SELECT "+publicationColumns+" FROM publications WHERE slug = ? ORDER BY published_at DESC, id DESC LIMIT 1", slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// GetStats returns journal counts.
func (db *DB) GetStats() (*Stats, error) {
	var s Stats
	var lastRun, lastPub sql.NullString
	err := db.conn.QueryRow(`SELECT
		(SELECT COUNT(*) FROM runs),
		(SELECT COUNT(DISTINCT file_path) FROM runs WHERE file_path IS NOT NULL),
		(SELECT COUNT(*) FROM publications),
		(SELECT COUNT(DISTINCT slug) FROM publications WHERE kind = 'publish'),
		(SELECT MAX(created_at) FROM runs),
		(SELECT MAX(published_at) FROM publications)`,
	).Scan(&s.Runs, &s.SavedDrafts, &s.Publications, &s.Published, &lastRun, &lastPub)
	if err != nil {
		return nil, err
	}
	if lastRun.Valid {
		s.LastRunAt = &lastRun.String
	}
	if lastPub.Valid {
		s.LastPublished = &lastPub.String
	}
	return &s, nil
}
