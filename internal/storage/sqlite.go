package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"sift/internal/annotate"
)

// maxRedirectHops bounds redirect chains, which may loop in real dumps.
const maxRedirectHops = 8

type SQLiteStore struct {
	db *sql.DB
}

var _ PageStore = (*SQLiteStore)(nil)

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS pages (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			length INTEGER NOT NULL,
			redirect TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS links (
			page_id INTEGER NOT NULL,
			ord INTEGER NOT NULL,
			title TEXT NOT NULL,
			start INTEGER NOT NULL,
			length INTEGER NOT NULL,
			flags INTEGER NOT NULL,
			PRIMARY KEY (page_id, ord)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_pages_title ON pages(title);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) SavePages(ctx context.Context, records []*annotate.PageRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	pageStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pages (id, title, length, redirect)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title,
			length=excluded.length,
			redirect=excluded.redirect
	`)
	if err != nil {
		return err
	}
	defer pageStmt.Close()

	clearStmt, err := tx.PrepareContext(ctx, `DELETE FROM links WHERE page_id = ?`)
	if err != nil {
		return err
	}
	defer clearStmt.Close()

	linkStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO links (page_id, ord, title, start, length, flags)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer linkStmt.Close()

	for _, rec := range records {
		var redirect sql.NullString
		if rec.Redirect != "" {
			redirect = sql.NullString{String: rec.Redirect, Valid: true}
		}
		if _, err := pageStmt.ExecContext(ctx, rec.ID, rec.Title, rec.Length, redirect); err != nil {
			return fmt.Errorf("save page %d: %w", rec.ID, err)
		}
		if _, err := clearStmt.ExecContext(ctx, rec.ID); err != nil {
			return fmt.Errorf("clear links of page %d: %w", rec.ID, err)
		}
		for i, l := range rec.Links {
			if _, err := linkStmt.ExecContext(ctx, rec.ID, i, l.Title, l.Start, l.Length, l.Flags); err != nil {
				return fmt.Errorf("save link %d of page %d: %w", i, rec.ID, err)
			}
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetPage(ctx context.Context, title string) (*annotate.PageRecord, error) {
	rec := &annotate.PageRecord{}
	var redirect sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, length, redirect FROM pages WHERE title = ? ORDER BY id LIMIT 1`, title,
	).Scan(&rec.ID, &rec.Title, &rec.Length, &redirect)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, title)
	}
	if err != nil {
		return nil, err
	}
	if redirect.Valid {
		rec.Redirect = redirect.String
		return rec, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT title, start, length, flags FROM links WHERE page_id = ? ORDER BY ord`, rec.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rec.Links = []annotate.Link{}
	for rows.Next() {
		var l annotate.Link
		if err := rows.Scan(&l.Title, &l.Start, &l.Length, &l.Flags); err != nil {
			return nil, err
		}
		rec.Links = append(rec.Links, l)
	}
	return rec, rows.Err()
}

func (s *SQLiteStore) FirstLink(ctx context.Context, title string) (*annotate.PageRecord, annotate.Link, bool, error) {
	rec, err := s.GetPage(ctx, title)
	for hops := 0; err == nil && rec.Redirect != ""; hops++ {
		if hops == maxRedirectHops {
			return nil, annotate.Link{}, false, fmt.Errorf("too many redirects from %q", title)
		}
		rec, err = s.GetPage(ctx, rec.Redirect)
	}
	if err != nil {
		return nil, annotate.Link{}, false, err
	}

	for _, l := range rec.Links {
		if l.Flags == 0 {
			return rec, l, true, nil
		}
	}
	return rec, annotate.Link{}, false, nil
}
