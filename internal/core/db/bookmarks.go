package db

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"
)

// ValidateBookmarkHref validates that an href can be stored as a bookmark
// identity. Any scheme is accepted: the remote service stores more than web
// links.
func ValidateBookmarkHref(href string) error {
	if href == "" {
		return fmt.Errorf("%w: empty href", ErrInvalidHref)
	}

	if _, err := url.Parse(href); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidHref, err)
	}

	return nil
}

// ------------------------------
// Stage methods
// ------------------------------

// UpsertBookmark inserts b unless a bookmark with the same href already
// exists. Existing rows are never modified.
//
// Records a BookmarkInsertedEvent when a row is written.
func (t *Tx) UpsertBookmark(b Bookmark) (UpsertResult, error) {
	if err := ValidateBookmarkHref(b.Href); err != nil {
		return AlreadyExists, err
	}

	created := b.Created.UTC().Format(time.RFC3339)
	res, err := t.tx.Exec(
		"INSERT OR IGNORE INTO bookmarks (href, description, created) VALUES (?, ?, ?)",
		b.Href,
		b.Description,
		created,
	)
	if err != nil {
		return AlreadyExists, fmt.Errorf("failed to insert bookmark: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return AlreadyExists, fmt.Errorf("failed to determine rows affected: %w", err)
	}
	if affected == 0 {
		return AlreadyExists, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Inserted, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	b.ID = id
	b.Created = b.Created.UTC().Truncate(time.Second)
	t.record(BookmarkInsertedEvent{Bookmark: b})

	return Inserted, nil
}

// FindBookmarkIDByHref returns the id of the bookmark stored under href.
func (t *Tx) FindBookmarkIDByHref(href string) (int64, bool, error) {
	var id int64
	err := t.tx.Get(&id, "SELECT id FROM bookmarks WHERE href = ?", href)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to find bookmark: %w", err)
	}
	return id, true, nil
}

// ------------------------------
// Read methods
// ------------------------------

func (db *DB) GetBookmark(id int64) (Bookmark, error) {
	var b Bookmark
	err := db.db.Get(&b, "SELECT id, href, description, created FROM bookmarks WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Bookmark{}, fmt.Errorf("%w: bookmark %d", ErrRecordNotFound, id)
		}
		return Bookmark{}, fmt.Errorf("failed to get bookmark: %w", err)
	}
	return b, nil
}

// ListBookmarks returns bookmarks newest first. A limit <= 0 returns all.
func (db *DB) ListBookmarks(limit int) ([]Bookmark, error) {
	query := `
		SELECT id, href, description, created
		FROM bookmarks
		ORDER BY created DESC, id DESC
	`
	var out []Bookmark
	var err error
	if limit > 0 {
		err = db.db.Select(&out, query+" LIMIT ?", limit)
	} else {
		err = db.db.Select(&out, query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	return out, nil
}

func (db *DB) CountBookmarks() (int, error) {
	return db.count("bookmarks")
}

// count returns the number of rows in table. Table names are internal
// constants, never user input.
func (db *DB) count(table string) (int, error) {
	var n int
	if err := db.db.Get(&n, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}
