package db

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// LinkExists reports whether bookmarkID is already linked to tagID.
func (t *Tx) LinkExists(bookmarkID, tagID int64) (bool, error) {
	var n int
	err := t.tx.Get(&n,
		"SELECT COUNT(*) FROM posts_tags WHERE bookmark_id = ? AND tag_id = ?",
		bookmarkID, tagID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to check link: %w", err)
	}
	return n > 0, nil
}

// CreateLink associates a bookmark with a tag. Both rows must exist. Linking
// the same pair twice fails with ErrRecordDuplicate; callers check LinkExists
// first.
//
// Records a LinkCreatedEvent.
func (t *Tx) CreateLink(bookmarkID, tagID int64) error {
	_, err := t.tx.Exec(
		"INSERT INTO posts_tags (bookmark_id, tag_id) VALUES (?, ?)",
		bookmarkID, tagID,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && isUniqueViolation(sqliteErr) {
			return fmt.Errorf("%w: link %d-%d", ErrRecordDuplicate, bookmarkID, tagID)
		}
		return fmt.Errorf("failed to create link: %w", err)
	}

	t.record(LinkCreatedEvent{Link: Link{BookmarkID: bookmarkID, TagID: tagID}})
	return nil
}

// BookmarkTags returns the names of the tags linked to a bookmark, sorted.
func (db *DB) BookmarkTags(bookmarkID int64) ([]string, error) {
	q := `
		SELECT t.name
		FROM tags t
		JOIN posts_tags pt ON pt.tag_id = t.id
		WHERE pt.bookmark_id = ?
		ORDER BY t.name`
	var names []string
	if err := db.db.Select(&names, q, bookmarkID); err != nil {
		return nil, fmt.Errorf("failed to load bookmark tags: %w", err)
	}
	return names, nil
}

func (db *DB) CountLinks() (int, error) {
	return db.count("posts_tags")
}

func isUniqueViolation(err sqlite3.Error) bool {
	return err.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		err.ExtendedCode == sqlite3.ErrConstraintUnique
}
