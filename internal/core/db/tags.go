package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// UpsertTag inserts t unless a tag with exactly the same name exists.
//
// Records a TagInsertedEvent when a row is written.
func (t *Tx) UpsertTag(tag Tag) (UpsertResult, error) {
	if strings.TrimSpace(tag.Name) == "" {
		return AlreadyExists, fmt.Errorf("%w: empty name", ErrInvalidTagName)
	}

	res, err := t.tx.Exec("INSERT OR IGNORE INTO tags (name) VALUES (?)", tag.Name)
	if err != nil {
		return AlreadyExists, fmt.Errorf("failed to insert tag: %w", err)
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
	tag.ID = id
	t.record(TagInsertedEvent{Tag: tag})

	return Inserted, nil
}

// FindTagByName looks a tag up by name. When caseSensitive is false the
// lower-cased name is matched against the stored names, so a stored "foo"
// is found for "Foo" but a stored "FOO" is not.
func (t *Tx) FindTagByName(name string, caseSensitive bool) (Tag, bool, error) {
	if !caseSensitive {
		name = strings.ToLower(name)
	}

	var tag Tag
	err := t.tx.Get(&tag, "SELECT id, name FROM tags WHERE name = ?", name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Tag{}, false, nil
		}
		return Tag{}, false, fmt.Errorf("failed to find tag: %w", err)
	}
	return tag, true, nil
}

// ListTags returns all tags ordered by name.
func (db *DB) ListTags() ([]Tag, error) {
	var out []Tag
	if err := db.db.Select(&out, "SELECT id, name FROM tags ORDER BY name"); err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return out, nil
}

// TagCounts returns every tag with the number of bookmarks linked to it,
// including tags with no links.
func (db *DB) TagCounts() ([]TagCount, error) {
	q := `
		SELECT t.name AS name, COUNT(pt.bookmark_id) AS count
		FROM tags t
		LEFT JOIN posts_tags pt ON pt.tag_id = t.id
		GROUP BY t.id
		ORDER BY count DESC, t.name ASC
	`
	var out []TagCount
	if err := db.db.Select(&out, q); err != nil {
		return nil, fmt.Errorf("failed to count tags: %w", err)
	}
	return out, nil
}

func (db *DB) CountTags() (int, error) {
	return db.count("tags")
}
