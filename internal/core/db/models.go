package db

import "time"

// Bookmark is a stored bookmark row. Created is written as RFC3339 text in UTC.
type Bookmark struct {
	ID          int64     `db:"id"`
	Href        string    `db:"href"`
	Description string    `db:"description"`
	Created     time.Time `db:"created"`
}

type Tag struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// Link associates one bookmark with one tag.
type Link struct {
	BookmarkID int64 `db:"bookmark_id"`
	TagID      int64 `db:"tag_id"`
}

// UpsertResult reports whether an insert-or-ignore wrote a new row.
type UpsertResult int

const (
	Inserted UpsertResult = iota
	AlreadyExists
)

func (r UpsertResult) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case AlreadyExists:
		return "already_exists"
	default:
		return "unknown"
	}
}

// TagCount is a tag name with the number of bookmarks linked to it.
type TagCount struct {
	Name  string `db:"name"`
	Count int    `db:"count"`
}
