// Package source fetches bookmarks and the tag vocabulary of one account from
// a remote bookmarking service or an exported bookmark file.
package source

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnavailable is returned when the source cannot be reached or
	// refuses a request. Every source failure wraps it.
	ErrUnavailable  = errors.New("bookmark source unavailable")
	ErrUnauthorized = errors.New("bookmark source rejected credentials")
	ErrMalformed    = errors.New("malformed bookmark source response")
)

// Bookmark is a bookmark as supplied by the source.
type Bookmark struct {
	Href        string
	Description string
	// Tags holds the raw space-delimited tag labels exactly as fetched.
	Tags string
	Time time.Time
}

// Tag is one entry of the account's tag vocabulary.
type Tag struct {
	Name  string
	Count int
}

// Source is the capability the backup engine consumes. A Source is built
// once per run and passed to every stage that needs it.
type Source interface {
	// LastModified returns the time of the most recent change to the account.
	LastModified(ctx context.Context) (time.Time, error)
	// FetchBookmarks returns every bookmark, or only those at or after since
	// when since is not nil.
	FetchBookmarks(ctx context.Context, since *time.Time) ([]Bookmark, error)
	// FetchTags returns the complete tag vocabulary.
	FetchTags(ctx context.Context) ([]Tag, error)
}
