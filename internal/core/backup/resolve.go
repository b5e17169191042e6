package backup

import (
	"fmt"
	"strings"

	"github.com/agentultra/deliciousbackup/internal/core/db"
)

// Unresolved is a tag label on a bookmark that matched no known tag.
type Unresolved struct {
	Label      string
	BookmarkID int64
	Href       string
}

func (u Unresolved) String() string {
	return fmt.Sprintf("%s (bookmark %d)", u.Label, u.BookmarkID)
}

// Labels splits a raw tag string on single spaces. Empty fragments, from an
// empty string or repeated spaces, are dropped.
func Labels(raw string) []string {
	var out []string
	for _, l := range strings.Split(raw, " ") {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// matcher looks a label up by one strategy.
type matcher struct {
	name  string
	match func(tx *db.Tx, label string) (db.Tag, bool, error)
}

// defaultMatchers tries the label as given, then lower-cased. Tag lists and
// bookmark records sometimes disagree on case.
func defaultMatchers() []matcher {
	return []matcher{
		{name: "exact", match: func(tx *db.Tx, label string) (db.Tag, bool, error) {
			return tx.FindTagByName(label, true)
		}},
		{name: "lowercase", match: func(tx *db.Tx, label string) (db.Tag, bool, error) {
			return tx.FindTagByName(label, false)
		}},
	}
}

// resolve returns the tag of the first matcher that finds one.
func resolve(tx *db.Tx, matchers []matcher, label string) (db.Tag, string, bool, error) {
	for _, m := range matchers {
		tag, ok, err := m.match(tx, label)
		if err != nil {
			return db.Tag{}, "", false, fmt.Errorf("%s match for %q: %w", m.name, label, err)
		}
		if ok {
			return tag, m.name, true, nil
		}
	}
	return db.Tag{}, "", false, nil
}
