package db

import (
	"context"
	"errors"
	"testing"
)

// TestUpsertTag tests insert-or-ignore semantics for tags.
func TestUpsertTag(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	upsert := func(name string) (UpsertResult, error) {
		var got UpsertResult
		err := db.WithTx(ctx, func(tx *Tx) error {
			var err error
			got, err = tx.UpsertTag(Tag{Name: name})
			return err
		})
		return got, err
	}

	t.Run("inserts new tag", func(t *testing.T) {
		got, err := upsert("golang")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != Inserted {
			t.Errorf("expected Inserted, got %v", got)
		}
	})

	t.Run("ignores exact duplicate", func(t *testing.T) {
		got, err := upsert("golang")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != AlreadyExists {
			t.Errorf("expected AlreadyExists, got %v", got)
		}
	})

	t.Run("case is significant at storage time", func(t *testing.T) {
		got, err := upsert("GoLang")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != Inserted {
			t.Errorf("expected Inserted, got %v", got)
		}

		n, err := db.CountTags()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n != 2 {
			t.Errorf("expected 2 tags, got %d", n)
		}
	})

	t.Run("rejects blank name", func(t *testing.T) {
		_, err := upsert("  ")
		if !errors.Is(err, ErrInvalidTagName) {
			t.Errorf("expected ErrInvalidTagName, got %v", err)
		}
	})
}

// TestFindTagByName tests exact and lower-cased lookups.
func TestFindTagByName(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	fooID := addTag(t, db, "foo")
	upperID := addTag(t, db, "BAR")

	tests := []struct {
		name          string
		lookup        string
		caseSensitive bool
		wantID        int64
		wantFound     bool
	}{
		{"exact match", "foo", true, fooID, true},
		{"exact match is case sensitive", "Foo", true, 0, false},
		{"lower-cased lookup finds lower-case tag", "Foo", false, fooID, true},
		{"exact upper-case tag", "BAR", true, upperID, true},
		{"lower-cased lookup does not find upper-case tag", "Bar", false, 0, false},
		{"missing tag", "zzz-nomatch", false, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := db.WithTx(context.Background(), func(tx *Tx) error {
				tag, found, err := tx.FindTagByName(tt.lookup, tt.caseSensitive)
				if err != nil {
					return err
				}
				if found != tt.wantFound {
					t.Errorf("expected found=%v, got %v", tt.wantFound, found)
				}
				if tag.ID != tt.wantID {
					t.Errorf("expected ID %d, got %d", tt.wantID, tag.ID)
				}
				return nil
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

// TestTagCounts tests per-tag link counting.
func TestTagCounts(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	b1 := addBookmark(t, db, "https://example1.com", "Example 1")
	b2 := addBookmark(t, db, "https://example2.com", "Example 2")
	tag1 := addTag(t, db, "tag1")
	tag2 := addTag(t, db, "tag2")
	addTag(t, db, "tag3")

	err := db.WithTx(context.Background(), func(tx *Tx) error {
		for _, l := range []Link{{b1, tag1}, {b1, tag2}, {b2, tag2}} {
			if err := tx.CreateLink(l.BookmarkID, l.TagID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to link: %v", err)
	}

	counts, err := db.TagCounts()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := []TagCount{{"tag2", 2}, {"tag1", 1}, {"tag3", 0}}
	if len(counts) != len(want) {
		t.Fatalf("expected %d tag counts, got %d", len(want), len(counts))
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("position %d: expected %+v, got %+v", i, want[i], counts[i])
		}
	}
}

// TestListTags tests listing tags by name.
func TestListTags(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	addTag(t, db, "zeta")
	addTag(t, db, "alpha")

	tags, err := db.ListTags()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(tags) != 2 || tags[0].Name != "alpha" || tags[1].Name != "zeta" {
		t.Errorf("expected [alpha zeta], got %+v", tags)
	}
}
