package db

import (
	"context"
	"errors"
	"testing"
)

// TestLinks tests link existence checks and creation.
func TestLinks(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	bookmarkID := addBookmark(t, db, "https://example.com", "Example")
	tagID := addTag(t, db, "example")

	t.Run("link does not exist before creation", func(t *testing.T) {
		err := db.WithTx(ctx, func(tx *Tx) error {
			exists, err := tx.LinkExists(bookmarkID, tagID)
			if err != nil {
				return err
			}
			if exists {
				t.Error("expected link not to exist")
			}
			return nil
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("creates link", func(t *testing.T) {
		err := db.WithTx(ctx, func(tx *Tx) error {
			if err := tx.CreateLink(bookmarkID, tagID); err != nil {
				return err
			}
			exists, err := tx.LinkExists(bookmarkID, tagID)
			if err != nil {
				return err
			}
			if !exists {
				t.Error("expected link to exist inside the transaction")
			}
			return nil
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		names, err := db.BookmarkTags(bookmarkID)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(names) != 1 || names[0] != "example" {
			t.Errorf("expected [example], got %v", names)
		}
	})

	t.Run("duplicate link is rejected", func(t *testing.T) {
		err := db.WithTx(ctx, func(tx *Tx) error {
			return tx.CreateLink(bookmarkID, tagID)
		})
		if !errors.Is(err, ErrRecordDuplicate) {
			t.Errorf("expected ErrRecordDuplicate, got %v", err)
		}

		n, err := db.CountLinks()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1 link, got %d", n)
		}
	})

	t.Run("link to missing tag is rejected", func(t *testing.T) {
		err := db.WithTx(ctx, func(tx *Tx) error {
			return tx.CreateLink(bookmarkID, 9999)
		})
		if err == nil {
			t.Error("expected foreign key error, got nil")
		}
	})
}
