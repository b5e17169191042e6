package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/agentultra/deliciousbackup/internal/core/db"
	"github.com/agentultra/deliciousbackup/internal/core/source"
)

// Run performs one backup. Errors are wrapped with the name of the failing
// stage and with ErrSourceUnavailable, ErrStorage or ErrCheckpoint.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	r := &Report{StartedAt: e.now().UTC()}

	since, err := e.selectMode(ctx, r)
	if err != nil {
		return r, err
	}

	bookmarks, err := e.importBookmarks(ctx, r, since)
	if err != nil {
		return r, err
	}

	if err := e.importTags(ctx, r); err != nil {
		return r, err
	}

	if err := e.linkTags(ctx, r, bookmarks); err != nil {
		return r, err
	}

	if err := e.finalize(r); err != nil {
		return r, err
	}
	return r, nil
}

func stageError(stage Stage, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", stage, kind, err)
}

func (e *Engine) started(stage Stage) {
	if e.observer != nil {
		e.observer.StageStarted(stage)
	}
}

func (e *Engine) progress(stage Stage, current, total int) {
	if e.observer != nil {
		e.observer.Progress(stage, current, total)
	}
}

// selectMode picks an incremental fetch when a checkpoint exists and the
// account changed after it; everything else is a full fetch.
func (e *Engine) selectMode(ctx context.Context, r *Report) (*time.Time, error) {
	e.started(StageMode)

	last, ok, err := e.checkpoints.Read()
	if err != nil {
		return nil, stageError(StageMode, ErrCheckpoint, err)
	}

	if !ok && e.cpMode == CheckpointEarly {
		wrote, err := e.checkpoints.Write(r.StartedAt)
		if err != nil {
			return nil, stageError(StageMode, ErrCheckpoint, err)
		}
		r.CheckpointWritten = wrote
		e.logger.Printf("No checkpoint found, recorded %s", r.StartedAt.Format(time.RFC3339))
	}

	modified, err := e.src.LastModified(ctx)
	if err != nil {
		return nil, stageError(StageMode, ErrSourceUnavailable, err)
	}

	if ok && modified.After(last) {
		r.Mode = ModeIncremental
		since := last
		r.Since = &since
		e.logger.Printf("Account changed at %s, fetching bookmarks since %s",
			modified.Format(time.RFC3339), last.Format(time.RFC3339))
		return r.Since, nil
	}

	r.Mode = ModeFull
	e.logger.Printf("Fetching all bookmarks")
	return nil, nil
}

func (e *Engine) importBookmarks(ctx context.Context, r *Report, since *time.Time) ([]source.Bookmark, error) {
	e.started(StageBookmarks)

	bookmarks, err := e.src.FetchBookmarks(ctx, since)
	if err != nil {
		return nil, stageError(StageBookmarks, ErrSourceUnavailable, err)
	}
	r.BookmarksFetched = len(bookmarks)

	inserted := 0
	err = e.store.WithTx(ctx, func(tx *db.Tx) error {
		for i, b := range bookmarks {
			res, err := tx.UpsertBookmark(db.Bookmark{
				Href:        b.Href,
				Description: b.Description,
				Created:     b.Time,
			})
			if err != nil {
				return err
			}
			if res == db.Inserted {
				inserted++
			}
			e.progress(StageBookmarks, i+1, len(bookmarks))
		}
		return nil
	})
	if err != nil {
		return nil, stageError(StageBookmarks, ErrStorage, err)
	}

	r.BookmarksInserted = inserted
	e.logger.Printf("Fetched %d bookmarks, %d new", r.BookmarksFetched, r.BookmarksInserted)
	return bookmarks, nil
}

func (e *Engine) importTags(ctx context.Context, r *Report) error {
	e.started(StageTags)

	tags, err := e.src.FetchTags(ctx)
	if err != nil {
		return stageError(StageTags, ErrSourceUnavailable, err)
	}
	r.TagsFetched = len(tags)

	inserted := 0
	err = e.store.WithTx(ctx, func(tx *db.Tx) error {
		for i, t := range tags {
			res, err := tx.UpsertTag(db.Tag{Name: t.Name})
			if err != nil {
				return err
			}
			if res == db.Inserted {
				inserted++
			}
			e.progress(StageTags, i+1, len(tags))
		}
		return nil
	})
	if err != nil {
		return stageError(StageTags, ErrStorage, err)
	}

	r.TagsInserted = inserted
	e.logger.Printf("Fetched %d tags, %d new", r.TagsFetched, r.TagsInserted)
	return nil
}

// linkTags associates each fetched bookmark with the tags its labels name.
// Labels that match no tag are collected in the report and skipped.
func (e *Engine) linkTags(ctx context.Context, r *Report, bookmarks []source.Bookmark) error {
	e.started(StageLinks)

	var (
		created    int
		unresolved []Unresolved
	)
	err := e.store.WithTx(ctx, func(tx *db.Tx) error {
		for i, b := range bookmarks {
			if err := ctx.Err(); err != nil {
				return err
			}

			bookmarkID, ok, err := tx.FindBookmarkIDByHref(b.Href)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: bookmark %q", db.ErrRecordNotFound, b.Href)
			}

			for _, label := range Labels(b.Tags) {
				tag, how, found, err := resolve(tx, e.matchers, label)
				if err != nil {
					return err
				}
				if !found {
					unresolved = append(unresolved, Unresolved{Label: label, BookmarkID: bookmarkID, Href: b.Href})
					continue
				}
				if how != "exact" {
					e.logger.Printf("Matched label %q to tag %q (%s)", label, tag.Name, how)
				}

				exists, err := tx.LinkExists(bookmarkID, tag.ID)
				if err != nil {
					return err
				}
				if exists {
					continue
				}
				if err := tx.CreateLink(bookmarkID, tag.ID); err != nil {
					return err
				}
				created++
			}
			e.progress(StageLinks, i+1, len(bookmarks))
		}
		return nil
	})
	if err != nil {
		return stageError(StageLinks, ErrStorage, err)
	}

	r.LinksCreated = created
	r.Unresolved = unresolved
	e.logger.Printf("Created %d links", created)
	return nil
}

func (e *Engine) finalize(r *Report) error {
	e.started(StageFinalize)

	for _, u := range r.Unresolved {
		e.logger.Printf("Could not associate %s", u)
	}

	if e.cpMode == CheckpointStrict {
		wrote, err := e.checkpoints.Write(r.StartedAt)
		if err != nil {
			return stageError(StageFinalize, ErrCheckpoint, err)
		}
		r.CheckpointWritten = wrote
		if !wrote {
			e.logger.Printf("Checkpoint is later than %s, left unchanged", r.StartedAt.Format(time.RFC3339))
		}
	}

	r.FinishedAt = e.now().UTC()
	e.logger.Printf("%s backup finished in %s", r.Mode, r.Duration().Round(time.Millisecond))
	return nil
}
