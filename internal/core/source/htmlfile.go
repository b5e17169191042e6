package source

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// HTMLFile reads bookmarks from a Netscape bookmark export, the format
// Delicious produced for account exports:
//
//	<DT><A HREF="https://example.com" ADD_DATE="1236143167" TAGS="go,web">Example</A>
//
// The file is parsed once, on first use.
type HTMLFile struct {
	path     string
	parsed   bool
	entries  []Bookmark
	modified time.Time
}

// NewHTMLFile returns a Source backed by the export at path.
func NewHTMLFile(path string) *HTMLFile {
	return &HTMLFile{path: path}
}

// LastModified returns the newest ADD_DATE or LAST_MODIFIED in the export,
// or the file's modification time when the export carries no dates.
func (h *HTMLFile) LastModified(ctx context.Context) (time.Time, error) {
	if err := h.load(ctx); err != nil {
		return time.Time{}, err
	}
	return h.modified, nil
}

// FetchBookmarks returns the bookmarks added at or after since, or all of
// them when since is nil.
func (h *HTMLFile) FetchBookmarks(ctx context.Context, since *time.Time) ([]Bookmark, error) {
	if err := h.load(ctx); err != nil {
		return nil, err
	}

	out := make([]Bookmark, 0, len(h.entries))
	for _, b := range h.entries {
		if since != nil && b.Time.Before(*since) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// FetchTags returns every distinct tag in the export with its number of uses,
// sorted by name.
func (h *HTMLFile) FetchTags(ctx context.Context) ([]Tag, error) {
	if err := h.load(ctx); err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, b := range h.entries {
		for _, label := range strings.Split(b.Tags, " ") {
			if label != "" {
				counts[label]++
			}
		}
	}

	out := make([]Tag, 0, len(counts))
	for name, n := range counts {
		out = append(out, Tag{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (h *HTMLFile) load(ctx context.Context) error {
	if h.parsed {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	f, err := os.Open(h.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return fmt.Errorf("%w: %w: parsing %s: %w", ErrUnavailable, ErrMalformed, h.path, err)
	}
	if doc.Find("dl, dt, h1").Length() == 0 {
		return fmt.Errorf("%w: %w: %s is not a Netscape bookmark file", ErrUnavailable, ErrMalformed, h.path)
	}

	var latest time.Time
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}

		added := unixAttr(s, "add_date")
		if m := unixAttr(s, "last_modified"); m.After(latest) {
			latest = m
		}
		if added.After(latest) {
			latest = added
		}

		tagsAttr, _ := s.Attr("tags")
		h.entries = append(h.entries, Bookmark{
			Href:        href,
			Description: strings.TrimSpace(s.Text()),
			Tags:        joinTags(tagsAttr),
			Time:        added,
		})
	})

	h.modified = latest
	if h.modified.IsZero() {
		h.modified = info.ModTime().UTC()
	}
	h.parsed = true
	return nil
}

func unixAttr(s *goquery.Selection, name string) time.Time {
	v, ok := s.Attr(name)
	if !ok {
		return time.Time{}
	}
	sec, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

// joinTags turns the export's comma-separated TAGS attribute into the
// space-delimited form the API returns.
func joinTags(attr string) string {
	var labels []string
	for _, t := range strings.Split(attr, ",") {
		if t = strings.TrimSpace(t); t != "" {
			labels = append(labels, t)
		}
	}
	return strings.Join(labels, " ")
}
