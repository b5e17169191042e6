package source

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agentultra/deliciousbackup/internal/core"
)

// deliciousTime is the timestamp layout of the v1 API.
const deliciousTime = "2006-01-02T15:04:05Z"

// maxResponseSize bounds a single API response body.
const maxResponseSize = 64 << 20

// Delicious talks to a Delicious v1 compatible XML API (del.icio.us,
// Pinboard) using HTTP basic auth.
type Delicious struct {
	baseURL   string
	username  string
	password  string
	userAgent string
	client    *http.Client
}

// DeliciousOption configures a Delicious client.
type DeliciousOption func(*Delicious)

// WithBaseURL points the client at another v1 API root.
func WithBaseURL(u string) DeliciousOption {
	return func(d *Delicious) {
		if u != "" {
			d.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient replaces the HTTP client. Timeouts are the client's concern.
func WithHTTPClient(c *http.Client) DeliciousOption {
	return func(d *Delicious) {
		if c != nil {
			d.client = c
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) DeliciousOption {
	return func(d *Delicious) {
		if timeout > 0 {
			d.client.Timeout = timeout
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) DeliciousOption {
	return func(d *Delicious) {
		if ua != "" {
			d.userAgent = ua
		}
	}
}

// NewDelicious returns a client for the account identified by username.
func NewDelicious(username, password string, opts ...DeliciousOption) *Delicious {
	d := &Delicious{
		baseURL:   core.DefaultEndpoint,
		username:  username,
		password:  password,
		userAgent: core.UserAgent,
		client:    &http.Client{Timeout: core.DefaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type xmlUpdate struct {
	XMLName xml.Name `xml:"update"`
	Time    string   `xml:"time,attr"`
}

type xmlPosts struct {
	XMLName xml.Name  `xml:"posts"`
	Posts   []xmlPost `xml:"post"`
}

type xmlPost struct {
	Href        string `xml:"href,attr"`
	Description string `xml:"description,attr"`
	Tag         string `xml:"tag,attr"`
	Time        string `xml:"time,attr"`
}

type xmlTags struct {
	XMLName xml.Name `xml:"tags"`
	Tags    []xmlTag `xml:"tag"`
}

type xmlTag struct {
	Name  string `xml:"tag,attr"`
	Count int    `xml:"count,attr"`
}

// xmlResult is the envelope the API uses to report errors with a 200 status.
type xmlResult struct {
	XMLName xml.Name `xml:"result"`
	Code    string   `xml:"code,attr"`
	Text    string   `xml:",chardata"`
}

// LastModified calls posts/update.
func (d *Delicious) LastModified(ctx context.Context) (time.Time, error) {
	var u xmlUpdate
	if err := d.get(ctx, "posts/update", nil, &u); err != nil {
		return time.Time{}, err
	}
	t, err := parseTime(u.Time)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w: update time %q", ErrUnavailable, ErrMalformed, u.Time)
	}
	return t, nil
}

// FetchBookmarks calls posts/all, bounded by fromdt when since is set.
func (d *Delicious) FetchBookmarks(ctx context.Context, since *time.Time) ([]Bookmark, error) {
	q := url.Values{}
	if since != nil {
		q.Set("fromdt", since.UTC().Format(deliciousTime))
	}

	var posts xmlPosts
	if err := d.get(ctx, "posts/all", q, &posts); err != nil {
		return nil, err
	}

	out := make([]Bookmark, 0, len(posts.Posts))
	for _, p := range posts.Posts {
		if p.Href == "" {
			continue
		}
		t, err := parseTime(p.Time)
		if err != nil {
			return nil, fmt.Errorf("%w: %w: post %q time %q", ErrUnavailable, ErrMalformed, p.Href, p.Time)
		}
		out = append(out, Bookmark{
			Href:        p.Href,
			Description: p.Description,
			Tags:        p.Tag,
			Time:        t,
		})
	}
	return out, nil
}

// FetchTags calls tags/get.
func (d *Delicious) FetchTags(ctx context.Context) ([]Tag, error) {
	var tags xmlTags
	if err := d.get(ctx, "tags/get", nil, &tags); err != nil {
		return nil, err
	}

	out := make([]Tag, 0, len(tags.Tags))
	for _, t := range tags.Tags {
		if t.Name == "" {
			continue
		}
		out = append(out, Tag{Name: t.Name, Count: t.Count})
	}
	return out, nil
}

func (d *Delicious) get(ctx context.Context, path string, q url.Values, v any) error {
	endpoint := d.baseURL + "/" + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: building request for %s: %w", ErrUnavailable, path, err)
	}
	req.SetBasicAuth(d.username, d.password)
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnavailable, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %w: %s", ErrUnavailable, ErrUnauthorized, path)
	case resp.StatusCode == http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s: throttled by server", ErrUnavailable, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w: %s: unexpected status %s", ErrUnavailable, path, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: reading %s: %w", ErrUnavailable, path, err)
	}

	if err := xml.NewDecoder(bytes.NewReader(body)).Decode(v); err != nil {
		var res xmlResult
		if xml.Unmarshal(body, &res) == nil {
			msg := strings.TrimSpace(res.Code + " " + res.Text)
			return fmt.Errorf("%w: %s: %s", ErrUnavailable, path, msg)
		}
		return fmt.Errorf("%w: %w: %s: %w", ErrUnavailable, ErrMalformed, path, err)
	}

	return nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
