package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"redditrewriter/internal/domain"
)

const (
	// maxPageSize is the most items Reddit returns for one listing request.
	maxPageSize = 100

	maxListingBytes = 8 << 20
)

var ErrUnexpectedStatus = errors.New("unexpected status")

// Fetcher returns up to limit posts from a subreddit's "hot" listing, in
// listing order. An empty subreddit means the front page.
type Fetcher interface {
	Hot(ctx context.Context, subreddit string, limit int) ([]domain.Post, error)
}

func validateLimit(limit int) error {
	if limit < 1 {
		return fmt.Errorf("limit must be positive (limit = %d)", limit)
	}

	return nil
}

// collector canonicalizes, validates and dedups posts until limit is reached.
type collector struct {
	limit  int
	source string
	posts  []domain.Post
	seen   map[string]struct{}
	log    *slog.Logger
}

func newCollector(limit int, source string, log *slog.Logger) *collector {
	return &collector{
		limit:  limit,
		source: source,
		posts:  make([]domain.Post, 0, min(limit, maxPageSize)),
		seen:   make(map[string]struct{}, min(limit, maxPageSize)),
		log:    log,
	}
}

func (c *collector) full() bool {
	return len(c.posts) >= c.limit
}

// add reports whether the post was kept.
func (c *collector) add(ctx context.Context, rawURL string, post domain.Post) bool {
	if c.full() {
		return false
	}

	canonicalURL := PostCanonicalURL(rawURL)
	if canonicalURL == "" || !isValidPostURL(canonicalURL) {
		c.log.WarnContext(ctx, "Skipping item without usable permalink",
			"source", c.source,
			"rawURL", rawURL,
			"title", post.Title)

		return false
	}

	if _, ok := c.seen[canonicalURL]; ok {
		return false
	}

	post.URL = canonicalURL
	post.Title = strings.TrimSpace(post.Title)
	post.SelfText = strings.TrimSpace(post.SelfText)
	post.LinkURL = strings.TrimSpace(post.LinkURL)

	c.posts = append(c.posts, post)
	c.seen[canonicalURL] = struct{}{}

	return true
}
