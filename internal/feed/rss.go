package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"redditrewriter/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const defaultRSSBaseURL = "https://www.reddit.com"

type RSSConfig struct {
	UserAgent string
	Timeout   time.Duration

	// BaseURL overrides https://www.reddit.com.
	BaseURL string
}

// RSSFetcher reads Reddit's public Atom feed. It needs no credentials but has
// no paging, so it returns at most 100 posts.
type RSSFetcher struct {
	parser  *gofeed.Parser
	baseURL string
	log     *slog.Logger
}

func NewRSSFetcher(cfg RSSConfig, log *slog.Logger) *RSSFetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultRSSBaseURL
	}

	parser := gofeed.NewParser()
	parser.UserAgent = cfg.UserAgent
	parser.Client = &http.Client{Timeout: timeout}

	return &RSSFetcher{
		parser:  parser,
		baseURL: baseURL,
		log:     log,
	}
}

func (f *RSSFetcher) Hot(ctx context.Context, subreddit string, limit int) ([]domain.Post, error) {
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	if limit > maxPageSize {
		f.log.WarnContext(ctx, "RSS feed is capped at one page",
			"limit", limit,
			"cap", maxPageSize)
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(min(limit, maxPageSize)))

	feedURL := f.baseURL + hotPath(subreddit) + "/.rss?" + query.Encode()

	parsed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) {
			return nil, fmt.Errorf("parse feed (URL = %s): %w: %d", feedURL, ErrUnexpectedStatus, httpErr.StatusCode)
		}

		return nil, fmt.Errorf("parse feed (URL = %s): %w", feedURL, err)
	}

	c := newCollector(limit, "rss", f.log)
	for _, item := range parsed.Items {
		if c.full() {
			break
		}

		post, err := parseEntryContent(item.Content)
		if err != nil {
			f.log.WarnContext(ctx, "Failed to parse entry content",
				"error", err,
				"itemURL", item.Link)
		}
		post.Title = item.Title

		c.add(ctx, item.Link, post)
	}

	f.log.DebugContext(ctx, "Fetched hot listing",
		"source", "rss",
		"subreddit", subreddit,
		"limit", limit,
		"postCount", len(c.posts))

	return c.posts, nil
}

// parseEntryContent pulls the self text and the outbound "[link]" target out of
// the HTML Reddit puts into each entry.
func parseEntryContent(content string) (domain.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Post{}, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return domain.Post{}, fmt.Errorf("create document from reader: %w", err)
	}

	var paragraphs []string
	doc.Find("div.md").Children().Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	var post domain.Post
	post.SelfText = strings.Join(paragraphs, "\n\n")

	doc.Find("a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.TrimSpace(s.Text()) != "[link]" {
			return true
		}

		href, ok := s.Attr("href")
		if ok && PostCanonicalURL(href) == "" {
			post.LinkURL = strings.TrimSpace(href)
		}

		return false
	})

	return post, nil
}
