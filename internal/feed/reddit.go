package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"redditrewriter/internal/domain"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	defaultAPIBaseURL  = "https://oauth.reddit.com"
	defaultTokenURL    = "https://www.reddit.com/api/v1/access_token"
	defaultHTTPTimeout = 60 * time.Second
)

type APIConfig struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	Timeout      time.Duration

	// BaseURL and TokenURL override Reddit's endpoints.
	BaseURL  string
	TokenURL string
}

// APIFetcher reads listings from Reddit's OAuth API with an app-only token.
type APIFetcher struct {
	client  *http.Client
	baseURL string
	log     *slog.Logger
}

type listingPage struct {
	posts []rawPost
	after string
}

type rawPost struct {
	permalink string
	post      domain.Post
}

func NewAPIFetcher(cfg APIConfig, log *slog.Logger) *APIFetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}

	tokenURL := strings.TrimSpace(cfg.TokenURL)
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}

	baseClient := &http.Client{
		Timeout:   timeout,
		Transport: &userAgentTransport{base: http.DefaultTransport, userAgent: cfg.UserAgent},
	}

	credentials := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	// The token source keeps this context for refreshes, so it must outlive
	// any single Hot call.
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, baseClient)

	client := credentials.Client(tokenCtx)
	client.Timeout = timeout

	return &APIFetcher{
		client:  client,
		baseURL: baseURL,
		log:     log,
	}
}

func (f *APIFetcher) Hot(ctx context.Context, subreddit string, limit int) ([]domain.Post, error) {
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	c := newCollector(limit, "api", f.log)
	after := ""
	count := 0

	for !c.full() {
		pageSize := min(limit-len(c.posts), maxPageSize)

		page, err := f.fetchPage(ctx, subreddit, pageSize, after, count)
		if err != nil {
			return nil, fmt.Errorf("fetch listing page (subreddit = %q, after = %q): %w", subreddit, after, err)
		}

		for _, raw := range page.posts {
			c.add(ctx, raw.permalink, raw.post)
		}

		count += len(page.posts)

		if page.after == "" || len(page.posts) == 0 {
			break
		}

		after = page.after
	}

	f.log.DebugContext(ctx, "Fetched hot listing",
		"source", "api",
		"subreddit", subreddit,
		"limit", limit,
		"postCount", len(c.posts))

	return c.posts, nil
}

func (f *APIFetcher) fetchPage(
	ctx context.Context,
	subreddit string,
	pageSize int,
	after string,
	count int,
) (listingPage, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(pageSize))
	query.Set("raw_json", "1")
	if after != "" {
		query.Set("after", after)
		query.Set("count", strconv.Itoa(count))
	}

	listingURL := f.baseURL + hotPath(subreddit) + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listingURL, nil)
	if err != nil {
		return listingPage{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return listingPage{}, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			f.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"listingURL", listingURL,
				"operation", "fetchPage")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return listingPage{}, fmt.Errorf("do request: %w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxListingBytes))
	if err != nil {
		return listingPage{}, fmt.Errorf("read body: %w", err)
	}

	return parseListing(body)
}

func parseListing(body []byte) (listingPage, error) {
	if !gjson.ValidBytes(body) {
		return listingPage{}, errors.New("listing is not valid JSON")
	}

	listing := gjson.ParseBytes(body)
	if kind := listing.Get("kind").String(); kind != "Listing" {
		return listingPage{}, fmt.Errorf("unexpected listing kind (kind = %q)", kind)
	}

	children := listing.Get("data.children").Array()
	page := listingPage{
		posts: make([]rawPost, 0, len(children)),
		after: listing.Get("data.after").String(),
	}

	for _, child := range children {
		data := child.Get("data")

		post := domain.Post{
			Title:    data.Get("title").String(),
			SelfText: data.Get("selftext").String(),
		}
		if !data.Get("is_self").Bool() {
			post.LinkURL = data.Get("url").String()
		}

		page.posts = append(page.posts, rawPost{
			permalink: data.Get("permalink").String(),
			post:      post,
		})
	}

	return page, nil
}
