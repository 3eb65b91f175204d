package feed_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"redditrewriter/internal/feed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReddit struct {
	mu          sync.Mutex
	total       int
	tokenCalls  int
	listingURLs []string
	status      int
}

func (f *fakeReddit) handler(t *testing.T) http.Handler {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.tokenCalls++
		f.mu.Unlock()

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)
		assert.Equal(t, "test-agent/1.0", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"bearer","expires_in":3600}`))
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.listingURLs = append(f.listingURLs, r.URL.String())
		status := f.status
		f.mu.Unlock()

		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "test-agent/1.0", r.Header.Get("User-Agent"))

		if status != 0 {
			w.WriteHeader(status)
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		start := 0
		if after := r.URL.Query().Get("after"); after != "" {
			_, err := fmt.Sscanf(after, "t3_%d", &start)
			assert.NoError(t, err)
			start++
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(listingJSON(start, min(start+limit, f.total), f.total))
	})

	return mux
}

func listingJSON(start, end, total int) []byte {
	children := make([]map[string]any, 0, end-start)
	for i := start; i < end; i++ {
		children = append(children, map[string]any{
			"kind": "t3",
			"data": map[string]any{
				"name":      fmt.Sprintf("t3_%d", i),
				"title":     fmt.Sprintf("Post %d", i),
				"permalink": fmt.Sprintf("/r/golang/comments/id%d/post_%d/", i, i),
				"selftext":  fmt.Sprintf("Body %d", i),
				"is_self":   i%2 == 0,
				"url":       fmt.Sprintf("https://example.com/%d", i),
			},
		})
	}

	var after any
	if end < total && end > start {
		after = fmt.Sprintf("t3_%d", end-1)
	}

	body, _ := json.Marshal(map[string]any{
		"kind": "Listing",
		"data": map[string]any{"after": after, "children": children},
	})

	return body
}

func newTestAPIFetcher(t *testing.T, fake *fakeReddit) *feed.APIFetcher {
	t.Helper()

	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	return feed.NewAPIFetcher(feed.APIConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		UserAgent:    "test-agent/1.0",
		BaseURL:      srv.URL,
		TokenURL:     srv.URL + "/api/v1/access_token",
	}, slog.Default())
}

func TestAPIFetcherReturnsCanonicalURLs(t *testing.T) {
	fake := &fakeReddit{total: 10}
	f := newTestAPIFetcher(t, fake)

	posts, err := f.Hot(context.Background(), "golang", 3)

	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "https://reddit.com/r/golang/comments/id0/post_0/", posts[0].URL)
	assert.Equal(t, "Post 0", posts[0].Title)
	assert.Equal(t, "Body 0", posts[0].SelfText)
	assert.Empty(t, posts[0].LinkURL)
	assert.Equal(t, "https://example.com/1", posts[1].LinkURL)

	require.Len(t, fake.listingURLs, 1)
	assert.Contains(t, fake.listingURLs[0], "/r/golang/hot?")
	assert.Contains(t, fake.listingURLs[0], "limit=3")
	assert.Contains(t, fake.listingURLs[0], "raw_json=1")
}

func TestAPIFetcherPagesPastPageCap(t *testing.T) {
	fake := &fakeReddit{total: 500}
	f := newTestAPIFetcher(t, fake)

	posts, err := f.Hot(context.Background(), "golang", 150)

	require.NoError(t, err)
	require.Len(t, posts, 150)
	assert.Equal(t, "https://reddit.com/r/golang/comments/id149/post_149/", posts[149].URL)

	require.Len(t, fake.listingURLs, 2)
	assert.Contains(t, fake.listingURLs[0], "limit=100")
	assert.Contains(t, fake.listingURLs[1], "limit=50")
	assert.Contains(t, fake.listingURLs[1], "after=t3_99")
	assert.Equal(t, 1, fake.tokenCalls)
}

func TestAPIFetcherStopsWhenListingEnds(t *testing.T) {
	fake := &fakeReddit{total: 4}
	f := newTestAPIFetcher(t, fake)

	posts, err := f.Hot(context.Background(), "golang", 25)

	require.NoError(t, err)
	assert.Len(t, posts, 4)
	assert.Len(t, fake.listingURLs, 1)
}

func TestAPIFetcherFrontPage(t *testing.T) {
	fake := &fakeReddit{total: 2}
	f := newTestAPIFetcher(t, fake)

	_, err := f.Hot(context.Background(), "", 2)

	require.NoError(t, err)
	require.Len(t, fake.listingURLs, 1)
	assert.Contains(t, fake.listingURLs[0], "/hot?")
	assert.NotContains(t, fake.listingURLs[0], "/r/")
}

func TestAPIFetcherUnexpectedStatus(t *testing.T) {
	fake := &fakeReddit{total: 2, status: http.StatusForbidden}
	f := newTestAPIFetcher(t, fake)

	_, err := f.Hot(context.Background(), "golang", 2)

	assert.ErrorIs(t, err, feed.ErrUnexpectedStatus)
}

func TestAPIFetcherRejectsNonPositiveLimit(t *testing.T) {
	f := newTestAPIFetcher(t, &fakeReddit{})

	_, err := f.Hot(context.Background(), "golang", 0)
	require.Error(t, err)
}

const listingWithNoise = `{
  "kind": "Listing",
  "data": {
    "after": null,
    "children": [
      {"kind": "t3", "data": {"title": "First", "permalink": "/r/golang/comments/aa1/first/", "is_self": true, "selftext": "one"}},
      {"kind": "t3", "data": {"title": "First again", "permalink": "/r/golang/comments/aa1/first/", "is_self": true, "selftext": "dup"}},
      {"kind": "t3", "data": {"title": "Wiki", "permalink": "/r/golang/wiki/index/", "is_self": true}},
      {"kind": "t3", "data": {"title": "Foreign", "permalink": "https://example.com/r/golang/comments/bb2/foreign/", "is_self": true}},
      {"kind": "t3", "data": {"title": "Second", "permalink": "/r/golang/comments/cc3/second/", "is_self": false, "url": "https://go.dev/blog"}}
    ]
  }
}`

func TestAPIFetcherSkipsDuplicateAndForeignPermalinks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(listingWithNoise))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	f := feed.NewAPIFetcher(feed.APIConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		UserAgent:    "test-agent/1.0",
		BaseURL:      srv.URL,
		TokenURL:     srv.URL + "/api/v1/access_token",
	}, slog.Default())

	posts, err := f.Hot(context.Background(), "golang", 5)

	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "https://reddit.com/r/golang/comments/aa1/first/", posts[0].URL)
	assert.Equal(t, "First", posts[0].Title)
	assert.Equal(t, "one", posts[0].SelfText)
	assert.Equal(t, "https://reddit.com/r/golang/comments/cc3/second/", posts[1].URL)
	assert.Equal(t, "https://go.dev/blog", posts[1].LinkURL)
}
