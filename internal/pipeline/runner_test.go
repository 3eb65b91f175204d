package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"redditrewriter/internal/document"
	"redditrewriter/internal/domain"
	"redditrewriter/internal/pipeline"
	"redditrewriter/internal/retry"
	"redditrewriter/internal/rewriter"

	"github.com/fumiama/go-docx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	u1 = "https://reddit.com/r/test/comments/u1/first/"
	u2 = "https://reddit.com/r/test/comments/u2/second/"
)

var errServiceDown = errors.New("service down")

type stubFetcher struct {
	posts []domain.Post
	err   error
	calls int
	gotN  int
	gotSR string
}

func (s *stubFetcher) Hot(_ context.Context, subreddit string, limit int) ([]domain.Post, error) {
	s.calls++
	s.gotN = limit
	s.gotSR = subreddit

	return s.posts, s.err
}

// stubCompleter answers rewrite prompts with "Body of <url>" and title prompts
// with "Title of <url>". URLs listed in failing never succeed.
type stubCompleter struct {
	mu      sync.Mutex
	failing map[string]bool
	calls   map[string]int
	onCall  func()
}

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.onCall != nil {
		s.onCall()
	}

	for _, u := range []string{u1, u2} {
		if !strings.Contains(prompt, u) {
			continue
		}

		if s.calls == nil {
			s.calls = map[string]int{}
		}
		s.calls[u]++

		if s.failing[u] {
			return "", errServiceDown
		}
		if strings.Contains(prompt, "clickable title") {
			return "Title of " + u, nil
		}

		return "Body of " + u, nil
	}

	return "", errServiceDown
}

type recordingReporter struct {
	started   int
	outcomes  []pipeline.Outcome
	postsDone int
	finished  *pipeline.Summary
}

func (r *recordingReporter) Started(_ context.Context, _ domain.Params, postCount int) {
	r.started = postCount
}

func (r *recordingReporter) VariationDone(_ context.Context, outcome pipeline.Outcome) {
	r.outcomes = append(r.outcomes, outcome)
}

func (r *recordingReporter) PostDone(context.Context, domain.Post) {
	r.postsDone++
}

func (r *recordingReporter) Finished(_ context.Context, summary pipeline.Summary) {
	r.finished = &summary
}

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

type harness struct {
	fetcher   *stubFetcher
	completer *stubCompleter
	reporter  *recordingReporter
	runner    *pipeline.Runner
	dir       string
}

func newHarness(t *testing.T, format string) *harness {
	t.Helper()

	h := &harness{
		fetcher: &stubFetcher{posts: []domain.Post{
			{URL: u1, Title: "first"},
			{URL: u2, Title: "second"},
		}},
		completer: &stubCompleter{failing: map[string]bool{}},
		reporter:  &recordingReporter{},
		dir:       filepath.Join(t.TempDir(), "posts"),
	}

	gen, err := rewriter.New(h.completer, rewriter.Options{
		RewritePolicy: retry.FixedPolicy(10, time.Second, 15*time.Second),
		TitlePolicy:   retry.FixedPolicy(3, time.Second, 15*time.Second),
		Sleep:         noSleep,
	}, slog.Default())
	require.NoError(t, err)

	w, err := document.NewWriter(document.Options{Dir: h.dir, Format: format}, slog.Default())
	require.NoError(t, err)

	h.runner = pipeline.NewRunner(h.fetcher, gen, w, h.reporter, slog.Default())

	return h
}

func docxParagraphs(t *testing.T, path string) []string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var texts []string
	for _, item := range doc.Document.Body.Items {
		if p, ok := item.(*docx.Paragraph); ok {
			texts = append(texts, p.String())
		}
	}

	return texts
}

func TestRunWritesOneDocumentPerPost(t *testing.T) {
	h := newHarness(t, document.FormatDOCX)

	summary, err := h.runner.Run(context.Background(), domain.Params{
		PostCount:      2,
		VariationCount: 1,
		Subreddit:      "test",
	})

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Posts)
	assert.Equal(t, 2, summary.Written)
	assert.Zero(t, summary.Failed)
	assert.Equal(t, 2, h.fetcher.gotN)
	assert.Equal(t, "test", h.fetcher.gotSR)

	entries, err := os.ReadDir(h.dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	for _, u := range []string{u1, u2} {
		path := filepath.Join(h.dir, document.SanitizeTitle("Title of "+u)+"_variation_1.docx")
		assert.Equal(t, []string{"Title of " + u, "Body of " + u, ""}, docxParagraphs(t, path))
	}

	assert.Equal(t, 2, h.reporter.started)
	assert.Equal(t, 2, h.reporter.postsDone)
	require.NotNil(t, h.reporter.finished)
	assert.Equal(t, 2, h.reporter.finished.Written)
}

func TestRunContinuesAfterRewriteExhaustion(t *testing.T) {
	h := newHarness(t, document.FormatMarkdown)
	h.completer.failing[u1] = true

	summary, err := h.runner.Run(context.Background(), domain.Params{PostCount: 2, VariationCount: 1})

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Written)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 10, h.completer.calls[u1])

	failures := summary.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, u1, failures[0].Post.URL)
	assert.Equal(t, pipeline.StageRewrite, failures[0].Stage)
	assert.ErrorIs(t, failures[0].Err, retry.ErrExhausted)

	require.Len(t, h.reporter.outcomes, 2)
	assert.True(t, h.reporter.outcomes[0].Failed())
	assert.False(t, h.reporter.outcomes[1].Failed())

	_, err = os.Stat(h.reporter.outcomes[1].Path)
	require.NoError(t, err)
}

func TestRunWritesEveryVariation(t *testing.T) {
	h := newHarness(t, document.FormatMarkdown)
	h.fetcher.posts = h.fetcher.posts[:1]

	summary, err := h.runner.Run(context.Background(), domain.Params{PostCount: 1, VariationCount: 3})

	require.NoError(t, err)
	require.Len(t, summary.Outcomes, 3)

	stem := document.SanitizeTitle("Title of " + u1)
	for i, o := range summary.Outcomes {
		assert.Equal(t, i, o.Variation)
		assert.Equal(t, filepath.Join(h.dir, stem+"_variation_"+string(rune('1'+i))+".md"), o.Path)
	}
}

func TestRunAbortsOnFetchError(t *testing.T) {
	h := newHarness(t, document.FormatMarkdown)
	h.fetcher.err = errServiceDown

	_, err := h.runner.Run(context.Background(), domain.Params{PostCount: 2, VariationCount: 1})

	assert.ErrorIs(t, err, errServiceDown)
	assert.Nil(t, h.reporter.finished)
	assert.Empty(t, h.completer.calls)
}

func TestRunRejectsInvalidParams(t *testing.T) {
	h := newHarness(t, document.FormatMarkdown)

	_, err := h.runner.Run(context.Background(), domain.Params{PostCount: 0, VariationCount: 1})

	assert.ErrorIs(t, err, domain.ErrInvalidParams)
	assert.Zero(t, h.fetcher.calls)
}

func TestRunStopsOnCancellation(t *testing.T) {
	h := newHarness(t, document.FormatMarkdown)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.completer.failing[u1] = true
	h.completer.onCall = cancel

	summary, err := h.runner.Run(ctx, domain.Params{PostCount: 2, VariationCount: 2})

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, summary.Outcomes)
	assert.Equal(t, 1, h.completer.calls[u1])
	assert.Zero(t, h.completer.calls[u2])
	require.NotNil(t, h.reporter.finished)
}
