package rewriter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"redditrewriter/internal/domain"
	"redditrewriter/internal/ratelimiter"
	"redditrewriter/internal/retry"
)

type Options struct {
	RewritePolicy retry.Policy
	TitlePolicy   retry.Policy
	Hooks         retry.Hooks
	// Sleep replaces the real clock in tests.
	Sleep       retry.Sleeper
	RateLimiter *ratelimiter.RateLimiter
}

// Rewriter turns a post into an article body and the body into a title, each
// through its own bounded retry loop.
type Rewriter struct {
	completer   Completer
	rewrite     retry.Retrier
	title       retry.Retrier
	rateLimiter *ratelimiter.RateLimiter
	log         *slog.Logger
}

func New(completer Completer, opts Options, log *slog.Logger) (*Rewriter, error) {
	if completer == nil {
		return nil, errors.New("completer is required")
	}
	if err := opts.RewritePolicy.Validate(); err != nil {
		return nil, fmt.Errorf("validate rewrite policy: %w", err)
	}
	if err := opts.TitlePolicy.Validate(); err != nil {
		return nil, fmt.Errorf("validate title policy: %w", err)
	}

	sleep := opts.Sleep
	if sleep == nil {
		sleep = retry.SleepContext
	}

	return &Rewriter{
		completer:   completer,
		rewrite:     retry.Retrier{Policy: opts.RewritePolicy, Sleep: sleep, Hooks: opts.Hooks},
		title:       retry.Retrier{Policy: opts.TitlePolicy, Sleep: sleep, Hooks: opts.Hooks},
		rateLimiter: opts.RateLimiter,
		log:         log,
	}, nil
}

// Rewrite asks for an article-style rewrite of the post. After the last
// failed attempt the error matches retry.ErrExhausted.
func (r *Rewriter) Rewrite(ctx context.Context, post domain.Post) (string, error) {
	postURL := strings.TrimSpace(post.URL)
	if postURL == "" {
		return "", errors.New("post URL is empty")
	}

	prompt := buildRewritePrompt(post)

	return retry.Do(ctx, r.rewrite, func(ctx context.Context, attempt int) (string, error) {
		return r.complete(ctx, prompt, "rewrite", attempt,
			"postURL", postURL)
	})
}

// Title asks for a short clickable title for content.
func (r *Rewriter) Title(ctx context.Context, content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", errors.New("content is empty")
	}

	prompt := buildTitlePrompt(content)

	return retry.Do(ctx, r.title, func(ctx context.Context, attempt int) (string, error) {
		raw, err := r.complete(ctx, prompt, "title", attempt,
			"contentLength", len(content))
		if err != nil {
			return "", err
		}

		title := cleanTitle(raw)
		if title == "" {
			return "", fmt.Errorf("%w: title is blank after cleanup (raw = %q)", ErrEmptyCompletion, raw)
		}

		return title, nil
	})
}

func (r *Rewriter) complete(
	ctx context.Context,
	prompt string,
	operation string,
	attempt int,
	fields ...any,
) (string, error) {
	if err := r.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("wait for rate limiter: %w", err)
	}

	start := time.Now()
	text, err := r.completer.Complete(ctx, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyCompletion
	}

	fields = append(fields,
		"operation", operation,
		"attempt", attempt,
		"elapsedMs", time.Since(start).Milliseconds())

	if err != nil {
		r.log.WarnContext(ctx, "Completion failed",
			append(fields, "error", err)...)

		return "", fmt.Errorf("complete %s prompt: %w", operation, err)
	}

	r.log.DebugContext(ctx, "Completion succeeded",
		append(fields, "textLength", len(text))...)

	return text, nil
}
