package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"redditrewriter/internal/domain"
	"redditrewriter/internal/feed"
)

type Generator interface {
	Rewrite(ctx context.Context, post domain.Post) (string, error)
	Title(ctx context.Context, content string) (string, error)
}

type Writer interface {
	Write(ctx context.Context, title, body string, index int) (string, error)
}

// Runner fetches posts once, then produces every variation of every post in
// order. A failed variation is recorded and the run moves on.
type Runner struct {
	fetcher   feed.Fetcher
	generator Generator
	writer    Writer
	reporter  Reporter
	log       *slog.Logger
}

func NewRunner(
	fetcher feed.Fetcher,
	generator Generator,
	writer Writer,
	reporter Reporter,
	log *slog.Logger,
) *Runner {
	if reporter == nil {
		reporter = NopReporter{}
	}

	return &Runner{
		fetcher:   fetcher,
		generator: generator,
		writer:    writer,
		reporter:  reporter,
		log:       log,
	}
}

// Run returns an error only for invalid params, a failed fetch or
// cancellation; the summary is filled in up to that point.
func (r *Runner) Run(ctx context.Context, params domain.Params) (Summary, error) {
	if err := params.Validate(); err != nil {
		return Summary{}, err
	}

	posts, err := r.fetcher.Hot(ctx, params.Subreddit, params.PostCount)
	if err != nil {
		return Summary{}, fmt.Errorf("fetch hot posts: %w", err)
	}

	r.log.InfoContext(ctx, "Fetched posts",
		"subreddit", params.Subreddit,
		"requested", params.PostCount,
		"postCount", len(posts))

	summary := Summary{Posts: len(posts)}
	r.reporter.Started(ctx, params, len(posts))

	for _, post := range posts {
		for i := range params.VariationCount {
			outcome := r.runVariation(ctx, post, i)

			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(outcome.Err, ctxErr) {
				r.reporter.Finished(ctx, summary)

				return summary, fmt.Errorf("run interrupted: %w", ctxErr)
			}

			summary.add(outcome)
			r.reporter.VariationDone(ctx, outcome)
		}

		r.reporter.PostDone(ctx, post)
	}

	r.reporter.Finished(ctx, summary)

	return summary, nil
}

func (r *Runner) runVariation(ctx context.Context, post domain.Post, index int) Outcome {
	outcome := Outcome{Post: post, Variation: index}

	if err := ctx.Err(); err != nil {
		return r.fail(ctx, outcome, StageRewrite, err)
	}

	body, err := r.generator.Rewrite(ctx, post)
	if err != nil {
		return r.fail(ctx, outcome, StageRewrite, fmt.Errorf("rewrite post: %w", err))
	}

	title, err := r.generator.Title(ctx, body)
	if err != nil {
		return r.fail(ctx, outcome, StageTitle, fmt.Errorf("generate title: %w", err))
	}
	outcome.Title = title

	path, err := r.writer.Write(ctx, title, body, index)
	if err != nil {
		return r.fail(ctx, outcome, StageWrite, fmt.Errorf("write document: %w", err))
	}
	outcome.Path = path

	r.log.InfoContext(ctx, "Variation written",
		"postURL", post.URL,
		"variation", index+1,
		"path", path)

	return outcome
}

func (r *Runner) fail(ctx context.Context, outcome Outcome, stage Stage, err error) Outcome {
	outcome.Stage = stage
	outcome.Err = err

	if ctx.Err() == nil {
		r.log.ErrorContext(ctx, "Variation failed",
			"error", err,
			"postURL", outcome.Post.URL,
			"variation", outcome.Variation+1,
			"stage", string(stage))
	}

	return outcome
}
