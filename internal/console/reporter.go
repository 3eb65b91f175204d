package console

import (
	"context"
	"fmt"
	"time"

	"redditrewriter/internal/domain"
	"redditrewriter/internal/pipeline"
	"redditrewriter/internal/retry"

	"github.com/schollz/progressbar/v3"
)

const (
	progressDescription = "Rewriting Posts"
	progressUnit        = "post"
	completedText       = "Reddit Post rewriting completed."
)

var _ pipeline.Reporter = (*Console)(nil)

var progressTheme = progressbar.Theme{
	Saucer:        "[green]█[reset]",
	SaucerHead:    "[green]█[reset]",
	SaucerPadding: " ",
	BarStart:      "|",
	BarEnd:        "|",
}

func (c *Console) Started(ctx context.Context, params domain.Params, postCount int) {
	if postCount < params.PostCount {
		c.println(c.styles.info.Render(fmt.Sprintf(
			"Only %d of %d requested posts are available.", postCount, params.PostCount)))
	}

	c.bar = progressbar.NewOptions(postCount,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription(progressDescription),
		progressbar.OptionSetItsString(progressUnit),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressTheme),
		progressbar.OptionSetVisibility(c.terminal),
	)

	if err := c.bar.RenderBlank(); err != nil {
		c.log.DebugContext(ctx, "Failed to render progress bar", "error", err)
	}
}

func (c *Console) VariationDone(_ context.Context, outcome pipeline.Outcome) {
	if !outcome.Failed() {
		return
	}

	c.Error("Error occurred", outcome.Err)
}

func (c *Console) PostDone(ctx context.Context, _ domain.Post) {
	if c.bar == nil {
		return
	}

	if err := c.bar.Add(1); err != nil {
		c.log.DebugContext(ctx, "Failed to advance progress bar", "error", err)
	}
}

func (c *Console) Finished(ctx context.Context, summary pipeline.Summary) {
	if c.bar != nil {
		if err := c.bar.Exit(); err != nil {
			c.log.DebugContext(ctx, "Failed to close progress bar", "error", err)
		}
		c.bar = nil
	}

	c.ClearScreen()
	c.println(c.styles.success.Render(completedText))
	c.println(fmt.Sprintf("Written: %d, failed: %d.", summary.Written, summary.Failed))

	for _, o := range summary.Failures() {
		c.println(c.styles.info.Render(fmt.Sprintf(
			"  - %s (variation %d, %s): %v", o.Post.URL, o.Variation+1, o.Stage, o.Err)))
	}
}

// RetryHooks announce a failed attempt and the upcoming wait, clearing the
// screen in between.
func (c *Console) RetryHooks() retry.Hooks {
	return retry.Hooks{
		OnFailure: func(_ context.Context, _ int, err error) {
			c.Error("API Error", err)
		},
		OnWait: func(_ context.Context, _ int, wait time.Duration) {
			c.ClearScreen()
			c.println(c.styles.info.Render("Retrying in " + formatWait(wait) + "..."))
		},
	}
}

func formatWait(d time.Duration) string {
	if d%time.Second != 0 {
		return d.String()
	}

	if secs := int64(d / time.Second); secs != 1 {
		return fmt.Sprintf("%d seconds", secs)
	}

	return "1 second"
}
