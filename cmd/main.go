package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"redditrewriter/internal/config"
	"redditrewriter/internal/console"
	"redditrewriter/internal/document"
	"redditrewriter/internal/domain"
	"redditrewriter/internal/feed"
	"redditrewriter/internal/pipeline"
	"redditrewriter/internal/ratelimiter"
	"redditrewriter/internal/retry"
	"redditrewriter/internal/rewriter"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

var CLI struct {
	Posts      int    `short:"n" help:"Number of hot posts to fetch (asked for when 0)"`
	Variations int    `short:"m" help:"Variations to write per post (asked for when 0)"`
	Subreddit  string `short:"s" help:"Subreddit to read, with or without the r/ prefix (front page when empty)"`
	Verbose    bool   `short:"v" help:"Enable debug logging"`
	EnvFile    string `name:"env-file" help:"Dotenv file to load if present" default:".env" type:"path"`
}

func main() {
	os.Exit(run())
}

func run() int {
	kong.Parse(&CLI,
		kong.Name("redditrewriter"),
		kong.Description("Rewrite hot Reddit posts into article documents."))

	logLevel := new(slog.LevelVar)
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)

	start := time.Now()
	ctx := context.Background()

	if err := loadEnvFile(CLI.EnvFile); err != nil {
		log.ErrorContext(ctx, "Failed to load env file",
			"error", err,
			"envFile", CLI.EnvFile)

		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		log.ErrorContext(ctx, "Failed to load config",
			"error", err)

		return 1
	}

	logLevel.Set(cfg.LogLevel)
	if CLI.Verbose {
		logLevel.Set(slog.LevelDebug)
	}

	con := console.New(os.Stdin, os.Stdout, log)
	con.Banner()

	params, err := con.CompleteParams(domain.Params{
		PostCount:      CLI.Posts,
		VariationCount: CLI.Variations,
		Subreddit:      CLI.Subreddit,
	})
	if err != nil {
		con.Error("Failed to read input", err)
		log.ErrorContext(ctx, "Failed to read input",
			"error", err)

		return 1
	}

	if err = params.Validate(); err != nil {
		con.Error("Invalid parameters", err)
		log.ErrorContext(ctx, "Invalid parameters",
			"error", err,
			"postCount", params.PostCount,
			"variationCount", params.VariationCount,
			"subreddit", params.Subreddit)

		return 1
	}

	con.Plan(params)

	// Registered after the prompts so Ctrl-C still kills a blocked read.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher := initFetcher(ctx, cfg, log)

	gen, err := initRewriter(ctx, cfg, con.RetryHooks(), log)
	if err != nil {
		con.Error("Failed to initialize rewriter", err)
		log.ErrorContext(ctx, "Failed to initialize rewriter",
			"error", err)

		return 1
	}

	writer, err := document.NewWriter(document.Options{
		Dir:         cfg.PostsDir,
		Format:      cfg.OutputFormat,
		OnCollision: cfg.OnCollision,
	}, log)
	if err != nil {
		con.Error("Failed to initialize document writer", err)
		log.ErrorContext(ctx, "Failed to initialize document writer",
			"error", err,
			"postsDir", cfg.PostsDir,
			"outputFormat", cfg.OutputFormat)

		return 1
	}

	summary, err := pipeline.NewRunner(fetcher, gen, writer, con, log).Run(ctx, params)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			con.Error("Interrupted", nil)
		} else {
			con.Error("Run failed", err)
		}

		log.ErrorContext(ctx, "Run failed",
			"error", err,
			"written", summary.Written,
			"failed", summary.Failed,
			"uptimeSeconds", time.Since(start).Seconds())

		return 1
	}

	log.InfoContext(ctx, "Run completed",
		"posts", summary.Posts,
		"written", summary.Written,
		"failed", summary.Failed,
		"uptimeSeconds", time.Since(start).Seconds())

	return 0
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return nil
}

func initFetcher(ctx context.Context, cfg config.Config, log *slog.Logger) feed.Fetcher {
	if cfg.FeedSource == config.FeedSourceRSS {
		log.InfoContext(ctx, "Using RSS feed source",
			"feedSource", cfg.FeedSource)

		return feed.NewRSSFetcher(feed.RSSConfig{
			UserAgent: cfg.RedditUserAgent,
			Timeout:   cfg.HTTPTimeout,
		}, log)
	}

	if cfg.RedditClientID == "" || cfg.RedditClientSecret == "" {
		log.WarnContext(ctx, "Reddit credentials are missing so fetching will fail",
			"envVars", []string{"REDDIT_CLIENT_ID", "REDDIT_CLIENT_SECRET"})
	}

	return feed.NewAPIFetcher(feed.APIConfig{
		ClientID:     cfg.RedditClientID,
		ClientSecret: cfg.RedditClientSecret,
		UserAgent:    cfg.RedditUserAgent,
		Timeout:      cfg.HTTPTimeout,
	}, log)
}

func initRewriter(
	ctx context.Context,
	cfg config.Config,
	hooks retry.Hooks,
	log *slog.Logger,
) (*rewriter.Rewriter, error) {
	if cfg.OpenAIAPIKey == "" {
		log.WarnContext(ctx, "OPENAI_API_KEY is missing so every completion will fail",
			"envVar", "OPENAI_API_KEY")
	}

	completer, err := rewriter.NewOpenAICompleter(rewriter.OpenAIConfig{
		APIKey:     cfg.OpenAIAPIKey,
		Model:      cfg.OpenAIModel,
		BaseURL:    cfg.OpenAIBaseURL,
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout},
	})
	if err != nil {
		return nil, err
	}

	mode := retry.BackoffMode(cfg.RetryBackoff)

	log.InfoContext(ctx, "OpenAI rewriter is initialized",
		"model", cfg.OpenAIModel,
		"rewriteMaxAttempts", cfg.RewriteMaxAttempts,
		"titleMaxAttempts", cfg.TitleMaxAttempts,
		"retryBackoff", cfg.RetryBackoff)

	return rewriter.New(completer, rewriter.Options{
		RewritePolicy: retry.NewPolicy(mode, cfg.RewriteMaxAttempts, cfg.RetryPause, cfg.RetryWait, cfg.RetryMaxWait),
		TitlePolicy:   retry.NewPolicy(mode, cfg.TitleMaxAttempts, cfg.RetryPause, cfg.RetryWait, cfg.RetryMaxWait),
		Hooks:         hooks,
		RateLimiter:   ratelimiter.New(cfg.RequestInterval, log),
	}, log)
}
