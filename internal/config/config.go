package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	FeedSourceAPI = "api"
	FeedSourceRSS = "rss"

	FormatDOCX     = "docx"
	FormatMarkdown = "md"
	FormatHTML     = "html"

	CollisionSuffix    = "suffix"
	CollisionOverwrite = "overwrite"

	BackoffFixed       = "fixed"
	BackoffLinear      = "linear"
	BackoffExponential = "exponential"
)

type Config struct {
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIModel   string `env:"OPENAI_MODEL"          envDefault:"gpt-3.5-turbo"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`

	RedditClientID     string `env:"REDDIT_CLIENT_ID"`
	RedditClientSecret string `env:"REDDIT_CLIENT_SECRET"`
	RedditUserAgent    string `env:"REDDIT_USER_AGENT"     envDefault:"redditrewriter/1.0"`
	FeedSource         string `env:"FEED_SOURCE"           envDefault:"api"`

	PostsDir     string `env:"POSTS_DIR"     envDefault:"posts"`
	OutputFormat string `env:"OUTPUT_FORMAT" envDefault:"docx"`
	OnCollision  string `env:"ON_COLLISION"  envDefault:"suffix"`

	RewriteMaxAttempts int           `env:"REWRITE_MAX_ATTEMPTS" envDefault:"10"`
	TitleMaxAttempts   int           `env:"TITLE_MAX_ATTEMPTS"   envDefault:"3"`
	RetryBackoff       string        `env:"RETRY_BACKOFF"        envDefault:"fixed"`
	RetryPause         time.Duration `env:"RETRY_PAUSE"          envDefault:"1s"`
	RetryWait          time.Duration `env:"RETRY_WAIT"           envDefault:"15s"`
	RetryMaxWait       time.Duration `env:"RETRY_MAX_WAIT"       envDefault:"5m"`
	RequestInterval    time.Duration `env:"REQUEST_INTERVAL"     envDefault:"0s"`
	HTTPTimeout        time.Duration `env:"HTTP_TIMEOUT"         envDefault:"60s"`

	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"warn"`
}

// Load reads Config from the process environment. Credentials are not
// checked here: a missing key surfaces as a failed call to that service.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err = cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	switch c.FeedSource {
	case FeedSourceAPI, FeedSourceRSS:
	default:
		errs = append(errs, fmt.Errorf("FEED_SOURCE must be %q or %q (got %q)",
			FeedSourceAPI, FeedSourceRSS, c.FeedSource))
	}

	switch c.OutputFormat {
	case FormatDOCX, FormatMarkdown, FormatHTML:
	default:
		errs = append(errs, fmt.Errorf("OUTPUT_FORMAT must be one of %q, %q, %q (got %q)",
			FormatDOCX, FormatMarkdown, FormatHTML, c.OutputFormat))
	}

	switch c.OnCollision {
	case CollisionSuffix, CollisionOverwrite:
	default:
		errs = append(errs, fmt.Errorf("ON_COLLISION must be %q or %q (got %q)",
			CollisionSuffix, CollisionOverwrite, c.OnCollision))
	}

	switch c.RetryBackoff {
	case BackoffFixed, BackoffLinear, BackoffExponential:
	default:
		errs = append(errs, fmt.Errorf("RETRY_BACKOFF must be one of %q, %q, %q (got %q)",
			BackoffFixed, BackoffLinear, BackoffExponential, c.RetryBackoff))
	}

	if c.RewriteMaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("REWRITE_MAX_ATTEMPTS must be positive (got %d)", c.RewriteMaxAttempts))
	}
	if c.TitleMaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("TITLE_MAX_ATTEMPTS must be positive (got %d)", c.TitleMaxAttempts))
	}

	if c.RetryPause < 0 || c.RetryWait < 0 || c.RetryMaxWait < 0 || c.RequestInterval < 0 {
		errs = append(errs, errors.New("durations must not be negative"))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("HTTP_TIMEOUT must be positive (got %s)", c.HTTPTimeout))
	}
	if c.PostsDir == "" {
		errs = append(errs, errors.New("POSTS_DIR must not be empty"))
	}

	return errors.Join(errs...)
}
