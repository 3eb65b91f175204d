package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrInvalidParams = errors.New("invalid params")

var subredditRe = regexp.MustCompile(`^[A-Za-z0-9_]{2,21}(\+[A-Za-z0-9_]{2,21})*$`)

// Post is a single feed item picked for rewriting. URL is the canonical
// permalink; the rest is whatever the feed already carried.
type Post struct {
	URL      string
	Title    string
	SelfText string
	LinkURL  string
}

type Variation struct {
	Post  Post
	Index int
	Title string
	Body  string
}

// Params are the per-run inputs supplied by the operator.
type Params struct {
	PostCount      int
	VariationCount int
	Subreddit      string
}

func (p Params) Validate() error {
	var errs []error

	if p.PostCount < 1 {
		errs = append(errs, fmt.Errorf("post count must be positive (postCount = %d)", p.PostCount))
	}
	if p.VariationCount < 1 {
		errs = append(errs, fmt.Errorf("variation count must be positive (variationCount = %d)", p.VariationCount))
	}
	if p.Subreddit != "" && !subredditRe.MatchString(p.Subreddit) {
		errs = append(errs, fmt.Errorf("subreddit name is malformed (subreddit = %q)", p.Subreddit))
	}

	if len(errs) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %w", ErrInvalidParams, errors.Join(errs...))
}

// NormalizeSubreddit trims whitespace and the optional "r/" prefix.
func NormalizeSubreddit(raw string) string {
	name := strings.TrimSpace(raw)
	name = strings.TrimPrefix(name, "/")

	if len(name) >= 2 && strings.EqualFold(name[:2], "r/") {
		name = name[2:]
	}

	return strings.Trim(name, "/ ")
}
