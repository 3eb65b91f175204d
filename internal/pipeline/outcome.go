package pipeline

import (
	"context"

	"redditrewriter/internal/domain"
)

// Stage names the step a variation failed in.
type Stage string

const (
	StageRewrite Stage = "rewrite"
	StageTitle   Stage = "title"
	StageWrite   Stage = "write"
)

// Outcome is the result of one (post, variation) pair. Err is nil on success.
type Outcome struct {
	Post      domain.Post
	Variation int
	Title     string
	Path      string
	Stage     Stage
	Err       error
}

func (o Outcome) Failed() bool {
	return o.Err != nil
}

type Summary struct {
	Posts    int
	Written  int
	Failed   int
	Outcomes []Outcome
}

func (s *Summary) add(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)

	if o.Failed() {
		s.Failed++
	} else {
		s.Written++
	}
}

// Failures returns the failed outcomes in run order.
func (s Summary) Failures() []Outcome {
	var failures []Outcome
	for _, o := range s.Outcomes {
		if o.Failed() {
			failures = append(failures, o)
		}
	}

	return failures
}

// Reporter surfaces run progress to the operator.
type Reporter interface {
	Started(ctx context.Context, params domain.Params, postCount int)
	VariationDone(ctx context.Context, outcome Outcome)
	PostDone(ctx context.Context, post domain.Post)
	Finished(ctx context.Context, summary Summary)
}

type NopReporter struct{}

func (NopReporter) Started(context.Context, domain.Params, int) {}
func (NopReporter) VariationDone(context.Context, Outcome) {}
func (NopReporter) PostDone(context.Context, domain.Post) {}
func (NopReporter) Finished(context.Context, Summary) {}
