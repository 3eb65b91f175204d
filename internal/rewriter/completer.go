package rewriter

import (
	"context"
	"errors"
)

// ErrEmptyCompletion is returned when the service answers without any text.
var ErrEmptyCompletion = errors.New("completion is empty")

// Completer sends a single-turn prompt to a generative text service and
// returns the text of the first choice.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
