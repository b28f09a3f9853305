package llm

import (
	"context"
	"errors"
)

// ErrGenerationInterrupted marks a model stream that ended before the
// model signalled completion. Fragments delivered before it stay valid.
var ErrGenerationInterrupted = errors.New("generation interrupted")

// Fragment is one piece of a streamed model response. A Fragment with a
// non-nil Err is terminal: the provider closes the channel right after.
type Fragment struct {
	Text string
	Err  error
}

// Provider streams a completion for an assembled prompt. The returned
// channel delivers fragments in model order and is closed when the model
// signals completion or after a terminal error fragment. Cancelling ctx
// aborts the upstream model call and releases its connection.
type Provider interface {
	GenerateStream(ctx context.Context, prompt string) (<-chan Fragment, error)
}
