package llm

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// Delegate is an opaque text-completion service. Replies carry no structural
// guarantee; callers that need JSON go through ExtractObject/ExtractArray and
// a Policy.
type Delegate interface {
	Complete(ctx context.Context, system, user string, history []*schema.Message) (string, error)
}

// DelegateFunc adapts a function to the Delegate interface.
type DelegateFunc func(ctx context.Context, system, user string, history []*schema.Message) (string, error)

func (f DelegateFunc) Complete(ctx context.Context, system, user string, history []*schema.Message) (string, error) {
	return f(ctx, system, user, history)
}

// Generation holds the sampling settings shared by all backends.
type Generation struct {
	Temperature     float32
	TopP            float32
	MaxOutputTokens int
}

// DefaultGeneration matches the settings the assistant was tuned with.
func DefaultGeneration() Generation {
	return Generation{Temperature: 0.3, TopP: 0.9, MaxOutputTokens: 8048}
}
