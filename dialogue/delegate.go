package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/tbxark/bureaubot/llm"
)

// DefaultSystemPrompt is the persona shared by every conversational call.
const DefaultSystemPrompt = `You are a U.S. immigration and customs form expert with 30 years of experience.
Be empathetic, confident, and clear. Always maintain the context.
If the user challenges your choice, explain your reasoning but do not apologize unless an actual mistake was made; if they are right, update your suggestion.`

type DelegateGenerator struct {
	delegate     llm.Delegate
	systemPrompt string
}

type generatorOptions struct {
	systemPrompt string
}

type GeneratorOption func(*generatorOptions)

// WithDialogueSystemPrompt overrides the system prompt used by DelegateGenerator.
func WithDialogueSystemPrompt(systemPrompt string) GeneratorOption {
	return func(o *generatorOptions) {
		o.systemPrompt = systemPrompt
	}
}

func NewDelegateGenerator(delegate llm.Delegate, opts ...GeneratorOption) *DelegateGenerator {
	options := generatorOptions{systemPrompt: DefaultSystemPrompt}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	return &DelegateGenerator{delegate: delegate, systemPrompt: options.systemPrompt}
}

func (g *DelegateGenerator) GenerateDialogue(ctx context.Context, req *Request) (string, error) {
	prompt, err := formatPrompt(req)
	if err != nil {
		return "", fmt.Errorf("build dialogue prompt: %w", err)
	}
	reply, err := g.delegate.Complete(ctx, g.systemPrompt, prompt, req.History)
	if err != nil {
		return "", fmt.Errorf("LLM call failed: %w", err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", fmt.Errorf("empty dialogue reply")
	}
	return reply, nil
}

var _ Generator = (*DelegateGenerator)(nil)
