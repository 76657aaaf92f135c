package dialogue

import (
	"context"
	"fmt"
	"log/slog"
)

// LocalGenerator produces fixed replies when no model is reachable.
type LocalGenerator struct{}

func (g *LocalGenerator) GenerateDialogue(ctx context.Context, req *Request) (string, error) {
	switch req.Kind {
	case FormQA:
		if req.FormDescription != "" {
			return fmt.Sprintf("%s is used for: %s\n\n%s", req.FormKey, req.FormDescription, FormQAClosing), nil
		}
		return FormQAClosing, nil
	case RouterQA:
		return "I can't look that up right now. Reply **yes** when you're ready to start filling, or **no** to stop.", nil
	case FieldHelp:
		if req.Field == nil {
			return "Please answer the current question, or reply 'skip'.", nil
		}
		if req.Field.Description != "" {
			return fmt.Sprintf("This field asks for **%s**: %s", req.Field.DisplayLabel(), req.Field.Description), nil
		}
		return fmt.Sprintf("This field asks for **%s**.", req.Field.DisplayLabel()), nil
	default:
		return "", fmt.Errorf("unknown dialogue kind %q", req.Kind)
	}
}

type FailbackGenerator struct {
	generators []Generator
}

func NewFailbackGenerator(generators ...Generator) *FailbackGenerator {
	return &FailbackGenerator{generators: generators}
}

func (g *FailbackGenerator) GenerateDialogue(ctx context.Context, req *Request) (string, error) {
	var lastErr error
	for _, generator := range g.generators {
		reply, err := generator.GenerateDialogue(ctx, req)
		if err == nil {
			return reply, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		slog.Debug("Dialogue generator failed", "kind", req.Kind, "error", err)
		lastErr = err
	}
	return "", fmt.Errorf("all dialogue generators failed: %w", lastErr)
}

var (
	_ Generator = (*LocalGenerator)(nil)
	_ Generator = (*FailbackGenerator)(nil)
)
