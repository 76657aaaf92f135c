package intent

import (
	"context"
	"strings"
)

type Intent string

const (
	Yes  Intent = "yes"
	No   Intent = "no"
	Skip Intent = "skip"
	Help Intent = "help"
	None Intent = "none"
)

type Recognizer interface {
	Recognize(ctx context.Context, message string) (Intent, error)
}

// LocalRecognizer matches whole-message keywords and, for help, a few
// question shapes.
type LocalRecognizer struct {
	YesKeywords  []string
	NoKeywords   []string
	SkipKeywords []string
	HelpKeywords []string
	HelpPhrases  []string
}

func NewLocalRecognizer() *LocalRecognizer {
	return &LocalRecognizer{
		YesKeywords:  []string{"yes", "y"},
		NoKeywords:   []string{"no", "n"},
		SkipKeywords: []string{"skip"},
		HelpKeywords: []string{"?", "help"},
		HelpPhrases:  []string{"what is ", "what's ", "what does", "what do you mean", "can you explain"},
	}
}

func (p *LocalRecognizer) Recognize(ctx context.Context, message string) (Intent, error) {
	normalized := strings.ToLower(strings.TrimSpace(message))
	if normalized == "" {
		return None, nil
	}
	switch {
	case matchAny(normalized, p.YesKeywords):
		return Yes, nil
	case matchAny(normalized, p.NoKeywords):
		return No, nil
	case matchAny(normalized, p.SkipKeywords):
		return Skip, nil
	case matchAny(normalized, p.HelpKeywords):
		return Help, nil
	}
	if strings.HasSuffix(normalized, "?") {
		return Help, nil
	}
	for _, phrase := range p.HelpPhrases {
		if strings.Contains(normalized, phrase) {
			return Help, nil
		}
	}
	return None, nil
}

func matchAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if s == k {
			return true
		}
	}
	return false
}

var _ Recognizer = (*LocalRecognizer)(nil)
