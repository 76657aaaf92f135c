package validate

import (
	"context"
	"fmt"
	"strings"

	"github.com/tbxark/bureaubot/llm"
)

// DefaultRulesPromptTemplate is the judging prompt. It is formatted with the
// field label and the candidate answer.
const DefaultRulesPromptTemplate = `You are a strict data entry validator for immigration forms.

CONTEXT:
Field Name: "%s"
User Answer: "%s"

Decide whether the answer is valid for the field. Apply the rule that matches the field name:

1. Personal names (first, middle, last): letters, spaces, hyphens and apostrophes only. Reject digits or symbols.
2. Alien Number (A-Number): exactly 7, 8 or 9 digits. Reject 10 or more digits.
3. Social Security Number: exactly 9 digits.
4. Email address: must contain "@" and ".".
5. Phone number: at least 10 digits.
6. Zip code: 5 or 9 digits, no letters.
7. Dates: must be a real calendar date. If the field is a birth date or another past event, warn when the date is in the future.
8. "skip", "pass", "N/A", "none" or "unknown" are always valid.

OUTPUT FORMAT:
- If valid, return exactly the string "VALID".
- If invalid, return one short, polite sentence explaining why and what to enter instead.`

const maxValidReplyLen = 10

var alwaysValid = map[string]struct{}{
	"skip": {}, "n/a": {}, "none": {}, "no": {}, "yes": {}, "y": {}, "n": {},
}

// Result is either valid or carries a corrective message for the user.
type Result struct {
	Valid   bool
	Message string
}

type Validator struct {
	delegate       llm.Delegate
	systemPrompt   string
	promptTemplate string
}

type options struct {
	systemPrompt   string
	promptTemplate string
}

type Option func(*options)

func WithSystemPrompt(prompt string) Option {
	return func(o *options) {
		o.systemPrompt = prompt
	}
}

// WithRulesPromptTemplate overrides the judging prompt. The template receives
// the field label and the answer, in that order.
func WithRulesPromptTemplate(tpl string) Option {
	return func(o *options) {
		o.promptTemplate = tpl
	}
}

func New(delegate llm.Delegate, opts ...Option) *Validator {
	o := options{promptTemplate: DefaultRulesPromptTemplate}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &Validator{delegate: delegate, systemPrompt: o.systemPrompt, promptTemplate: o.promptTemplate}
}

// IsAlwaysValid reports whether the answer bypasses judging entirely.
func IsAlwaysValid(answer string) bool {
	_, ok := alwaysValid[strings.ToLower(strings.TrimSpace(answer))]
	return ok
}

// Validate judges answer for the field labelled label. A transport failure of
// the delegate is returned as an error; it is never treated as a verdict.
func (v *Validator) Validate(ctx context.Context, label, answer string) (Result, error) {
	if IsAlwaysValid(answer) {
		return Result{Valid: true}, nil
	}
	prompt := fmt.Sprintf(v.promptTemplate, label, answer)
	reply, err := v.delegate.Complete(ctx, v.systemPrompt, prompt, nil)
	if err != nil {
		return Result{}, fmt.Errorf("validate answer: %w", err)
	}
	return interpret(reply, label), nil
}

func interpret(reply, label string) Result {
	clean := strings.TrimSpace(strings.NewReplacer(`"`, "", `'`, "").Replace(reply))
	upper := strings.ToUpper(clean)
	if strings.Contains(upper, "VALID") && !strings.Contains(upper, "INVALID") && len(clean) < maxValidReplyLen {
		return Result{Valid: true}
	}
	if clean == "" || upper == "INVALID" {
		return Result{Message: fmt.Sprintf("That doesn't look like a valid answer for %s.", label)}
	}
	return Result{Message: clean}
}
