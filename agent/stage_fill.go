package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/tbxark/bureaubot/answer"
	"github.com/tbxark/bureaubot/dialogue"
	"github.com/tbxark/bureaubot/intent"
	"github.com/tbxark/bureaubot/session"
)

func (o *Orchestrator) fillFields(ctx context.Context, t *turn, input string) (step, error) {
	s := t.sess
	in := o.recognize(ctx, input)
	start := s.FillIndex == 0 && in == intent.Yes

	if !start && s.FillIndex < len(s.Fields) {
		field := s.Fields[s.FillIndex]
		label := field.DisplayLabel()
		if in == intent.Help {
			text, err := o.dialogue.GenerateDialogue(ctx, &dialogue.Request{
				Kind:    dialogue.FieldHelp,
				Message: input,
				FormKey: s.FormKey,
				Field:   &field,
				History: t.history,
			})
			if err != nil {
				return step{}, err
			}
			return reply(text + helpSuffix), nil
		}
		if in != intent.Skip {
			res, err := o.validator.Validate(ctx, label, input)
			if err != nil {
				return step{}, err
			}
			if !res.Valid {
				return reply(fmt.Sprintf("⚠️ **Correction needed:** %s\n\nPlease try answering **%s** again.", res.Message, label)), nil
			}
			if v := answer.Convert(field, input); !v.IsAbsent() {
				s.Answers[field.Name] = v
			}
		}
		s.FillIndex++
	}

	for s.FillIndex < len(s.Fields) && s.AnsweredOrDuplicate(s.FillIndex) {
		s.FillIndex++
	}
	if s.FillIndex < len(s.Fields) {
		field := s.Fields[s.FillIndex]
		q := s.Questions[field.Name].Text
		if q == "" {
			q = field.DisplayLabel()
		}
		return reply(fmt.Sprintf("**Q%d:** %s (or 'skip')", s.FillIndex+1, q)), nil
	}

	s.ReviewSummary = summarize(s)
	s.Stage = session.StageReviewAnswers
	return reply(fmt.Sprintf("✅ Done! Summary:\n%s%s", s.ReviewSummary, reviewQuestion)), nil
}

// summarize lists stored answers as "- name: value" lines in field order.
func summarize(s *session.Session) string {
	var lines []string
	for _, f := range s.Fields {
		if v, ok := s.Answers[f.Name]; ok && !v.IsAbsent() {
			lines = append(lines, fmt.Sprintf("- %s: %s", f.Name, v.Display()))
		}
	}
	return strings.Join(lines, "\n")
}
