package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tbxark/bureaubot/dialogue"
	"github.com/tbxark/bureaubot/intent"
	"github.com/tbxark/bureaubot/session"
	"github.com/tbxark/bureaubot/structured"
)

func (o *Orchestrator) selectForm(ctx context.Context, t *turn, input string) (step, error) {
	s := t.sess
	s.CaseInfo += "\n" + input
	selectionContext := s.CaseInfo + "\n" + s.ConfirmAnswers

	out, err := o.selectChain.Invoke(ctx, selectInput{
		turn:    t,
		context: selectionContext,
		forms:   o.catalog.PromptList(),
	})
	if err != nil {
		if m, ok := structured.IsMalformed(err); ok {
			slog.Warn("Form selection reply had no JSON", "session_id", s.ID)
			if raw := strings.TrimSpace(m.Raw); raw != "" {
				return reply(raw), nil
			}
			return reply(needMoreDetail), nil
		}
		return step{}, err
	}

	var questions []string
	for _, q := range out.Questions {
		if q = strings.TrimSpace(q); q != "" {
			questions = append(questions, q)
		}
	}
	if len(questions) > 0 {
		s.ConfirmQuestions = questions
		s.QIndex = 0
		s.Stage = session.StageConfirmForm
		return reply(fmt.Sprintf("**Q1:** %s", questions[0])), nil
	}

	rawKey := strings.TrimSpace(out.Suggestion.FormKey)
	reason := strings.TrimSpace(out.Suggestion.Reason)
	if rawKey != "" {
		if !hasAskedQuestion(selectionContext) {
			slog.Debug("Ignoring form suggestion before any clarifying question", "form_key", rawKey)
			return reply(needMoreDetail), nil
		}
		key, ok := o.resolver.Resolve(rawKey)
		if !ok {
			key = strings.ToLower(strings.ReplaceAll(rawKey, " ", "_"))
		}
		if !o.catalog.Contains(key) {
			return reply(fmt.Sprintf("I tried to pick form '%s', but I don't have the metadata for it. Please clarify.", key)), nil
		}
		s.FormKey = key
		s.ConfirmQuestions = nil
		s.QIndex = 0
		s.Stage = session.StageConfirmForm
		return reply(fmt.Sprintf("**I recommend:** %s\n\nReason: %s\n\n**Do you want to fill this form?** *(yes/no)*", key, reason)), nil
	}
	if reason != "" {
		return reply(reason), nil
	}
	return reply(noFormFound), nil
}

func (o *Orchestrator) confirmForm(ctx context.Context, t *turn, input string) (step, error) {
	s := t.sess
	if len(s.ConfirmQuestions) > 0 && s.QIndex < len(s.ConfirmQuestions) {
		s.ConfirmAnswers += fmt.Sprintf("\nQ: %s\nA: %s", s.ConfirmQuestions[s.QIndex], input)
		s.QIndex++
		if s.QIndex < len(s.ConfirmQuestions) {
			return reply(fmt.Sprintf("**Q%d:** %s", s.QIndex+1, s.ConfirmQuestions[s.QIndex])), nil
		}
		s.Stage = session.StageSelectForm
		return continueWith(""), nil
	}

	switch o.recognize(ctx, input) {
	case intent.Yes:
		questions := o.scopingQuestions(ctx, t)
		s.ScopingQuestions = questions
		s.ScopingAnswers = ""
		s.QIndex = 0
		if len(questions) == 0 {
			s.Stage = session.StageListFields
			return continueWith(""), nil
		}
		s.Stage = session.StageScoping
		return reply(fmt.Sprintf("%s**Q1:** %s", scopingIntro, questions[0])), nil
	case intent.No:
		s.Stage = session.StageSelectForm
		return reply(tryAgainReply), nil
	default:
		text, err := o.dialogue.GenerateDialogue(ctx, &dialogue.Request{
			Kind:            dialogue.FormQA,
			Message:         input,
			FormKey:         s.FormKey,
			FormDescription: o.catalog.Title(s.FormKey),
			History:         t.history,
		})
		if err != nil {
			return step{}, err
		}
		return reply(text), nil
	}
}

// scopingQuestions asks for at most two questions confirming the chosen
// form. Any failure yields none.
func (o *Orchestrator) scopingQuestions(ctx context.Context, t *turn) []string {
	out, err := o.scopingChain.Invoke(ctx, scopingInput{
		turn:        t,
		formKey:     t.sess.FormKey,
		description: o.catalog.Title(t.sess.FormKey),
	})
	if err != nil {
		slog.Warn("Scoping questions unavailable", "form_key", t.sess.FormKey, "error", err)
		return nil
	}
	var questions []string
	for _, q := range *out {
		if q = strings.TrimSpace(q); q != "" {
			questions = append(questions, q)
		}
		if len(questions) == 2 {
			break
		}
	}
	return questions
}

func (o *Orchestrator) scoping(ctx context.Context, t *turn, input string) (step, error) {
	s := t.sess
	if s.QIndex < len(s.ScopingQuestions) {
		s.ScopingAnswers += fmt.Sprintf("Q: %s\nA: %s\n", s.ScopingQuestions[s.QIndex], input)
		s.QIndex++
	}
	if s.QIndex < len(s.ScopingQuestions) {
		return reply(fmt.Sprintf("**Q%d:** %s", s.QIndex+1, s.ScopingQuestions[s.QIndex])), nil
	}
	s.Stage = session.StageListFields
	return continueWith(""), nil
}
