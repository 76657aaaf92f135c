package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tbxark/bureaubot/dialogue"
	"github.com/tbxark/bureaubot/form"
	"github.com/tbxark/bureaubot/intent"
	"github.com/tbxark/bureaubot/plan"
	"github.com/tbxark/bureaubot/session"
)

func (o *Orchestrator) listFields(ctx context.Context, t *turn, _ string) (step, error) {
	s := t.sess
	all, err := o.meta.Fields(ctx, s.FormKey)
	if err != nil {
		return step{}, fmt.Errorf("load fields: %w", err)
	}
	entries := plan.Plan(all)
	byName := form.Index(all)
	fields := make([]form.Field, 0, len(entries))
	labels := make(map[string]string, len(entries))
	for _, e := range entries {
		f := byName[e.Name]
		fields = append(fields, f)
		labels[e.Name] = f.DisplayLabel()
	}
	slog.Debug("Planned fields", "form_key", s.FormKey, "raw", len(all), "fillable", len(fields))
	if len(fields) == 0 {
		return reply(noFieldsReply), nil
	}

	questions := o.fieldQuestions(ctx, s.FormKey, fields, entries, labels)
	assigned, checklist := plan.Dedupe(fields, questions)

	s.Fields = fields
	s.Questions = assigned
	s.Checklist = checklist
	s.FillIndex = 0
	s.Stage = session.StageAwaitFillReady

	var sb strings.Builder
	fmt.Fprintf(&sb, "Checklist for %s:\n\n", s.FormKey)
	for i, q := range checklist {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("* " + q)
	}
	sb.WriteString("\n\nReady to fill? (yes/no)")
	return reply(sb.String()), nil
}

// fieldQuestions phrases every field as a question. It asks for all of them
// in one call; if that call fails it asks field by field, and any field left
// without a question keeps its label.
func (o *Orchestrator) fieldQuestions(ctx context.Context, formKey string, fields []form.Field, entries []plan.Entry, labels map[string]string) map[string]string {
	out, err := o.fieldsChain.Invoke(ctx, fieldsInput{formKey: formKey, entries: entries, labels: labels})
	if err == nil && *out != nil {
		questions := make(map[string]string, len(fields))
		for _, f := range fields {
			if q := strings.TrimSpace((*out)[f.Name]); q != "" {
				questions[f.Name] = q
			} else {
				questions[f.Name] = f.DisplayLabel()
			}
		}
		return questions
	}
	slog.Warn("Batch question generation failed, rewriting labels one by one", "form_key", formKey, "error", err)

	questions := make(map[string]string, len(fields))
	for _, f := range fields {
		if _, done := questions[f.Name]; done {
			continue
		}
		label := f.DisplayLabel()
		q, cErr := o.delegate.Complete(ctx, o.systemPrompt, fmt.Sprintf(rewriteLabelPromptTemplate, label), nil)
		if q = strings.TrimSpace(q); cErr != nil || q == "" {
			if ctx.Err() != nil {
				return questions
			}
			q = label
		}
		questions[f.Name] = q
	}
	return questions
}

func (o *Orchestrator) awaitFillReady(ctx context.Context, t *turn, input string) (step, error) {
	s := t.sess
	switch o.recognize(ctx, input) {
	case intent.Yes:
		s.Stage = session.StageFillFields
		s.FillIndex = 0
		return continueWith(input), nil
	case intent.No:
		s.Stage = session.StageSelectForm
		return reply(stoppedReply), nil
	default:
		text, err := o.dialogue.GenerateDialogue(ctx, &dialogue.Request{
			Kind:            dialogue.RouterQA,
			Message:         input,
			FormKey:         s.FormKey,
			FormDescription: o.catalog.Title(s.FormKey),
			Context:         strings.TrimSpace(s.CaseInfo + "\n" + s.ConfirmAnswers + "\n" + s.ScopingAnswers),
			History:         t.history,
		})
		if err != nil {
			return step{}, err
		}
		return reply(text), nil
	}
}
