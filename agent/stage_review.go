package agent

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/tbxark/bureaubot/answer"
	"github.com/tbxark/bureaubot/intent"
	"github.com/tbxark/bureaubot/payload"
	"github.com/tbxark/bureaubot/session"
)

func (o *Orchestrator) reviewAnswers(ctx context.Context, t *turn, input string) (step, error) {
	s := t.sess
	if o.recognize(ctx, input) != intent.Yes {
		s.Stage = session.StageFillFields
		s.FillIndex = 0
		s.Answers = map[string]answer.Value{}
		return reply(restartFillReply), nil
	}

	p := o.payload.Build(ctx, payload.Request{
		FormKey:   s.FormKey,
		Fields:    s.Fields,
		Answers:   s.Answers,
		Questions: s.Questions,
	})
	res, err := o.filler.Fill(ctx, s.FormKey, p)
	if err != nil {
		slog.Error("PDF fill failed", "session_id", s.ID, "form_key", s.FormKey, "error", err)
		return reply(fmt.Sprintf("I couldn't generate the PDF: %v", err)), nil
	}
	mode := "form"
	if res.Overlay {
		mode = "overlay"
	}
	o.metrics.ObserveArtifact(mode)
	slog.Info("PDF generated", "session_id", s.ID, "path", res.Path, "matched", res.Matched, "overlay", res.Overlay)

	s.ArtifactPath = res.Path
	s.Stage = session.StageComplete
	name := filepath.Base(res.Path)
	return reply(fmt.Sprintf(
		"✅ **Your form is ready!**\n\n[📥 Click here to download your filled PDF](%s%s)\n\nFilename: `%s`\n\n%s",
		o.downloadPrefix, name, name, Disclaimer,
	)), nil
}
