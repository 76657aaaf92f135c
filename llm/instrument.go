package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/tbxark/bureaubot/metrics"
)

type instrumented struct {
	next     Delegate
	provider string
	metrics  *metrics.Metrics
}

// Instrument wraps d so that every call is timed, counted and logged.
func Instrument(d Delegate, provider string, m *metrics.Metrics) Delegate {
	return &instrumented{next: d, provider: provider, metrics: m}
}

func (i *instrumented) Complete(ctx context.Context, system, user string, history []*schema.Message) (string, error) {
	start := time.Now()
	reply, err := i.next.Complete(ctx, system, user, history)
	elapsed := time.Since(start)
	i.metrics.ObserveDelegate(i.provider, elapsed, err)
	if err != nil {
		slog.Warn("Delegate call failed", "provider", i.provider, "elapsed", elapsed, "error", err)
		return "", err
	}
	slog.Debug("Delegate call", "provider", i.provider, "elapsed", elapsed, "history", len(history), "reply_len", len(reply))
	return reply, nil
}
