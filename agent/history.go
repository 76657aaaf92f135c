package agent

import (
	"github.com/cloudwego/eino/schema"
)

type Trimmer interface {
	Trim(history []*schema.Message) []*schema.Message
}

// KeepSystemLastNTrimmer keeps all system messages and the last N non-system messages.
// When N <= 0, it keeps only system messages.
type KeepSystemLastNTrimmer struct {
	N int
}

// DefaultTrimmer keeps the last ten exchanges.
var DefaultTrimmer = KeepSystemLastNTrimmer{N: 20}

func (t KeepSystemLastNTrimmer) Trim(history []*schema.Message) []*schema.Message {
	history = normalizeHistory(history)
	if len(history) == 0 {
		return history
	}
	kept := 0
	cut := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == schema.System {
			continue
		}
		if kept == max(t.N, 0) {
			break
		}
		kept++
		cut = i
	}
	out := make([]*schema.Message, 0, len(history))
	for i, m := range history {
		if m.Role == schema.System || i >= cut {
			out = append(out, m)
		}
	}
	return out
}

// appendHistory appends msgs, dropping any message identical in role and
// content to the one before it.
func appendHistory(history []*schema.Message, msgs ...*schema.Message) []*schema.Message {
	out := history
	for _, msg := range msgs {
		if msg == nil || msg.Content == "" {
			continue
		}
		if len(out) > 0 {
			last := out[len(out)-1]
			if last != nil && last.Role == msg.Role && last.Content == msg.Content {
				continue
			}
		}
		out = append(out, msg)
	}
	return out
}

func normalizeHistory(history []*schema.Message) []*schema.Message {
	if len(history) == 0 {
		return history
	}
	out := make([]*schema.Message, 0, len(history))
	for _, m := range history {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}
