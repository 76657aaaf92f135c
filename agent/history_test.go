package agent

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
)

func contents(msgs []*schema.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Content)
	}
	return out
}

func TestKeepSystemLastNTrimmer(t *testing.T) {
	history := []*schema.Message{
		schema.SystemMessage("sys"),
		schema.UserMessage("u1"),
		nil,
		schema.AssistantMessage("a1", nil),
		schema.UserMessage("u2"),
		schema.AssistantMessage("a2", nil),
	}

	assert.Equal(t, []string{"sys", "u2", "a2"}, contents(KeepSystemLastNTrimmer{N: 2}.Trim(history)))
	assert.Equal(t, []string{"sys", "u1", "a1", "u2", "a2"}, contents(KeepSystemLastNTrimmer{N: 10}.Trim(history)))
	assert.Equal(t, []string{"sys"}, contents(KeepSystemLastNTrimmer{N: 0}.Trim(history)))
	assert.Empty(t, DefaultTrimmer.Trim(nil))
}

func TestAppendHistory(t *testing.T) {
	history := appendHistory(nil,
		schema.UserMessage("hi"),
		schema.UserMessage("hi"),
		schema.AssistantMessage("", nil),
		nil,
		schema.AssistantMessage("hello", nil),
	)
	assert.Equal(t, []string{"hi", "hello"}, contents(history))

	history = appendHistory(history, schema.UserMessage("hello"))
	assert.Len(t, history, 3)
}
