package llm

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbxark/bureaubot/metrics"
)

func TestExtractObject(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"plain", `{"a":1}`, `{"a":1}`, true},
		{"fenced", "```json\n{\"a\":{\"b\":2}}\n```", `{"a":{"b":2}}`, true},
		{"prose around", `Sure! {"q":"why }?"} hope that helps {"x":1}`, `{"q":"why }?"}`, true},
		{"escaped quote", `{"q":"say \"}\" now"}`, `{"q":"say \"}\" now"}`, true},
		{"unbalanced prefix", `{ oops {"ok":true}`, `{"ok":true}`, true},
		{"none", `no json here`, ``, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractObject(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExtractArray(t *testing.T) {
	t.Parallel()
	got, ok := ExtractArray("Questions:\n[\"Was it a judge?\", \"[sic]\"]\nthanks")
	require.True(t, ok)
	assert.Equal(t, `["Was it a judge?", "[sic]"]`, got)
}

func TestPolicyRetriesOnlyRetryable(t *testing.T) {
	t.Parallel()
	p := Policy{Attempts: 3}
	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context, attempt int) error {
		calls++
		return Retryable(ErrNoJSON)
	})
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, ErrNoJSON)
	assert.False(t, IsRetryable(err))

	calls = 0
	boom := errors.New("transport")
	err = p.Do(context.Background(), func(ctx context.Context, attempt int) error {
		calls++
		return boom
	})
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, boom)

	calls = 0
	err = p.Do(context.Background(), func(ctx context.Context, attempt int) error {
		calls++
		if attempt == 0 {
			return Retryable(ErrNoJSON)
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestPolicyStopsOnContextDone(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{Attempts: 5, Backoff: time.Hour}
	calls := 0
	err := p.Do(ctx, func(ctx context.Context, attempt int) error {
		calls++
		cancel()
		return Retryable(ErrNoJSON)
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestScripted(t *testing.T) {
	t.Parallel()
	s := NewScripted("one")
	s.Push(Reply{Err: errors.New("down")})
	s.Respond = func(system, user string) (string, bool, error) {
		return "special", user == "magic", nil
	}
	ctx := context.Background()

	got, err := s.Complete(ctx, "sys", "magic", nil)
	require.NoError(t, err)
	assert.Equal(t, "special", got)

	got, err = s.Complete(ctx, "sys", "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "one", got)

	_, err = s.Complete(ctx, "sys", "hello", nil)
	assert.EqualError(t, err, "down")

	_, err = s.Complete(ctx, "sys", "hello", nil)
	assert.ErrorIs(t, err, ErrScriptExhausted)
	assert.Len(t, s.Calls(), 4)
	assert.Equal(t, 0, s.Remaining())
}

type fakeChatModel struct {
	input []*schema.Message
	opts  *model.Options
	err   error
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.input = input
	f.opts = model.GetCommonOptions(nil, opts...)
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage("VALID", nil), nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

func TestEinoDelegateBuildsMessages(t *testing.T) {
	t.Parallel()
	fake := &fakeChatModel{}
	d := NewEinoDelegate(fake, DefaultGeneration())
	history := []*schema.Message{schema.UserMessage("hi"), nil, schema.AssistantMessage("", nil), schema.AssistantMessage("hello", nil)}

	got, err := d.Complete(context.Background(), "be strict", "check this", history)
	require.NoError(t, err)
	assert.Equal(t, "VALID", got)

	require.Len(t, fake.input, 4)
	assert.Equal(t, schema.System, fake.input[0].Role)
	assert.Equal(t, "hi", fake.input[1].Content)
	assert.Equal(t, "hello", fake.input[2].Content)
	assert.Equal(t, "check this", fake.input[3].Content)
	require.NotNil(t, fake.opts.Temperature)
	assert.InDelta(t, 0.3, *fake.opts.Temperature, 1e-6)
	require.NotNil(t, fake.opts.MaxTokens)
	assert.Equal(t, 8048, *fake.opts.MaxTokens)
}

func TestInstrumentPropagatesErrors(t *testing.T) {
	t.Parallel()
	fake := &fakeChatModel{err: errors.New("quota")}
	d := Instrument(NewEinoDelegate(fake, Generation{}), "fake", metrics.New(nil))
	_, err := d.Complete(context.Background(), "", "x", nil)
	assert.ErrorContains(t, err, "quota")
}

func TestOpenAIDelegateLive(t *testing.T) {
	if os.Getenv("BUREAUBOT_RUN_LIVE_TESTS") != "1" {
		t.Skip("set BUREAUBOT_RUN_LIVE_TESTS=1 to run live model tests")
	}
	ctx := context.Background()
	d, err := NewOpenAIDelegate(ctx, OpenAIConfig{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
		Model:   os.Getenv("OPENAI_MODEL"),
	}, DefaultGeneration())
	require.NoError(t, err)
	reply, err := d.Complete(ctx, "Reply with the single word VALID.", "Go.", nil)
	require.NoError(t, err)
	assert.Contains(t, reply, "VALID")
}
