package payload

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbxark/bureaubot/answer"
	"github.com/tbxark/bureaubot/form"
	"github.com/tbxark/bureaubot/llm"
	"github.com/tbxark/bureaubot/plan"
)

func fields() []form.Field {
	return []form.Field{
		form.Finalize(form.Field{Name: "1", Label: "Full name"}),
		form.Finalize(form.Field{Name: "married_yes", Label: "Married", TypeHint: "checkbox", Group: "married"}),
		form.Finalize(form.Field{Name: "married_no", Label: "Married", TypeHint: "checkbox", Group: "married"}),
		form.Finalize(form.Field{Name: "2", Label: "Full name again", Group: "name2"}),
		form.Finalize(form.Field{Name: "3", Label: "Full name copy", Group: "name2"}),
	}
}

func questions() map[string]plan.Question {
	q, _ := plan.Dedupe(fields(), nil)
	return q
}

func TestBase(t *testing.T) {
	t.Parallel()
	answers := map[string]answer.Value{
		"1":           answer.Text("Jane Doe"),
		"married_yes": answer.Text("Yes"),
		"2":           answer.Text("JD"),
	}
	got := Base(fields(), answers, questions())
	assert.Equal(t, map[string]any{
		"1":           "Jane Doe",
		"married_yes": "Yes",
		"married_no":  "Off",
		"2":           "JD",
		"3":           "JD",
	}, got)
}

func TestMergeStoredAnswersWin(t *testing.T) {
	t.Parallel()
	merged, err := Merge(
		map[string]any{"1": "J. Doe", "extra": "from model"},
		map[string]any{"1": "Jane Doe"},
	)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"1": "Jane Doe", "extra": "from model"}, merged)
}

func TestStringify(t *testing.T) {
	t.Parallel()
	got := Stringify(map[string]any{"a": true, "b": false, "c": "x", "d": nil, "e": "", "f": float64(12)})
	assert.Equal(t, map[string]string{"a": "Yes", "b": "Off", "c": "x", "f": "12"}, got)
}

func TestBuild(t *testing.T) {
	t.Parallel()
	req := Request{
		FormKey:   "eoir_form_26",
		Fields:    fields(),
		Answers:   map[string]answer.Value{"1": answer.Text("Jane Doe")},
		Questions: questions(),
	}
	delegate := llm.NewScripted("```json\n{\"1\": \"jane\", \"2\": \"JD\"}\n```")
	b, err := NewBuilder(delegate, WithPolicy(llm.Policy{Attempts: 3}))
	require.NoError(t, err)

	got := b.Build(context.Background(), req)
	assert.Equal(t, map[string]string{"1": "Jane Doe", "2": "JD"}, got)

	calls := delegate.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].User, "1: Jane Doe")
	assert.Contains(t, calls[0].User, `"name": "married_yes"`)
	assert.Nil(t, calls[0].History)
}

func TestBuildFailsSoft(t *testing.T) {
	t.Parallel()
	req := Request{
		FormKey: "eoir_form_26",
		Fields:  fields(),
		Answers: map[string]answer.Value{"1": answer.Text("Jane Doe")},
	}

	delegate := llm.NewScripted("nope", "still nope", "never json")
	b, err := NewBuilder(delegate, WithPolicy(llm.Policy{Attempts: 3}))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1": "Jane Doe"}, b.Build(context.Background(), req))
	assert.Len(t, delegate.Calls(), 3)

	failing := &llm.Scripted{}
	failing.Push(llm.Reply{Err: errors.New("boom")})
	b, err = NewBuilder(failing, WithPolicy(llm.Policy{Attempts: 3}))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1": "Jane Doe"}, b.Build(context.Background(), req))
	assert.Len(t, failing.Calls(), 1)
}

func TestBaseFollowsPrimaryChain(t *testing.T) {
	t.Parallel()
	fs := []form.Field{
		form.Finalize(form.Field{Name: "a", Label: "Street"}),
		form.Finalize(form.Field{Name: "b", Label: "Street line", Group: "g"}),
		form.Finalize(form.Field{Name: "c", Label: "Street copy", Group: "g"}),
	}
	// A chain left by an older session: c points at b, which points at a.
	questions := map[string]plan.Question{
		"a": {Text: "What is your street address?"},
		"b": {Text: "What is your street address?", Duplicate: true, Primary: "a"},
		"c": {Text: "What is your street address?", Duplicate: true, Primary: "b"},
	}
	got := Base(fs, map[string]answer.Value{"a": answer.Text("Main St")}, questions)
	assert.Equal(t, map[string]any{"a": "Main St", "b": "Main St", "c": "Main St"}, got)

	assert.Equal(t, map[string]any{"a": "Main St", "b": "Main St", "c": "Main St"},
		Base(fs, map[string]answer.Value{"a": answer.Text("Main St")}, func() map[string]plan.Question {
			q, _ := plan.Dedupe(fs, map[string]string{"a": "Street?", "b": "Street?", "c": "Other?"})
			return q
		}()))
}

func TestStringifyNumbers(t *testing.T) {
	t.Parallel()
	assert.Equal(t, map[string]string{"anum": "123456789"}, Stringify(map[string]any{"anum": float64(123456789)}))
}
