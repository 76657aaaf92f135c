package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbxark/bureaubot/answer"
	"github.com/tbxark/bureaubot/form"
	"github.com/tbxark/bureaubot/plan"
)

func sample() *Session {
	s := New("abc", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	s.Stage = StageFillFields
	s.FormKey = "eoir_form_26"
	s.Fields = []form.Field{{Name: "1", Label: "Full name", Kind: form.KindText}, {Name: "2", Kind: form.KindYesNo}}
	s.FillIndex = 1
	s.Answers["1"] = answer.Text("Jane Doe")
	s.Answers["2"] = answer.Bool(false)
	s.Questions["2"] = plan.Question{Text: "Detained?", Duplicate: true, Primary: "1"}
	s.History = []*schema.Message{schema.UserMessage("hi"), schema.AssistantMessage("hello", nil)}
	return s
}

func TestStageValid(t *testing.T) {
	t.Parallel()
	assert.True(t, StageReviewAnswers.Valid())
	assert.False(t, Stage("ask_has_attorney").Valid())
	assert.False(t, Stage("").Valid())
}

func TestClone(t *testing.T) {
	t.Parallel()
	s := sample()
	c := s.Clone()
	c.Answers["3"] = answer.Text("x")
	c.Fields[0].Label = "changed"
	c.History = append(c.History, schema.UserMessage("more"))
	assert.NotContains(t, s.Answers, "3")
	assert.Equal(t, "Full name", s.Fields[0].Label)
	assert.Len(t, s.History, 2)
}

func TestAnsweredOrDuplicate(t *testing.T) {
	t.Parallel()
	s := sample()
	assert.True(t, s.AnsweredOrDuplicate(0))
	delete(s.Answers, "2")
	assert.True(t, s.AnsweredOrDuplicate(1))
	s.Questions["2"] = plan.Question{Text: "Detained?"}
	assert.False(t, s.AnsweredOrDuplicate(1))
}

func TestRestartSelection(t *testing.T) {
	t.Parallel()
	s := sample()
	s.CaseInfo = "appeal"
	s.ConfirmQuestions = []string{"q"}
	s.QIndex = 1
	s.RestartSelection()
	assert.Equal(t, StageSelectForm, s.Stage)
	assert.Empty(t, s.CaseInfo)
	assert.Empty(t, s.ConfirmQuestions)
	assert.Zero(t, s.QIndex)
}

func testStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)

	s, created, err := GetOrCreate(ctx, store, "abc", time.Now())
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, StageSelectForm, s.Stage)

	require.NoError(t, store.Save(ctx, sample()))
	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, StageFillFields, got.Stage)
	assert.Equal(t, 1, got.FillIndex)
	assert.Equal(t, answer.Text("Jane Doe"), got.Answers["1"])
	b, ok := got.Answers["2"].AsBool()
	assert.True(t, ok)
	assert.False(t, b)
	assert.True(t, got.Questions["2"].Duplicate)
	require.Len(t, got.History, 2)
	assert.Equal(t, "hello", got.History[1].Content)

	got.Stage = StageComplete
	again, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, StageFillFields, again.Stage)

	_, created, err = GetOrCreate(ctx, store, "abc", time.Now())
	require.NoError(t, err)
	assert.False(t, created)

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Error(t, store.Save(ctx, &Session{}))
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	testStore(t, NewMemoryStore(0))
}

func TestMemoryStoreExpiry(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore(20 * time.Millisecond)
	require.NoError(t, store.Save(context.Background(), sample()))
	assert.Equal(t, 1, store.Len())
	time.Sleep(60 * time.Millisecond)
	_, err := store.Get(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	testStore(t, NewRedisStore(client, WithPrefix("test")))

	store := NewRedisStore(client, WithTTL(time.Hour))
	require.NoError(t, store.Save(context.Background(), sample()))
	assert.True(t, mr.Exists("bureaubot:session:abc"))
	assert.Equal(t, time.Hour, mr.TTL("bureaubot:session:abc"))

	mr.FastForward(2 * time.Hour)
	_, err := store.Get(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrNotFound)

	noExpiry := NewRedisStore(client, WithTTL(0), WithPrefix("keep"))
	require.NoError(t, noExpiry.Save(context.Background(), sample()))
	assert.Zero(t, mr.TTL("keep:session:abc"))
}
