package llm

import (
	"context"
	"errors"
	"sync"

	"github.com/cloudwego/eino/schema"
)

// ErrScriptExhausted is returned by Scripted when no reply is left.
var ErrScriptExhausted = errors.New("scripted delegate: no reply left")

// Call records one Complete invocation.
type Call struct {
	System  string
	User    string
	History []*schema.Message
}

// Reply is one scripted answer.
type Reply struct {
	Text string
	Err  error
}

// Scripted is a deterministic Delegate for tests and offline runs. Replies
// are consumed in order; when Respond is set it is consulted first and
// returning handled=false falls through to the queue.
type Scripted struct {
	mu      sync.Mutex
	replies []Reply
	calls   []Call
	Respond func(system, user string) (text string, handled bool, err error)
}

func NewScripted(replies ...string) *Scripted {
	s := &Scripted{}
	for _, r := range replies {
		s.replies = append(s.replies, Reply{Text: r})
	}
	return s
}

// Push appends replies to the queue.
func (s *Scripted) Push(replies ...Reply) {
	s.mu.Lock()
	s.replies = append(s.replies, replies...)
	s.mu.Unlock()
}

func (s *Scripted) Complete(ctx context.Context, system, user string, history []*schema.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{System: system, User: user, History: history})
	if s.Respond != nil {
		if text, handled, err := s.Respond(system, user); handled {
			return text, err
		}
	}
	if len(s.replies) == 0 {
		return "", ErrScriptExhausted
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r.Text, r.Err
}

// Calls returns a copy of the recorded calls.
func (s *Scripted) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Remaining reports how many queued replies are unused.
func (s *Scripted) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.replies)
}

var _ Delegate = (*Scripted)(nil)
