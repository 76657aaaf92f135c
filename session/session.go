package session

import (
	"maps"
	"slices"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/tbxark/bureaubot/answer"
	"github.com/tbxark/bureaubot/form"
	"github.com/tbxark/bureaubot/plan"
)

// Session is the state of one conversation.
type Session struct {
	ID    string `json:"id"`
	Stage Stage  `json:"stage"`

	FormKey  string `json:"form_key,omitempty"`
	CaseInfo string `json:"case_info,omitempty"`

	ConfirmQuestions []string `json:"confirm_questions,omitempty"`
	ConfirmAnswers   string   `json:"confirm_answers,omitempty"`
	ScopingQuestions []string `json:"scoping_questions,omitempty"`
	ScopingAnswers   string   `json:"scoping_answers,omitempty"`
	QIndex           int      `json:"q_index"`

	Fields    []form.Field             `json:"fields,omitempty"`
	FillIndex int                      `json:"fill_index"`
	Answers   map[string]answer.Value  `json:"answers,omitempty"`
	Questions map[string]plan.Question `json:"questions,omitempty"`
	Checklist []string                 `json:"checklist,omitempty"`

	ReviewSummary string `json:"review_summary,omitempty"`
	ArtifactPath  string `json:"artifact_path,omitempty"`

	History []*schema.Message `json:"history,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func New(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Stage:     StageSelectForm,
		Answers:   map[string]answer.Value{},
		Questions: map[string]plan.Question{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a copy that shares no mutable containers with s. History
// messages are shared since they are never modified after being appended.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.ConfirmQuestions = slices.Clone(s.ConfirmQuestions)
	c.ScopingQuestions = slices.Clone(s.ScopingQuestions)
	c.Fields = slices.Clone(s.Fields)
	c.Checklist = slices.Clone(s.Checklist)
	c.History = slices.Clone(s.History)
	c.Answers = maps.Clone(s.Answers)
	if c.Answers == nil {
		c.Answers = map[string]answer.Value{}
	}
	c.Questions = maps.Clone(s.Questions)
	if c.Questions == nil {
		c.Questions = map[string]plan.Question{}
	}
	return &c
}

// RestartSelection drops everything learned about the form choice.
func (s *Session) RestartSelection() {
	s.Stage = StageSelectForm
	s.CaseInfo = ""
	s.ConfirmAnswers = ""
	s.ConfirmQuestions = nil
	s.QIndex = 0
}

// AnsweredOrDuplicate reports whether the fill loop should pass over the
// field at i without asking.
func (s *Session) AnsweredOrDuplicate(i int) bool {
	name := s.Fields[i].Name
	if v, ok := s.Answers[name]; ok && !v.IsAbsent() {
		return true
	}
	return s.Questions[name].Duplicate
}
