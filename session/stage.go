package session

// Stage is the conversation step a session is in.
type Stage string

const (
	StageSelectForm     Stage = "select_form"
	StageConfirmForm    Stage = "confirm_form"
	StageScoping        Stage = "scoping"
	StageListFields     Stage = "list_fields"
	StageAwaitFillReady Stage = "await_fill_ready"
	StageFillFields     Stage = "fill_fields"
	StageReviewAnswers  Stage = "review_answers"
	StageComplete       Stage = "complete"
)

var stages = map[Stage]struct{}{
	StageSelectForm:     {},
	StageConfirmForm:    {},
	StageScoping:        {},
	StageListFields:     {},
	StageAwaitFillReady: {},
	StageFillFields:     {},
	StageReviewAnswers:  {},
	StageComplete:       {},
}

// Valid reports whether s is one of the known stages.
func (s Stage) Valid() bool {
	_, ok := stages[s]
	return ok
}

func (s Stage) String() string {
	return string(s)
}
