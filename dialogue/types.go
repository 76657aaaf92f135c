package dialogue

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/tbxark/bureaubot/form"
)

// Kind selects which aside is being answered.
type Kind string

const (
	// FormQA answers a question about the recommended form.
	FormQA Kind = "form_qa"
	// RouterQA answers a general question while the checklist is pending.
	RouterQA Kind = "router_qa"
	// FieldHelp explains the field currently being filled.
	FieldHelp Kind = "field_help"
)

type Request struct {
	Kind    Kind
	Message string

	FormKey         string
	FormDescription string
	Context         string
	Field           *form.Field

	History []*schema.Message
}

// Generator answers free-form asides without changing conversation state.
type Generator interface {
	GenerateDialogue(ctx context.Context, req *Request) (string, error)
}
