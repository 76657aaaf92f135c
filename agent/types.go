package agent

import (
	"errors"

	"github.com/tbxark/bureaubot/session"
)

var (
	ErrEmptyMessage   = errors.New("message cannot be empty")
	ErrEmptySessionID = errors.New("session id cannot be empty")
)

// Response is the outcome of one conversational turn.
type Response struct {
	SessionID    string            `json:"session_id"`
	Reply        string            `json:"reply"`
	Stage        session.Stage     `json:"stage"`
	ArtifactPath string            `json:"pdf_path,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// step is what a stage handler returns. When cont is set the orchestrator
// dispatches again on the (possibly changed) stage with input instead of
// replying.
type step struct {
	reply string
	cont  bool
	input string
}

func reply(text string) step {
	return step{reply: text}
}

func continueWith(input string) step {
	return step{cont: true, input: input}
}

const (
	fallbackReply      = "I need more details. What is your situation?"
	needMoreDetail     = "I need a bit more detail about your situation."
	noFormFound        = "I couldn't find a form."
	tryAgainReply      = "Okay, let's try again. Describe your situation."
	stoppedReply       = "Okay, stopped."
	noFieldsReply      = "Error: No fields found for this form."
	helpSuffix         = "\n\nTry answering again (or 'skip')."
	restartFillReply   = "Okay, restarting fill process. Reply **yes** when you're ready to start again."
	sessionFinished    = "Session finished."
	scopingIntro       = "Before we start, a few checks.\n\n"
	reviewQuestion     = "\n\nIs this correct? (yes/no)"
	defaultDownloadURL = "/api/download/"
)

// Disclaimer closes the completion message.
const Disclaimer = "I'm an informational assistant, not a lawyer. I can help organize info and fill official PDFs you provide, but I don't give legal advice."
