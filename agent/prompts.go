package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"

	"github.com/tbxark/bureaubot/plan"
	"github.com/tbxark/bureaubot/structured"
)

const selectFormPromptTemplate = `You are a routing assistant that chooses which official immigration or customs form the user needs.

CONTEXT FROM USER AND PRIOR Q&A:
%s

AVAILABLE INTERNAL FORM KEYS (you may ONLY choose from these):
%s

YOUR RESPONSE MUST BE A SINGLE JSON OBJECT WITH THIS SHAPE:
- "questions": a list of zero, one, or two short clarifying questions (strings).
- "suggestion": an object with:
    - "form_key": a string.
    - "reason": a short explanation of why that form was chosen.

RULES FOR THE JSON YOU RETURN:

0. First-turn behavior (mandatory)
   - Treat the context above as the full conversation so far.
   - If the context does NOT contain any lines starting with "Q:" then no clarifying questions have been asked yet. In that case:
       - You MUST put 1-2 short clarifying questions in "questions".
       - You MUST set "suggestion.form_key" to the empty string "".
       - You MUST NOT recommend any form yet.
   - Only when the context DOES contain at least one line starting with "Q:" are you allowed to recommend a form by setting a non-empty "suggestion.form_key".

1. Clarifying questions
   - If you do NOT yet have enough information to choose a form, put up to 2 short clarifying questions in "questions" and set "suggestion.form_key" to "".
   - Questions must be concise and directly related to picking the correct form.

2. Final recommendation
   - If you DO have enough information, set "questions" to [] and "suggestion.form_key" to the best matching internal form key.
   - "form_key" MUST be exactly one of the keys listed above.
   - NEVER return values such as "unknown", "none" or "n/a" as the form_key. If no form is appropriate, use "".

3. No suitable form
   - If none of the available forms fits, leave "suggestion.form_key" as "" and explain briefly in "reason".

4. Output format
   - Return ONLY the JSON object. No markdown, no text outside the JSON.`

const scopingPromptTemplate = `You are an immigration paralegal.

You have a reference catalog entry for an immigration form.

Form key: %s
Catalog description (how/when this form is used):
%s

Your job:
- Write the 1-2 most essential scoping questions to confirm this form is actually the right one for the user.
- Questions should be short and natural.
- Prefer yes/no or short-answer questions that clarify eligibility or filing posture (who made the decision, what type of decision, timing, status).
- Do NOT mention form numbers in the question text.

Return ONLY a JSON array of strings, for example:
["Was the decision you are appealing made by an Immigration Judge?", "Did you receive a written denial notice for this case?"]`

const fieldQuestionsPromptTemplate = `You are an immigration paralegal.
Here is the list of fields from Form %s.

FIELD LIST:
%s

TASK:
For every field, write ONE natural-language question (e.g., "Are you detained?").
If multiple fields belong to the same question (like Yes/No checkboxes), give them the EXACT SAME question text.

OUTPUT FORMAT:
Return valid JSON only. No markdown.
{"<ID>": "<question>", ...}`

const rewriteLabelPromptTemplate = "Rewrite this form field label into a question: '%s'"

type formSuggestion struct {
	Questions  []string `json:"questions" jsonschema:"description=Zero to two short clarifying questions"`
	Suggestion struct {
		FormKey string `json:"form_key" jsonschema:"description=Internal form key from the list or empty"`
		Reason  string `json:"reason" jsonschema:"description=Why this form fits or why none does"`
	} `json:"suggestion"`
}

type selectInput struct {
	turn    *turn
	context string
	forms   string
}

type scopingInput struct {
	turn        *turn
	formKey     string
	description string
}

type fieldsInput struct {
	formKey string
	entries []plan.Entry
	labels  map[string]string
}

func (o *Orchestrator) selectFormPrompt(ctx context.Context, in selectInput) (*structured.Prompt, error) {
	return &structured.Prompt{
		System:  o.systemPrompt,
		User:    fmt.Sprintf(selectFormPromptTemplate, in.context, in.forms),
		History: in.turn.history,
	}, nil
}

func (o *Orchestrator) scopingPrompt(ctx context.Context, in scopingInput) (*structured.Prompt, error) {
	return &structured.Prompt{
		System:  o.systemPrompt,
		User:    fmt.Sprintf(scopingPromptTemplate, in.formKey, in.description),
		History: in.turn.history,
	}, nil
}

func (o *Orchestrator) fieldQuestionsPrompt(ctx context.Context, in fieldsInput) (*structured.Prompt, error) {
	return &structured.Prompt{
		System: o.systemPrompt,
		User:   fmt.Sprintf(fieldQuestionsPromptTemplate, in.formKey, formatFieldTable(in.entries, in.labels)),
	}, nil
}

func formatFieldTable(entries []plan.Entry, labels map[string]string) string {
	var buf strings.Builder
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("ID", "Label", "Kind", "Planned prompt")
	for _, e := range entries {
		_ = table.Append(e.Name, labels[e.Name], string(e.Kind), e.Prompt)
	}
	_ = table.Render()
	return buf.String()
}

// hasAskedQuestion reports whether the selection context already holds a
// clarifying question and its answer.
func hasAskedQuestion(context string) bool {
	for _, line := range strings.Split(context, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "Q:") {
			return true
		}
	}
	return false
}
