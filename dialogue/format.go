package dialogue

import (
	"fmt"

	"github.com/bytedance/sonic"
)

const formQAPromptTemplate = `You are an immigration forms assistant.

Form key: %s
Catalog description (how/when this form is used):
%s

User question:
"""%s"""

Your job:
- Answer the user's question clearly and accurately in plain language.
- Use the catalog description as the primary source of truth.
- Keep the answer brief (1-3 short paragraphs).
- If relevant, explain what the form does, who typically uses it, and what it does NOT do.

End your answer with this sentence:
"%s"`

const routerQAPromptTemplate = `You are an immigration forms assistant.

Conversation so far:
%s

User question:
"""%s"""

Your job:
- If they ask about an acronym (e.g., "BIA", "EOIR", "USCIS") or a concept, explain it in clear terms.
- Keep the answer short (1-3 short paragraphs).
- Do NOT choose or change any form recommendations in this response.
- Do NOT ask new clarifying questions yourself.

Just answer the question and stop.`

const fieldHelpPromptTemplate = `You are an immigration legal forms assistant.

The user is filling out this form: %s
Current field: %s

Field metadata (JSON):
%s

User's question about this field:
"%s"

Your job:
- Explain in simple terms what information belongs in this field.
- Clarify where they can usually find this information (e.g., passport, denial notice, charging document).
- Give 1-2 concrete example answers if helpful.
- Do NOT make up their actual answer.
- Keep it under 3 short paragraphs.`

// FormQAClosing ends every answer about the recommended form.
const FormQAClosing = "When you're ready, you can say **yes** if you want to fill this form, or **no** if you'd like me to reconsider."

func formatPrompt(req *Request) (string, error) {
	switch req.Kind {
	case FormQA:
		return fmt.Sprintf(formQAPromptTemplate, req.FormKey, req.FormDescription, req.Message, FormQAClosing), nil
	case RouterQA:
		return fmt.Sprintf(routerQAPromptTemplate, req.Context, req.Message), nil
	case FieldHelp:
		if req.Field == nil {
			return "", fmt.Errorf("field help needs a field")
		}
		meta, err := sonic.ConfigStd.MarshalIndent(req.Field, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal field metadata: %w", err)
		}
		return fmt.Sprintf(fieldHelpPromptTemplate, req.FormKey, req.Field.DisplayLabel(), meta, req.Message), nil
	default:
		return "", fmt.Errorf("unknown dialogue kind %q", req.Kind)
	}
}
