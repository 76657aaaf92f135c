package plan

import (
	"strings"

	"github.com/tbxark/bureaubot/form"
)

// Question is the human question assigned to a field. Duplicate fields share
// the question of their Primary and are never asked on their own.
type Question struct {
	Text      string `json:"text,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Primary   string `json:"primary,omitempty"`
}

// Dedupe assigns questions to fields in order. A field joins an earlier one
// when both carry the same metadata group key, or failing that when their
// question text is identical. It returns the assignment and the checklist of
// distinct questions in ask order.
func Dedupe(fields []form.Field, questions map[string]string) (map[string]Question, []string) {
	out := make(map[string]Question, len(fields))
	byGroup := map[string]string{}
	byText := map[string]string{}
	var checklist []string
	for _, f := range fields {
		if _, seen := out[f.Name]; seen {
			continue
		}
		text := strings.TrimSpace(questions[f.Name])
		if text == "" {
			text = f.DisplayLabel()
		}
		key := f.GroupKey()
		if key != "" {
			if primary, ok := byGroup[key]; ok {
				out[f.Name] = Question{Text: out[primary].Text, Duplicate: true, Primary: primary}
				continue
			}
		}
		if primary, ok := byText[text]; ok {
			out[f.Name] = Question{Text: text, Duplicate: true, Primary: primary}
			// Later group members follow the asked field, not this one.
			if key != "" {
				byGroup[key] = primary
			}
			continue
		}
		if key != "" {
			byGroup[key] = f.Name
		}
		byText[text] = f.Name
		out[f.Name] = Question{Text: text}
		checklist = append(checklist, text)
	}
	return out, checklist
}
