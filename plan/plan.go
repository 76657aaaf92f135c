package plan

import (
	"strings"

	"github.com/tbxark/bureaubot/form"
)

const ifApplicableHint = " (You may answer 'N/A' if not applicable.)"

// Entry is the question generated for one field.
type Entry struct {
	Name         string    `json:"name"`
	Prompt       string    `json:"prompt"`
	Kind         form.Kind `json:"kind"`
	Options      []string  `json:"options,omitempty"`
	IfApplicable bool      `json:"if_applicable"`
}

// Plan produces one entry per user-facing field, preserving order. Officer-only
// fields produce no entry.
func Plan(fields []form.Field) []Entry {
	entries := make([]Entry, 0, len(fields))
	for _, f := range fields {
		if form.IsOfficerOnly(f) {
			continue
		}
		kind := form.Classify(f)
		label := f.PromptLabel()
		prompt := label
		var options []string
		switch kind {
		case form.KindYesNo:
			prompt = "Confirm — " + label + " (Yes/No)"
			options = []string{"Yes", "No"}
		case form.KindMultiCheck, form.KindRadio:
			options = append([]string(nil), f.Options...)
			prompt = label + " — choose from: " + strings.Join(options, ", ")
		}
		ifApplicable := form.HasIfApplicable(f)
		if ifApplicable {
			prompt += ifApplicableHint
		}
		entries = append(entries, Entry{
			Name:         f.Name,
			Prompt:       collapseSpaces(prompt),
			Kind:         kind,
			Options:      options,
			IfApplicable: ifApplicable,
		})
	}
	return entries
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
