package form

import (
	"fmt"
	"strings"
)

type Kind string

const (
	KindText       Kind = "text"
	KindYesNo      Kind = "yesno"
	KindMultiCheck Kind = "multicheck"
	KindCheckbox   Kind = "checkbox"
	KindRadio      Kind = "radio"
)

// HasOptions reports whether fields of this kind carry an option list.
func (k Kind) HasOptions() bool {
	return k == KindMultiCheck || k == KindRadio
}

// Rect is a widget rectangle in PDF user space (lower-left origin).
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Field describes one fillable form field. Build it with ParseFields so that
// Kind, OfficerOnly and IfApplicable are derived consistently.
type Field struct {
	Name        string   `json:"name"`
	Label       string   `json:"label,omitempty"`
	PDFLabel    string   `json:"pdf_label,omitempty"`
	Title       string   `json:"title,omitempty"`
	Question    string   `json:"question,omitempty"`
	Description string   `json:"description,omitempty"`
	TypeHint    string   `json:"type,omitempty"`
	Options     []string `json:"options,omitempty"`
	Group       string   `json:"group,omitempty"`
	Page        int      `json:"page,omitempty"`
	Rect        *Rect    `json:"rect,omitempty"`

	IfApplicableFlag bool `json:"if_applicable_flag,omitempty"`

	Kind         Kind `json:"kind"`
	OfficerOnly  bool `json:"officer_only,omitempty"`
	IfApplicable bool `json:"if_applicable,omitempty"`
}

// DisplayLabel is the label shown to users in corrections and summaries.
func (f Field) DisplayLabel() string {
	return firstNonEmpty(f.Label, f.PDFLabel, f.Title, f.Name, "this field")
}

// PromptLabel is the label used when phrasing a question for the field.
func (f Field) PromptLabel() string {
	return firstNonEmpty(f.Label, f.Question, f.Title, f.Description, f.Name, "this field")
}

// GroupKey returns a deterministic key shared by widgets that belong to the
// same underlying question, or "" when the metadata carries none.
func (f Field) GroupKey() string {
	if f.Group != "" {
		return "group:" + f.Group
	}
	// Without a page, equal rectangles on different pages would collide.
	if f.Rect != nil && f.Page > 0 {
		return fmt.Sprintf("rect:%d:%.1f,%.1f,%.1f,%.1f", f.Page, f.Rect.X0, f.Rect.Y0, f.Rect.X1, f.Rect.Y1)
	}
	return ""
}

func (f Field) descriptiveText() string {
	return strings.Join([]string{f.Name, f.Label, f.PDFLabel, f.Description, f.Title, f.Question}, " ")
}

// Index maps field names to fields. Later duplicates do not replace earlier ones.
func Index(fields []Field) map[string]Field {
	out := make(map[string]Field, len(fields))
	for _, f := range fields {
		if _, ok := out[f.Name]; !ok {
			out[f.Name] = f
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
