package pdffill

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrTemplateNotFound = errors.New("pdf template not found")

// Result describes a produced artifact.
type Result struct {
	Path    string `json:"path"`
	Matched int    `json:"matched"`
	Overlay bool   `json:"overlay"`
}

// Filler writes a filled copy of a form template.
type Filler interface {
	Fill(ctx context.Context, formKey string, payload map[string]string) (*Result, error)
}

var checkboxOff = map[string]struct{}{
	"": {}, "no": {}, "n": {}, "false": {}, "0": {}, "off": {}, "skip": {},
}

// CheckboxState maps a payload value onto a checkbox state.
func CheckboxState(value string) bool {
	_, off := checkboxOff[strings.ToLower(strings.TrimSpace(value))]
	return !off
}

// Namer produces output file names of the form {key}_{yyyymmdd_hhmmss}_{id8}.pdf.
type Namer struct {
	Now func() time.Time
	ID  func() string
}

func (n Namer) Name(formKey string) string {
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	id := n.ID
	if id == nil {
		id = func() string { return uuid.NewString() }
	}
	short := strings.ReplaceAll(id(), "-", "")
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s_%s_%s.pdf", formKey, now().Format("20060102_150405"), short)
}

// SafeBase reports whether name is a bare .pdf file name that can be served
// from the output directory.
func SafeBase(name string) bool {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}
