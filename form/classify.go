package form

import (
	"regexp"
	"strings"
)

var officerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bauthorized officer\b`),
	regexp.MustCompile(`(?i)\bofficer signature\b`),
	regexp.MustCompile(`(?i)\bsignature of authorized officer\b`),
	regexp.MustCompile(`(?i)\bprinted name and title of authorized officer\b`),
	regexp.MustCompile(`(?i)\boffice use only\b`),
}

var yesNoToken = regexp.MustCompile(`(?i)\b(yes|no)\b`)

const ifApplicablePhrase = "(if applicable)"

// IsOfficerOnly reports whether the field is reserved for agency staff.
func IsOfficerOnly(f Field) bool {
	text := f.descriptiveText()
	for _, p := range officerPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// Classify infers the answer kind from the type hint, the internal name and
// the option list.
func Classify(f Field) Kind {
	hint := strings.ToLower(f.TypeHint)
	switch {
	case strings.Contains(hint, "checkbox"):
		if yesNoToken.MatchString(f.Name) {
			return KindYesNo
		}
		if len(f.Options) > 0 {
			return KindMultiCheck
		}
		return KindCheckbox
	case strings.Contains(hint, "radio"):
		return KindRadio
	default:
		return KindText
	}
}

// HasIfApplicable reports whether the user may answer N/A for the field.
func HasIfApplicable(f Field) bool {
	if f.IfApplicableFlag {
		return true
	}
	return strings.Contains(strings.ToLower(f.descriptiveText()), ifApplicablePhrase)
}
