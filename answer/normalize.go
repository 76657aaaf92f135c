package answer

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tbxark/bureaubot/form"
)

var notApplicable = map[string]struct{}{"n/a": {}, "na": {}, "not applicable": {}}

// Normalize converts raw answers keyed by field name into typed values.
// Names missing from fields pass through unchanged for later fuzzy mapping;
// answers to officer-only fields are dropped.
func Normalize(raw map[string]any, fields []form.Field) map[string]Value {
	index := form.Index(fields)
	out := make(map[string]Value, len(raw))
	for name, v := range raw {
		f, ok := index[strings.TrimSpace(name)]
		if !ok {
			out[name] = ValueOf(v)
			continue
		}
		if form.IsOfficerOnly(f) {
			continue
		}
		out[name] = normalizeOne(f, v)
	}
	return out
}

func normalizeOne(f form.Field, v any) Value {
	if s, ok := v.(string); ok && form.HasIfApplicable(f) {
		if _, na := notApplicable[strings.ToLower(strings.TrimSpace(s))]; na {
			return Absent()
		}
	}
	switch form.Classify(f) {
	case form.KindYesNo:
		switch x := v.(type) {
		case bool:
			return Bool(x)
		case string:
			switch strings.ToLower(strings.TrimSpace(x)) {
			case "y", "yes":
				return Bool(true)
			case "n", "no":
				return Bool(false)
			}
		}
		return Absent()
	case form.KindMultiCheck:
		var seq []any
		switch x := v.(type) {
		case []any:
			seq = x
		case []string:
			for _, s := range x {
				seq = append(seq, s)
			}
		default:
			seq = []any{v}
		}
		out := make([]string, 0, len(seq))
		for _, item := range seq {
			if item == nil {
				continue
			}
			s := strings.TrimSpace(fmt.Sprint(item))
			if len(f.Options) == 0 || slices.Contains(f.Options, s) {
				out = append(out, s)
			}
		}
		return List(out)
	case form.KindRadio:
		s := ""
		if v != nil {
			s = strings.TrimSpace(fmt.Sprint(v))
		}
		if len(f.Options) > 0 && !slices.Contains(f.Options, s) {
			return Absent()
		}
		return Text(s)
	default:
		if v == nil {
			return Absent()
		}
		return Text(strings.TrimSpace(fmt.Sprint(v)))
	}
}

// Convert turns a single free-text reply from the fill loop into the value
// stored for the field. Checkbox replies become the widget states "Yes" and
// "Off"; choice replies are matched to options case-insensitively.
func Convert(f form.Field, text string) Value {
	trimmed := strings.TrimSpace(text)
	switch form.Classify(f) {
	case form.KindCheckbox:
		if form.HasIfApplicable(f) {
			if _, na := notApplicable[strings.ToLower(trimmed)]; na {
				return Absent()
			}
		}
		switch strings.ToLower(trimmed) {
		case "yes", "y":
			return Text("Yes")
		case "no", "n":
			return Text("Off")
		}
		return Text(trimmed)
	case form.KindMultiCheck:
		parts := strings.Split(trimmed, ",")
		items := make([]any, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				items = append(items, canonicalOption(f.Options, p))
			}
		}
		v := normalizeOne(f, items)
		if l, _ := v.AsList(); len(l) == 0 {
			return Absent()
		}
		return v
	case form.KindRadio:
		return normalizeOne(f, canonicalOption(f.Options, trimmed))
	default:
		return normalizeOne(f, text)
	}
}

func canonicalOption(options []string, s string) string {
	for _, o := range options {
		if strings.EqualFold(o, s) {
			return o
		}
	}
	return s
}
