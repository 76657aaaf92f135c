package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// ParseFields decodes raw form metadata into field descriptors. The payload
// is either a JSON array of field objects or an object with a "fields" array.
// Entries that are not objects or have no name are skipped.
func ParseFields(data []byte) ([]Field, error) {
	var raw any
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode field metadata: %w", err)
	}
	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case map[string]any:
		list, _ := v["fields"].([]any)
		items = list
	default:
		return nil, fmt.Errorf("unexpected field metadata type %T", raw)
	}
	fields := make([]Field, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		f, ok := parseField(m)
		if !ok {
			continue
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// Finalize derives the classification attributes of a field. ParseFields
// calls it for every entry; callers constructing fields by hand should too.
func Finalize(f Field) Field {
	f.Kind = Classify(f)
	f.OfficerOnly = IsOfficerOnly(f)
	f.IfApplicable = HasIfApplicable(f)
	if !f.Kind.HasOptions() {
		f.Options = nil
	}
	return f
}

func parseField(m map[string]any) (Field, bool) {
	name := strings.TrimSpace(stringOf(m, "name"))
	if name == "" {
		return Field{}, false
	}
	f := Field{
		Name:             name,
		Label:            stringOf(m, "label"),
		PDFLabel:         stringOf(m, "pdf_label"),
		Title:            stringOf(m, "title"),
		Question:         stringOf(m, "question"),
		Description:      stringOf(m, "description", "desc"),
		TypeHint:         stringOf(m, "type", "field_type", "kind"),
		Options:          optionsOf(m),
		Group:            stringOf(m, "group", "group_id"),
		Page:             pageOf(m),
		Rect:             rectOf(m),
		IfApplicableFlag: boolOf(m["if_applicable"]),
	}
	return Finalize(f), true
}

func stringOf(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func optionsOf(m map[string]any) []string {
	for _, k := range []string{"options", "choices"} {
		list, ok := m[k].([]any)
		if !ok || len(list) == 0 {
			continue
		}
		out := make([]string, 0, len(list))
		for _, item := range list {
			switch v := item.(type) {
			case string:
				out = append(out, v)
			case float64:
				out = append(out, strconv.FormatFloat(v, 'f', -1, 64))
			case bool:
				out = append(out, strconv.FormatBool(v))
			case map[string]any:
				if s := stringOf(v, "value", "label", "name"); s != "" {
					out = append(out, s)
				}
			}
		}
		return out
	}
	return nil
}

func pageOf(m map[string]any) int {
	if n, ok := numberOf(m["page"]); ok && n >= 1 {
		return int(n)
	}
	if n, ok := numberOf(m["page_index"]); ok && n >= 0 {
		return int(n) + 1
	}
	return 0
}

func rectOf(m map[string]any) *Rect {
	for _, k := range []string{"rect", "bbox"} {
		list, ok := m[k].([]any)
		if !ok || len(list) != 4 {
			continue
		}
		var vals [4]float64
		valid := true
		for i, item := range list {
			n, ok := numberOf(item)
			if !ok {
				valid = false
				break
			}
			vals[i] = n
		}
		if valid {
			return &Rect{X0: vals[0], Y0: vals[1], X1: vals[2], Y1: vals[3]}
		}
	}
	x, okX := numberOf(m["x"])
	y, okY := numberOf(m["y"])
	if !okX || !okY {
		return nil
	}
	w, _ := numberOf(m["w"])
	h, _ := numberOf(m["h"])
	return &Rect{X0: x, Y0: y, X1: x + w, Y1: y + h}
}

func numberOf(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func boolOf(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		ok, _ := strconv.ParseBool(strings.TrimSpace(b))
		return ok
	case float64:
		return b != 0
	}
	return false
}
