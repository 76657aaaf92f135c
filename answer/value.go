package answer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

type valueKind uint8

const (
	kindAbsent valueKind = iota
	kindBool
	kindText
	kindList
)

// Value is a typed answer. The zero Value is the absent marker, which is
// distinct from an empty string.
type Value struct {
	kind valueKind
	b    bool
	s    string
	list []string
}

func Absent() Value            { return Value{} }
func Bool(b bool) Value        { return Value{kind: kindBool, b: b} }
func Text(s string) Value      { return Value{kind: kindText, s: s} }
func List(l []string) Value    { return Value{kind: kindList, list: append([]string{}, l...)} }
func (v Value) IsAbsent() bool { return v.kind == kindAbsent }

// AsBool returns the boolean payload and whether the value is a boolean.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == kindBool }

// AsText returns the string payload and whether the value is a string.
func (v Value) AsText() (string, bool) { return v.s, v.kind == kindText }

// AsList returns the list payload and whether the value is a list.
func (v Value) AsList() ([]string, bool) { return v.list, v.kind == kindList }

// Display renders the value for people.
func (v Value) Display() string {
	switch v.kind {
	case kindBool:
		if v.b {
			return "Yes"
		}
		return "No"
	case kindText:
		return v.s
	case kindList:
		return strings.Join(v.list, ", ")
	default:
		return ""
	}
}

// WidgetValue renders the value the way a PDF widget expects it: booleans
// become the checkbox states "Yes" and "Off".
func WidgetValue(v Value) string {
	if b, ok := v.AsBool(); ok {
		if b {
			return "Yes"
		}
		return "Off"
	}
	return v.Display()
}

// ValueOf wraps an arbitrary decoded JSON value without interpreting it.
func ValueOf(raw any) Value {
	switch x := raw.(type) {
	case nil:
		return Absent()
	case Value:
		return x
	case bool:
		return Bool(x)
	case string:
		return Text(x)
	case float64:
		return Text(strconv.FormatFloat(x, 'f', -1, 64))
	case []string:
		return List(x)
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if item == nil {
				continue
			}
			if f, ok := item.(float64); ok {
				out = append(out, strconv.FormatFloat(f, 'f', -1, 64))
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return List(out)
	default:
		return Text(fmt.Sprint(x))
	}
}

func (v Value) interfaceValue() any {
	switch v.kind {
	case kindBool:
		return v.b
	case kindText:
		return v.s
	case kindList:
		return v.list
	default:
		return nil
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(v.interfaceValue())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = ValueOf(raw)
	return nil
}
