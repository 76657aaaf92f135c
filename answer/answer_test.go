package answer

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbxark/bureaubot/form"
	"github.com/tbxark/bureaubot/plan"
)

func testFields(t *testing.T) []form.Field {
	t.Helper()
	fs, err := form.ParseFields([]byte(`[
		{"name":"Detained Yes","type":"checkbox"},
		{"name":"relief","type":"checkbox","options":["Asylum","Withholding"]},
		{"name":"color","type":"radio","options":["Blue","Brown"]},
		{"name":"middle","label":"Middle name (if applicable)"},
		{"name":"sig","label":"Signature of authorized officer"},
		{"name":"5a","type":"checkbox"},
		{"name":"family"}
	]`))
	require.NoError(t, err)
	return fs
}

func TestNormalize(t *testing.T) {
	t.Parallel()
	fs := testFields(t)
	got := Normalize(map[string]any{
		"Detained Yes": "YES",
		"relief":       []any{" Asylum ", "CAT", nil, "Asylum"},
		"color":        "Green",
		"middle":       "Not Applicable",
		"sig":          "J. Officer",
		"family":       "  Doe ",
		"unknown_key":  "kept as is ",
	}, fs)

	assert.Equal(t, Bool(true), got["Detained Yes"])
	assert.Equal(t, List([]string{"Asylum", "Asylum"}), got["relief"])
	assert.True(t, got["color"].IsAbsent())
	assert.True(t, got["middle"].IsAbsent())
	assert.NotContains(t, got, "sig")
	assert.Equal(t, Text("Doe"), got["family"])
	assert.Equal(t, Text("kept as is "), got["unknown_key"])
}

func TestNormalizeYesNoInputs(t *testing.T) {
	t.Parallel()
	fs := testFields(t)
	assert.Equal(t, Bool(false), Normalize(map[string]any{"Detained Yes": "n"}, fs)["Detained Yes"])
	assert.Equal(t, Bool(true), Normalize(map[string]any{"Detained Yes": true}, fs)["Detained Yes"])
	assert.True(t, Normalize(map[string]any{"Detained Yes": "maybe"}, fs)["Detained Yes"].IsAbsent())
	assert.True(t, Normalize(map[string]any{"Detained Yes": 1.0}, fs)["Detained Yes"].IsAbsent())
	assert.True(t, Normalize(map[string]any{"family": nil}, fs)["family"].IsAbsent())
}

func TestNormalizeNotApplicableOnlyWhenAllowed(t *testing.T) {
	t.Parallel()
	fs := testFields(t)
	for _, na := range []string{"n/a", "NA", "Not applicable"} {
		assert.True(t, Normalize(map[string]any{"middle": na}, fs)["middle"].IsAbsent(), na)
	}
	assert.Equal(t, Text("n/a"), Normalize(map[string]any{"family": "n/a"}, fs)["family"])
}

func TestNormalizePlannedAnswersMatchKinds(t *testing.T) {
	t.Parallel()
	fs := testFields(t)
	raw := map[string]any{}
	for _, e := range plan.Plan(fs) {
		switch e.Kind {
		case form.KindYesNo:
			raw[e.Name] = "yes"
		case form.KindMultiCheck:
			raw[e.Name] = []any{e.Options[0]}
		case form.KindRadio:
			raw[e.Name] = e.Options[1]
		default:
			raw[e.Name] = "value"
		}
	}
	got := Normalize(raw, fs)
	_, isBool := got["Detained Yes"].AsBool()
	assert.True(t, isBool)
	l, isList := got["relief"].AsList()
	assert.True(t, isList)
	assert.Equal(t, []string{"Asylum"}, l)
	assert.Equal(t, Text("Brown"), got["color"])
	assert.NotContains(t, got, "sig")
}

func TestConvertCheckboxWidgetStates(t *testing.T) {
	t.Parallel()
	f := form.Finalize(form.Field{Name: "5a", TypeHint: "checkbox"})
	assert.Equal(t, "Off", WidgetValue(Convert(f, "no")))
	assert.Equal(t, "Yes", WidgetValue(Convert(f, "yes")))
	assert.Equal(t, "Yes", WidgetValue(Convert(f, "Y")))
	assert.Equal(t, "checked", WidgetValue(Convert(f, " checked ")))
}

func TestConvertChoices(t *testing.T) {
	t.Parallel()
	fs := form.Index(testFields(t))
	assert.Equal(t, Text("Blue"), Convert(fs["color"], "blue"))
	assert.True(t, Convert(fs["color"], "green").IsAbsent())
	assert.Equal(t, List([]string{"Asylum", "Withholding"}), Convert(fs["relief"], "asylum, withholding, other"))
	assert.True(t, Convert(fs["relief"], "other").IsAbsent())
	assert.Equal(t, "Off", WidgetValue(Convert(fs["Detained Yes"], "no")))
	assert.True(t, Convert(fs["middle"], "N/A").IsAbsent())
	assert.Equal(t, Text("Jane"), Convert(fs["family"], " Jane "))
}

func TestValueJSON(t *testing.T) {
	t.Parallel()
	in := map[string]Value{"a": Bool(true), "b": Text(""), "c": List([]string{"x"}), "d": Absent()}
	data, err := sonic.Marshal(in)
	require.NoError(t, err)
	var out map[string]Value
	require.NoError(t, sonic.Unmarshal(data, &out))
	assert.Equal(t, in, out)
	s, isText := out["b"].AsText()
	assert.True(t, isText)
	assert.Equal(t, "", s)
}

func TestValueOfNumbers(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "123456789", WidgetValue(ValueOf(float64(123456789))))
	assert.Equal(t, "2.5", WidgetValue(ValueOf(2.5)))
	list, ok := ValueOf([]any{float64(12), "x"}).AsList()
	require.True(t, ok)
	assert.Equal(t, []string{"12", "x"}, list)
}
