package payload

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bytedance/sonic"
	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/tbxark/bureaubot/answer"
	"github.com/tbxark/bureaubot/form"
	"github.com/tbxark/bureaubot/llm"
	"github.com/tbxark/bureaubot/plan"
	"github.com/tbxark/bureaubot/structured"
)

const DefaultSystemPrompt = "You are a form data processor. You map collected answers onto PDF form field names and reply with JSON only."

const mappingPromptTemplate = `TASK: Map the User Answers to the correct "name" from the Field Metadata of form %s.

Field Metadata:
%s

User Answers:
%s

RULES:
1. Return a SINGLE JSON object.
2. Keys must match the "name" field from the metadata EXACTLY.
3. Values must be the answer from the user.
4. Ignore fields that the user did not answer.
5. Output JSON only. No markdown, no explanations.`

// Request carries everything the builder needs for one form.
type Request struct {
	FormKey   string
	Fields    []form.Field
	Answers   map[string]answer.Value
	Questions map[string]plan.Question
}

// UserBlock renders stored answers as "name: value" lines in field order.
func (r Request) UserBlock() string {
	var lines []string
	for _, f := range r.Fields {
		v, ok := r.Answers[f.Name]
		if !ok || v.IsAbsent() {
			continue
		}
		lines = append(lines, f.Name+": "+v.Display())
	}
	return strings.Join(lines, "\n")
}

type metaEntry struct {
	Name    string   `json:"name"`
	Label   string   `json:"label,omitempty"`
	Type    string   `json:"type"`
	Options []string `json:"options,omitempty"`
}

func buildPrompt(system string) structured.PromptBuilder[Request] {
	return func(ctx context.Context, req Request) (*structured.Prompt, error) {
		entries := make([]metaEntry, 0, len(req.Fields))
		for _, f := range req.Fields {
			entries = append(entries, metaEntry{Name: f.Name, Label: f.DisplayLabel(), Type: string(f.Kind), Options: f.Options})
		}
		meta, err := sonic.ConfigStd.MarshalIndent(entries, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal field metadata: %w", err)
		}
		return &structured.Prompt{
			System: system,
			User:   fmt.Sprintf(mappingPromptTemplate, req.FormKey, meta, req.UserBlock()),
		}, nil
	}
}

// Builder produces the PDF fill payload for a form.
type Builder struct {
	chain *structured.Chain[Request, map[string]any]
}

type Option func(*options)

type options struct {
	system string
	policy llm.Policy
}

func WithSystemPrompt(prompt string) Option {
	return func(o *options) {
		o.system = prompt
	}
}

func WithPolicy(p llm.Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

func NewBuilder(delegate llm.Delegate, opts ...Option) (*Builder, error) {
	o := options{system: DefaultSystemPrompt, policy: llm.DefaultPolicy()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	chain, err := structured.NewChain[Request, map[string]any](delegate, buildPrompt(o.system), o.policy)
	if err != nil {
		return nil, err
	}
	return &Builder{chain: chain}, nil
}

// Build asks the delegate for a name→value mapping, then overlays the
// deterministic payload derived from stored answers. A delegate that fails
// or keeps replying garbage degrades to the deterministic payload alone.
func (b *Builder) Build(ctx context.Context, req Request) map[string]string {
	mapped := map[string]any{}
	out, err := b.chain.Invoke(ctx, req)
	switch {
	case err != nil:
		slog.Warn("Payload mapping failed, using stored answers only", "form_key", req.FormKey, "error", err)
	case *out != nil:
		mapped = *out
	}
	merged, err := Merge(mapped, Base(req.Fields, req.Answers, req.Questions))
	if err != nil {
		slog.Warn("Payload merge failed", "form_key", req.FormKey, "error", err)
		return Stringify(Base(req.Fields, req.Answers, req.Questions))
	}
	return Stringify(merged)
}

// Base is the payload derived without the delegate: every stored answer
// rendered as a widget value, and every duplicate field filled from its
// primary. Paired yes/no checkboxes receive complementary states.
func Base(fields []form.Field, answers map[string]answer.Value, questions map[string]plan.Question) map[string]any {
	out := map[string]any{}
	byName := form.Index(fields)
	for _, f := range fields {
		if v, ok := answers[f.Name]; ok && !v.IsAbsent() {
			out[f.Name] = answer.WidgetValue(v)
		}
	}
	for _, f := range fields {
		q, ok := questions[f.Name]
		if !ok || !q.Duplicate || q.Primary == "" {
			continue
		}
		if _, answered := out[f.Name]; answered {
			continue
		}
		root := rootOf(questions, f.Name)
		v, ok := answers[root]
		if !ok || v.IsAbsent() {
			continue
		}
		primary := byName[root]
		out[f.Name] = inherited(primary, f, answer.WidgetValue(v))
	}
	return out
}

// rootOf follows Primary links to the field that is actually asked.
func rootOf(questions map[string]plan.Question, name string) string {
	for range len(questions) {
		q, ok := questions[name]
		if !ok || !q.Duplicate || q.Primary == "" || q.Primary == name {
			return name
		}
		name = q.Primary
	}
	return name
}

func inherited(primary, dup form.Field, value string) any {
	if !checkboxLike(primary) || !checkboxLike(dup) {
		return value
	}
	pSide, dSide := yesNoSide(primary), yesNoSide(dup)
	if pSide == "" || dSide == "" || pSide == dSide {
		return value
	}
	if value == "Yes" {
		return "Off"
	}
	if value == "Off" {
		return "Yes"
	}
	return value
}

func checkboxLike(f form.Field) bool {
	return f.Kind == form.KindCheckbox || f.Kind == form.KindYesNo
}

// yesNoSide reports whether a checkbox is the "yes" or the "no" box of a pair.
func yesNoSide(f form.Field) string {
	for _, s := range []string{f.Name, f.DisplayLabel()} {
		s = strings.ToLower(s)
		hasYes := containsWord(s, "yes")
		hasNo := containsWord(s, "no")
		switch {
		case hasYes && !hasNo:
			return "yes"
		case hasNo && !hasYes:
			return "no"
		}
	}
	return ""
}

func containsWord(s, word string) bool {
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		if tok == word {
			return true
		}
	}
	return false
}

// Merge applies base over mapped as an RFC 7396 merge patch, so stored
// answers win over the delegate's mapping.
func Merge(mapped, base map[string]any) (map[string]any, error) {
	doc, err := sonic.Marshal(mapped)
	if err != nil {
		return nil, fmt.Errorf("marshal mapped payload: %w", err)
	}
	patch, err := sonic.Marshal(base)
	if err != nil {
		return nil, fmt.Errorf("marshal base payload: %w", err)
	}
	merged, err := jsonpatch.MergePatch(doc, patch)
	if err != nil {
		return nil, fmt.Errorf("merge payload: %w", err)
	}
	out := map[string]any{}
	if err := sonic.Unmarshal(merged, &out); err != nil {
		return nil, fmt.Errorf("unmarshal merged payload: %w", err)
	}
	return out, nil
}

// Stringify flattens payload values to the strings a PDF filler consumes.
// Null and empty entries are dropped.
func Stringify(p map[string]any) map[string]string {
	out := make(map[string]string, len(p))
	for k, v := range p {
		if k == "" {
			continue
		}
		s := answer.WidgetValue(answer.ValueOf(v))
		if s == "" {
			continue
		}
		out[k] = s
	}
	return out
}
