package pdffill

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/tbxark/bureaubot/form"
	"github.com/tbxark/bureaubot/metadata"
)

// PDFCPUFiller fills AcroForm widgets with pdfcpu. When no widget matches
// the payload, or the form fill fails, it stamps "name: value" text onto a
// copy of the template instead.
type PDFCPUFiller struct {
	store  metadata.Store
	outDir string
	namer  Namer
}

type Option func(*PDFCPUFiller)

func WithNamer(n Namer) Option {
	return func(f *PDFCPUFiller) {
		f.namer = n
	}
}

func NewPDFCPUFiller(store metadata.Store, outDir string, opts ...Option) *PDFCPUFiller {
	f := &PDFCPUFiller{store: store, outDir: outDir}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

func (f *PDFCPUFiller) Fill(ctx context.Context, formKey string, payload map[string]string) (*Result, error) {
	template, ok := f.store.Template(formKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, formKey)
	}
	if err := os.MkdirAll(f.outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	out := filepath.Join(f.outDir, f.namer.Name(formKey))
	slog.Debug("Filling PDF", "form_key", formKey, "template", template, "payload_keys", len(payload))

	matched, err := f.fillWidgets(template, out, payload)
	if err != nil {
		slog.Warn("Form fill failed, falling back to overlay", "form_key", formKey, "error", err)
		matched = 0
	}
	if matched > 0 {
		return &Result{Path: out, Matched: matched}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := copyFile(template, out); err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		return &Result{Path: out}, nil
	}
	slog.Warn("No widgets matched payload, overlaying text", "form_key", formKey)
	fields, err := f.store.Fields(ctx, formKey)
	if err != nil {
		fields = nil
	}
	for _, s := range Layout(fields, payload) {
		if err := api.AddTextWatermarksFile(out, "", []string{fmt.Sprint(s.Page)}, true, s.Text, s.Desc, nil); err != nil {
			return nil, fmt.Errorf("stamp overlay text: %w", err)
		}
	}
	return &Result{Path: out, Overlay: true}, nil
}

func (f *PDFCPUFiller) fillWidgets(template, out string, payload map[string]string) (int, error) {
	if len(payload) == 0 {
		return 0, nil
	}
	tmp, err := os.MkdirTemp("", "bureaubot-fill-*")
	if err != nil {
		return 0, err
	}
	defer os.RemoveAll(tmp)

	exportPath := filepath.Join(tmp, "export.json")
	if err := api.ExportFormFile(template, exportPath, nil); err != nil {
		return 0, fmt.Errorf("export form fields: %w", err)
	}
	data, err := os.ReadFile(exportPath)
	if err != nil {
		return 0, err
	}
	var doc formDocument
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("decode form export: %w", err)
	}
	matched := doc.Apply(payload)
	if matched == 0 {
		return 0, nil
	}
	body, err := sonic.Marshal(doc)
	if err != nil {
		return 0, err
	}
	fillPath := filepath.Join(tmp, "fill.json")
	if err := os.WriteFile(fillPath, body, 0o600); err != nil {
		return 0, err
	}
	if err := api.FillFormFile(template, fillPath, out, nil); err != nil {
		return 0, fmt.Errorf("fill form: %w", err)
	}
	return matched, nil
}

// formDocument is pdfcpu's form JSON: a list of forms, each grouping widget
// entries by kind (textfield, checkbox, radiobuttongroup, ...). Entries are
// kept as raw maps so that attributes this package does not touch survive
// the round trip.
type formDocument struct {
	Header map[string]any                `json:"header,omitempty"`
	Forms  []map[string][]map[string]any `json:"forms"`
}

// Apply writes payload values into matching widgets and returns how many
// widgets were set. A widget matches a payload key equal to its name, or
// failing that the longest key contained in its name.
func (d *formDocument) Apply(payload map[string]string) int {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	matched := 0
	for _, group := range d.Forms {
		for kind, widgets := range group {
			for _, w := range widgets {
				if locked, _ := w["locked"].(bool); locked {
					continue
				}
				name, _ := w["name"].(string)
				value, ok := lookup(payload, keys, strings.TrimSpace(name))
				if !ok {
					continue
				}
				switch kind {
				case "checkbox":
					w["value"] = CheckboxState(value)
				case "listbox":
					w["values"] = []string{value}
				default:
					w["value"] = value
				}
				matched++
			}
		}
	}
	return matched
}

func lookup(payload map[string]string, keys []string, name string) (string, bool) {
	if name == "" {
		return "", false
	}
	if v, ok := payload[name]; ok {
		return v, true
	}
	for _, k := range keys {
		if strings.Contains(name, k) {
			return payload[k], true
		}
	}
	return "", false
}

// Stamp is one text watermark placed on a page.
type Stamp struct {
	Page int
	Text string
	Desc string
}

const (
	blockDesc   = "font:Helvetica, points:10, pos:tl, off:72 -72, scale:1 abs, rot:0"
	fieldDescFm = "font:Helvetica, points:9, pos:bl, off:%.1f %.1f, scale:1 abs, rot:0"
)

// Layout places payload values at their widget rectangles when the metadata
// has geometry and collects the rest as "name: value" lines in one block at
// the top of page 1.
func Layout(fields []form.Field, payload map[string]string) []Stamp {
	var stamps []Stamp
	placed := map[string]bool{}
	for _, f := range fields {
		v, ok := payload[f.Name]
		if !ok || f.Rect == nil || placed[f.Name] {
			continue
		}
		placed[f.Name] = true
		stamps = append(stamps, Stamp{
			Page: max(f.Page, 1),
			Text: v,
			Desc: fmt.Sprintf(fieldDescFm, f.Rect.X0+2, f.Rect.Y0+2),
		})
	}

	var rest []string
	for _, f := range fields {
		if v, ok := payload[f.Name]; ok && !placed[f.Name] {
			placed[f.Name] = true
			rest = append(rest, f.Name+": "+v)
		}
	}
	var unknown []string
	for k := range payload {
		if !placed[k] {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		rest = append(rest, k+": "+payload[k])
	}
	if len(rest) > 0 {
		stamps = append(stamps, Stamp{Page: 1, Text: strings.Join(rest, "\n"), Desc: blockDesc})
	}
	return stamps
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open template: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy template: %w", err)
	}
	return out.Close()
}

var _ Filler = (*PDFCPUFiller)(nil)
