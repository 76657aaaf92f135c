package catalog

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

type Entry struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

// Catalog maps canonical form keys to their titles, in reference file order.
// It is read-only once loaded and safe for concurrent use.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

func New(entries ...Entry) *Catalog {
	c := &Catalog{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		c.add(e.Key, e.Title)
	}
	return c
}

func (c *Catalog) add(key, title string) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return
	}
	if i, ok := c.index[key]; ok {
		c.entries[i].Title = title
		return
	}
	c.index[key] = len(c.entries)
	c.entries = append(c.entries, Entry{Key: key, Title: title})
}

// Parse reads "key: title" lines. Lines without a colon are ignored and
// keys are lowercased.
func Parse(r io.Reader) (*Catalog, error) {
	c := New()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		key, title, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		c.add(key, strings.TrimSpace(title))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read reference catalog: %w", err)
	}
	return c, nil
}

func (c *Catalog) Contains(key string) bool {
	if c == nil {
		return false
	}
	_, ok := c.index[strings.ToLower(key)]
	return ok
}

// Title returns the title for key, or "" when the key is unknown.
func (c *Catalog) Title(key string) string {
	if c == nil {
		return ""
	}
	if i, ok := c.index[strings.ToLower(key)]; ok {
		return c.entries[i].Title
	}
	return ""
}

func (c *Catalog) Entries() []Entry {
	if c == nil {
		return nil
	}
	return append([]Entry(nil), c.entries...)
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// PromptList renders the catalog as "- key: title" lines for prompts.
func (c *Catalog) PromptList() string {
	var sb strings.Builder
	for i, e := range c.Entries() {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "- %s: %s", e.Key, e.Title)
	}
	return sb.String()
}
