package catalog

import (
	"regexp"
	"strings"
)

// Alias maps a short token found in user text to a canonical key.
type Alias struct {
	Token string
	Key   string
}

// DefaultAliases are consulted in order; the first alias whose token occurs
// in the normalized input and whose key is catalogued wins.
var DefaultAliases = []Alias{
	{"ar11", "uscis_form_ar11"},
	{"i246", "ice_form_i246"},
	{"i589", "uscis_form_i589"},
	{"i129", "uscis_form_i129"},
	{"26", "eoir_form_26"},
	{"42", "eoir_form_42"},
	{"1300", "cbp_form_1300"},
	{"h1b", "uscis_form_i129"},
	{"f1", "uscis_form_i129"},
}

var agencyPattern = regexp.MustCompile(`\b(eoir|cbp|uscis|ice)[\s_-]*(form)?[\s_-]*([a-z]?\d+[a-z]?)\b`)

type Resolver struct {
	catalog *Catalog
	aliases []Alias
}

func NewResolver(c *Catalog, aliases ...Alias) *Resolver {
	if len(aliases) == 0 {
		aliases = DefaultAliases
	}
	return &Resolver{catalog: c, aliases: aliases}
}

// Normalize lowercases text and drops spaces and hyphens, so "I-589" and
// "i 589" both become "i589".
func Normalize(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.NewReplacer("-", "", " ", "").Replace(s)
	return strings.ReplaceAll(s, "formeoir", "eoirform")
}

// Resolve maps a free-text form reference to a catalogued key. It returns
// false when nothing matches so that callers ask for clarification.
func (r *Resolver) Resolve(text string) (string, bool) {
	s := Normalize(text)
	if s == "" {
		return "", false
	}
	for _, a := range r.aliases {
		if strings.Contains(s, a.Token) && r.catalog.Contains(a.Key) {
			return a.Key, true
		}
	}
	if m := agencyPattern.FindStringSubmatch(s); m != nil {
		candidate := m[1] + "_form_" + m[3]
		if r.catalog.Contains(candidate) {
			return candidate, true
		}
	}
	tokens := map[string]struct{}{}
	for _, t := range strings.Fields(s) {
		tokens[t] = struct{}{}
	}
	for _, e := range r.catalog.Entries() {
		for _, part := range strings.Split(e.Key, "_") {
			if _, ok := tokens[part]; ok {
				return e.Key, true
			}
		}
	}
	return "", false
}
