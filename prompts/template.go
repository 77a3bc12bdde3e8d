package prompts

import (
	"sort"
	"strings"
)

// Template is a named prompt with {{placeholder}} tokens.
type Template struct {
	Name string
	Text string
}

// Render substitutes every occurrence of each {{key}} in the template with
// its value. Placeholders without a value are left intact. Values are not
// rescanned, so a value containing a placeholder is inserted verbatim.
func (t Template) Render(vars map[string]string) string {
	if len(vars) == 0 {
		return t.Text
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(vars)*2)
	for _, k := range keys {
		pairs = append(pairs, "{{"+k+"}}", vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(t.Text)
}

// Placeholders returns the distinct placeholder names in the template, in
// order of first appearance.
func (t Template) Placeholders() []string {
	var names []string
	seen := make(map[string]bool)

	rest := t.Text
	for {
		start := strings.Index(rest, "{{")
		if start < 0 {
			return names
		}
		end := strings.Index(rest[start+2:], "}}")
		if end < 0 {
			return names
		}
		name := rest[start+2 : start+2+end]
		if name != "" && !strings.ContainsAny(name, "{} \n") && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		rest = rest[start+2+end+2:]
	}
}
