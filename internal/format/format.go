// Package format provides the named text formatters a comments field can
// list. Formatters run in the order the field lists them.
package format

import (
	"html"
	"maps"
	"slices"
	"strings"

	"github.com/mesh-intelligence/commentary/pkg/types"
)

// Formatter names.
const (
	NameMarkdown   = "markdown"
	NameEntities   = "entities"
	NameLineBreaks = "linebreaks"
)

// Func adapts a plain string transform to types.TextFormatter.
type Func func(v string) string

func (f Func) Format(_ types.Page, _ types.Field, v string) string {
	return f(v)
}

// Entities escapes HTML entities.
var Entities = Func(html.EscapeString)

// LineBreaks turns blank lines into paragraph breaks and single newlines
// into <br />.
var LineBreaks = Func(func(v string) string {
	v = strings.ReplaceAll(v, "\n\n", "</p><p>")
	return strings.ReplaceAll(v, "\n", "<br />")
})

// Registry returns a fresh set of all built-in formatters keyed by name,
// ready for types.Services.Formatters.
func Registry() map[string]types.TextFormatter {
	return map[string]types.TextFormatter{
		NameMarkdown:   NewMarkdown(),
		NameEntities:   Entities,
		NameLineBreaks: LineBreaks,
	}
}

// Names returns the built-in formatter names in sorted order.
func Names() []string {
	return slices.Sorted(maps.Keys(Registry()))
}

// Unknown returns the names not in the registry, in input order.
func Unknown(names []string) []string {
	reg := Registry()
	var out []string
	for _, n := range names {
		if _, ok := reg[n]; !ok {
			out = append(out, n)
		}
	}
	return out
}
