package pathtemplate

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// Separator is the path separator recognised by templates.
	Separator = "/"

	// ModifierMarker introduces a modifier suffix inside a placeholder.
	ModifierMarker = "?"

	// RepeatMarker introduces an alias tag inside a placeholder.
	RepeatMarker = "#"

	// slashEscape stands in for a separator inside a slashok value until
	// the whole path has been assembled.
	slashEscape = "\uE000"

	// emptySentinel marks an empty emptycollapse value.
	emptySentinel = "\uE001"
)

// Modifier is a named value transformation usable as {name?suffix}.
type Modifier struct {
	Suffix string
	// MinLength is the rune count below which Pre is skipped.
	MinLength int
	Pre       func(string) string
	// Post, when set, rewrites the entire rendered path once per render.
	Post func(string) string
}

// Apply runs the pre-transform under the minimum length guard.
func (m Modifier) Apply(value string) string {
	if m.Pre == nil || utf8.RuneCountInString(value) < m.MinLength {
		return value
	}

	return m.Pre(value)
}

// registry is iterated in this order for post-transforms.
var registry = []Modifier{
	{Suffix: "uc", MinLength: 0, Pre: upper},
	{Suffix: "lc", MinLength: 0, Pre: lower},
	{Suffix: "ucfirst", MinLength: 1, Pre: mapFirst(upper)},
	{Suffix: "lcfirst", MinLength: 1, Pre: mapFirst(lower)},
	{
		Suffix:    "slashok",
		MinLength: 0,
		Pre: func(s string) string {
			return strings.ReplaceAll(s, Separator, slashEscape)
		},
		Post: func(s string) string {
			return strings.ReplaceAll(s, slashEscape, Separator)
		},
	},
	{
		Suffix:    "emptycollapse",
		MinLength: 0,
		Pre: func(s string) string {
			if s == "" {
				return emptySentinel
			}
			return s
		},
		Post: collapseEmpty,
	},
}

var registryIndex = func() map[string]int {
	index := make(map[string]int, len(registry))
	for i, m := range registry {
		index[m.Suffix] = i
	}
	return index
}()

// Modifiers returns the registered modifiers in application order.
func Modifiers() []Modifier {
	result := make([]Modifier, len(registry))
	copy(result, registry)
	return result
}

// LookupModifier returns the modifier registered under suffix.
func LookupModifier(suffix string) (Modifier, bool) {
	i, ok := registryIndex[suffix]
	if !ok {
		return Modifier{}, false
	}
	return registry[i], true
}

// Casers carry state, so each call builds its own.
func upper(s string) string {
	return cases.Upper(language.Und).String(s)
}

func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

func mapFirst(fn func(string) string) func(string) string {
	return func(s string) string {
		_, size := utf8.DecodeRuneInString(s)
		return fn(s[:size]) + s[size:]
	}
}

// collapseEmpty drops empty segments marked by emptycollapse. A sentinel
// with no separator after it, at the end of the path or before other text
// such as ".json", is dropped alone.
func collapseEmpty(s string) string {
	s = strings.ReplaceAll(s, emptySentinel+Separator, "")
	return strings.ReplaceAll(s, emptySentinel, "")
}

func containsMarker(s string) bool {
	return strings.Contains(s, slashEscape) || strings.Contains(s, emptySentinel)
}
