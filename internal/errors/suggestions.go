package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/conneroisu/pathtemplate/pkg/pathtemplate"
)

// maxSuggestionDistance bounds how far a misspelt modifier may be from a
// registered one to still be suggested.
const maxSuggestionDistance = 3

// SuggestionsFor returns hints for fixing err. It returns nil when err did
// not come from template compilation or rendering.
func SuggestionsFor(err error) []string {
	var perr *pathtemplate.Error
	if !errors.As(err, &perr) {
		var ae *AppError
		if errors.As(err, &ae) && ae.Code == ErrCodeTemplateNotFound {
			return []string{"run 'pathtemplate validate' to list the configured templates"}
		}
		return nil
	}

	switch perr.Code {
	case pathtemplate.CodeTrailingSeparator, pathtemplate.CodeDoubleTrailingSeparator:
		return []string{"remove the trailing '/' from the template"}
	case pathtemplate.CodeDoubleLeadingSeparator:
		return []string{"start the template with a single '/' or none"}
	case pathtemplate.CodeMultipleModifiers:
		token := pathtemplate.ParseToken(perr.Variable)
		return []string{fmt.Sprintf(
			"a placeholder takes one modifier; repeat the variable instead, e.g. {%s#%s?%s}",
			token.Name, "again", firstModifier(token.Modifier))}
	case pathtemplate.CodeMalformedPlaceholder:
		return []string{"placeholders are written {name}, {name?modifier} or {name#tag}"}
	case pathtemplate.CodeSeparatorInValue:
		return []string{fmt.Sprintf("use {%s?slashok} to allow '/' inside the value", baseName(perr.Variable))}
	case pathtemplate.CodeUnboundVariable:
		return unboundSuggestions(perr.Variable)
	case pathtemplate.CodeReservedCharacter:
		return []string{"remove private-use characters U+E000 and U+E001 from the value"}
	case pathtemplate.CodeNilBindings:
		return []string{"pass an empty map instead of nil when no values are needed"}
	}

	return nil
}

func unboundSuggestions(variable string) []string {
	token := pathtemplate.ParseToken(variable)

	if token.Modifier != "" {
		if _, ok := pathtemplate.LookupModifier(token.Modifier); !ok {
			if closest := ClosestModifier(token.Modifier); closest != "" {
				return []string{fmt.Sprintf("unknown modifier %q, did you mean %q?", token.Modifier, closest)}
			}
			return []string{fmt.Sprintf("unknown modifier %q, available: %s", token.Modifier, modifierList())}
		}
	}

	return []string{fmt.Sprintf("supply a value with --set %s=VALUE", token.Name)}
}

// ClosestModifier returns the registered suffix nearest to suffix, or ""
// when none is close enough.
func ClosestModifier(suffix string) string {
	best, bestDistance := "", maxSuggestionDistance+1
	for _, m := range pathtemplate.Modifiers() {
		d := levenshtein.ComputeDistance(strings.ToLower(suffix), m.Suffix)
		if d < bestDistance {
			best, bestDistance = m.Suffix, d
		}
	}

	return best
}

func modifierList() string {
	var names []string
	for _, m := range pathtemplate.Modifiers() {
		names = append(names, m.Suffix)
	}
	return strings.Join(names, ", ")
}

func firstModifier(modifiers string) string {
	first, _, _ := strings.Cut(modifiers, pathtemplate.ModifierMarker)
	return first
}

// baseName strips the modifier from a raw placeholder token.
func baseName(variable string) string {
	token := pathtemplate.ParseToken(variable)
	if alias := token.Alias(); alias != "" {
		return alias
	}
	return token.Name
}
