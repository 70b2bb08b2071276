package pathtemplate

import "strings"

// Segment is one piece of a compiled template body.
type Segment struct {
	// Text is the literal text, or the raw token for a variable.
	Text     string
	Variable bool
}

// Token is the parsed form of a placeholder such as "name#tag?suffix".
type Token struct {
	Raw      string
	Name     string
	Tag      string
	Modifier string
}

// ParseToken splits a raw placeholder into its parts. It does not validate.
func ParseToken(raw string) Token {
	t := Token{Raw: raw}

	base := raw
	if i := strings.Index(raw, ModifierMarker); i >= 0 {
		base = raw[:i]
		t.Modifier = raw[i+len(ModifierMarker):]
	}

	t.Name = base
	if i := strings.Index(base, RepeatMarker); i >= 0 {
		t.Name = base[:i]
		t.Tag = base[i+len(RepeatMarker):]
	}

	return t
}

// Alias returns the token without its modifier when the token repeats
// another variable, and "" otherwise.
func (t Token) Alias() string {
	base, _, _ := strings.Cut(t.Raw, ModifierMarker)
	if !strings.Contains(base, RepeatMarker) {
		return ""
	}
	return base
}

// parseBody splits a template body into literal and variable segments.
func parseBody(template, body string, offset int) ([]Segment, error) {
	var segments []Segment
	var literal strings.Builder

	flush := func() {
		if literal.Len() > 0 {
			segments = append(segments, Segment{Text: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '{':
			end := strings.IndexAny(body[i+1:], "{}")
			if end < 0 || body[i+1+end] == '{' {
				return nil, malformed(template, offset+i, "unterminated placeholder")
			}
			raw := body[i+1 : i+1+end]
			if raw == "" {
				return nil, malformed(template, offset+i, "empty placeholder")
			}
			flush()
			segments = append(segments, Segment{Text: raw, Variable: true})
			i += end + 1
		case '}':
			return nil, malformed(template, offset+i, "unmatched closing brace")
		default:
			literal.WriteByte(body[i])
		}
	}
	flush()

	return segments, nil
}

func malformed(template string, offset int, message string) *Error {
	err := structuralError(CodeMalformedPlaceholder, template, message)
	err.Offset = offset
	return err
}
