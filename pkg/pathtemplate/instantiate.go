package pathtemplate

import "strings"

// Instantiator substitutes bound values into template segments. Variable
// segments must be looked up by their exact token text.
type Instantiator interface {
	Instantiate(segments []Segment, bindings map[string]string) (string, error)
}

// InstantiatorFunc adapts a function to the Instantiator interface.
type InstantiatorFunc func(segments []Segment, bindings map[string]string) (string, error)

// Instantiate calls f.
func (f InstantiatorFunc) Instantiate(segments []Segment, bindings map[string]string) (string, error) {
	return f(segments, bindings)
}

var defaultInstantiator Instantiator = InstantiatorFunc(substitute)

// substitute writes literals verbatim and values as bound. A value holding a
// separator is refused so it cannot split into extra path segments.
func substitute(segments []Segment, bindings map[string]string) (string, error) {
	var b strings.Builder

	for _, s := range segments {
		if !s.Variable {
			b.WriteString(s.Text)
			continue
		}

		value, ok := bindings[s.Text]
		if !ok {
			return "", bindingsError(CodeUnboundVariable, s.Text, "no value bound for variable")
		}
		if strings.Contains(value, Separator) {
			return "", bindingsError(CodeSeparatorInValue, s.Text,
				"value contains '/'; use the slashok modifier to keep separators")
		}
		b.WriteString(value)
	}

	return b.String(), nil
}
