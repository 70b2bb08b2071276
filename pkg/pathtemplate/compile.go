package pathtemplate

import "strings"

// Template is a compiled path template. It is immutable and safe for
// concurrent use.
type Template struct {
	source       string
	prefix       string
	segments     []Segment
	variables    []string
	aliases      map[string][]string
	keys         map[string]bool
	instantiator Instantiator
}

// Option configures compilation.
type Option func(*Template)

// WithInstantiator replaces the built-in placeholder substitution.
func WithInstantiator(in Instantiator) Option {
	return func(t *Template) {
		if in != nil {
			t.instantiator = in
		}
	}
}

// Compile parses and validates a template.
func Compile(template string, opts ...Option) (*Template, error) {
	switch {
	case template == "":
		return nil, structuralError(CodeEmptyTemplate, template, "template cannot be empty")
	case strings.HasPrefix(template, Separator+Separator):
		return nil, structuralError(CodeDoubleLeadingSeparator, template, "template cannot start with '//'")
	case strings.HasSuffix(template, Separator+Separator):
		return nil, structuralError(CodeDoubleTrailingSeparator, template, "template cannot end with '//'")
	case strings.HasSuffix(template, Separator):
		return nil, structuralError(CodeTrailingSeparator, template, "template cannot end with '/'")
	}

	t := &Template{
		source:       template,
		instantiator: defaultInstantiator,
	}

	body := template
	if strings.HasPrefix(template, Separator) {
		t.prefix = Separator
		body = template[len(Separator):]
	}

	segments, err := parseBody(template, body, len(t.prefix))
	if err != nil {
		return nil, err
	}
	t.segments = segments

	seen := make(map[string]bool)
	for _, s := range segments {
		if !s.Variable || seen[s.Text] {
			continue
		}
		if strings.Count(s.Text, ModifierMarker) > 1 {
			err := structuralError(CodeMultipleModifiers, template, "variable cannot contain two modifiers")
			err.Variable = s.Text
			return nil, err
		}
		seen[s.Text] = true
		t.variables = append(t.variables, s.Text)
	}

	t.aliases = groupAliases(t.variables)
	t.keys = bindingKeys(t.variables)

	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

// MustCompile is like Compile but panics if the template is invalid.
func MustCompile(template string, opts ...Option) *Template {
	t, err := Compile(template, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// groupAliases maps each canonical name to its repeat aliases in order of
// first appearance.
func groupAliases(variables []string) map[string][]string {
	groups := make(map[string][]string)
	seen := make(map[string]bool)

	for _, v := range variables {
		token := ParseToken(v)
		alias := token.Alias()
		if alias == "" || seen[alias] {
			continue
		}
		seen[alias] = true
		groups[token.Name] = append(groups[token.Name], alias)
	}

	return groups
}

// bindingKeys lists the caller keys a render can read: each token as
// written, the token without its modifier, and its canonical name.
func bindingKeys(variables []string) map[string]bool {
	keys := make(map[string]bool, len(variables)*3)
	for _, v := range variables {
		base, _, _ := strings.Cut(v, ModifierMarker)
		keys[v] = true
		keys[base] = true
		keys[ParseToken(v).Name] = true
	}
	return keys
}

// Source returns the template text Compile was given.
func (t *Template) Source() string {
	return t.source
}

// Prefix returns "/" when the template is rooted, "" otherwise.
func (t *Template) Prefix() string {
	return t.prefix
}

// Segments returns a copy of the body segments.
func (t *Template) Segments() []Segment {
	result := make([]Segment, len(t.segments))
	copy(result, t.segments)
	return result
}

// Variables returns the distinct placeholder tokens in order of appearance.
func (t *Template) Variables() []string {
	result := make([]string, len(t.variables))
	copy(result, t.variables)
	return result
}

// Aliases returns a copy of the repeat groups keyed by canonical name.
func (t *Template) Aliases() map[string][]string {
	result := make(map[string][]string, len(t.aliases))
	for name, group := range t.aliases {
		result[name] = append([]string(nil), group...)
	}
	return result
}

// String returns the template source.
func (t *Template) String() string {
	return t.source
}
