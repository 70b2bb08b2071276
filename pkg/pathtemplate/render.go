package pathtemplate

import "errors"

// Render substitutes variables into the template. Missing or empty values
// render as empty segments; every placeholder still needs a key.
func (t *Template) Render(variables map[string]string) (string, error) {
	if variables == nil {
		return "", structuralError(CodeNilBindings, t.source, "variables must not be nil")
	}

	optional := make(map[string]*string, len(variables))
	for key, value := range variables {
		optional[key] = &value
	}

	return t.RenderOptional(optional)
}

// RenderOptional is like Render but accepts nil values, which are treated
// as empty strings.
func (t *Template) RenderOptional(variables map[string]*string) (string, error) {
	bindings, err := t.resolve(variables)
	if err != nil {
		return "", err
	}

	body, err := t.instantiator.Instantiate(t.Segments(), bindings)
	if err != nil {
		return "", t.wrapInstantiateError(err)
	}

	result := t.prefix + body
	for _, m := range registry {
		if m.Post != nil {
			result = m.Post(result)
		}
	}

	return result, nil
}

func (t *Template) wrapInstantiateError(err error) error {
	var perr *Error
	if errors.As(err, &perr) {
		if perr.Template == "" {
			clone := *perr
			clone.Template = t.source
			return &clone
		}
		return perr
	}

	return &Error{
		Kind:     KindBindings,
		Code:     CodeInvalidBindings,
		Message:  "invalid bindings",
		Template: t.source,
		Offset:   -1,
		Cause:    err,
	}
}

// Render compiles template and renders it once.
func Render(template string, variables map[string]string) (string, error) {
	t, err := Compile(template)
	if err != nil {
		return "", err
	}
	return t.Render(variables)
}

// RenderOptional compiles template and renders it once with nullable values.
func RenderOptional(template string, variables map[string]*string) (string, error) {
	t, err := Compile(template)
	if err != nil {
		return "", err
	}
	return t.RenderOptional(variables)
}
