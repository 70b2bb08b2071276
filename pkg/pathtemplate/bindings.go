package pathtemplate

// resolve expands caller values into the binding set used for substitution:
// null and empty values become "", repeat aliases receive their canonical
// value, and every key gains one "key?suffix" entry per modifier. Keys no
// token reads are not checked for reserved runes; one holding a marker is
// dropped.
func (t *Template) resolve(variables map[string]*string) (map[string]string, error) {
	if variables == nil {
		return nil, structuralError(CodeNilBindings, t.source, "variables must not be nil")
	}

	processed := make(map[string]string, len(variables))
	for key, value := range variables {
		if value == nil {
			processed[key] = ""
			continue
		}
		if containsMarker(*value) {
			if !t.keys[key] {
				continue
			}
			return nil, bindingsError(CodeReservedCharacter, key, "value contains a reserved private-use character")
		}
		processed[key] = *value
	}

	for key := range variables {
		for _, alias := range t.aliases[key] {
			processed[alias] = processed[key]
		}
	}

	expanded := make(map[string]string, len(processed)*(len(registry)+1))
	for key, value := range processed {
		expanded[key] = value
	}
	for key, value := range processed {
		for _, m := range registry {
			expanded[key+ModifierMarker+m.Suffix] = m.Apply(value)
		}
	}

	return expanded, nil
}
