// Package bindings loads variable bindings for path templates from YAML or
// JSON files and from key=value assignments.
//
// A bindings file is a single flat mapping. Scalar values of any type are
// used in their textual form and null marks a variable as bound to nothing,
// which renders as an empty string:
//
//	org: Acme
//	id: 42
//	suffix: null
package bindings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	apperrors "github.com/conneroisu/pathtemplate/internal/errors"
)

// Bindings maps variable names to values. A nil value is an explicit null.
type Bindings map[string]*string

// FromStrings converts plain string values to Bindings.
func FromStrings(values map[string]string) Bindings {
	result := make(Bindings, len(values))
	for k, v := range values {
		result[k] = &v
	}
	return result
}

// Keys returns the bound names in sorted order.
func (b Bindings) Keys() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Strings returns the bindings with nulls replaced by "".
func (b Bindings) Strings() map[string]string {
	result := make(map[string]string, len(b))
	for k, v := range b {
		if v == nil {
			result[k] = ""
			continue
		}
		result[k] = *v
	}
	return result
}

// LoadFile reads a YAML or JSON bindings file.
func LoadFile(path string) (Bindings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.ErrFileNotFound(path, err)
		}
		return nil, apperrors.WrapIO(err, path, "reading bindings file")
	}

	b, err := Parse(data)
	if err != nil {
		var ae *apperrors.AppError
		if errors.As(err, &ae) {
			return nil, ae.WithFile(path)
		}
		return nil, err
	}

	return b, nil
}

// Parse decodes a flat YAML or JSON mapping.
func Parse(data []byte) (Bindings, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeBindings,
			apperrors.ErrCodeBindingsInvalid, "bindings are not valid YAML or JSON")
	}

	result := make(Bindings)

	// Empty input decodes to a zero node.
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return result, nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return result, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, apperrors.NewBindingsError(apperrors.ErrCodeBindingsInvalid,
			"bindings must be a mapping of names to values")
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]

		if key.Kind != yaml.ScalarNode || key.Value == "" {
			return nil, apperrors.NewBindingsError(apperrors.ErrCodeBindingsInvalid,
				fmt.Sprintf("invalid binding name at line %d", key.Line))
		}

		if value.Kind == yaml.AliasNode && value.Alias != nil {
			value = value.Alias
		}

		switch {
		case value.Kind == yaml.ScalarNode && value.Tag == "!!null":
			result[key.Value] = nil
		case value.Kind == yaml.ScalarNode:
			v := value.Value
			result[key.Value] = &v
		default:
			return nil, apperrors.NewBindingsError(apperrors.ErrCodeBindingsInvalid,
				fmt.Sprintf("binding %q must be a scalar (line %d)", key.Value, value.Line)).
				WithContext("variable", key.Value)
		}
	}

	return result, nil
}

// ParseAssignments parses name=value pairs. The value may be empty and may
// itself contain '='.
func ParseAssignments(assignments []string) (Bindings, error) {
	result := make(Bindings, len(assignments))
	for _, a := range assignments {
		name, value, ok := strings.Cut(a, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, apperrors.NewBindingsError(apperrors.ErrCodeBindingsInvalid,
				fmt.Sprintf("invalid assignment %q (expected name=value)", a))
		}
		result[name] = &value
	}
	return result, nil
}

// Merge combines layers in order. A name bound in a later layer replaces
// the earlier value, including when the later value is null.
func Merge(layers ...Bindings) Bindings {
	result := make(Bindings)
	for _, layer := range layers {
		for k, v := range layer {
			result[k] = v
		}
	}
	return result
}

// Expand resolves patterns relative to baseDir. Patterns with glob meta
// characters (including **) are expanded and sorted; plain paths are kept
// even when they do not exist so the caller can report them. Duplicates
// are dropped.
func Expand(patterns []string, baseDir string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, pattern := range patterns {
		resolved := resolvePath(baseDir, pattern)

		if !hasMeta(pattern) {
			add(resolved)
			continue
		}

		matches, err := doublestar.FilepathGlob(resolved)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrorTypeConfig,
				apperrors.ErrCodeConfigInvalid, fmt.Sprintf("expanding pattern %q", pattern))
		}
		sort.Strings(matches)
		for _, m := range matches {
			add(m)
		}
	}

	return paths, nil
}

// LoadAll expands patterns and merges every file in order.
func LoadAll(patterns []string, baseDir string) (Bindings, error) {
	paths, err := Expand(patterns, baseDir)
	if err != nil {
		return nil, err
	}

	layers := make([]Bindings, 0, len(paths))
	for _, p := range paths {
		b, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		layers = append(layers, b)
	}

	return Merge(layers...), nil
}

func resolvePath(baseDir, path string) string {
	if baseDir == "" || filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(baseDir, path)
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
