package registry

import (
	"sort"

	"github.com/conneroisu/pathtemplate/pkg/pathtemplate"
)

// Dependents returns the names of templates that read the binding called
// variable, either directly or through a modifier or repeat alias.
func (r *TemplateRegistry) Dependents(variable string) []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var names []string
	for name, info := range r.templates {
		for _, binding := range BindingNames(info.Template) {
			if binding == variable {
				names = append(names, name)
				break
			}
		}
	}
	sort.Strings(names)
	return names
}

// DependencyGraph maps every binding name to the templates that read it.
func (r *TemplateRegistry) DependencyGraph() map[string][]string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	graph := make(map[string][]string)
	for name, info := range r.templates {
		for _, binding := range BindingNames(info.Template) {
			graph[binding] = append(graph[binding], name)
		}
	}
	for binding := range graph {
		sort.Strings(graph[binding])
	}
	return graph
}

// BindingNames returns the distinct names a caller has to bind for tmpl, in
// order of first appearance. Modifiers and repeat tags are stripped.
func BindingNames(tmpl *pathtemplate.Template) []string {
	if tmpl == nil {
		return nil
	}

	seen := make(map[string]bool)
	var names []string
	for _, v := range tmpl.Variables() {
		name := pathtemplate.ParseToken(v).Name
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
