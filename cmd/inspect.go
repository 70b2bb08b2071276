package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conneroisu/pathtemplate/internal/registry"
	"github.com/conneroisu/pathtemplate/pkg/pathtemplate"
)

var (
	inspectName   string
	inspectFormat string
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:     "inspect [template]",
	Aliases: []string{"i"},
	Short:   "Show how a template is parsed",
	Long: `Show the prefix, segments, variables and repeat groups of a template,
the names a caller has to bind to render it, and the configured templates
that read the same bindings.

Examples:
  pathtemplate inspect '{a?emptycollapse}/{b}/{a#again?uc}'
  pathtemplate inspect --name users --format yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspectCommand,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVarP(&inspectName, "name", "n", "", "Name of a template from the configuration file")
	addFormatFlag(inspectCmd, &inspectFormat)
}

type SegmentView struct {
	Text     string `json:"text" yaml:"text"`
	Variable bool   `json:"variable" yaml:"variable"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Tag      string `json:"tag,omitempty" yaml:"tag,omitempty"`
	Modifier string `json:"modifier,omitempty" yaml:"modifier,omitempty"`
}

type Inspection struct {
	Template  string              `json:"template,omitempty" yaml:"template,omitempty"`
	Source    string              `json:"source" yaml:"source"`
	Prefix    string              `json:"prefix" yaml:"prefix"`
	Segments  []SegmentView       `json:"segments" yaml:"segments"`
	Variables []string            `json:"variables" yaml:"variables"`
	Aliases   map[string][]string `json:"aliases" yaml:"aliases"`
	Bindings  []string            `json:"bindings" yaml:"bindings"`
	Shared    map[string][]string `json:"shared,omitempty" yaml:"shared,omitempty"`
}

func runInspectCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reg := registry.NewTemplateRegistry(appLogger)
	reg.Sync(cfg.Templates, nil)

	name, tmpl, err := resolveTemplate(cfg, reg, inspectName, args)
	if err != nil {
		return err
	}

	inspection := inspect(name, tmpl)
	inspection.Shared = sharedBindings(reg, name, inspection.Bindings)
	return writeOutput(cmd.OutOrStdout(), resolveFormat(inspectFormat, cfg), inspection, func(w io.Writer) error {
		return writeInspectionText(w, inspection)
	})
}

func inspect(name string, tmpl *pathtemplate.Template) Inspection {
	segments := tmpl.Segments()
	views := make([]SegmentView, 0, len(segments))
	for _, s := range segments {
		view := SegmentView{Text: s.Text, Variable: s.Variable}
		if s.Variable {
			token := pathtemplate.ParseToken(s.Text)
			view.Name, view.Tag, view.Modifier = token.Name, token.Tag, token.Modifier
		}
		views = append(views, view)
	}

	bindingNames := registry.BindingNames(tmpl)
	if bindingNames == nil {
		bindingNames = []string{}
	}

	return Inspection{
		Template:  name,
		Source:    tmpl.Source(),
		Prefix:    tmpl.Prefix(),
		Segments:  views,
		Variables: tmpl.Variables(),
		Aliases:   tmpl.Aliases(),
		Bindings:  bindingNames,
	}
}

// sharedBindings maps each binding to the other registered templates that
// read it. Bindings no other template reads are left out.
func sharedBindings(reg *registry.TemplateRegistry, name string, bindingNames []string) map[string][]string {
	shared := make(map[string][]string)
	for _, binding := range bindingNames {
		var others []string
		for _, dependent := range reg.Dependents(binding) {
			if dependent != name {
				others = append(others, dependent)
			}
		}
		if len(others) > 0 {
			shared[binding] = others
		}
	}
	return shared
}

func writeInspectionText(w io.Writer, in Inspection) error {
	if in.Template != "" {
		fmt.Fprintf(w, "Template:  %s\n", in.Template)
	}
	fmt.Fprintf(w, "Source:    %s\n", in.Source)
	fmt.Fprintf(w, "Prefix:    %q\n", in.Prefix)

	fmt.Fprintln(w, "Segments:")
	for _, s := range in.Segments {
		if !s.Variable {
			fmt.Fprintf(w, "  literal   %q\n", s.Text)
			continue
		}
		detail := "name=" + s.Name
		if s.Tag != "" {
			detail += " tag=" + s.Tag
		}
		if s.Modifier != "" {
			detail += " modifier=" + s.Modifier
		}
		fmt.Fprintf(w, "  variable  {%s}  %s\n", s.Text, detail)
	}

	fmt.Fprintf(w, "Variables: %s\n", strings.Join(in.Variables, ", "))

	if len(in.Aliases) > 0 {
		fmt.Fprintln(w, "Aliases:")
		canonical := make([]string, 0, len(in.Aliases))
		for c := range in.Aliases {
			canonical = append(canonical, c)
		}
		sort.Strings(canonical)
		for _, c := range canonical {
			fmt.Fprintf(w, "  %s -> %s\n", c, strings.Join(in.Aliases[c], ", "))
		}
	}

	_, err := fmt.Fprintf(w, "Bindings:  %s\n", strings.Join(in.Bindings, ", "))
	if err != nil || len(in.Shared) == 0 {
		return err
	}

	fmt.Fprintln(w, "Shared:")
	for _, binding := range in.Bindings {
		if others, ok := in.Shared[binding]; ok {
			fmt.Fprintf(w, "  %s -> %s\n", binding, strings.Join(others, ", "))
		}
	}
	return nil
}
