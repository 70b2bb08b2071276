package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conneroisu/pathtemplate/internal/bindings"
	"github.com/conneroisu/pathtemplate/internal/config"
	apperrors "github.com/conneroisu/pathtemplate/internal/errors"
	"github.com/conneroisu/pathtemplate/internal/registry"
	"github.com/conneroisu/pathtemplate/pkg/pathtemplate"
)

var (
	renderName           string
	renderBindingFiles   []string
	renderSet            assignmentsValue
	renderFormat         string
	renderIgnoreDefaults bool
)

// renderCmd represents the render command
var renderCmd = &cobra.Command{
	Use:     "render [template]",
	Aliases: []string{"r"},
	Short:   "Render a template with variable bindings",
	Long: `Render a path template given on the command line or named in the
configuration file.

Bindings are merged in this order, later sources winning:
  1. bindings.values from the configuration file
  2. bindings.files from the configuration file
  3. --bindings files, in the order given
  4. --set assignments

A null value in a bindings file binds the variable to an empty string.

Examples:
  pathtemplate render '/v1/{org?lc}/users/{id}' --set org=Acme --set id=42
  pathtemplate render --name users --bindings 'env/**/*.yml'
  pathtemplate render '{bucket}/{key?slashok}' -b prod.json --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRenderCommand,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVarP(&renderName, "name", "n", "", "Name of a template from the configuration file")
	renderCmd.Flags().BoolVar(&renderIgnoreDefaults, "no-defaults", false, "Ignore bindings from the configuration file")
	addBindingsFlags(renderCmd, &renderBindingFiles, &renderSet)
	addFormatFlag(renderCmd, &renderFormat)
}

// RenderResult is the structured output of the render command.
type RenderResult struct {
	Template string            `json:"template,omitempty" yaml:"template,omitempty"`
	Source   string            `json:"source" yaml:"source"`
	Path     string            `json:"path" yaml:"path"`
	Bindings map[string]string `json:"bindings,omitempty" yaml:"bindings,omitempty"`
}

func runRenderCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	name, tmpl, err := resolveTemplate(cfg, registry.NewTemplateRegistry(appLogger), renderName, args)
	if err != nil {
		return err
	}

	b, err := buildBindings(cfg, renderIgnoreDefaults, renderBindingFiles, renderSet.Values())
	if err != nil {
		return err
	}

	if unused := unusedBindings(tmpl, b); len(unused) > 0 {
		appLogger.Debug(ctx, "Bindings not read by template", "names", unused)
	}

	perf := appLogger.StartOperation("render")
	result, err := renderTemplate(name, tmpl, b)
	if err != nil {
		perf.EndWithError(ctx, err)
		return err
	}
	perf.End(ctx)

	return writeRenderResult(cmd.OutOrStdout(), resolveFormat(renderFormat, cfg), result)
}

// resolveTemplate compiles the template given as an argument, or looks up
// the template called name in reg, registering it from the configuration
// when reg does not hold it yet. Exactly one of the two must be set.
func resolveTemplate(cfg *config.Config, reg *registry.TemplateRegistry, name string, args []string) (string, *pathtemplate.Template, error) {
	switch {
	case name != "" && len(args) > 0:
		return "", nil, apperrors.NewValidationError(apperrors.ErrCodeValidationFailed,
			"give either a template argument or --name, not both")
	case name != "":
		info, err := reg.Lookup(name)
		if err != nil {
			source, ok := cfg.Templates[name]
			if !ok {
				return "", nil, err
			}
			if info, err = reg.Register(name, source); err != nil {
				return "", nil, err
			}
		}
		return name, info.Template, nil
	case len(args) == 1:
		tmpl, err := reg.Compile(args[0])
		if err != nil {
			return "", nil, apperrors.FromRenderError(err, "")
		}
		return "", tmpl, nil
	default:
		return "", nil, apperrors.NewValidationError(apperrors.ErrCodeValidationFailed,
			"a template argument or --name is required")
	}
}

// buildBindings merges configured defaults, binding files and assignments.
func buildBindings(cfg *config.Config, ignoreDefaults bool, files, assignments []string) (bindings.Bindings, error) {
	var layers []bindings.Bindings

	if !ignoreDefaults {
		layers = append(layers, bindings.FromStrings(cfg.Bindings.Values))

		configured, err := bindings.LoadAll(cfg.Bindings.Files, configBaseDir())
		if err != nil {
			return nil, err
		}
		layers = append(layers, configured)
	}

	fromFlags, err := bindings.LoadAll(files, "")
	if err != nil {
		return nil, err
	}
	layers = append(layers, fromFlags)

	sets, err := bindings.ParseAssignments(assignments)
	if err != nil {
		return nil, err
	}
	layers = append(layers, sets)

	return bindings.Merge(layers...), nil
}

func renderTemplate(name string, tmpl *pathtemplate.Template, b bindings.Bindings) (*RenderResult, error) {
	path, err := tmpl.RenderOptional(b)
	if err != nil {
		return nil, apperrors.FromRenderError(err, name)
	}

	values := b.Strings()
	used := make(map[string]string)
	for _, binding := range registry.BindingNames(tmpl) {
		if v, ok := values[binding]; ok {
			used[binding] = v
		}
	}

	return &RenderResult{
		Template: name,
		Source:   tmpl.Source(),
		Path:     path,
		Bindings: used,
	}, nil
}

// unusedBindings returns the bound names no placeholder of tmpl reads.
func unusedBindings(tmpl *pathtemplate.Template, b bindings.Bindings) []string {
	read := make(map[string]bool)
	for _, v := range tmpl.Variables() {
		base, _, _ := strings.Cut(v, pathtemplate.ModifierMarker)
		read[v] = true
		read[base] = true
		read[pathtemplate.ParseToken(v).Name] = true
	}

	var unused []string
	for _, key := range b.Keys() {
		if !read[key] {
			unused = append(unused, key)
		}
	}
	return unused
}

func writeRenderResult(w io.Writer, format string, result *RenderResult) error {
	return writeOutput(w, format, result, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, result.Path)
		return err
	})
}
