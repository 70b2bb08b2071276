package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/conneroisu/pathtemplate/internal/errors"
	"github.com/conneroisu/pathtemplate/internal/registry"
)

var (
	validateFormat string
	validateGraph  bool
)

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:     "validate [name...]",
	Aliases: []string{"v"},
	Short:   "Check configured templates for structural errors",
	Long: `Compile every template in the configuration file, or only the named
ones, and report each failure. The command exits non-zero when any
template is invalid or unknown.

Examples:
  pathtemplate validate                 # Validate all templates
  pathtemplate validate users events    # Validate specific templates
  pathtemplate validate --format json   # Output results as JSON
  pathtemplate validate --graph         # Also list the templates reading each binding`,
	RunE: runValidateCommand,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	addFormatFlag(validateCmd, &validateFormat)
	validateCmd.Flags().BoolVar(&validateGraph, "graph", false, "List the valid templates that read each binding")
}

type ValidationResult struct {
	Template  string   `json:"template" yaml:"template"`
	Source    string   `json:"source,omitempty" yaml:"source,omitempty"`
	Valid     bool     `json:"valid" yaml:"valid"`
	Variables []string `json:"variables,omitempty" yaml:"variables,omitempty"`
	Errors    []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

type ValidationSummary struct {
	Total   int                `json:"total" yaml:"total"`
	Valid   int                `json:"valid" yaml:"valid"`
	Invalid int                `json:"invalid" yaml:"invalid"`
	Results []ValidationResult `json:"results" yaml:"results"`
	// Graph maps each binding name to the valid templates that read it.
	Graph map[string][]string `json:"graph,omitempty" yaml:"graph,omitempty"`
}

func runValidateCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		names = cfg.TemplateNames()
	}

	out := cmd.OutOrStdout()
	format := resolveFormat(validateFormat, cfg)

	if len(names) == 0 {
		if format == "text" {
			fmt.Fprintln(out, "No templates configured")
			return nil
		}
		return writeOutput(out, format, ValidationSummary{Results: []ValidationResult{}}, nil)
	}

	collector := apperrors.NewErrorCollector()
	reg := registry.NewTemplateRegistry(appLogger)

	selected := make(map[string]string, len(names))
	for _, name := range names {
		source, ok := cfg.Templates[name]
		if !ok {
			collector.Add(apperrors.TemplateError{
				Template: name,
				Message:  apperrors.ErrTemplateNotFound(name).Error(),
				Severity: apperrors.ErrorSeverityError,
			})
			continue
		}
		selected[name] = source
	}
	reg.LoadAll(selected, collector)

	summary := summarize(names, reg, collector)
	if validateGraph {
		summary.Graph = reg.DependencyGraph()
	}

	if err := writeOutput(out, format, summary, func(w io.Writer) error {
		return writeValidationText(w, summary)
	}); err != nil {
		return err
	}

	if collector.HasErrors() {
		return apperrors.NewValidationError(apperrors.ErrCodeValidationFailed,
			fmt.Sprintf("%d of %d templates failed validation", summary.Invalid, summary.Total))
	}

	return nil
}

func summarize(names []string, reg *registry.TemplateRegistry, collector *apperrors.ErrorCollector) ValidationSummary {
	summary := ValidationSummary{Results: make([]ValidationResult, 0, len(names))}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		result := ValidationResult{Template: name}
		if info, ok := reg.Get(name); ok {
			result.Valid = true
			result.Source = info.Source
			result.Variables = info.Template.Variables()
		}
		for _, te := range collector.GetErrorsByTemplate(name) {
			result.Source = te.Source
			result.Errors = append(result.Errors, te.Message)
		}

		if result.Valid {
			summary.Valid++
		} else {
			summary.Invalid++
		}
		summary.Results = append(summary.Results, result)
	}
	summary.Total = len(summary.Results)

	return summary
}

func writeValidationText(w io.Writer, summary ValidationSummary) error {
	for _, r := range summary.Results {
		if r.Valid {
			fmt.Fprintf(w, "ok    %s  %s\n", r.Template, r.Source)
			continue
		}
		fmt.Fprintf(w, "FAIL  %s  %s\n", r.Template, r.Source)
		for _, e := range r.Errors {
			fmt.Fprintf(w, "      %s\n", e)
		}
	}
	if len(summary.Graph) > 0 {
		bindingNames := make([]string, 0, len(summary.Graph))
		for binding := range summary.Graph {
			bindingNames = append(bindingNames, binding)
		}
		sort.Strings(bindingNames)

		fmt.Fprintln(w, "\nBindings:")
		for _, binding := range bindingNames {
			fmt.Fprintf(w, "  %s -> %s\n", binding, strings.Join(summary.Graph[binding], ", "))
		}
	}

	_, err := fmt.Fprintf(w, "\n%d templates, %d valid, %d invalid\n", summary.Total, summary.Valid, summary.Invalid)
	return err
}
