package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/conneroisu/pathtemplate/internal/config"
)

// assignmentsValue collects repeatable name=value flags.
type assignmentsValue struct {
	values []string
}

var _ pflag.Value = (*assignmentsValue)(nil)

func (a *assignmentsValue) String() string {
	return "[" + strings.Join(a.values, ",") + "]"
}

func (a *assignmentsValue) Set(s string) error {
	name, _, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return fmt.Errorf("expected name=value, got %q", s)
	}
	a.values = append(a.values, s)
	return nil
}

func (a *assignmentsValue) Type() string {
	return "name=value"
}

// Values returns the assignments in the order given.
func (a *assignmentsValue) Values() []string {
	return append([]string(nil), a.values...)
}

// enumValue is a string flag restricted to a fixed set of values.
type enumValue struct {
	value   *string
	allowed []string
}

var _ pflag.Value = (*enumValue)(nil)

func newEnumValue(target *string, def string, allowed []string) *enumValue {
	*target = def
	return &enumValue{value: target, allowed: allowed}
}

func (e *enumValue) String() string {
	return *e.value
}

func (e *enumValue) Set(s string) error {
	for _, a := range e.allowed {
		if s == a {
			*e.value = s
			return nil
		}
	}
	return fmt.Errorf("must be one of %s", strings.Join(e.allowed, ", "))
}

func (e *enumValue) Type() string {
	return "string"
}

// addFormatFlag registers --format/-f. An empty value falls back to
// output.format from the configuration.
func addFormatFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().VarP(newEnumValue(target, "", config.OutputFormats), "format", "f",
		"Output format ("+strings.Join(config.OutputFormats, "|")+"), defaults to output.format")
}

// addBindingsFlags registers the flags that supply variable bindings.
func addBindingsFlags(cmd *cobra.Command, files *[]string, sets *assignmentsValue) {
	cmd.Flags().StringArrayVarP(files, "bindings", "b", nil,
		"Bindings file or doublestar pattern (YAML or JSON, repeatable)")
	cmd.Flags().Var(sets, "set", "Bind a variable, as name=value (repeatable, highest precedence)")
}

// resolveFormat picks the flag value when set, else the configured format.
func resolveFormat(flagValue string, cfg *config.Config) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg != nil && cfg.Output.Format != "" {
		return cfg.Output.Format
	}
	return config.DefaultOutputFormat
}
