package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/conneroisu/pathtemplate/pkg/pathtemplate"
)

var modifiersFormat string

// modifiersCmd represents the modifiers command
var modifiersCmd = &cobra.Command{
	Use:   "modifiers",
	Short: "List the available placeholder modifiers",
	Long: `List the modifiers usable as {name?modifier}, in the order their
whole-path transforms run.`,
	Args: cobra.NoArgs,
	RunE: runModifiersCommand,
}

func init() {
	rootCmd.AddCommand(modifiersCmd)

	addFormatFlag(modifiersCmd, &modifiersFormat)
}

var modifierDescriptions = map[string]string{
	"uc":            "upper-case the value",
	"lc":            "lower-case the value",
	"ucfirst":       "upper-case the first character",
	"lcfirst":       "lower-case the first character",
	"slashok":       "allow '/' inside the value",
	"emptycollapse": "drop the segment when the value is empty",
}

type ModifierInfo struct {
	Suffix        string `json:"suffix" yaml:"suffix"`
	MinLength     int    `json:"min_length" yaml:"min_length"`
	PathTransform bool   `json:"path_transform" yaml:"path_transform"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
	Example       string `json:"example" yaml:"example"`
}

func runModifiersCommand(cmd *cobra.Command, _ []string) error {
	infos := modifierInfos()
	format := modifiersFormat
	if format == "" {
		format = "text"
	}

	return writeOutput(cmd.OutOrStdout(), format, infos, func(w io.Writer) error {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "MODIFIER\tMIN LENGTH\tPATH TRANSFORM\tEXAMPLE\tDESCRIPTION")
		for _, m := range infos {
			fmt.Fprintf(tw, "%s\t%d\t%t\t%s\t%s\n", m.Suffix, m.MinLength, m.PathTransform, m.Example, m.Description)
		}
		return tw.Flush()
	})
}

func modifierInfos() []ModifierInfo {
	modifiers := pathtemplate.Modifiers()
	infos := make([]ModifierInfo, 0, len(modifiers))
	for _, m := range modifiers {
		infos = append(infos, ModifierInfo{
			Suffix:        m.Suffix,
			MinLength:     m.MinLength,
			PathTransform: m.Post != nil,
			Description:   modifierDescriptions[m.Suffix],
			Example:       "{name" + pathtemplate.ModifierMarker + m.Suffix + "}",
		})
	}
	return infos
}
