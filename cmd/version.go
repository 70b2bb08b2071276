package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/conneroisu/pathtemplate/internal/version"
)

var (
	versionFormat string
	versionShort  bool
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display version information for pathtemplate including the version,
git commit, build time, Go version and target platform.

Examples:
  pathtemplate version               # Show version details
  pathtemplate version --short       # Show the version only
  pathtemplate version --format json # Output as JSON`,
	Args: cobra.NoArgs,
	RunE: runVersionCommand,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().VarP(newEnumValue(&versionFormat, "text", []string{"text", "json", "yaml"}),
		"format", "f", "Output format (text, json, yaml)")
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show short version only")
}

func runVersionCommand(cmd *cobra.Command, _ []string) error {
	info := version.GetBuildInfo()

	return writeOutput(cmd.OutOrStdout(), versionFormat, info, func(w io.Writer) error {
		if versionShort {
			_, err := fmt.Fprintln(w, info.Short())
			return err
		}
		_, err := fmt.Fprintf(w, "pathtemplate %s\n%s\n", info.Short(), info.String())
		return err
	})
}
