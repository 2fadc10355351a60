package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/xovigen/internal/emit"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display xovigen version and the XOVI API version of generated headers.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "xovigen v%s\n", version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Generates XOVI %s extension link tables\n", emit.FormatVersion)
		},
	}
}
