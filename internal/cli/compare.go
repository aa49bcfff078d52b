package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mchave3/Intune-Group-Assignments/internal/version"
)

// NewCompareCommand creates the compare command.
func NewCompareCommand() *cobra.Command {
	var literal bool

	cmd := &cobra.Command{
		Use:   "compare CURRENT LATEST",
		Short: "Report whether LATEST is an update over CURRENT",
		Long: `Compare two dotted versions the way the check command does.

Prints "true" when LATEST is newer than CURRENT and "false" otherwise.
Numeric comparison is the default; --literal reports any difference
after padding the shorter version with .0 segments.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd.OutOrStdout(), args[0], args[1], literal)
		},
	}

	cmd.Flags().BoolVar(&literal, "literal", false, "compare padded strings instead of numbers")

	return cmd
}

func runCompare(w io.Writer, current, latest string, literal bool) error {
	c := version.Comparator{Semantics: version.SemanticsNumeric}
	if literal {
		c.Semantics = version.SemanticsLiteral
	}

	newer, err := c.IsNewVersionAvailable(current, latest)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, newer)
	return nil
}
