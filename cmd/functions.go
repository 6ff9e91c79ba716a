package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/modelconf/internal/cel"
)

func newFunctionsCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "functions",
		Short: "List the CEL functions available to show -e",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fns, err := cel.Functions()
			if err != nil {
				return err
			}
			var b strings.Builder
			for _, fn := range fns {
				if !verbose {
					b.WriteString(fn.Name + "\n")
					continue
				}
				b.WriteString(strings.Join(cel.FormatFunctionLines(fn, 0), "\n") + "\n")
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), b.String())
			return err
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "include signatures, descriptions and examples")
	return cmd
}
