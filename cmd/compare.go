package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// errNotEqual is returned by compare --strict when the sections differ.
var errNotEqual = errors.New("basic sections differ")

type compareOptions struct {
	strict      bool
	sectionOnly bool
}

func newCompareCmd() *cobra.Command {
	opts := &compareOptions{}
	cmd := &cobra.Command{
		Use:   "compare <file-a> <file-b>",
		Short: "Report whether two documents describe the same model set",
		Long: `Compare the identity of two basic sections. Only name, author and description
are compared; version, run mode, post-train flag and custom paths are ignored.
Either input may be "-" for stdin, but not both.`,
		Example: `  modelconf compare churn/ModelConfig.json churn-v2/ModelConfig.json
  cat ModelConfig.json | modelconf compare - other/ModelConfig.yaml --strict`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, opts, args)
		},
	}
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit with an error when the sections differ")
	cmd.Flags().BoolVar(&opts.sectionOnly, "section", false, "treat inputs as bare basic sections")
	return cmd
}

func runCompare(cmd *cobra.Command, opts *compareOptions, args []string) error {
	if isStdin(args[0]) && isStdin(args[1]) {
		return errStdinTwice
	}
	engine, err := newEngine(cmd)
	if err != nil {
		return err
	}
	a, err := loadInput(cmd, engine, args[0], opts.sectionOnly)
	if err != nil {
		return err
	}
	b, err := loadInput(cmd, engine, args[1], opts.sectionOnly)
	if err != nil {
		return err
	}

	result := engine.Compare(a.Basic, b.Basic)
	verdict := "different"
	if result.Equal {
		verdict = "equal"
	}
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "%s\n%s  hash=%d\n%s  hash=%d\n", verdict, args[0], result.HashA, args[1], result.HashB); err != nil {
		return err
	}
	if opts.strict && !result.Equal {
		return errNotEqual
	}
	return nil
}
