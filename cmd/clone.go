package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/modelconf/pkg/loader"
)

type cloneOptions struct {
	name        string
	output      string
	sectionOnly bool
}

func newCloneCmd() *cobra.Command {
	opts := &cloneOptions{}
	cmd := &cobra.Command{
		Use:   "clone [file]",
		Short: "Copy a ModelConfig document under a new model set name",
		Long: `Deep-copy the basic section of a document, rename it, and print the whole
document. Other sections are carried over unchanged.`,
		Example: `  modelconf clone ModelConfig.json --name churn-v2 > churn-v2/ModelConfig.json`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClone(cmd, opts, args)
		},
	}
	cmd.Flags().StringVar(&opts.name, "name", "", "name of the copy (required)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "document format: json|yaml|toml (default: same as input)")
	cmd.Flags().BoolVar(&opts.sectionOnly, "section", false, "treat input as a bare basic section")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func runClone(cmd *cobra.Command, opts *cloneOptions, args []string) error {
	var format loader.Format
	if opts.output != "" {
		f, err := loader.ParseFormat(opts.output)
		if err != nil {
			return err
		}
		format = f
	}

	engine, err := newEngine(cmd)
	if err != nil {
		return err
	}
	doc, err := loadInput(cmd, engine, argOrEmpty(args), opts.sectionOnly)
	if err != nil {
		return err
	}
	return engine.Write(cmd.OutOrStdout(), engine.CloneAs(doc, opts.name), format)
}
