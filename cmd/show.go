package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/modelconf/internal/formatter"
)

// errCheckFailed is returned when the --check predicate is false.
var errCheckFailed = errors.New("check failed")

type showOptions struct {
	output      string
	expression  string
	check       string
	sectionOnly bool
}

func bindShowFlags(cmd *cobra.Command, opts *showOptions) {
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output format: "+strings.Join(formatter.Formats, "|")+" (default table)")
	cmd.Flags().StringVarP(&opts.expression, "expression", "e", "", `CEL expression with the basic section bound to '_', e.g. '_.runMode == "DIST"' or 'isDistributed(_.runMode)'`)
	cmd.Flags().StringVar(&opts.check, "check", "", `boolean CEL expression that must hold, otherwise exit with an error, e.g. 'isDistributed(_.runMode)'`)
	cmd.Flags().BoolVar(&opts.sectionOnly, "section", false, "treat input as a bare basic section instead of a full ModelConfig document")
}

func newShowCmd() *cobra.Command {
	opts := &showOptions{}
	cmd := &cobra.Command{
		Use:   "show [file]",
		Short: "Print the basic section of a ModelConfig document",
		Example: `  modelconf show ModelConfig.json
  cat ModelConfig.json | modelconf show -o yaml
  modelconf show ModelConfig.json -e 'isDistributed(_.runMode)'
  modelconf show ModelConfig.json --check '_.postTrainOn' -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, opts, args)
		},
	}
	bindShowFlags(cmd, opts)
	return cmd
}

func runShow(cmd *cobra.Command, opts *showOptions, args []string) error {
	engine, err := newEngine(cmd)
	if err != nil {
		return err
	}
	doc, err := loadInput(cmd, engine, argOrEmpty(args), opts.sectionOnly)
	if err != nil {
		return err
	}

	if opts.check != "" {
		ok, err := engine.Matches(opts.check, doc.Basic)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", errCheckFailed, opts.check)
		}
	}

	out := cmd.OutOrStdout()
	if opts.expression != "" {
		result, err := engine.Evaluate(opts.expression, doc.Basic)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, engine.Stringify(result))
		return err
	}

	rendered, err := engine.Render(doc.Basic, renderOptions(cmd, opts.output))
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}
