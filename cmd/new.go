package cmd

import (
	"os"
	"os/user"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/modelconf/pkg/loader"
	"github.com/oakwood-commons/modelconf/pkg/modelconf"
)

type newOptions struct {
	name        string
	author      string
	description string
	runMode     modelconf.RunMode
	postTrain   bool
	paths       map[string]string
	from        string
	output      string
}

func newNewCmd() *cobra.Command {
	opts := &newOptions{}
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Print a ModelConfig document with a new basic section",
		Long: `Print a ModelConfig document whose basic section starts from defaults
(LOCAL run mode, post-training off, current config version), then applies the
user defaults file, --from, and finally the flags given here.`,
		Example: `  modelconf new --name cancer-judgement --run-mode dist
  modelconf new --name churn --path train=/data/train --path eval=/data/eval -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNew(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.name, "name", "", "model set name")
	f.StringVar(&opts.author, "author", "", "author (default: current user)")
	f.StringVar(&opts.description, "description", "", "free-form description")
	f.Var(&opts.runMode, "run-mode", "run mode: LOCAL, DIST or MAPRED (any case)")
	f.BoolVar(&opts.postTrain, "post-train", false, "enable the post-training step")
	f.StringToStringVar(&opts.paths, "path", nil, "custom path override as key=value (repeatable)")
	f.StringVar(&opts.from, "from", "", "basic section file merged over the defaults before flags")
	f.StringVarP(&opts.output, "output", "o", string(loader.FormatJSON), "document format: json|yaml|toml")
	return cmd
}

func runNew(cmd *cobra.Command, opts *newOptions) error {
	format, err := loader.ParseFormat(opts.output)
	if err != nil {
		return err
	}
	engine, err := newEngine(cmd)
	if err != nil {
		return err
	}

	overlay := modelconf.NewBasicConfig()
	overlay.Version = ""
	if d := userDefaultsFrom(cmd.Context()); d.Basic != nil {
		if err := overlay.Merge(d.Basic); err != nil {
			return err
		}
	}
	if opts.from != "" {
		from, err := loadInput(cmd, engine, opts.from, true)
		if err != nil {
			return err
		}
		if err := overlay.Merge(from.Basic); err != nil {
			return err
		}
	}
	if err := overlay.Merge(opts.flagOverlay(cmd)); err != nil {
		return err
	}

	author := overlay.Author
	if author == "" {
		author = currentUser()
	}
	doc, err := engine.NewProject(author, overlay)
	if err != nil {
		return err
	}
	// Explicit flags may turn settings back to their zero values, which
	// Merge cannot express.
	if cmd.Flags().Changed("run-mode") {
		doc.Basic.RunMode = opts.runMode
	}
	if cmd.Flags().Changed("post-train") {
		doc.Basic.PostTrainOn = opts.postTrain
	}
	return engine.Write(cmd.OutOrStdout(), doc, format)
}

// flagOverlay collects the flags that were set on the command line.
func (o *newOptions) flagOverlay(cmd *cobra.Command) *modelconf.BasicConfig {
	overlay := &modelconf.BasicConfig{
		Name:        o.name,
		Author:      o.author,
		Description: o.description,
		CustomPaths: o.paths,
	}
	if cmd.Flags().Changed("run-mode") {
		overlay.RunMode = o.runMode
	}
	overlay.PostTrainOn = o.postTrain
	return overlay
}

// currentUser mirrors how new projects pick up their author: the login name,
// falling back to $USER.
func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		name := u.Username
		if i := strings.LastIndex(name, `\`); i >= 0 {
			name = name[i+1:]
		}
		return name
	}
	return os.Getenv("USER")
}

