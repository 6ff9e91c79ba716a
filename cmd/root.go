// Package cmd implements the modelconf command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oakwood-commons/modelconf/internal/formatter"
	"github.com/oakwood-commons/modelconf/pkg/core"
	"github.com/oakwood-commons/modelconf/pkg/logger"
	"github.com/oakwood-commons/modelconf/pkg/settings"
)

// errNoInput is returned when neither a file nor piped stdin was given.
var errNoInput = errors.New("no input: pass a ModelConfig file or pipe one on stdin")

// rootOptions holds the flags shared by every subcommand.
type rootOptions struct {
	debug      bool
	noColor    bool
	configFile string
}

var (
	stdoutIsTerminal = func(w io.Writer) bool {
		f, ok := w.(*os.File)
		return ok && term.IsTerminal(int(f.Fd()))
	}
	terminalWidth = func(w io.Writer) int {
		f, ok := w.(*os.File)
		if !ok {
			return 0
		}
		width, _, err := term.GetSize(int(f.Fd()))
		if err != nil {
			return 0
		}
		return width
	}
)

// NewRootCmd builds the command tree. Each call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	show := &showOptions{}

	rootCmd := &cobra.Command{
		Use:   settings.CliBinaryName + " [file]",
		Short: "Inspect and edit the basic section of ModelConfig documents",
		Long: `modelconf reads the "basic" section of a ModelConfig document (JSON, YAML or
TOML) and prints, creates, clones or compares it.

With no subcommand it behaves like "modelconf show".`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupRun(cmd, opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, show, args)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging on stderr")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable color output")
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config-file", "", "path to a YAML defaults file (default $XDG_CONFIG_HOME/modelconf/config.yaml)")
	bindShowFlags(rootCmd, show)

	rootCmd.Version = cliVersionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddCommand(
		newShowCmd(),
		newNewCmd(),
		newCloneCmd(),
		newCompareCmd(),
		newFunctionsCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// setupRun loads user defaults, initializes logging and stores per-run
// settings in the command context.
func setupRun(cmd *cobra.Command, opts *rootOptions) error {
	defaults, err := loadUserDefaults(resolveConfigPath(opts.configFile))
	if err != nil {
		return err
	}

	formatter.SetTableTheme(defaults.Theme.colors())

	run := settings.NewCliParams()
	if defaults.Output != "" {
		run.Output = defaults.Output
	}
	run.NoColor = opts.noColor || defaults.NoColor || !stdoutIsTerminal(cmd.OutOrStdout())
	if opts.debug {
		run.MinLogLevel = -1
	}

	lgr := logger.Get(run.MinLogLevel)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = settings.IntoContext(ctx, run)
	ctx = withUserDefaults(ctx, defaults)
	ctx = logger.WithLogger(ctx, logger.WithValues(lgr, logger.CommandKey, cmd.Name()))
	cmd.SetContext(ctx)
	return nil
}

// newEngine builds a core.Engine logging through the command's logger.
func newEngine(cmd *cobra.Command) (*core.Engine, error) {
	lgr := logger.FromContext(cmd.Context())
	return core.New(core.WithLogger(*lgr))
}

// renderOptions resolves output settings for the command.
func renderOptions(cmd *cobra.Command, output string) formatter.Options {
	run := settings.FromContextOrDefault(cmd.Context())
	if output == "" {
		output = run.Output
	}
	return formatter.Options{
		Format:   output,
		NoColor:  run.NoColor,
		MaxWidth: terminalWidth(cmd.OutOrStdout()),
		YAML:     formatter.YAMLFormatOptions{LiteralBlockStrings: true},
	}
}

func cliVersionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, built %s, config version %s)",
		settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime, settings.ConfigVersion)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print modelconf version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), cliVersionString())
			return err
		},
	}
}
