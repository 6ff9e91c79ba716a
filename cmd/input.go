package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oakwood-commons/modelconf/pkg/core"
	"github.com/oakwood-commons/modelconf/pkg/logger"
)

// stdinSource names stdin in logs and errors.
const stdinSource = "stdin"

// errStdinTwice is returned when two inputs both name stdin.
var errStdinTwice = errors.New("stdin can be read only once; pass at least one file path")

// isStdin reports whether path names stdin.
func isStdin(path string) bool {
	return path == "" || path == "-"
}

var stdinIsTerminal = func(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// readInput reads the document named by path, or stdin when path is empty
// or "-". An interactive stdin is treated as missing input.
func readInput(cmd *cobra.Command, path string) ([]byte, string, error) {
	lgr := logger.FromContext(cmd.Context())
	if isStdin(path) {
		in := cmd.InOrStdin()
		if stdinIsTerminal(in) {
			return nil, "", errNoInput
		}
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		lgr.V(1).Info("read input", logger.SourceKey, stdinSource, "bytes", len(data))
		return data, stdinSource, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	lgr.V(1).Info("read input", logger.SourceKey, path, "bytes", len(data))
	return data, path, nil
}

// loadInput reads and parses one document with engine.
func loadInput(cmd *cobra.Command, engine *core.Engine, path string, sectionOnly bool) (*core.Document, error) {
	data, source, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	return engine.Load(data, source, sectionOnly)
}

func argOrEmpty(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

