package cmd

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"charm.land/lipgloss/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/modelconf/internal/formatter"
	"github.com/oakwood-commons/modelconf/pkg/modelconf"
	"github.com/oakwood-commons/modelconf/pkg/settings"
)

// userDefaults is the optional per-user defaults file. Basic is merged
// under the flags of "modelconf new".
//
//	output: yaml
//	theme:
//	  key_color: "#5fafff"
//	  header_bg: "236"
//	basic:
//	  author: alice
//	  runMode: DIST
//	  customPaths:
//	    hdfsModelSetPath: /user/alice/ModelSets
type userDefaults struct {
	Output  string                 `yaml:"output"`
	NoColor bool                   `yaml:"noColor"`
	Theme   tableTheme             `yaml:"theme"`
	Basic   *modelconf.BasicConfig `yaml:"basic"`
}

// tableTheme overrides table colors. Values are hex ("#ff8800") or ANSI
// ("12") colors; empty keeps the default.
type tableTheme struct {
	HeaderFG  string `yaml:"header_fg"`
	HeaderBG  string `yaml:"header_bg"`
	Key       string `yaml:"key_color"`
	Value     string `yaml:"value_color"`
	Separator string `yaml:"separator_color"`
}

func (t tableTheme) colors() formatter.TableColors {
	pick := func(s string) color.Color {
		if s == "" {
			return nil
		}
		return lipgloss.Color(s)
	}
	return formatter.TableColors{
		HeaderFG:       pick(t.HeaderFG),
		HeaderBG:       pick(t.HeaderBG),
		KeyColor:       pick(t.Key),
		ValueColor:     pick(t.Value),
		SeparatorColor: pick(t.Separator),
	}
}

type userDefaultsKey struct{}

// resolveConfigPath returns explicit if set, otherwise the XDG path
// ($XDG_CONFIG_HOME/modelconf/config.yaml) or ~/.config/modelconf/config.yaml
// when that file exists.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidate := ""
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidate = filepath.Join(xdg, settings.CliBinaryName, "config.yaml")
	} else if home, err := os.UserHomeDir(); err == nil {
		candidate = filepath.Join(home, ".config", settings.CliBinaryName, "config.yaml")
	}
	if candidate != "" {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}

// loadUserDefaults reads path; an empty path yields zero defaults.
func loadUserDefaults(path string) (userDefaults, error) {
	var defaults userDefaults
	if path == "" {
		return defaults, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return defaults, fmt.Errorf("config file %s not found", path)
		}
		return defaults, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &defaults); err != nil {
		return defaults, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if defaults.Output != "" && !slices.Contains(formatter.Formats, defaults.Output) {
		return defaults, fmt.Errorf("config file %s: unsupported output %q", path, defaults.Output)
	}
	return defaults, nil
}

func withUserDefaults(ctx context.Context, d userDefaults) context.Context {
	return context.WithValue(ctx, userDefaultsKey{}, d)
}

func userDefaultsFrom(ctx context.Context) userDefaults {
	d, _ := ctx.Value(userDefaultsKey{}).(userDefaults)
	return d
}
