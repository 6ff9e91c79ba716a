// Package formatter renders a basic section for terminal and machine output.
package formatter

import (
	"encoding/json"
	"fmt"
	"image/color"
	"reflect"
	"sort"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
	"github.com/pelletier/go-toml/v2"

	"github.com/oakwood-commons/modelconf/pkg/modelconf"
)

// Output formats accepted by Render.
const (
	FormatTable = "table"
	FormatYAML  = "yaml"
	FormatJSON  = "json"
	FormatTOML  = "toml"
)

// Formats lists every output format in help order.
var Formats = []string{FormatTable, FormatYAML, FormatJSON, FormatTOML}

const (
	keyHeader   = "KEY"
	valueHeader = "VALUE"
	columnGap   = 2
	ellipsis    = "..."
)

var (
	defaultHeaderFG   = lipgloss.Color("12")
	defaultHeaderBG   = lipgloss.Color("236")
	defaultKeyColor   = lipgloss.Color("14")
	defaultValueColor = lipgloss.Color("248")
	defaultSeparator  = lipgloss.Color("240")

	headerStyle    lipgloss.Style
	keyStyle       lipgloss.Style
	valueStyle     lipgloss.Style
	separatorStyle lipgloss.Style
)

// TableColors controls the rendered colors for the table. Nil fields fall
// back to the defaults.
type TableColors struct {
	HeaderFG       color.Color
	HeaderBG       color.Color
	KeyColor       color.Color
	ValueColor     color.Color
	SeparatorColor color.Color
}

func applyTableTheme(tc TableColors) {
	pick := func(c, def color.Color) color.Color {
		if c == nil {
			return def
		}
		return c
	}
	headerStyle = lipgloss.NewStyle().Bold(true).
		Foreground(pick(tc.HeaderFG, defaultHeaderFG)).
		Background(pick(tc.HeaderBG, defaultHeaderBG))
	keyStyle = lipgloss.NewStyle().Foreground(pick(tc.KeyColor, defaultKeyColor))
	valueStyle = lipgloss.NewStyle().Foreground(pick(tc.ValueColor, defaultValueColor))
	separatorStyle = lipgloss.NewStyle().Foreground(pick(tc.SeparatorColor, defaultSeparator))
}

// SetTableTheme overrides the table styles.
func SetTableTheme(tc TableColors) {
	applyTableTheme(tc)
}

//nolint:gochecknoinits // initialize default table theme for package consumers
func init() {
	applyTableTheme(TableColors{})
}

// Options controls Render.
type Options struct {
	Format  string
	NoColor bool
	// MaxWidth caps table width; 0 means unlimited.
	MaxWidth int
	YAML     YAMLFormatOptions
}

// Render writes cfg in the requested format.
func Render(cfg *modelconf.BasicConfig, opts Options) (string, error) {
	switch strings.ToLower(opts.Format) {
	case "", FormatTable:
		return RenderTable(Rows(cfg), opts.NoColor, opts.MaxWidth), nil
	case FormatYAML, "yml":
		return RenderYAML(cfg, opts.YAML)
	case FormatJSON:
		b, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return "", err
		}
		return string(b) + "\n", nil
	case FormatTOML:
		b, err := toml.Marshal(cfg)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want one of %s)", opts.Format, strings.Join(Formats, ", "))
	}
}

// Rows flattens cfg into KEY/VALUE rows in field order. Custom paths follow
// as customPaths.<key> rows sorted by key.
func Rows(cfg *modelconf.BasicConfig) [][]string {
	rows := [][]string{
		{"name", Stringify(cfg.Name)},
		{"author", Stringify(cfg.Author)},
		{"description", Stringify(cfg.Description)},
		{"version", Stringify(cfg.Version)},
		{"runMode", cfg.RunMode.String()},
		{"postTrainOn", Stringify(cfg.PostTrainOn)},
	}
	keys := make([]string, 0, len(cfg.CustomPaths))
	for k := range cfg.CustomPaths {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		rows = append(rows, []string{"customPaths." + k, Stringify(cfg.CustomPaths[k])})
	}
	return rows
}

// RenderTable renders rows as a two-column table sized to its content. When
// maxWidth is positive, the key column gets at most 30% and values are
// truncated with an ellipsis.
func RenderTable(rows [][]string, noColor bool, maxWidth int) string {
	keyWidth := runewidth.StringWidth(keyHeader)
	valueWidth := runewidth.StringWidth(valueHeader)
	for _, row := range rows {
		if len(row) > 0 {
			keyWidth = max(keyWidth, runewidth.StringWidth(row[0]))
		}
		if len(row) > 1 {
			valueWidth = max(valueWidth, runewidth.StringWidth(row[1]))
		}
	}

	if maxWidth > 0 && keyWidth+columnGap+valueWidth > maxWidth {
		available := max(maxWidth-columnGap, 10)
		keyWidth = min(keyWidth, max(available*30/100, 5))
		valueWidth = max(available-keyWidth, 5)
	}

	sep := strings.Repeat(" ", columnGap)
	var b strings.Builder

	headerKey := padRight(keyHeader, keyWidth)
	headerValue := padRight(valueHeader, valueWidth)
	if !noColor {
		headerKey = headerStyle.Render(headerKey)
		headerValue = headerStyle.Render(headerValue)
	}
	b.WriteString(headerKey + sep + headerValue + "\n")

	separator := strings.Repeat("─", keyWidth+columnGap+valueWidth)
	if !noColor {
		separator = separatorStyle.Render(separator)
	}
	b.WriteString(separator + "\n")

	for _, row := range rows {
		var key, val string
		if len(row) > 0 {
			key = row[0]
		}
		if len(row) > 1 {
			val = row[1]
		}
		keyStr := padRight(key, keyWidth)
		valStr := padRight(val, valueWidth)
		if !noColor {
			keyStr = keyStyle.Render(keyStr)
			valStr = valueStyle.Render(valStr)
		}
		b.WriteString(strings.TrimRight(keyStr+sep+valStr, " ") + "\n")
	}
	return b.String()
}

// padRight truncates or pads s to exactly width display cells.
func padRight(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		if width <= len(ellipsis) {
			s = runewidth.Truncate(s, width, "")
		} else {
			s = runewidth.Truncate(s, width, ellipsis)
		}
	}
	return runewidth.FillRight(s, width)
}

// Stringify returns a single-line representation of a value. Strings keep
// their text with newlines escaped; collections become compact JSON.
func Stringify(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return escapeNewlines(t)
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(t)
	case fmt.Stringer:
		return t.String()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() { //nolint:exhaustive // only collections need JSON
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Ptr:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
	}
	return fmt.Sprintf("%v", v)
}

func escapeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\n", "\\n")
}
