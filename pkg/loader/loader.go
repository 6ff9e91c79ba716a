// Package loader parses ModelConfig documents and extracts their basic
// section. JSON, YAML and TOML documents are accepted; the format is detected
// from the content.
package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/modelconf/pkg/modelconf"
)

// BasicSectionKey is the top-level key holding the basic section.
const BasicSectionKey = "basic"

// Format names a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

var (
	ErrEmptyInput          = errors.New("empty input")
	ErrMultipleDocuments   = errors.New("expected a single document")
	ErrNotAnObject         = errors.New("document root is not an object")
	ErrMissingBasicSection = errors.New("document has no basic section")
	ErrUnsupportedFormat   = errors.New("unsupported format")
)

var (
	// Section headers must start the line so indented YAML flow sequences
	// such as `  ["a"]` are not mistaken for TOML tables.
	tomlSectionPattern  = regexp.MustCompile(`^\[{1,2}(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}\s*$`)
	tomlKeyValuePattern = regexp.MustCompile(`^\s*(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)
)

// ParseFormat maps a format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// DetectFormat guesses the encoding of input. A leading '{' is JSON; TOML is
// checked before a leading '[' since table headers look like arrays. The
// rest is YAML.
func DetectFormat(input string) Format {
	input = strings.TrimSpace(input)
	switch {
	case strings.HasPrefix(input, "{"):
		return FormatJSON
	case strings.HasPrefix(input, "---"):
		return FormatYAML
	case isLikelyTOML(input):
		return FormatTOML
	case strings.HasPrefix(input, "["):
		return FormatJSON
	default:
		return FormatYAML
	}
}

// LoadData parses input into a generic tree and reports the detected format.
func LoadData(input string) (interface{}, Format, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, "", ErrEmptyInput
	}

	format := DetectFormat(input)
	var (
		data interface{}
		err  error
	)
	switch format {
	case FormatTOML:
		data, err = loadTOML(input)
	case FormatJSON:
		data, err = loadJSON(input)
	default:
		data, err = loadYAML(input)
	}
	if err != nil {
		return nil, format, err
	}
	return data, format, nil
}

// LoadDocument parses input and requires an object at the root.
func LoadDocument(input []byte) (map[string]interface{}, Format, error) {
	root, format, err := LoadData(string(input))
	if err != nil {
		return nil, format, err
	}
	doc, ok := root.(map[string]interface{})
	if !ok {
		return nil, format, fmt.Errorf("%w: got %T", ErrNotAnObject, root)
	}
	return doc, format, nil
}

// Document is a parsed ModelConfig document. Raw holds the generic tree of
// every section so the document can be written back; Basic is the typed
// decode of the basic section.
type Document struct {
	Raw    map[string]interface{}
	Basic  *modelconf.BasicConfig
	Format Format
}

// DecodeBasic parses a full ModelConfig document and decodes its basic
// section over NewBasicConfig defaults.
func DecodeBasic(input []byte) (*Document, error) {
	return decode(input, false)
}

// DecodeBasicSection parses input that holds only the basic section. The
// returned Document has no Raw tree.
func DecodeBasicSection(input []byte) (*Document, error) {
	return decode(input, true)
}

// decode reads the generic tree for format detection and write-back, then
// decodes the section with the native decoder of its format so text fields
// keep their literal text (YAML `version: 1.0` stays "1.0"). A bad runMode
// surfaces as *modelconf.InvalidRunModeError.
func decode(input []byte, sectionOnly bool) (*Document, error) {
	raw, format, err := LoadDocument(input)
	if err != nil {
		return nil, err
	}
	if !sectionOnly {
		if section, ok := raw[BasicSectionKey]; !ok || section == nil {
			return nil, ErrMissingBasicSection
		}
	}

	cfg := modelconf.NewBasicConfig()
	switch format {
	case FormatJSON:
		err = decodeJSONSection(input, sectionOnly, cfg)
	case FormatTOML:
		err = decodeTOMLSection(input, raw, sectionOnly, cfg)
	default:
		err = decodeYAMLSection(input, sectionOnly, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid basic section: %w", err)
	}
	if cfg.CustomPaths == nil {
		cfg.CustomPaths = make(map[string]string)
	}

	doc := &Document{Basic: cfg, Format: format}
	if !sectionOnly {
		doc.Raw = raw
	}
	return doc, nil
}

func decodeJSONSection(input []byte, sectionOnly bool, cfg *modelconf.BasicConfig) error {
	if sectionOnly {
		return json.Unmarshal(input, cfg)
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(input, &top); err != nil {
		return err
	}
	return json.Unmarshal(top[BasicSectionKey], cfg)
}

func decodeYAMLSection(input []byte, sectionOnly bool, cfg *modelconf.BasicConfig) error {
	root, err := loadYAMLNode(string(input))
	if err != nil {
		return err
	}
	section := root
	if !sectionOnly {
		section = mappingValue(root, BasicSectionKey)
		if section == nil {
			return ErrMissingBasicSection
		}
	}
	return section.Decode(cfg)
}

// decodeTOMLSection decodes into the typed section. go-toml reports
// UnmarshalText failures as plain text, so runMode is checked first to keep
// the typed error.
func decodeTOMLSection(input []byte, raw map[string]interface{}, sectionOnly bool, cfg *modelconf.BasicConfig) error {
	section := raw
	if !sectionOnly {
		table, ok := raw[BasicSectionKey].(map[string]interface{})
		if !ok {
			return fmt.Errorf("%s is a %T, not a table", BasicSectionKey, raw[BasicSectionKey])
		}
		section = table
	}
	if v, ok := section["runMode"]; ok {
		if _, err := modelconf.ParseRunMode(fmt.Sprint(v)); err != nil {
			return err
		}
	}

	if sectionOnly {
		return toml.Unmarshal(input, cfg)
	}
	wrapper := struct {
		Basic *modelconf.BasicConfig `toml:"basic"`
	}{Basic: cfg}
	return toml.Unmarshal(input, &wrapper)
}

// mappingValue returns the value node stored under key in a YAML mapping.
func mappingValue(n *yaml.Node, key string) *yaml.Node {
	for n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

// SectionValue returns cfg in the generic shape used inside a parsed
// document.
func SectionValue(cfg *modelconf.BasicConfig) (map[string]interface{}, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("cannot encode basic section: %w", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("cannot encode basic section: %w", err)
	}
	return out, nil
}

// EncodeDocument writes doc with its basic section replaced by cfg. A nil doc
// produces a document holding only the basic section. doc is not modified.
func EncodeDocument(w io.Writer, doc map[string]interface{}, cfg *modelconf.BasicConfig, format Format) error {
	section, err := SectionValue(cfg)
	if err != nil {
		return err
	}
	out := make(map[string]interface{}, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	out[BasicSectionKey] = section
	return Encode(w, out, format)
}

// Encode writes v in the given format.
func Encode(w io.Writer, v interface{}, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(v); err != nil {
			return fmt.Errorf("cannot write TOML (null values have no TOML form): %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func loadJSON(input string) (interface{}, error) {
	var data interface{}
	if err := json.Unmarshal([]byte(input), &data); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return data, nil
}

func loadYAML(input string) (interface{}, error) {
	node, err := loadYAMLNode(input)
	if err != nil {
		return nil, err
	}
	var data interface{}
	if err := node.Decode(&data); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return data, nil
}

// loadYAMLNode returns the root node of the single document in input. Empty
// and null documents are skipped; a stream with more than one is rejected.
func loadYAMLNode(input string) (*yaml.Node, error) {
	decoder := yaml.NewDecoder(strings.NewReader(input))
	var roots []*yaml.Node
	for {
		var doc yaml.Node
		if err := decoder.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		if len(doc.Content) == 0 || doc.Content[0].ShortTag() == "!!null" {
			continue
		}
		roots = append(roots, doc.Content[0])
	}
	switch len(roots) {
	case 0:
		return nil, ErrEmptyInput
	case 1:
		return roots[0], nil
	default:
		return nil, fmt.Errorf("%w: found %d YAML documents", ErrMultipleDocuments, len(roots))
	}
}

func loadTOML(input string) (interface{}, error) {
	var data map[string]interface{}
	if err := toml.NewDecoder(bytes.NewReader([]byte(input))).Decode(&data); err != nil {
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}
	return data, nil
}

// isLikelyTOML reports TOML when a table header is present or most lines are
// `key = value` assignments.
func isLikelyTOML(input string) bool {
	sectionCount := 0
	keyValueCount := 0
	nonEmptyCount := 0

	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		nonEmptyCount++

		if tomlSectionPattern.MatchString(line) {
			sectionCount++
		}
		if tomlKeyValuePattern.MatchString(line) {
			keyValueCount++
		}
	}

	if sectionCount > 0 {
		return true
	}
	return nonEmptyCount > 0 && keyValueCount > nonEmptyCount/2
}
