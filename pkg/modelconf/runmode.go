package modelconf

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// RunMode selects where modeling steps execute.
type RunMode int

const (
	// RunModeLocal runs every step on the local machine.
	RunModeLocal RunMode = iota
	// RunModeDist runs steps on a distributed cluster.
	RunModeDist
	// RunModeMapRed is the legacy name for RunModeDist. It decodes to its own
	// value so documents round-trip unchanged; use IsDistributed to treat the
	// two alike.
	RunModeMapRed
)

var runModeNames = [...]string{
	RunModeLocal:  "LOCAL",
	RunModeDist:   "DIST",
	RunModeMapRed: "MAPRED",
}

// RunModes lists every recognized run mode in declaration order.
func RunModes() []RunMode {
	return []RunMode{RunModeLocal, RunModeDist, RunModeMapRed}
}

// ParseRunMode matches text case-insensitively against the run mode names.
func ParseRunMode(text string) (RunMode, error) {
	for i, name := range runModeNames {
		if strings.EqualFold(text, name) {
			return RunMode(i), nil
		}
	}
	return RunModeLocal, &InvalidRunModeError{Value: text}
}

func (m RunMode) valid() bool {
	return m >= RunModeLocal && int(m) < len(runModeNames)
}

func (m RunMode) String() string {
	if !m.valid() {
		return fmt.Sprintf("RunMode(%d)", int(m))
	}
	return runModeNames[m]
}

// IsDistributed reports whether m targets a cluster (DIST or MAPRED).
func (m RunMode) IsDistributed() bool {
	return m == RunModeDist || m == RunModeMapRed
}

// MarshalText implements encoding.TextMarshaler.
func (m RunMode) MarshalText() ([]byte, error) {
	if !m.valid() {
		return nil, &InvalidRunModeError{Value: m.String()}
	}
	return []byte(runModeNames[m]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *RunMode) UnmarshalText(text []byte) error {
	parsed, err := ParseRunMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// UnmarshalJSON accepts a JSON string; null leaves m unchanged.
func (m *RunMode) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("runMode must be a string: %w", err)
	}
	return m.UnmarshalText([]byte(text))
}

// MarshalYAML emits the canonical name.
func (m RunMode) MarshalYAML() (interface{}, error) {
	text, err := m.MarshalText()
	if err != nil {
		return nil, err
	}
	return string(text), nil
}

// UnmarshalYAML accepts a scalar; a null scalar leaves m unchanged.
func (m *RunMode) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("runMode must be a scalar at line %d", value.Line)
	}
	if value.Tag == "!!null" {
		return nil
	}
	return m.UnmarshalText([]byte(value.Value))
}

// Set implements pflag.Value.
func (m *RunMode) Set(text string) error {
	return m.UnmarshalText([]byte(text))
}

// Type implements pflag.Value.
func (m *RunMode) Type() string {
	return "runMode"
}
