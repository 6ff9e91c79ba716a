// Package modelconf holds the basic section of a ModelConfig document: the
// project name, author, description, config version, run mode, post-train
// switch and custom path overrides.
//
// A BasicConfig is not safe for concurrent mutation. Callers sharing one
// across goroutines must synchronize access themselves.
package modelconf

import (
	"fmt"
	"maps"
	"unicode/utf16"

	"dario.cat/mergo"

	"github.com/oakwood-commons/modelconf/pkg/settings"
)

// hashPrime mixes field hashes in Hash.
const hashPrime = 31

// BasicConfig is the "basic" section of ModelConfig.json.
//
// Name must be unique among model sets that run against the same storage;
// nothing here enforces that. Author is normally filled in from the current
// user by whoever creates the project.
type BasicConfig struct {
	Name        string            `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Author      string            `json:"author,omitempty" yaml:"author,omitempty" toml:"author,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Version     string            `json:"version" yaml:"version" toml:"version"`
	RunMode     RunMode           `json:"runMode" yaml:"runMode" toml:"runMode"`
	PostTrainOn bool              `json:"postTrainOn" yaml:"postTrainOn" toml:"postTrainOn"`
	CustomPaths map[string]string `json:"customPaths" yaml:"customPaths" toml:"customPaths"`
}

// NewBasicConfig returns a section with LOCAL run mode, post-training off,
// an empty CustomPaths map and Version set to settings.ConfigVersion.
func NewBasicConfig() *BasicConfig {
	return &BasicConfig{
		Version:     settings.ConfigVersion,
		RunMode:     RunModeLocal,
		PostTrainOn: false,
		CustomPaths: make(map[string]string, 1),
	}
}

// Equal compares only Name, Author and Description. Version, RunMode,
// PostTrainOn and CustomPaths never affect identity.
func (c *BasicConfig) Equal(other *BasicConfig) bool {
	if c == other {
		return true
	}
	if c == nil || other == nil {
		return false
	}
	return c.Name == other.Name &&
		c.Author == other.Author &&
		c.Description == other.Description
}

// Hash is consistent with Equal. Fields are folded in the order author,
// description, name, each contributing 0 when empty.
func (c *BasicConfig) Hash() int32 {
	if c == nil {
		return 0
	}
	result := int32(1)
	result = hashPrime*result + stringHash(c.Author)
	result = hashPrime*result + stringHash(c.Description)
	result = hashPrime*result + stringHash(c.Name)
	return result
}

// stringHash is the 31-polynomial hash over UTF-16 code units, so values match
// those produced by other tools reading the same documents.
func stringHash(s string) int32 {
	var h int32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = hashPrime*h + int32(unit)
	}
	return h
}

// Clone returns an independent copy. A nil CustomPaths stays nil in the copy.
// A copy built through NewBasicConfig would carry an empty map instead; the
// nil result is kept on purpose, so callers that need a non-nil map must
// normalize it themselves.
func (c *BasicConfig) Clone() *BasicConfig {
	if c == nil {
		return nil
	}
	return &BasicConfig{
		Name:        c.Name,
		Author:      c.Author,
		Description: c.Description,
		Version:     c.Version,
		RunMode:     c.RunMode,
		PostTrainOn: c.PostTrainOn,
		CustomPaths: maps.Clone(c.CustomPaths),
	}
}

// Merge applies the non-zero fields of overlay onto c. Custom paths are merged
// per key with overlay entries winning. A LOCAL run mode or false PostTrainOn
// in overlay cannot reset c since both are zero values.
func (c *BasicConfig) Merge(overlay *BasicConfig) error {
	if overlay == nil {
		return nil
	}
	src := overlay.Clone()
	if err := mergo.Merge(c, src, mergo.WithOverride); err != nil {
		return fmt.Errorf("failed to merge basic config: %w", err)
	}
	return nil
}

// AsMap returns the section as JSON-shaped values keyed by serialized field
// name. CustomPaths is always present, empty when unset.
func (c *BasicConfig) AsMap() map[string]interface{} {
	paths := make(map[string]interface{}, len(c.CustomPaths))
	for k, v := range c.CustomPaths {
		paths[k] = v
	}
	return map[string]interface{}{
		"name":        c.Name,
		"author":      c.Author,
		"description": c.Description,
		"version":     c.Version,
		"runMode":     c.RunMode.String(),
		"postTrainOn": c.PostTrainOn,
		"customPaths": paths,
	}
}
