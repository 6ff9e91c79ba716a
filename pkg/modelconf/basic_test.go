package modelconf

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/modelconf/pkg/settings"
)

func TestNewBasicConfig_Defaults(t *testing.T) {
	cfg := NewBasicConfig()

	assert.Empty(t, cfg.Name)
	assert.Empty(t, cfg.Author)
	assert.Empty(t, cfg.Description)
	assert.Equal(t, RunModeLocal, cfg.RunMode)
	assert.False(t, cfg.PostTrainOn)
	require.NotNil(t, cfg.CustomPaths)
	assert.Empty(t, cfg.CustomPaths)
	assert.Equal(t, settings.ConfigVersion, cfg.Version)
	assert.NotEmpty(t, cfg.Version)
}

func TestBasicConfig_Equal(t *testing.T) {
	base := func() *BasicConfig {
		c := NewBasicConfig()
		c.Name = "proj1"
		c.Author = "alice"
		return c
	}

	tests := []struct {
		name   string
		mutate func(*BasicConfig)
		want   bool
	}{
		{"identical", func(*BasicConfig) {}, true},
		{"different version", func(c *BasicConfig) { c.Version = "9.9.9" }, true},
		{"different run mode", func(c *BasicConfig) { c.RunMode = RunModeDist }, true},
		{"different post train", func(c *BasicConfig) { c.PostTrainOn = true }, true},
		{"different custom paths", func(c *BasicConfig) { c.CustomPaths["train"] = "/data/train" }, true},
		{"nil custom paths", func(c *BasicConfig) { c.CustomPaths = nil }, true},
		{"different name", func(c *BasicConfig) { c.Name = "proj2" }, false},
		{"name case differs", func(c *BasicConfig) { c.Name = "PROJ1" }, false},
		{"different author", func(c *BasicConfig) { c.Author = "bob" }, false},
		{"different description", func(c *BasicConfig) { c.Description = "churn model" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := base(), base()
			tt.mutate(b)

			assert.Equal(t, tt.want, a.Equal(b))
			assert.Equal(t, tt.want, b.Equal(a), "equality must be symmetric")
			if tt.want {
				assert.Equal(t, a.Hash(), b.Hash())
			}
		})
	}
}

func TestBasicConfig_EqualNil(t *testing.T) {
	cfg := NewBasicConfig()
	var nilCfg *BasicConfig

	assert.True(t, cfg.Equal(cfg))
	assert.False(t, cfg.Equal(nil))
	assert.False(t, nilCfg.Equal(cfg))
	assert.True(t, nilCfg.Equal(nil))
}

func TestBasicConfig_Hash(t *testing.T) {
	tests := []struct {
		name string
		cfg  BasicConfig
		want int32
	}{
		{"all empty", BasicConfig{}, 29791},
		{"name only", BasicConfig{Name: "a"}, 29791 + 97},
		{"description only", BasicConfig{Description: "a"}, 29791 + 97*31},
		{"author only", BasicConfig{Author: "a"}, 29791 + 97*31*31},
		{"two char name", BasicConfig{Name: "ab"}, 29791 + 3105},
		{"ignores other fields", BasicConfig{Version: "1.0", RunMode: RunModeDist, PostTrainOn: true}, 29791},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Hash())
		})
	}
}

func TestStringHash(t *testing.T) {
	assert.Equal(t, int32(0), stringHash(""))
	assert.Equal(t, int32(99162322), stringHash("hello"))
	// Overflow wraps to a negative value.
	assert.Equal(t, int32(-531983206), stringHash("hello world, hello"))
	// Supplementary characters hash as two UTF-16 code units.
	assert.Equal(t, int32(0xD83D*31+0xDE00), stringHash("\U0001F600"))
}

func TestBasicConfig_Clone(t *testing.T) {
	orig := NewBasicConfig()
	orig.Name = "proj1"
	orig.Author = "alice"
	orig.Description = "churn"
	orig.Version = "0.9.0"
	orig.RunMode = RunModeMapRed
	orig.PostTrainOn = true
	orig.CustomPaths["train"] = "/data/train"

	clone := orig.Clone()
	require.NotSame(t, orig, clone)
	assert.True(t, clone.Equal(orig))
	assert.Equal(t, orig, clone)

	clone.CustomPaths["test"] = "/data/test"
	assert.Len(t, orig.CustomPaths, 1)
	assert.Equal(t, "/data/train", orig.CustomPaths["train"])
	assert.Len(t, clone.CustomPaths, 2)
}

func TestBasicConfig_CloneKeepsNilPaths(t *testing.T) {
	orig := NewBasicConfig()
	orig.CustomPaths = nil

	clone := orig.Clone()
	assert.Nil(t, clone.CustomPaths)

	var nilCfg *BasicConfig
	assert.Nil(t, nilCfg.Clone())
}

func TestBasicConfig_Merge(t *testing.T) {
	cfg := NewBasicConfig()
	cfg.Name = "proj1"
	cfg.RunMode = RunModeDist
	cfg.CustomPaths["train"] = "/data/train"

	overlay := &BasicConfig{
		Author:      "bob",
		Version:     "1.0.0",
		CustomPaths: map[string]string{"train": "/mnt/train", "eval": "/mnt/eval"},
	}

	require.NoError(t, cfg.Merge(overlay))

	assert.Equal(t, "proj1", cfg.Name)
	assert.Equal(t, "bob", cfg.Author)
	assert.Equal(t, "1.0.0", cfg.Version)
	assert.Equal(t, RunModeDist, cfg.RunMode, "zero-valued overlay run mode keeps the current one")
	assert.Equal(t, map[string]string{"train": "/mnt/train", "eval": "/mnt/eval"}, cfg.CustomPaths)

	overlay.CustomPaths["extra"] = "/mnt/extra"
	assert.NotContains(t, cfg.CustomPaths, "extra")
}

func TestBasicConfig_MergeNil(t *testing.T) {
	cfg := NewBasicConfig()
	cfg.Name = "proj1"
	require.NoError(t, cfg.Merge(nil))
	assert.Equal(t, "proj1", cfg.Name)
}

func TestBasicConfig_AsMap(t *testing.T) {
	cfg := NewBasicConfig()
	cfg.Name = "proj1"
	cfg.RunMode = RunModeDist
	cfg.CustomPaths["train"] = "/data/train"

	m := cfg.AsMap()
	assert.Equal(t, "proj1", m["name"])
	assert.Equal(t, "DIST", m["runMode"])
	assert.Equal(t, false, m["postTrainOn"])
	assert.Equal(t, map[string]interface{}{"train": "/data/train"}, m["customPaths"])

	cfg.CustomPaths = nil
	assert.Equal(t, map[string]interface{}{}, cfg.AsMap()["customPaths"])
}

func TestBasicConfig_JSONIgnoresUnknownFields(t *testing.T) {
	cfg := NewBasicConfig()
	err := json.Unmarshal([]byte(`{"name":"proj1","owner":"ops","runMode":"dist"}`), cfg)
	require.NoError(t, err)

	assert.Equal(t, "proj1", cfg.Name)
	assert.Equal(t, RunModeDist, cfg.RunMode)
	assert.Equal(t, settings.ConfigVersion, cfg.Version)
	assert.NotNil(t, cfg.CustomPaths)
}

func TestBasicConfig_JSONEncoding(t *testing.T) {
	cfg := NewBasicConfig()
	cfg.Name = "proj1"
	cfg.RunMode = RunModeMapRed

	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"proj1","version":"`+settings.ConfigVersion+`","runMode":"MAPRED","postTrainOn":false,"customPaths":{}}`, string(data))
}
