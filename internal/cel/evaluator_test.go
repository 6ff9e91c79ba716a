package cel

import (
	"testing"

	"github.com/google/cel-go/common/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/modelconf/pkg/modelconf"
)

func sampleConfig() *modelconf.BasicConfig {
	cfg := modelconf.NewBasicConfig()
	cfg.Name = "proj1"
	cfg.Author = "alice"
	cfg.RunMode = modelconf.RunModeDist
	cfg.CustomPaths["train"] = "/data/train"
	return cfg
}

func TestNewEvaluator_CreatesValidEnvironment(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)
	require.NotNil(t, eval.env)
}

func TestEvaluateConfig(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	tests := []struct {
		name string
		expr string
		want interface{}
	}{
		{"field access", "_.name", "proj1"},
		{"run mode comparison", `_.runMode == "DIST"`, true},
		{"post train flag", "_.postTrainOn", false},
		{"custom path lookup", `_.customPaths["train"]`, "/data/train"},
		{"custom path count", "size(_.customPaths)", int64(1)},
		{"has custom path", `"test" in _.customPaths`, false},
		{"string extension", "_.author.upperAscii()", "ALICE"},
		{"distributed helper", "isDistributed(_.runMode)", true},
		{"list result", "[_.name, _.author]", []interface{}{"proj1", "alice"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval.EvaluateConfig(tt.expr, sampleConfig())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	_, err = eval.EvaluateConfig("_.name ==", sampleConfig())
	assert.ErrorContains(t, err, "compilation error")

	_, err = eval.EvaluateConfig("_.missing", sampleConfig())
	assert.ErrorContains(t, err, "eval error")

	_, err = eval.EvaluateConfig(`isDistributed("cluster")`, sampleConfig())
	assert.ErrorContains(t, err, "invalid run mode")
}

func TestMatches(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	ok, err := eval.Matches(`isDistributed(_.runMode) && _.name.startsWith("proj")`, sampleConfig())
	require.NoError(t, err)
	assert.True(t, ok)

	local := sampleConfig()
	local.RunMode = modelconf.RunModeLocal
	ok, err = eval.Matches("isDistributed(_.runMode)", local)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = eval.Matches("_.name", local)
	assert.ErrorContains(t, err, "want bool")
}

func TestToGo(t *testing.T) {
	assert.Nil(t, ToGo(nil))
	assert.Equal(t, true, ToGo(types.True))
	assert.Equal(t, int64(3), ToGo(types.Int(3)))
	assert.Equal(t, "x", ToGo(types.String("x")))
	assert.Equal(t, 1.5, ToGo(types.Double(1.5)))
}

func TestDiscoverCELFunctions(t *testing.T) {
	funcs, err := DiscoverCELFunctions()
	require.NoError(t, err)
	assert.Contains(t, funcs, "isDistributed")
	assert.Contains(t, funcs, "size")
	assert.NotContains(t, funcs, "_==_")
}
