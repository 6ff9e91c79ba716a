package core

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/oakwood-commons/modelconf/internal/formatter"
	"github.com/oakwood-commons/modelconf/pkg/loader"
	"github.com/oakwood-commons/modelconf/pkg/logger"
	"github.com/oakwood-commons/modelconf/pkg/modelconf"
)

const document = `{"basic": {"name": "proj1", "author": "alice", "runMode": "DIST", "customPaths": {"train": "/data/train"}}, "train": {"baggingNum": 5}}`

type stubEvaluator struct{ called string }

func (s *stubEvaluator) EvaluateConfig(expr string, _ *modelconf.BasicConfig) (interface{}, error) {
	s.called = expr
	return "stubbed", nil
}

func (s *stubEvaluator) Matches(expr string, _ *modelconf.BasicConfig) (bool, error) {
	s.called = expr
	return true, nil
}

type stubFormatter struct{}

func (stubFormatter) Render(cfg *modelconf.BasicConfig, _ formatter.Options) (string, error) {
	return "rendered:" + cfg.Name, nil
}

func (stubFormatter) Stringify(v interface{}) string { return "str" }

func TestEngineLoadDocument(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	engine, err := New(WithLogger(*logger.NewFromCore(core)))
	require.NoError(t, err)

	doc, err := engine.Load([]byte(document), "ModelConfig.json", false)
	require.NoError(t, err)
	assert.Equal(t, "proj1", doc.Basic.Name)
	assert.Equal(t, loader.FormatJSON, doc.Format)
	assert.Contains(t, doc.Raw, "train")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "loaded basic section", entry.Message)
	assert.Equal(t, "proj1", entry.ContextMap()[logger.ConfigNameKey])
	assert.Equal(t, "ModelConfig.json", entry.ContextMap()[logger.SourceKey])
}

func TestEngineLoadSection(t *testing.T) {
	engine, err := New()
	require.NoError(t, err)
	assert.Equal(t, logger.GetNoopLogger().GetSink(), engine.Logger.GetSink(), "default logger discards")

	doc, err := engine.Load([]byte("name: proj1\nrunMode: mapred\n"), "stdin", true)
	require.NoError(t, err)
	assert.Nil(t, doc.Raw)
	assert.Equal(t, modelconf.RunModeMapRed, doc.Basic.RunMode)
}

func TestEngineLoadErrors(t *testing.T) {
	engine, err := New()
	require.NoError(t, err)

	_, err = engine.Load([]byte(`{"train": {}}`), "a.json", false)
	assert.ErrorIs(t, err, loader.ErrMissingBasicSection)
	assert.ErrorContains(t, err, "failed to load a.json")

	_, err = engine.Load([]byte(`{"basic": {"runMode": "cluster"}}`), "b.json", false)
	var invalid *modelconf.InvalidRunModeError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "cluster", invalid.Value)
}

func TestEngineNewProject(t *testing.T) {
	engine, err := New()
	require.NoError(t, err)

	doc, err := engine.NewProject("alice", &modelconf.BasicConfig{
		Name:        "proj1",
		RunMode:     modelconf.RunModeDist,
		CustomPaths: map[string]string{"train": "/data/train"},
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", doc.Basic.Author)
	assert.Equal(t, "proj1", doc.Basic.Name)
	assert.Equal(t, modelconf.RunModeDist, doc.Basic.RunMode)
	assert.NotEmpty(t, doc.Basic.Version)
	assert.Equal(t, map[string]string{"train": "/data/train"}, doc.Basic.CustomPaths)

	doc, err = engine.NewProject("bob", nil)
	require.NoError(t, err)
	assert.Equal(t, "bob", doc.Basic.Author)
	assert.NotNil(t, doc.Basic.CustomPaths)
}

func TestEngineCloneAs(t *testing.T) {
	engine, err := New()
	require.NoError(t, err)
	doc, err := engine.Load([]byte(document), "doc", false)
	require.NoError(t, err)

	clone := engine.CloneAs(doc, "proj2")
	assert.Equal(t, "proj2", clone.Basic.Name)
	assert.Equal(t, "proj1", doc.Basic.Name)

	clone.Basic.CustomPaths["test"] = "/data/test"
	assert.Len(t, doc.Basic.CustomPaths, 1)

	same := engine.CloneAs(doc, "")
	assert.True(t, same.Basic.Equal(doc.Basic))
	assert.NotSame(t, same.Basic, doc.Basic)
}

func TestEngineCompare(t *testing.T) {
	engine, err := New()
	require.NoError(t, err)

	a := modelconf.NewBasicConfig()
	a.Name, a.Author = "proj1", "alice"
	b := a.Clone()
	b.Version = "9.9.9"

	cmp := engine.Compare(a, b)
	assert.True(t, cmp.Equal)
	assert.Equal(t, cmp.HashA, cmp.HashB)

	b.Name = "proj2"
	cmp = engine.Compare(a, b)
	assert.False(t, cmp.Equal)
}

func TestEngineEvaluate(t *testing.T) {
	engine, err := New()
	require.NoError(t, err)
	doc, err := engine.Load([]byte(document), "doc", false)
	require.NoError(t, err)

	got, err := engine.Evaluate(`_.runMode == "DIST"`, doc.Basic)
	require.NoError(t, err)
	assert.Equal(t, true, got)
}

func TestEngineMatches(t *testing.T) {
	engine, err := New()
	require.NoError(t, err)
	cfg := modelconf.NewBasicConfig()
	cfg.RunMode = modelconf.RunModeMapRed

	ok, err := engine.Matches(`isDistributed(_.runMode)`, cfg)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = engine.Matches(`_.postTrainOn`, cfg)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = engine.Matches(`_.name`, cfg)
	assert.ErrorContains(t, err, "want bool")

	var unset *Engine
	_, err = unset.Matches(`true`, cfg)
	assert.Error(t, err)
}

func TestEngineUsesInjectedPieces(t *testing.T) {
	eval := &stubEvaluator{}
	engine, err := New(WithEvaluator(eval), WithFormatter(stubFormatter{}))
	require.NoError(t, err)

	cfg := modelconf.NewBasicConfig()
	cfg.Name = "proj1"

	got, err := engine.Evaluate("_.name", cfg)
	require.NoError(t, err)
	assert.Equal(t, "stubbed", got)
	assert.Equal(t, "_.name", eval.called)

	ok, err := engine.Matches("_.postTrainOn", cfg)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "_.postTrainOn", eval.called)

	out, err := engine.Render(cfg, formatter.Options{})
	require.NoError(t, err)
	assert.Equal(t, "rendered:proj1", out)
	assert.Equal(t, "str", engine.Stringify(1))
}

func TestEngineEvaluateWithoutEvaluator(t *testing.T) {
	var engine *Engine
	_, err := engine.Evaluate("_.name", modelconf.NewBasicConfig())
	assert.Error(t, err)
}

func TestEngineWrite(t *testing.T) {
	engine, err := New()
	require.NoError(t, err)
	doc, err := engine.Load([]byte(document), "doc", false)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, engine.Write(&buf, doc, ""))
	assert.Contains(t, buf.String(), `"baggingNum": 5`)

	buf.Reset()
	require.NoError(t, engine.Write(&buf, doc, loader.FormatYAML))
	assert.Contains(t, buf.String(), "runMode: DIST")

	buf.Reset()
	section := &Document{Basic: modelconf.NewBasicConfig()}
	require.NoError(t, engine.Write(&buf, section, ""))
	assert.Contains(t, buf.String(), `"basic"`)
}
