// Package core ties loading, expression evaluation and rendering of the
// basic section together behind small interfaces so callers can swap any
// piece.
package core

import (
	"fmt"
	"io"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/modelconf/internal/cel"
	"github.com/oakwood-commons/modelconf/internal/formatter"
	"github.com/oakwood-commons/modelconf/pkg/loader"
	"github.com/oakwood-commons/modelconf/pkg/logger"
	"github.com/oakwood-commons/modelconf/pkg/modelconf"
)

// Evaluator evaluates expressions against a basic section.
type Evaluator interface {
	EvaluateConfig(expr string, cfg *modelconf.BasicConfig) (interface{}, error)
	Matches(expr string, cfg *modelconf.BasicConfig) (bool, error)
}

// Formatter renders a basic section and expression results.
type Formatter interface {
	Render(cfg *modelconf.BasicConfig, opts formatter.Options) (string, error)
	Stringify(v interface{}) string
}

// Document is a parsed ModelConfig document together with its decoded basic
// section. Raw keeps every other section so the document can be written back.
type Document = loader.Document

// Comparison is the result of Compare.
type Comparison struct {
	Equal bool
	HashA int32
	HashB int32
}

// Engine provides the shared API used by the CLI.
type Engine struct {
	Evaluator Evaluator
	Formatter Formatter
	Logger    logr.Logger
}

// Option configures the Engine.
type Option func(*Engine)

// WithEvaluator sets a custom evaluator.
func WithEvaluator(e Evaluator) Option {
	return func(c *Engine) {
		c.Evaluator = e
	}
}

// WithFormatter sets a custom formatter.
func WithFormatter(f Formatter) Option {
	return func(c *Engine) {
		c.Formatter = f
	}
}

// WithLogger sets the logger used for load and transform events.
func WithLogger(lgr logr.Logger) Option {
	return func(c *Engine) {
		c.Logger = lgr
	}
}

// New creates an Engine with the CEL evaluator, the default formatter and a
// discard logger unless overridden.
func New(opts ...Option) (*Engine, error) {
	engine := &Engine{Logger: *logger.GetNoopLogger()}
	for _, opt := range opts {
		opt(engine)
	}
	if engine.Evaluator == nil {
		eval, err := cel.NewEvaluator()
		if err != nil {
			return nil, err
		}
		engine.Evaluator = eval
	}
	if engine.Formatter == nil {
		engine.Formatter = defaultFormatter{}
	}
	return engine, nil
}

// Load parses data as a full document, or as a bare basic section when
// sectionOnly is set.
func (e *Engine) Load(data []byte, source string, sectionOnly bool) (*Document, error) {
	decode := loader.DecodeBasic
	if sectionOnly {
		decode = loader.DecodeBasicSection
	}
	doc, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", source, err)
	}
	e.configLogger(doc.Basic).V(1).Info("loaded basic section", logger.SourceKey, source, "format", string(doc.Format))
	return doc, nil
}

// NewProject returns a document for a new model set: defaults, the given
// author, then overlay merged on top.
func (e *Engine) NewProject(author string, overlay *modelconf.BasicConfig) (*Document, error) {
	cfg := modelconf.NewBasicConfig()
	cfg.Author = author
	if err := cfg.Merge(overlay); err != nil {
		return nil, err
	}
	e.configLogger(cfg).V(1).Info("created basic section")
	return &Document{Basic: cfg, Format: loader.FormatJSON}, nil
}

// CloneAs copies doc with a deep-copied basic section renamed to name. An
// empty name keeps the original name.
func (e *Engine) CloneAs(doc *Document, name string) *Document {
	cfg := doc.Basic.Clone()
	if name != "" {
		cfg.Name = name
	}
	e.configLogger(cfg).V(1).Info("cloned basic section", "from", doc.Basic.Name)
	return &Document{Raw: doc.Raw, Basic: cfg, Format: doc.Format}
}

// Compare reports identity equality and the hashes of both sections.
func (e *Engine) Compare(a, b *modelconf.BasicConfig) Comparison {
	return Comparison{
		Equal: a.Equal(b),
		HashA: a.Hash(),
		HashB: b.Hash(),
	}
}

// Evaluate runs the evaluator against cfg.
func (e *Engine) Evaluate(expr string, cfg *modelconf.BasicConfig) (interface{}, error) {
	if e == nil || e.Evaluator == nil {
		return nil, fmt.Errorf("evaluator is not configured")
	}
	return e.Evaluator.EvaluateConfig(expr, cfg)
}

// Matches evaluates a boolean expression against cfg.
func (e *Engine) Matches(expr string, cfg *modelconf.BasicConfig) (bool, error) {
	if e == nil || e.Evaluator == nil {
		return false, fmt.Errorf("evaluator is not configured")
	}
	return e.Evaluator.Matches(expr, cfg)
}

// Render renders cfg with the configured formatter.
func (e *Engine) Render(cfg *modelconf.BasicConfig, opts formatter.Options) (string, error) {
	e.ensureFormatter()
	return e.Formatter.Render(cfg, opts)
}

// Stringify renders an expression result for display.
func (e *Engine) Stringify(v interface{}) string {
	e.ensureFormatter()
	return e.Formatter.Stringify(v)
}

// Write encodes doc in format, or in the document's own format when format
// is empty.
func (e *Engine) Write(w io.Writer, doc *Document, format loader.Format) error {
	if format == "" {
		format = doc.Format
	}
	if format == "" {
		format = loader.FormatJSON
	}
	return loader.EncodeDocument(w, doc.Raw, doc.Basic, format)
}

func (e *Engine) configLogger(cfg *modelconf.BasicConfig) *logr.Logger {
	lgr := e.Logger
	return logger.ForConfig(&lgr, cfg.Name, cfg.Version, cfg.RunMode.String())
}

type defaultFormatter struct{}

func (defaultFormatter) Render(cfg *modelconf.BasicConfig, opts formatter.Options) (string, error) {
	return formatter.Render(cfg, opts)
}

func (defaultFormatter) Stringify(v interface{}) string {
	return formatter.Stringify(v)
}

func (e *Engine) ensureFormatter() {
	if e.Formatter == nil {
		e.Formatter = defaultFormatter{}
	}
}
