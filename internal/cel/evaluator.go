// Package cel evaluates CEL expressions against a basic section. The section
// is bound to the variable "_" in the shape produced by BasicConfig.AsMap.
package cel

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	celext "github.com/google/cel-go/ext"

	"github.com/oakwood-commons/modelconf/pkg/modelconf"
)

// RootVariable is the name the section is bound to.
const RootVariable = "_"

// Evaluator compiles and evaluates CEL expressions.
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator creates an evaluator with the string, list and math extensions
// plus isDistributed(string).
func NewEvaluator() (*Evaluator, error) {
	env, err := newStandardCELEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

func newStandardCELEnv(opts ...cel.EnvOption) (*cel.Env, error) {
	allOpts := make([]cel.EnvOption, 0, 5+len(opts))
	allOpts = append(allOpts,
		cel.Variable(RootVariable, cel.DynType),
		celext.Strings(),
		celext.Lists(),
		celext.Math(),
		isDistributedFunction(),
	)
	allOpts = append(allOpts, opts...)
	return cel.NewEnv(allOpts...)
}

// isDistributedFunction declares isDistributed(runMode) which accepts any
// letter case and the MAPRED alias.
func isDistributedFunction() cel.EnvOption {
	return cel.Function("isDistributed",
		cel.Overload("isDistributed_string", []*cel.Type{cel.StringType}, cel.BoolType,
			cel.UnaryBinding(func(v ref.Val) ref.Val {
				s, ok := v.(types.String)
				if !ok {
					return types.MaybeNoSuchOverloadErr(v)
				}
				mode, err := modelconf.ParseRunMode(string(s))
				if err != nil {
					return types.NewErr("%s", err.Error())
				}
				return types.Bool(mode.IsDistributed())
			}),
		),
	)
}

// Evaluate compiles expr and runs it with data bound to "_".
func (e *Evaluator) Evaluate(expr string, data interface{}) (interface{}, error) {
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}

	result, _, err := prg.Eval(map[string]interface{}{
		RootVariable: data,
	})
	if err != nil {
		return nil, fmt.Errorf("eval error: %w", err)
	}
	return ToGo(result), nil
}

// EvaluateConfig evaluates expr against cfg.
func (e *Evaluator) EvaluateConfig(expr string, cfg *modelconf.BasicConfig) (interface{}, error) {
	return e.Evaluate(expr, cfg.AsMap())
}

// Matches evaluates a boolean expression against cfg.
func (e *Evaluator) Matches(expr string, cfg *modelconf.BasicConfig) (bool, error) {
	out, err := e.EvaluateConfig(expr, cfg)
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("expression %q returned %T, want bool", expr, out)
	}
	return b, nil
}

// ToGo converts CEL values to plain Go values, recursing into lists and maps.
func ToGo(val ref.Val) interface{} {
	if val == nil {
		return nil
	}

	switch v := val.(type) {
	case types.Bool:
		return bool(v)
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.String:
		return string(v)
	case types.Bytes:
		return []byte(v)
	case types.Null:
		return nil
	}

	inner := val.Value()
	switch v := inner.(type) {
	case []ref.Val:
		out := make([]interface{}, len(v))
		for i, elem := range v {
			out[i] = ToGo(elem)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, elem := range v {
			out[i] = toGoValue(elem)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, elem := range v {
			out[k] = toGoValue(elem)
		}
		return out
	case map[ref.Val]ref.Val:
		out := make(map[string]interface{}, len(v))
		for k, elem := range v {
			out[fmt.Sprintf("%v", k.Value())] = ToGo(elem)
		}
		return out
	}
	return inner
}

func toGoValue(v interface{}) interface{} {
	if rv, ok := v.(ref.Val); ok {
		return ToGo(rv)
	}
	return v
}

// DiscoverCELFunctions lists the callable function and macro names of the
// standard environment, without operators.
func DiscoverCELFunctions() ([]string, error) {
	env, err := newStandardCELEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	seen := make(map[string]bool)
	for name := range env.Functions() {
		if !isOperator(name) {
			seen[name] = true
		}
	}
	for _, m := range env.Macros() {
		if !isOperator(m.Function()) {
			seen[m.Function()] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func isOperator(name string) bool {
	if strings.HasPrefix(name, "@") {
		return true
	}
	if strings.HasPrefix(name, "_") && strings.HasSuffix(name, "_") {
		return true
	}
	switch name {
	case "!_", "-_", "_[_]", "_?_:_":
		return true
	}
	return false
}
