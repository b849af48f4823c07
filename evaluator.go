package fields

import (
	"fmt"
	"time"
)

// RuleContext is the input of a rule evaluation: the entity being resolved
// and what changed since the previous resolution.
type RuleContext struct {
	Entity  Entity
	Changed map[string]bool
	Last    Entity
	Now     *time.Time
	Args    map[string]any
}

func (ctx RuleContext) withDefaults() RuleContext {
	if ctx.Now == nil {
		now := time.Now().UTC()
		ctx.Now = &now
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Changed == nil {
		ctx.Changed = map[string]bool{}
	}
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	return *ctx.withDefaults().Now
}

func (ctx RuleContext) label() string {
	if ctx.Entity.Type == "" {
		return ctx.Entity.ID
	}
	return ctx.Entity.Type + ":" + ctx.Entity.ID
}

// bindings returns the variables visible to an expression. Entity props are
// spread at the top level; reserved names win over props of the same name.
func (ctx RuleContext) bindings() map[string]any {
	ctx = ctx.withDefaults()
	props := ctx.Entity.Props
	if props == nil {
		props = map[string]any{}
	}
	last := ctx.Last.Props
	if last == nil {
		last = map[string]any{}
	}
	env := make(map[string]any, len(props)+7)
	for key, value := range props {
		env[key] = value
	}
	env["props"] = props
	env["changed"] = ctx.Changed
	env["last"] = last
	env["id"] = ctx.Entity.ID
	env["type"] = ctx.Entity.Type
	env["now"] = *ctx.Now
	env["args"] = ctx.Args
	return env
}

// Evaluator runs rule expressions.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule is a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

func evaluatorEngineName(e Evaluator) string {
	switch e.(type) {
	case nil:
		return "unknown"
	case *exprEvaluator:
		return "expr"
	case *celEvaluator:
		return "cel"
	default:
		if named, ok := e.(interface{ Engine() string }); ok {
			return named.Engine()
		}
		return "custom"
	}
}

// truthy interprets a rule result as a boolean.
func truthy(value any) (bool, error) {
	switch v := value.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		return v != "", nil
	case int:
		return v != 0, nil
	case int64:
		return v != 0, nil
	case uint64:
		return v != 0, nil
	case float64:
		return v != 0, nil
	default:
		return false, fmt.Errorf("rule result %T is not a boolean", value)
	}
}

// JSEvaluatorOption configures the JavaScript evaluator. Options are accepted
// in every build so callers compile without the js_eval tag.
type JSEvaluatorOption func(*jsSettings)

type jsSettings struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// JSWithProgramCache shares compiled programs through cache.
func JSWithProgramCache(cache ProgramCache) JSEvaluatorOption {
	return func(s *jsSettings) {
		s.cache = cache
	}
}

// JSWithFunctionRegistry exposes the helpers of registry to scripts.
func JSWithFunctionRegistry(registry *FunctionRegistry) JSEvaluatorOption {
	return func(s *jsSettings) {
		s.registry = registry.Clone()
	}
}
