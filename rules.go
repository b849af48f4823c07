package fields

import (
	"context"
	"time"
)

// FieldRule keeps the field Name in a resolved schema only while When
// evaluates truthy. An empty When always keeps the field.
type FieldRule struct {
	Name string `json:"name"`
	When string `json:"when,omitempty"`
}

// RuleSetOption configures a RuleSet.
type RuleSetOption func(*RuleSet)

// WithEvaluatorLogger records every rule evaluation.
func WithEvaluatorLogger(logger EvaluatorLogger) RuleSetOption {
	return func(rs *RuleSet) {
		if logger == nil {
			rs.logger = noopEvaluatorLogger{}
			return
		}
		rs.logger = logger
	}
}

// WithRuleArgs exposes args to every rule as the args variable.
func WithRuleArgs(args map[string]any) RuleSetOption {
	return func(rs *RuleSet) {
		rs.args = args
	}
}

// WithRuleClock overrides the now variable.
func WithRuleClock(now func() time.Time) RuleSetOption {
	return func(rs *RuleSet) {
		rs.now = now
	}
}

// RuleSet is a declarative ResolveFieldsFunc: it filters the requested fields
// by per-field conditions. Fields without a rule are always kept.
type RuleSet struct {
	evaluator Evaluator
	engine    string
	rules     map[string]compiledFieldRule
	logger    EvaluatorLogger
	args      map[string]any
	now       func() time.Time
}

type compiledFieldRule struct {
	FieldRule
	program CompiledRule
}

// NewRuleSet compiles rules with evaluator. A nil evaluator selects the expr
// engine.
func NewRuleSet(evaluator Evaluator, rules []FieldRule, opts ...RuleSetOption) (*RuleSet, error) {
	if evaluator == nil {
		evaluator = NewExprEvaluator()
	}
	rs := &RuleSet{
		evaluator: evaluator,
		engine:    evaluatorEngineName(evaluator),
		rules:     make(map[string]compiledFieldRule, len(rules)),
		logger:    noopEvaluatorLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(rs)
		}
	}
	for _, rule := range rules {
		if rule.Name == "" {
			return nil, ErrEmptyFieldName
		}
		compiled := compiledFieldRule{FieldRule: rule}
		if rule.When != "" {
			program, err := evaluator.Compile(rule.When)
			if err != nil {
				return nil, wrapEvaluationError(rs.engine, rule.When, rule.Name, err)
			}
			compiled.program = program
		}
		rs.rules[rule.Name] = compiled
	}
	return rs, nil
}

// RuleFields returns a ResolveFieldsFunc for rules. Compile errors are
// reported by every call of the returned hook.
func RuleFields(evaluator Evaluator, rules ...FieldRule) ResolveFieldsFunc {
	rs, err := NewRuleSet(evaluator, rules)
	if err != nil {
		return func(context.Context, Entity, ResolveParams) (Schema, error) {
			return Schema{}, err
		}
	}
	return rs.ResolveFields
}

// ResolveFields implements ResolveFieldsFunc.
func (rs *RuleSet) ResolveFields(ctx context.Context, entity Entity, params ResolveParams) (Schema, error) {
	rc := RuleContext{
		Entity:  entity,
		Changed: params.Changed,
		Last:    params.LastData,
		Args:    rs.args,
	}
	if rs.now != nil {
		now := rs.now()
		rc.Now = &now
	}
	rc = rc.withDefaults()

	var failed error
	out := params.Fields.Filter(func(name string, _ Field) bool {
		if failed != nil {
			return false
		}
		if err := ctx.Err(); err != nil {
			failed = err
			return false
		}
		rule, ok := rs.rules[name]
		if !ok || rule.program == nil {
			return true
		}
		keep, err := rs.evaluate(rc, rule)
		if err != nil {
			failed = err
			return false
		}
		return keep
	})
	if failed != nil {
		return Schema{}, failed
	}
	return out, nil
}

func (rs *RuleSet) evaluate(rc RuleContext, rule compiledFieldRule) (bool, error) {
	start := time.Now()
	value, err := rule.program.Evaluate(rc)
	keep := false
	if err == nil {
		keep, err = truthy(value)
	}
	err = wrapEvaluationError(rs.engine, rule.When, rule.Name, err)
	rs.logger.LogEvaluation(EvaluatorLogEvent{
		Engine:   rs.engine,
		Expr:     rule.When,
		Field:    rule.Name,
		EntityID: rc.Entity.ID,
		Result:   keep,
		Duration: time.Since(start),
		Err:      err,
	})
	return keep, err
}
