// Package rules applies per-column text transformations to uploaded supplier
// values.
package rules

import (
	"regexp"
	"sync"

	"github.com/freitasmatheusrn/supplier-sync/pkg/formula"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Rule is the transformation configured for one column. Empty fields are
// no-ops.
type Rule struct {
	Prefix  string `json:"prefix"`
	Suffix  string `json:"suffix"`
	Find    string `json:"find"`
	Replace string `json:"replace"`
	Remove  string `json:"remove"`
	Formula string `json:"formula"`
}

func (r Rule) IsIdentity() bool {
	return r == Rule{}
}

// RuleSet maps a canonical column name to its rule. Columns without an entry
// are left unchanged.
type RuleSet map[string]Rule

func IdentitySet(columns []string) RuleSet {
	rs := make(RuleSet, len(columns))
	for _, c := range columns {
		rs[c] = Rule{}
	}
	return rs
}

func (rs RuleSet) For(column string) Rule {
	return rs[column]
}

// Clone returns a copy that can be modified independently.
func (rs RuleSet) Clone() RuleSet {
	out := make(RuleSet, len(rs))
	for k, v := range rs {
		out[k] = v
	}
	return out
}

// Positional holds the first three attribute values of the row being
// transformed, exposed to formulas as attr1, attr2 and attr3.
type Positional [3]string

type Engine struct {
	logger *zap.Logger

	mu       sync.Mutex
	patterns map[string]*regexp.Regexp
	invalid  map[string]error
}

func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{
		logger:   logger,
		patterns: make(map[string]*regexp.Regexp),
		invalid:  make(map[string]error),
	}
}

// Apply runs remove, find/replace, formula and prefix/suffix in that order.
// A step that fails leaves the value as it was before that step.
func (e *Engine) Apply(raw string, rule Rule, constants map[string]decimal.Decimal, attrs Positional) string {
	value := raw

	if rule.Remove != "" {
		if re, err := e.compile(rule.Remove); err != nil {
			e.logger.Warn("invalid remove pattern",
				zap.String("pattern", rule.Remove),
				zap.Error(err),
			)
		} else {
			value = re.ReplaceAllLiteralString(value, "")
		}
	}

	if rule.Find != "" {
		if re, err := e.compile(rule.Find); err != nil {
			e.logger.Warn("invalid find pattern",
				zap.String("pattern", rule.Find),
				zap.Error(err),
			)
		} else {
			value = re.ReplaceAllLiteralString(value, rule.Replace)
		}
	}

	if rule.Formula != "" {
		value = e.Formula(value, rule.Formula, constants, attrs)
	}

	return rule.Prefix + value + rule.Suffix
}

// Formula evaluates expr with x bound to the number value starts with, so
// "5kg" is read as 5. Values without a leading number and failing
// expressions return value unchanged.
func (e *Engine) Formula(value, expr string, constants map[string]decimal.Decimal, attrs Positional) string {
	x, ok := formula.ParseLeadingNumber(value)
	if !ok {
		return value
	}

	vars := make(formula.Vars, len(constants)+4)
	for name, v := range constants {
		vars[name] = v
	}
	for i, a := range attrs {
		if n, ok := formula.ParseNumber(a); ok {
			vars[attrName(i)] = n
		}
	}
	vars["x"] = x

	result, err := formula.Eval(expr, vars)
	if err != nil {
		e.logger.Warn("formula evaluation failed",
			zap.String("formula", expr),
			zap.String("value", value),
			zap.Error(err),
		)
		return value
	}
	return result.String()
}

func attrName(i int) string {
	switch i {
	case 0:
		return "attr1"
	case 1:
		return "attr2"
	default:
		return "attr3"
	}
}

func (e *Engine) compile(pattern string) (*regexp.Regexp, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if re, ok := e.patterns[pattern]; ok {
		return re, nil
	}
	if err, ok := e.invalid[pattern]; ok {
		return nil, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		e.invalid[pattern] = err
		return nil, err
	}
	e.patterns[pattern] = re
	return re, nil
}
