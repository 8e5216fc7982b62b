// Package routing matches executive decisions against routing rules.
package routing

import (
	"strings"

	"github.com/pauljbernard/headelf/internal/model"
)

// Engine evaluates decisions against an ordered rule set.
type Engine struct {
	rules []Rule
}

// NewEngine returns an engine over cfg's rules. A nil cfg uses defaults.
func NewEngine(cfg *Config) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Engine{rules: append([]Rule(nil), cfg.Rules...)}
}

// Rules returns a copy of the engine's rules in evaluation order.
func (e *Engine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// ApplicableRules returns every rule that matches the decision, in rule
// order. A rule matches when the decision type is listed (or the rule lists
// none) and at least one keyword appears in the lower-cased description
// (or the rule lists none).
//
// detected is accepted so callers can pass detection results, but matching
// does not consult it yet.
func (e *Engine) ApplicableRules(role model.ExecutiveRole, decision model.ExecutiveDecision, detected []model.DetectionResult) []Rule {
	_ = role
	_ = detected

	desc := strings.ToLower(decision.Description)
	var out []Rule
	for _, r := range e.rules {
		if matchRule(r, decision.Type, desc) {
			out = append(out, r)
		}
	}
	return out
}

func matchRule(r Rule, dt model.DecisionType, lowerDesc string) bool {
	if len(r.DecisionTypes) > 0 && !containsType(r.DecisionTypes, dt) {
		return false
	}
	if len(r.Keywords) == 0 {
		return true
	}
	for _, kw := range r.Keywords {
		if kw != "" && strings.Contains(lowerDesc, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func containsType(types []model.DecisionType, dt model.DecisionType) bool {
	for _, t := range types {
		if t == dt {
			return true
		}
	}
	return false
}

// SynthesizeContext builds the context handlers receive when the caller
// supplies none.
func SynthesizeContext(decision model.ExecutiveDecision) model.IndustryContext {
	return model.IndustryContext{
		Description:     decision.Description,
		BusinessMetrics: map[string]float64{},
		TimeHorizon:     decision.TimeHorizon,
		Stakeholders:    append([]string(nil), decision.Stakeholders...),
		RiskTolerance:   model.RiskMedium,
	}
}
