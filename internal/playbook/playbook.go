// Package playbook provides the built-in industry handlers. Each industry's
// guidance is a YAML playbook; users can override one by placing a file in
// ~/.headelf/playbooks/.
package playbook

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/pauljbernard/headelf/internal/model"
)

// MetricLimit flags a context metric that falls outside its bounds.
type MetricLimit struct {
	Metric string   `yaml:"metric"`
	Min    *float64 `yaml:"min,omitempty"`
	Max    *float64 `yaml:"max,omitempty"`
	Risk   string   `yaml:"risk"`
}

// Requirement is one compliance obligation. AppliesWhen keywords restrict it
// to contexts whose description mentions one of them; empty means always.
type Requirement struct {
	Framework   string   `yaml:"framework"`
	Requirement string   `yaml:"requirement"`
	Mandatory   bool     `yaml:"mandatory"`
	AppliesWhen []string `yaml:"applies_when,omitempty"`
}

// Playbook is an industry's guidance. It implements industry.Handler.
type Playbook struct {
	Industry       model.IndustryVertical           `yaml:"industry"`
	Summary        string                           `yaml:"summary"`
	Signals        []string                         `yaml:"signals"`
	KeyFactors     []string                         `yaml:"key_factors"`
	Risks          []string                         `yaml:"risks"`
	Opportunities  []string                         `yaml:"opportunities"`
	Roles          map[model.ExecutiveRole][]string `yaml:"roles"`
	DecisionTypes  map[model.DecisionType][]string  `yaml:"decision_types"`
	DefaultActions []string                         `yaml:"default_actions"`
	MetricLimits   []MetricLimit                    `yaml:"metric_limits"`
	Compliance     []Requirement                    `yaml:"compliance"`
}

// Base confidence when nothing in the context matches a playbook signal.
const (
	baseConfidence  = 0.5
	signalIncrement = 0.1
	maxConfidence   = 0.95
)

func (p *Playbook) AnalyzeIndustryContext(ctx context.Context, ictx model.IndustryContext) (*model.IndustryAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	risks := append(append([]string{}, p.Risks...), p.metricRisks(ictx.BusinessMetrics)...)
	if ictx.RiskTolerance == model.RiskLow && len(risks) > 0 {
		risks = append(risks, "Low risk tolerance: treat the above as blocking until mitigated")
	}

	return &model.IndustryAnalysis{
		Industry:      p.Industry,
		Summary:       p.Summary,
		KeyFactors:    append([]string{}, p.KeyFactors...),
		Risks:         risks,
		Opportunities: append([]string{}, p.Opportunities...),
		Confidence:    p.confidence(ictx.Description),
	}, nil
}

func (p *Playbook) EnhanceDecision(ctx context.Context, role model.ExecutiveRole, d model.ExecutiveDecision, ictx model.IndustryContext) (*model.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var actions []string
	actions = append(actions, p.Roles[role]...)
	actions = append(actions, p.DecisionTypes[d.Type]...)
	actions = append(actions, p.DefaultActions...)

	var notes []string
	for _, r := range p.applicable(d.Description + " " + ictx.Description) {
		notes = append(notes, fmt.Sprintf("%s: %s", r.Framework, r.Requirement))
	}

	title := d.Title
	if title == "" {
		title = d.Description
	}

	return &model.Recommendation{
		Industry:        p.Industry,
		Summary:         fmt.Sprintf("%s guidance for %s on %q", p.Industry, role, title),
		Actions:         actions,
		Risks:           append(append([]string{}, p.Risks...), p.metricRisks(ictx.BusinessMetrics)...),
		ComplianceNotes: notes,
		Confidence:      p.confidence(d.Description + " " + ictx.Description),
	}, nil
}

func (p *Playbook) ComplianceRequirements(ctx context.Context, ictx model.IndustryContext) ([]model.ComplianceRequirement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reqs := p.applicable(ictx.Description)
	out := make([]model.ComplianceRequirement, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, model.ComplianceRequirement{
			Industry:    p.Industry,
			Framework:   r.Framework,
			Requirement: r.Requirement,
			Mandatory:   r.Mandatory,
		})
	}
	return out, nil
}

func (p *Playbook) applicable(text string) []Requirement {
	lower := strings.ToLower(text)
	var out []Requirement
	for _, r := range p.Compliance {
		if len(r.AppliesWhen) == 0 || containsAny(lower, r.AppliesWhen) {
			out = append(out, r)
		}
	}
	return out
}

func (p *Playbook) metricRisks(metrics map[string]float64) []string {
	var out []string
	for _, l := range p.MetricLimits {
		v, ok := lookupMetric(metrics, l.Metric)
		if !ok {
			continue
		}
		if (l.Min != nil && v < *l.Min) || (l.Max != nil && v > *l.Max) {
			out = append(out, l.Risk)
		}
	}
	return out
}

func (p *Playbook) confidence(text string) float64 {
	lower := strings.ToLower(text)
	hits := 0
	for _, s := range p.Signals {
		if s != "" && strings.Contains(lower, strings.ToLower(s)) {
			hits++
		}
	}
	return math.Min(baseConfidence+float64(hits)*signalIncrement, maxConfidence)
}

func lookupMetric(metrics map[string]float64, name string) (float64, bool) {
	if v, ok := metrics[name]; ok {
		return v, true
	}
	for k, v := range metrics {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return 0, false
}

func containsAny(lower string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// Validate checks that a playbook is well-formed.
func Validate(p *Playbook) error {
	if !p.Industry.Valid() {
		return fmt.Errorf("unknown industry %q", p.Industry)
	}
	if p.Summary == "" {
		return fmt.Errorf("%s: summary is required", p.Industry)
	}
	for role := range p.Roles {
		if !role.Valid() {
			return fmt.Errorf("%s: unknown role %q", p.Industry, role)
		}
	}
	for dt := range p.DecisionTypes {
		if !dt.Valid() {
			return fmt.Errorf("%s: unknown decision type %q", p.Industry, dt)
		}
	}
	for i, l := range p.MetricLimits {
		if l.Metric == "" || (l.Min == nil && l.Max == nil) {
			return fmt.Errorf("%s: metric_limits[%d]: metric and min or max are required", p.Industry, i)
		}
	}
	for i, r := range p.Compliance {
		if r.Framework == "" || r.Requirement == "" {
			return fmt.Errorf("%s: compliance[%d]: framework and requirement are required", p.Industry, i)
		}
	}
	return nil
}
