package model

import "time"

// ExecutiveDecision is one decision submitted for routing.
type ExecutiveDecision struct {
	ID           string       `json:"id"`
	Type         DecisionType `json:"type"`
	Title        string       `json:"title,omitempty"`
	Description  string       `json:"description"`
	TimeHorizon  string       `json:"time_horizon,omitempty"`
	Stakeholders []string     `json:"stakeholders,omitempty"`
}

// IndustryContext is what handlers reason about. Handlers must treat it as
// read-only.
type IndustryContext struct {
	Description     string             `json:"description"`
	BusinessMetrics map[string]float64 `json:"business_metrics"`
	TimeHorizon     string             `json:"time_horizon,omitempty"`
	Stakeholders    []string           `json:"stakeholders,omitempty"`
	RiskTolerance   RiskLevel          `json:"risk_tolerance"`
}

// Clone returns a deep copy so concurrent handlers never share mutable maps.
func (c IndustryContext) Clone() IndustryContext {
	out := c
	if c.BusinessMetrics != nil {
		out.BusinessMetrics = make(map[string]float64, len(c.BusinessMetrics))
		for k, v := range c.BusinessMetrics {
			out.BusinessMetrics[k] = v
		}
	}
	if c.Stakeholders != nil {
		out.Stakeholders = append([]string(nil), c.Stakeholders...)
	}
	return out
}

// IndustryAnalysis is the read-only assessment a handler produces.
type IndustryAnalysis struct {
	Industry      IndustryVertical `json:"industry"`
	Summary       string           `json:"summary"`
	KeyFactors    []string         `json:"key_factors"`
	Risks         []string         `json:"risks"`
	Opportunities []string         `json:"opportunities"`
	Confidence    float64          `json:"confidence"`
}

// Recommendation is a handler's industry-specific enhancement of a decision.
type Recommendation struct {
	Industry        IndustryVertical `json:"industry"`
	Summary         string           `json:"summary"`
	Actions         []string         `json:"actions"`
	Risks           []string         `json:"risks,omitempty"`
	ComplianceNotes []string         `json:"compliance_notes,omitempty"`
	Confidence      float64          `json:"confidence"`
}

// ComplianceRequirement is one obligation a handler reports for a context.
type ComplianceRequirement struct {
	Industry    IndustryVertical `json:"industry"`
	Framework   string           `json:"framework"`
	Requirement string           `json:"requirement"`
	Mandatory   bool             `json:"mandatory"`
}

// RoutingResult records one (rule, industry) handler invocation.
type RoutingResult struct {
	Industry            IndustryVertical `json:"industry"`
	RuleID              string           `json:"rule_id"`
	Priority            Priority         `json:"priority"`
	Recommendation      *Recommendation  `json:"enhanced_recommendation,omitempty"`
	Error               string           `json:"error,omitempty"`
	Err                 error            `json:"-"`
	Success             bool             `json:"success"`
	ProcessingTimestamp time.Time        `json:"processing_timestamp"`
	Duration            time.Duration    `json:"duration_ns"`
}

// Clone returns a deep copy of the decision.
func (d ExecutiveDecision) Clone() ExecutiveDecision {
	if d.Stakeholders != nil {
		d.Stakeholders = append([]string(nil), d.Stakeholders...)
	}
	return d
}

// Clone returns a deep copy of the result, including its recommendation.
func (r RoutingResult) Clone() RoutingResult {
	if r.Recommendation != nil {
		rec := *r.Recommendation
		rec.Actions = cloneStrings(rec.Actions)
		rec.Risks = cloneStrings(rec.Risks)
		rec.ComplianceNotes = cloneStrings(rec.ComplianceNotes)
		r.Recommendation = &rec
	}
	return r
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
