package model

import (
	"math"
	"strings"
)

// DefaultConfidenceThreshold applies when DetectionInput leaves it unset.
const DefaultConfidenceThreshold = 0.3

// ComplianceFramework references a regulatory framework by name.
type ComplianceFramework struct {
	Framework string `json:"framework" yaml:"framework"`
}

// DetectionInput carries every signal source for one detection call.
// All signal fields are optional.
type DetectionInput struct {
	Text                 string                `json:"text,omitempty"`
	BusinessMetrics      map[string]float64    `json:"business_metrics,omitempty"`
	Domain               string                `json:"domain,omitempty"`
	ComplianceFrameworks []ComplianceFramework `json:"compliance_frameworks,omitempty"`
	ConfidenceThreshold  *float64              `json:"confidence_threshold,omitempty"`
	IncludeInactive      bool                  `json:"include_inactive,omitempty"`
}

// Threshold returns the effective threshold. Out-of-range values are
// clamped into [0,1]; unset or NaN falls back to the default.
func (in DetectionInput) Threshold() float64 {
	if in.ConfidenceThreshold == nil || math.IsNaN(*in.ConfidenceThreshold) {
		return DefaultConfidenceThreshold
	}
	t := *in.ConfidenceThreshold
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}

// WithThreshold returns a copy of the input with the threshold set.
func (in DetectionInput) WithThreshold(t float64) DetectionInput {
	in.ConfidenceThreshold = &t
	return in
}

// TextSignal is the free-text slice of a DetectionInput.
type TextSignal struct {
	Text string
}

// MetricsSignal is the business-metrics slice of a DetectionInput.
type MetricsSignal struct {
	Metrics map[string]float64
}

// DomainSignal is the domain-name slice of a DetectionInput.
type DomainSignal struct {
	Domain string
}

// ComplianceSignal is the compliance-framework slice of a DetectionInput.
type ComplianceSignal struct {
	Frameworks []string
}

func (in DetectionInput) TextSignal() TextSignal { return TextSignal{Text: in.Text} }

func (in DetectionInput) MetricsSignal() MetricsSignal {
	return MetricsSignal{Metrics: in.BusinessMetrics}
}

func (in DetectionInput) DomainSignal() DomainSignal {
	return DomainSignal{Domain: strings.TrimSpace(in.Domain)}
}

func (in DetectionInput) ComplianceSignal() ComplianceSignal {
	names := make([]string, 0, len(in.ComplianceFrameworks))
	for _, f := range in.ComplianceFrameworks {
		names = append(names, f.Framework)
	}
	return ComplianceSignal{Frameworks: names}
}

// DetectionResult is one industry whose confidence exceeded the threshold.
type DetectionResult struct {
	Industry           IndustryVertical `json:"industry"`
	Confidence         float64          `json:"confidence"`
	MatchingPatterns   []string         `json:"matching_patterns"`
	RecommendedActions []string         `json:"recommended_actions"`
}

// Clone returns a deep copy of the input.
func (in DetectionInput) Clone() DetectionInput {
	if in.BusinessMetrics != nil {
		m := make(map[string]float64, len(in.BusinessMetrics))
		for k, v := range in.BusinessMetrics {
			m[k] = v
		}
		in.BusinessMetrics = m
	}
	if in.ComplianceFrameworks != nil {
		in.ComplianceFrameworks = append([]ComplianceFramework(nil), in.ComplianceFrameworks...)
	}
	if in.ConfidenceThreshold != nil {
		t := *in.ConfidenceThreshold
		in.ConfidenceThreshold = &t
	}
	return in
}

// Clone returns a deep copy of the result.
func (r DetectionResult) Clone() DetectionResult {
	r.MatchingPatterns = cloneStrings(r.MatchingPatterns)
	r.RecommendedActions = cloneStrings(r.RecommendedActions)
	return r
}
