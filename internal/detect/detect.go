package detect

import (
	"sort"

	"github.com/pauljbernard/headelf/internal/model"
	"github.com/pauljbernard/headelf/internal/pattern"
	"github.com/pauljbernard/headelf/internal/signal"
)

// Detector scores detection input against a pattern registry.
type Detector struct {
	Patterns *pattern.Registry
}

// New returns a Detector over the given patterns.
func New(patterns *pattern.Registry) *Detector {
	return &Detector{Patterns: patterns}
}

// DetectInAll scores every industry in candidates (registration order),
// skipping industries for which active returns false unless the input sets
// IncludeInactive. Results strictly above the threshold are returned sorted
// by descending confidence; ties keep candidate order.
func (d *Detector) DetectInAll(candidates []model.IndustryVertical, active func(model.IndustryVertical) bool, input model.DetectionInput) []model.DetectionResult {
	eligible := make([]model.IndustryVertical, 0, len(candidates))
	for _, ind := range candidates {
		if !input.IncludeInactive && active != nil && !active(ind) {
			continue
		}
		eligible = append(eligible, ind)
	}

	text := signal.AnalyzeText(d.Patterns, eligible, input.TextSignal())
	metrics := signal.AnalyzeMetrics(input.MetricsSignal())
	domain := signal.AnalyzeDomain(input.DomainSignal())
	compliance := signal.AnalyzeCompliance(input.ComplianceSignal())

	threshold := input.Threshold()
	results := make([]model.DetectionResult, 0, len(eligible))
	for _, ind := range eligible {
		confidence := Score(ind, text, metrics, domain, compliance)
		if confidence <= threshold {
			continue
		}
		matched := append([]string{}, text.Matched[ind]...)
		results = append(results, model.DetectionResult{
			Industry:           ind,
			Confidence:         confidence,
			MatchingPatterns:   matched,
			RecommendedActions: RecommendedActions(ind, confidence),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})
	return results
}
