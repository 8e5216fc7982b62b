// Package detect combines signal scores into per-industry confidence and
// ranks the industries that clear the caller's threshold.
package detect

import (
	"math"

	"github.com/pauljbernard/headelf/internal/model"
	"github.com/pauljbernard/headelf/internal/signal"
)

// Signal weights. They sum to 1.0 so a confidence never exceeds 1.
const (
	WeightText       = 0.40
	WeightMetrics    = 0.25
	WeightDomain     = 0.20
	WeightCompliance = 0.15
)

// Score combines the four partial signals for one industry.
func Score(industry model.IndustryVertical, text signal.TextScore, metrics, domain, compliance signal.Partial) float64 {
	textNorm := text.Raw[industry] / math.Max(float64(text.TotalWords)*0.1, 1)

	confidence := clamp01(textNorm)*WeightText +
		clamp01(metrics[industry])*WeightMetrics +
		clamp01(domain[industry])*WeightDomain +
		clamp01(compliance[industry])*WeightCompliance

	return math.Min(confidence, 1.0)
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Action ladder text.
const (
	ActionApply    = "apply immediately"
	ActionConsider = "consider factors"
	ActionReview   = "review implications"
)

// RecommendedActions maps a confidence to the action ladder.
func RecommendedActions(industry model.IndustryVertical, confidence float64) []string {
	switch {
	case confidence > 0.8:
		return []string{ActionApply + ": " + string(industry) + " best practices"}
	case confidence > 0.6:
		return []string{ActionConsider + ": " + string(industry) + " specific factors"}
	case confidence > 0.4:
		return []string{ActionReview + ": " + string(industry) + " implications"}
	}
	return []string{}
}
