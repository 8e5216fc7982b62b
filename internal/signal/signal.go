// Package signal turns each kind of detection input into a partial
// per-industry score. Analyzers are pure and independent of each other.
package signal

import (
	"strings"

	"github.com/pauljbernard/headelf/internal/model"
	"github.com/pauljbernard/headelf/internal/pattern"
)

// Partial maps an industry to one signal's contribution. A missing key
// contributes zero.
type Partial map[model.IndustryVertical]float64

// TextScore is the raw text signal before normalization.
type TextScore struct {
	Raw        Partial
	TotalWords int
	// Matched holds the literal keywords that matched, per industry, in
	// pattern order.
	Matched map[model.IndustryVertical][]string
}

// AnalyzeText counts, per pattern, the keywords matched by any input token
// and accumulates count*weight into the industry's raw score.
func AnalyzeText(reg *pattern.Registry, industries []model.IndustryVertical, sig model.TextSignal) TextScore {
	tokens := pattern.Normalize(sig.Text)
	score := TextScore{
		Raw:        Partial{},
		TotalWords: len(tokens),
		Matched:    make(map[model.IndustryVertical][]string),
	}
	if len(tokens) == 0 || reg == nil {
		return score
	}

	distinct := uniqueTokens(tokens)
	for _, ind := range industries {
		var raw float64
		for _, p := range reg.PatternsFor(ind) {
			count := 0
			for _, kw := range p.Keywords {
				if anyTokenMatches(kw, distinct) {
					count++
					score.Matched[ind] = append(score.Matched[ind], kw)
				}
			}
			raw += float64(count) * p.Weight
		}
		if raw > 0 {
			score.Raw[ind] = raw
		}
	}
	return score
}

// anyTokenMatches expects keyword and tokens already lower-cased.
func anyTokenMatches(keyword string, tokens []string) bool {
	for _, tok := range tokens {
		if pattern.MatchesNormalized(keyword, tok) {
			return true
		}
	}
	return false
}

// uniqueTokens drops repeated tokens, keeping first-seen order.
func uniqueTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// MetricRule maps business metric field names to an industry indicator.
type MetricRule struct {
	Fields   []string
	Industry model.IndustryVertical
	Score    float64
}

// MetricRules is the fixed metric lookup table.
var MetricRules = []MetricRule{
	{Fields: []string{"revenue"}, Industry: model.RetailWholesale, Score: 0.5},
	{Fields: []string{"sales"}, Industry: model.RetailWholesale, Score: 0.6},
	{Fields: []string{"oee", "throughput", "defectRate"}, Industry: model.Manufacturing, Score: 0.8},
	{Fields: []string{"patientSatisfaction", "readmissionRate"}, Industry: model.HealthcareEducation, Score: 0.9},
	{Fields: []string{"loanPortfolio", "capitalRatio", "claimsRatio"}, Industry: model.FinanceInsurance, Score: 0.8},
	{Fields: []string{"uptime", "deploymentFrequency"}, Industry: model.InformationTechnology, Score: 0.7},
	{Fields: []string{"onTimeDelivery", "fleetUtilization"}, Industry: model.TransportationLogistics, Score: 0.8},
	{Fields: []string{"gridReliability", "energyOutput"}, Industry: model.EnergyUtilities, Score: 0.8},
	{Fields: []string{"billableUtilization"}, Industry: model.ProfessionalServices, Score: 0.8},
}

// AnalyzeMetrics scores the presence of known metric fields. Field names
// compare case-insensitively; several hits on one industry keep the maximum.
func AnalyzeMetrics(sig model.MetricsSignal) Partial {
	out := Partial{}
	if len(sig.Metrics) == 0 {
		return out
	}

	present := make(map[string]bool, len(sig.Metrics))
	for k := range sig.Metrics {
		present[strings.ToLower(k)] = true
	}

	for _, rule := range MetricRules {
		for _, f := range rule.Fields {
			if present[strings.ToLower(f)] {
				if rule.Score > out[rule.Industry] {
					out[rule.Industry] = rule.Score
				}
				break
			}
		}
	}
	return out
}

// Marker maps substrings of an input string to one or more industries.
type Marker struct {
	Substrings []string
	Industries []model.IndustryVertical
	Score      float64
}

// DomainMarkers is the fixed domain lookup table.
var DomainMarkers = []Marker{
	{Substrings: []string{".gov"}, Industries: []model.IndustryVertical{model.Government}, Score: 0.9},
	{Substrings: []string{"bank", "financial"}, Industries: []model.IndustryVertical{model.FinanceInsurance}, Score: 0.8},
	{Substrings: []string{"tech", "software"}, Industries: []model.IndustryVertical{model.InformationTechnology}, Score: 0.8},
	{Substrings: []string{".edu"}, Industries: []model.IndustryVertical{model.HealthcareEducation}, Score: 0.8},
}

// ComplianceMarkers is the fixed compliance-framework lookup table.
var ComplianceMarkers = []Marker{
	{Substrings: []string{"hipaa", "joint commission"}, Industries: []model.IndustryVertical{model.HealthcareEducation}, Score: 0.9},
	{Substrings: []string{"basel", "dodd-frank"}, Industries: []model.IndustryVertical{model.FinanceInsurance}, Score: 0.9},
	{Substrings: []string{"osha"}, Industries: []model.IndustryVertical{model.Manufacturing, model.Construction}, Score: 0.8},
	{Substrings: []string{"fedramp", "fisma"}, Industries: []model.IndustryVertical{model.Government}, Score: 0.9},
	{Substrings: []string{"pci"}, Industries: []model.IndustryVertical{model.RetailWholesale}, Score: 0.8},
	{Substrings: []string{"soc 2", "iso 27001"}, Industries: []model.IndustryVertical{model.InformationTechnology}, Score: 0.8},
	{Substrings: []string{"nerc"}, Industries: []model.IndustryVertical{model.EnergyUtilities}, Score: 0.9},
}

// AnalyzeDomain substring-tests the domain against DomainMarkers.
func AnalyzeDomain(sig model.DomainSignal) Partial {
	out := Partial{}
	if sig.Domain == "" {
		return out
	}
	applyMarkers(out, DomainMarkers, strings.ToLower(sig.Domain))
	return out
}

// AnalyzeCompliance substring-tests each framework name against
// ComplianceMarkers. A later entry overwrites an earlier score for the same
// industry instead of adding to it.
func AnalyzeCompliance(sig model.ComplianceSignal) Partial {
	out := Partial{}
	for _, fw := range sig.Frameworks {
		applyMarkers(out, ComplianceMarkers, strings.ToLower(fw))
	}
	return out
}

func applyMarkers(out Partial, markers []Marker, s string) {
	if s == "" {
		return
	}
	for _, m := range markers {
		for _, sub := range m.Substrings {
			if strings.Contains(s, sub) {
				for _, ind := range m.Industries {
					out[ind] = m.Score
				}
				break
			}
		}
	}
}
