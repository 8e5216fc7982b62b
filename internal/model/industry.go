package model

import (
	"fmt"
	"strings"
)

// IndustryVertical names one business sector the engine can route to.
type IndustryVertical string

const (
	Manufacturing           IndustryVertical = "MANUFACTURING"
	FinanceInsurance        IndustryVertical = "FINANCE_INSURANCE"
	Government              IndustryVertical = "GOVERNMENT"
	HealthcareEducation     IndustryVertical = "HEALTHCARE_EDUCATION"
	RetailWholesale         IndustryVertical = "RETAIL_WHOLESALE"
	InformationTechnology   IndustryVertical = "INFORMATION_TECHNOLOGY"
	Construction            IndustryVertical = "CONSTRUCTION"
	EnergyUtilities         IndustryVertical = "ENERGY_UTILITIES"
	TransportationLogistics IndustryVertical = "TRANSPORTATION_LOGISTICS"
	ProfessionalServices    IndustryVertical = "PROFESSIONAL_SERVICES"
)

// AllIndustries lists every vertical in canonical order.
var AllIndustries = []IndustryVertical{
	Manufacturing,
	FinanceInsurance,
	Government,
	HealthcareEducation,
	RetailWholesale,
	InformationTechnology,
	Construction,
	EnergyUtilities,
	TransportationLogistics,
	ProfessionalServices,
}

var industryIndex = func() map[IndustryVertical]int {
	m := make(map[IndustryVertical]int, len(AllIndustries))
	for i, ind := range AllIndustries {
		m[ind] = i
	}
	return m
}()

// Valid reports whether the vertical is one of AllIndustries.
func (i IndustryVertical) Valid() bool {
	_, ok := industryIndex[i]
	return ok
}

// Rank returns the canonical position of the vertical, or -1 if unknown.
func (i IndustryVertical) Rank() int {
	if r, ok := industryIndex[i]; ok {
		return r
	}
	return -1
}

// ParseIndustry maps user input like "finance-insurance" or "Government"
// to a known vertical.
func ParseIndustry(s string) (IndustryVertical, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	ind := IndustryVertical(norm)
	if !ind.Valid() {
		return "", fmt.Errorf("unknown industry %q", s)
	}
	return ind, nil
}

// ParseIndustries parses a list, stopping at the first unknown name.
func ParseIndustries(names []string) ([]IndustryVertical, error) {
	out := make([]IndustryVertical, 0, len(names))
	for _, n := range names {
		ind, err := ParseIndustry(n)
		if err != nil {
			return nil, err
		}
		out = append(out, ind)
	}
	return out, nil
}

// DecisionType classifies an executive decision.
type DecisionType string

const (
	DecisionStrategic   DecisionType = "STRATEGIC"
	DecisionOperational DecisionType = "OPERATIONAL"
	DecisionFinancial   DecisionType = "FINANCIAL"
	DecisionTechnical   DecisionType = "TECHNICAL"
	DecisionCompliance  DecisionType = "COMPLIANCE"
	DecisionPersonnel   DecisionType = "PERSONNEL"
	DecisionCrisis      DecisionType = "CRISIS"
)

// Valid reports whether the decision type is known.
func (d DecisionType) Valid() bool {
	switch d {
	case DecisionStrategic, DecisionOperational, DecisionFinancial,
		DecisionTechnical, DecisionCompliance, DecisionPersonnel, DecisionCrisis:
		return true
	}
	return false
}

// ExecutiveRole is the C-suite seat a decision is made from.
type ExecutiveRole string

const (
	RoleCEO  ExecutiveRole = "CEO"
	RoleCFO  ExecutiveRole = "CFO"
	RoleCTO  ExecutiveRole = "CTO"
	RoleCOO  ExecutiveRole = "COO"
	RoleCISO ExecutiveRole = "CISO"
	RoleCMO  ExecutiveRole = "CMO"
	RoleCHRO ExecutiveRole = "CHRO"
	RoleCLO  ExecutiveRole = "CLO"
)

// Valid reports whether the role is known.
func (r ExecutiveRole) Valid() bool {
	switch r {
	case RoleCEO, RoleCFO, RoleCTO, RoleCOO, RoleCISO, RoleCMO, RoleCHRO, RoleCLO:
		return true
	}
	return false
}

// Priority orders routing rules.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// PriorityRank maps priority to a comparable integer, highest first.
var PriorityRank = map[Priority]int{
	PriorityHigh:   0,
	PriorityMedium: 1,
	PriorityLow:    2,
}

// Valid reports whether the priority is known.
func (p Priority) Valid() bool {
	_, ok := PriorityRank[p]
	return ok
}

// RiskLevel expresses risk tolerance for a context.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)
