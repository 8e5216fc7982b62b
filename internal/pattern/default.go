package pattern

import "github.com/pauljbernard/headelf/internal/model"

// DefaultPatterns is the built-in keyword table used when no pattern file
// is configured.
var DefaultPatterns = map[model.IndustryVertical][]ContextPattern{
	model.Manufacturing: {
		{Keywords: []string{"manufacturing", "production", "factory", "assembly"}, Weight: 0.8},
		{Keywords: []string{"oee", "throughput", "defect", "yield", "lean"}, Weight: 0.7},
		{Keywords: []string{"supply chain", "inventory", "plant"}, Weight: 0.5},
	},
	model.FinanceInsurance: {
		{Keywords: []string{"bank", "banking", "loan", "credit", "insurance"}, Weight: 0.8},
		{Keywords: []string{"underwriting", "claims", "actuarial", "premium"}, Weight: 0.7},
		{Keywords: []string{"capital", "liquidity", "portfolio", "investment"}, Weight: 0.5},
	},
	model.Government: {
		{Keywords: []string{"government", "agency", "federal", "municipal"}, Weight: 0.8},
		{Keywords: []string{"procurement", "citizen", "public sector", "legislation"}, Weight: 0.7},
		{Keywords: []string{"grant", "policy", "oversight"}, Weight: 0.4},
	},
	model.HealthcareEducation: {
		{Keywords: []string{"patient", "hospital", "clinical", "healthcare"}, Weight: 0.8},
		{Keywords: []string{"student", "university", "curriculum", "enrollment"}, Weight: 0.7},
		{Keywords: []string{"readmission", "accreditation", "care"}, Weight: 0.5},
	},
	model.RetailWholesale: {
		{Keywords: []string{"retail", "store", "merchandise", "shopper"}, Weight: 0.8},
		{Keywords: []string{"wholesale", "distributor", "sku", "assortment"}, Weight: 0.7},
		{Keywords: []string{"sales", "promotion", "ecommerce"}, Weight: 0.5},
	},
	model.InformationTechnology: {
		{Keywords: []string{"software", "cloud", "saas", "platform"}, Weight: 0.8},
		{Keywords: []string{"devops", "kubernetes", "api", "microservice"}, Weight: 0.7},
		{Keywords: []string{"cybersecurity", "infrastructure", "data center"}, Weight: 0.5},
	},
	model.Construction: {
		{Keywords: []string{"construction", "contractor", "jobsite", "building"}, Weight: 0.8},
		{Keywords: []string{"permit", "subcontractor", "bid", "scaffold"}, Weight: 0.6},
	},
	model.EnergyUtilities: {
		{Keywords: []string{"utility", "grid", "energy", "power plant"}, Weight: 0.8},
		{Keywords: []string{"renewable", "solar", "pipeline", "outage"}, Weight: 0.7},
	},
	model.TransportationLogistics: {
		{Keywords: []string{"logistics", "freight", "shipping", "fleet"}, Weight: 0.8},
		{Keywords: []string{"warehouse", "carrier", "last mile", "routing"}, Weight: 0.6},
	},
	model.ProfessionalServices: {
		{Keywords: []string{"consulting", "advisory", "engagement", "billable"}, Weight: 0.8},
		{Keywords: []string{"client", "practice", "partner"}, Weight: 0.4},
	},
}

// Builtin returns a registry preloaded with DefaultPatterns in canonical
// industry order.
func Builtin() *Registry {
	r := NewRegistry()
	for _, ind := range model.AllIndustries {
		if p, ok := DefaultPatterns[ind]; ok {
			r.Register(ind, p)
		}
	}
	return r
}
