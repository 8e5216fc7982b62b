package routing

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pauljbernard/headelf/internal/model"
)

// Rule routes decisions to industries. Empty DecisionTypes or Keywords act
// as wildcards.
type Rule struct {
	ID               string                   `yaml:"id"                json:"id"`
	Description      string                   `yaml:"description"       json:"description,omitempty"`
	DecisionTypes    []model.DecisionType     `yaml:"decision_types"    json:"decision_types,omitempty"`
	Keywords         []string                 `yaml:"keywords"          json:"keywords,omitempty"`
	TargetIndustries []model.IndustryVertical `yaml:"target_industries" json:"target_industries"`
	Priority         model.Priority           `yaml:"priority"          json:"priority"`
}

// Config holds the ordered routing rules.
type Config struct {
	Rules []Rule `yaml:"rules" json:"rules"`
}

// DefaultConfig returns the built-in routing rules.
func DefaultConfig() *Config {
	return &Config{
		Rules: []Rule{
			{
				ID:               "financial-planning",
				Description:      "budget, capital and investment decisions",
				DecisionTypes:    []model.DecisionType{model.DecisionStrategic, model.DecisionFinancial},
				Keywords:         []string{"budget", "capital", "investment", "acquisition", "funding"},
				TargetIndustries: []model.IndustryVertical{model.FinanceInsurance},
				Priority:         model.PriorityHigh,
			},
			{
				ID:               "regulatory-compliance",
				Description:      "compliance decisions in regulated sectors",
				DecisionTypes:    []model.DecisionType{model.DecisionCompliance},
				TargetIndustries: []model.IndustryVertical{model.FinanceInsurance, model.HealthcareEducation, model.Government},
				Priority:         model.PriorityHigh,
			},
			{
				ID:               "technology-platform",
				Description:      "platform, cloud and security decisions",
				DecisionTypes:    []model.DecisionType{model.DecisionTechnical, model.DecisionStrategic},
				Keywords:         []string{"software", "cloud", "platform", "security", "data"},
				TargetIndustries: []model.IndustryVertical{model.InformationTechnology},
				Priority:         model.PriorityMedium,
			},
			{
				ID:               "operations-supply-chain",
				Description:      "production, inventory and logistics decisions",
				DecisionTypes:    []model.DecisionType{model.DecisionOperational},
				Keywords:         []string{"supply chain", "production", "inventory", "plant", "logistics"},
				TargetIndustries: []model.IndustryVertical{model.Manufacturing, model.RetailWholesale, model.TransportationLogistics},
				Priority:         model.PriorityMedium,
			},
			{
				ID:               "public-sector",
				Description:      "contracts and programs with public bodies",
				Keywords:         []string{"government", "public sector", "contract award", "regulator"},
				TargetIndustries: []model.IndustryVertical{model.Government},
				Priority:         model.PriorityMedium,
			},
			{
				ID:               "workforce-safety",
				Description:      "workforce and site safety decisions",
				DecisionTypes:    []model.DecisionType{model.DecisionPersonnel, model.DecisionCrisis},
				Keywords:         []string{"safety", "incident", "injury", "workforce"},
				TargetIndustries: []model.IndustryVertical{model.Manufacturing, model.Construction, model.EnergyUtilities},
				Priority:         model.PriorityLow,
			},
		},
	}
}

// DefaultPath returns ~/.headelf/rules.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".headelf", "rules.yaml")
}

// LoadConfig loads routing rules from a YAML file.
// Empty path falls back to ~/.headelf/rules.yaml.
// Missing file returns defaults. Invalid YAML or rules return an error.
func LoadConfig(path string) (*Config, error) {
	cfg, _, err := LoadConfigWithHash(path)
	return cfg, err
}

// LoadConfigWithHash loads routing rules and returns the SHA-256 of the raw
// file. When no file exists the hash is the SHA-256 of empty input.
func LoadConfigWithHash(path string) (*Config, string, error) {
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		h := sha256.Sum256(nil)
		return DefaultConfig(), "sha256:" + hex.EncodeToString(h[:]), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			h := sha256.Sum256(nil)
			return DefaultConfig(), "sha256:" + hex.EncodeToString(h[:]), nil
		}
		return nil, "", fmt.Errorf("failed to read routing rules: %w", err)
	}

	h := sha256.Sum256(data)
	hash := "sha256:" + hex.EncodeToString(h[:])

	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, "", err
	}
	return cfg, hash, nil
}

// ParseConfig parses and validates a rules document. A document without a
// rules key keeps the built-in rules.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse routing rules: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize upper-cases enum fields and lower-cases keywords so YAML
// authors can write either case.
func (c *Config) normalize() {
	for i := range c.Rules {
		r := &c.Rules[i]
		for j, dt := range r.DecisionTypes {
			r.DecisionTypes[j] = model.DecisionType(strings.ToUpper(strings.TrimSpace(string(dt))))
		}
		for j, kw := range r.Keywords {
			r.Keywords[j] = strings.ToLower(strings.TrimSpace(kw))
		}
		for j, ind := range r.TargetIndustries {
			if parsed, err := model.ParseIndustry(string(ind)); err == nil {
				r.TargetIndustries[j] = parsed
			}
		}
		r.Priority = model.Priority(strings.ToUpper(strings.TrimSpace(string(r.Priority))))
		if r.Priority == "" {
			r.Priority = model.PriorityMedium
		}
	}
}

// Validate reports every problem in the rule set.
func (c *Config) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(c.Rules))
	for i, r := range c.Rules {
		where := fmt.Sprintf("rules[%d]", i)
		if r.ID == "" {
			errs = append(errs, fmt.Errorf("%s: id is required", where))
		} else {
			where = fmt.Sprintf("rules[%d] %q", i, r.ID)
			if seen[r.ID] {
				errs = append(errs, fmt.Errorf("%s: duplicate id", where))
			}
			seen[r.ID] = true
		}
		if len(r.TargetIndustries) == 0 {
			errs = append(errs, fmt.Errorf("%s: target_industries is required", where))
		}
		for _, ind := range r.TargetIndustries {
			if !ind.Valid() {
				errs = append(errs, fmt.Errorf("%s: unknown industry %q", where, ind))
			}
		}
		for j, kw := range r.Keywords {
			if strings.TrimSpace(kw) == "" {
				errs = append(errs, fmt.Errorf("%s: keywords[%d] is empty", where, j))
			}
		}
		for _, dt := range r.DecisionTypes {
			if !dt.Valid() {
				errs = append(errs, fmt.Errorf("%s: unknown decision type %q", where, dt))
			}
		}
		if !r.Priority.Valid() {
			errs = append(errs, fmt.Errorf("%s: unknown priority %q", where, r.Priority))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid routing rules: %w", errors.Join(errs...))
	}
	return nil
}

// DefaultConfigYAML returns a commented YAML string for init-rules.
func DefaultConfigYAML() string {
	return `# headelf routing rules
# Generated by: headelf init-rules
#
# Every rule is checked against each decision, in order. All matching rules
# apply; a decision can reach the same industry through two rules.
#
# Fields:
#   id: unique rule name (required)
#   decision_types: STRATEGIC | OPERATIONAL | FINANCIAL | TECHNICAL |
#                   COMPLIANCE | PERSONNEL | CRISIS  (omit = any type)
#   keywords: any one must appear in the decision description
#             (case-insensitive substring; omit = any description)
#   target_industries: industries the decision is dispatched to (required)
#   priority: HIGH | MEDIUM | LOW (default MEDIUM)
rules:
  - id: financial-planning
    description: budget, capital and investment decisions
    decision_types: [STRATEGIC, FINANCIAL]
    keywords: [budget, capital, investment, acquisition, funding]
    target_industries: [FINANCE_INSURANCE]
    priority: HIGH

  - id: regulatory-compliance
    description: compliance decisions in regulated sectors
    decision_types: [COMPLIANCE]
    target_industries: [FINANCE_INSURANCE, HEALTHCARE_EDUCATION, GOVERNMENT]
    priority: HIGH

  - id: technology-platform
    description: platform, cloud and security decisions
    decision_types: [TECHNICAL, STRATEGIC]
    keywords: [software, cloud, platform, security, data]
    target_industries: [INFORMATION_TECHNOLOGY]
    priority: MEDIUM

  - id: operations-supply-chain
    description: production, inventory and logistics decisions
    decision_types: [OPERATIONAL]
    keywords: [supply chain, production, inventory, plant, logistics]
    target_industries: [MANUFACTURING, RETAIL_WHOLESALE, TRANSPORTATION_LOGISTICS]
    priority: MEDIUM

  - id: public-sector
    description: contracts and programs with public bodies
    keywords: [government, public sector, contract award, regulator]
    target_industries: [GOVERNMENT]
    priority: MEDIUM

  - id: workforce-safety
    description: workforce and site safety decisions
    decision_types: [PERSONNEL, CRISIS]
    keywords: [safety, incident, injury, workforce]
    target_industries: [MANUFACTURING, CONSTRUCTION, ENERGY_UTILITIES]
    priority: LOW
`
}
