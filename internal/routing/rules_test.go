package routing

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pauljbernard/headelf/internal/model"
)

func ruleIDs(rules []Rule) []string {
	ids := make([]string, 0, len(rules))
	for _, r := range rules {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestBudgetDecisionMatchesFinanceRule(t *testing.T) {
	e := NewEngine(&Config{Rules: []Rule{{
		ID:               "budget",
		DecisionTypes:    []model.DecisionType{model.DecisionStrategic},
		Keywords:         []string{"budget"},
		TargetIndustries: []model.IndustryVertical{model.FinanceInsurance},
		Priority:         model.PriorityHigh,
	}}})

	got := e.ApplicableRules(model.RoleCFO, model.ExecutiveDecision{
		Type:        model.DecisionStrategic,
		Description: "Approve next year's Budget",
	}, nil)

	if !reflect.DeepEqual(ruleIDs(got), []string{"budget"}) {
		t.Errorf("expected [budget], got %v", ruleIDs(got))
	}
}

func TestTypeMismatchExcludes(t *testing.T) {
	e := NewEngine(&Config{Rules: []Rule{{
		ID:               "budget",
		DecisionTypes:    []model.DecisionType{model.DecisionFinancial},
		Keywords:         []string{"budget"},
		TargetIndustries: []model.IndustryVertical{model.FinanceInsurance},
	}}})

	got := e.ApplicableRules(model.RoleCFO, model.ExecutiveDecision{
		Type:        model.DecisionOperational,
		Description: "budget review",
	}, nil)
	if len(got) != 0 {
		t.Errorf("expected no match on type mismatch, got %v", ruleIDs(got))
	}
}

func TestWildcardsAndAllMatchesReturned(t *testing.T) {
	e := NewEngine(&Config{Rules: []Rule{
		{ID: "any", TargetIndustries: []model.IndustryVertical{model.Government}},
		{ID: "plant", Keywords: []string{"plant"}, TargetIndustries: []model.IndustryVertical{model.Manufacturing}},
		{ID: "ops", DecisionTypes: []model.DecisionType{model.DecisionOperational}, TargetIndustries: []model.IndustryVertical{model.Manufacturing}},
		{ID: "never", Keywords: []string{"zzz"}, TargetIndustries: []model.IndustryVertical{model.Manufacturing}},
	}})

	got := e.ApplicableRules(model.RoleCOO, model.ExecutiveDecision{
		Type:        model.DecisionOperational,
		Description: "Open a second PLANT",
	}, nil)
	want := []string{"any", "plant", "ops"}
	if !reflect.DeepEqual(ruleIDs(got), want) {
		t.Errorf("expected %v, got %v", want, ruleIDs(got))
	}
}

// Detection results do not influence matching today; this pins that gap.
func TestDetectedIndustriesIgnored(t *testing.T) {
	e := NewEngine(DefaultConfig())
	d := model.ExecutiveDecision{Type: model.DecisionFinancial, Description: "capital allocation"}

	without := e.ApplicableRules(model.RoleCFO, d, nil)
	with := e.ApplicableRules(model.RoleCFO, d, []model.DetectionResult{
		{Industry: model.HealthcareEducation, Confidence: 0.99},
	})
	if !reflect.DeepEqual(ruleIDs(without), ruleIDs(with)) {
		t.Errorf("expected identical matches, got %v vs %v", ruleIDs(without), ruleIDs(with))
	}
}

func TestSynthesizeContext(t *testing.T) {
	d := model.ExecutiveDecision{
		Description:  "expand into Ohio",
		TimeHorizon:  "12 months",
		Stakeholders: []string{"board", "plant managers"},
	}
	ctx := SynthesizeContext(d)

	if ctx.Description != d.Description || ctx.TimeHorizon != d.TimeHorizon {
		t.Errorf("expected description and horizon copied, got %+v", ctx)
	}
	if ctx.RiskTolerance != model.RiskMedium {
		t.Errorf("expected MEDIUM risk tolerance, got %s", ctx.RiskTolerance)
	}
	if ctx.BusinessMetrics == nil || len(ctx.BusinessMetrics) != 0 {
		t.Errorf("expected empty non-nil metrics, got %v", ctx.BusinessMetrics)
	}
	ctx.Stakeholders[0] = "changed"
	if d.Stakeholders[0] != "board" {
		t.Error("synthesized context shares stakeholders with decision")
	}
}

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestDefaultConfigYAMLMatchesDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(DefaultConfigYAML()))
	if err != nil {
		t.Fatalf("template does not parse: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("template drifted from DefaultConfig:\n%+v\n%+v", cfg, DefaultConfig())
	}
}

func TestLoadConfigMissingFileDefaults(t *testing.T) {
	cfg, hash, err := LoadConfigWithHash(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Rules) != len(DefaultConfig().Rules) {
		t.Errorf("expected default rules, got %d", len(cfg.Rules))
	}
	// sha256 of empty input
	if hash != "sha256:e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("unexpected empty hash %s", hash)
	}
}

func TestLoadConfigNormalizesCase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	doc := `rules:
  - id: ops
    decision_types: [operational]
    keywords: [Plant]
    target_industries: [manufacturing]
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := cfg.Rules[0]
	if r.DecisionTypes[0] != model.DecisionOperational || r.TargetIndustries[0] != model.Manufacturing {
		t.Errorf("expected normalized enums, got %+v", r)
	}
	if r.Keywords[0] != "plant" || r.Priority != model.PriorityMedium {
		t.Errorf("expected lower-cased keyword and default priority, got %+v", r)
	}
}

func TestLoadConfigReportsAllErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	doc := `rules:
  - id: a
    target_industries: [AEROSPACE]
  - id: a
    decision_types: [WHIM]
    target_industries: [GOVERNMENT]
    priority: urgent
  - target_industries: [GOVERNMENT]
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"AEROSPACE", "duplicate id", "WHIM", "URGENT", "id is required"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %q, got: %v", want, err)
		}
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("rules: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestParseConfigRejectsEmptyKeywords(t *testing.T) {
	doc := `rules:
  - id: blank
    keywords: ["  ", ""]
    target_industries: [GOVERNMENT]
`
	_, err := ParseConfig([]byte(doc))
	if err == nil {
		t.Fatal("expected validation error for blank keywords")
	}
	if !strings.Contains(err.Error(), "keywords[0] is empty") || !strings.Contains(err.Error(), "keywords[1] is empty") {
		t.Errorf("expected both blank keywords reported, got: %v", err)
	}
}
