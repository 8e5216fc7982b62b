package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/pauljbernard/headelf/internal/model"
)

// --- Input/Output types ---

// DetectInput defines parameters for the headelf_detect tool.
type DetectInput struct {
	Text                 string             `json:"text,omitempty" jsonschema:"free text describing the business"`
	BusinessMetrics      map[string]float64 `json:"business_metrics,omitempty" jsonschema:"named numeric business metrics (e.g. oee, revenue)"`
	Domain               string             `json:"domain,omitempty" jsonschema:"company web domain"`
	ComplianceFrameworks []string           `json:"compliance_frameworks,omitempty" jsonschema:"compliance frameworks in scope (e.g. HIPAA, Basel III)"`
	ConfidenceThreshold  *float64           `json:"confidence_threshold,omitempty" jsonschema:"minimum confidence, default 0.3"`
	IncludeInactive      bool               `json:"include_inactive,omitempty" jsonschema:"also score inactive industries"`
}

// DetectOutput lists detected industries.
type DetectOutput struct {
	Results []DetectItem `json:"results"`
}

// DetectItem is one detected industry.
type DetectItem struct {
	Industry           string   `json:"industry"`
	Confidence         float64  `json:"confidence"`
	MatchingPatterns   []string `json:"matching_patterns"`
	RecommendedActions []string `json:"recommended_actions"`
}

// RouteInput defines parameters for the headelf_route tool.
type RouteInput struct {
	Role         string   `json:"role" jsonschema:"executive role (CEO/CFO/CTO/COO/CISO/CMO/CHRO/CLO)"`
	DecisionType string   `json:"decision_type" jsonschema:"STRATEGIC/OPERATIONAL/FINANCIAL/TECHNICAL/COMPLIANCE/PERSONNEL/CRISIS"`
	Description  string   `json:"description" jsonschema:"what is being decided"`
	Title        string   `json:"title,omitempty" jsonschema:"short decision title"`
	TimeHorizon  string   `json:"time_horizon,omitempty" jsonschema:"decision time horizon"`
	Stakeholders []string `json:"stakeholders,omitempty" jsonschema:"affected stakeholders"`
}

// RouteOutput contains one entry per handler invocation.
type RouteOutput struct {
	DecisionID string      `json:"decision_id"`
	Results    []RouteItem `json:"results"`
}

// RouteItem is one (rule, industry) outcome.
type RouteItem struct {
	Industry        string   `json:"industry"`
	RuleID          string   `json:"rule_id"`
	Priority        string   `json:"priority"`
	Success         bool     `json:"success"`
	Error           string   `json:"error,omitempty"`
	Summary         string   `json:"summary,omitempty"`
	Actions         []string `json:"actions,omitempty"`
	ComplianceNotes []string `json:"compliance_notes,omitempty"`
}

// ContextInput defines parameters shared by the analyze and compliance tools.
type ContextInput struct {
	Industries      []string           `json:"industries,omitempty" jsonschema:"industries to query, default all active"`
	Description     string             `json:"description" jsonschema:"business context description"`
	BusinessMetrics map[string]float64 `json:"business_metrics,omitempty" jsonschema:"named numeric business metrics"`
	RiskTolerance   string             `json:"risk_tolerance,omitempty" jsonschema:"LOW/MEDIUM/HIGH, default MEDIUM"`
}

// AnalyzeOutput lists analyses in request order.
type AnalyzeOutput struct {
	Analyses []AnalysisItem `json:"analyses"`
}

// AnalysisItem is one industry's analysis or error.
type AnalysisItem struct {
	Industry      string   `json:"industry"`
	Summary       string   `json:"summary,omitempty"`
	KeyFactors    []string `json:"key_factors,omitempty"`
	Risks         []string `json:"risks,omitempty"`
	Opportunities []string `json:"opportunities,omitempty"`
	Confidence    float64  `json:"confidence,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// ComplianceOutput lists requirements grouped by industry.
type ComplianceOutput struct {
	Industries []ComplianceItem `json:"industries"`
}

// ComplianceItem is one industry's requirements or error.
type ComplianceItem struct {
	Industry     string            `json:"industry"`
	Requirements []RequirementItem `json:"requirements,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// RequirementItem is a single compliance requirement.
type RequirementItem struct {
	Framework   string `json:"framework"`
	Requirement string `json:"requirement"`
	Mandatory   bool   `json:"mandatory"`
}

// IndustriesInput defines parameters for the headelf_industries tool.
type IndustriesInput struct {
	Activate   []string `json:"activate,omitempty" jsonschema:"industries to activate"`
	Deactivate []string `json:"deactivate,omitempty" jsonschema:"industries to deactivate"`
}

// IndustriesOutput lists registered and active industries.
type IndustriesOutput struct {
	Registered []string `json:"registered"`
	Active     []string `json:"active"`
}

// --- Handlers ---

func (s *Server) handleDetect(ctx context.Context, req *mcpsdk.CallToolRequest, input DetectInput) (*mcpsdk.CallToolResult, DetectOutput, error) {
	in := model.DetectionInput{
		Text:                input.Text,
		BusinessMetrics:     input.BusinessMetrics,
		Domain:              input.Domain,
		ConfidenceThreshold: input.ConfidenceThreshold,
		IncludeInactive:     input.IncludeInactive,
	}
	for _, f := range input.ComplianceFrameworks {
		in.ComplianceFrameworks = append(in.ComplianceFrameworks, model.ComplianceFramework{Framework: f})
	}

	results := s.engine.DetectContext(in)
	out := DetectOutput{Results: make([]DetectItem, len(results))}
	for i, r := range results {
		out.Results[i] = DetectItem{
			Industry:           string(r.Industry),
			Confidence:         r.Confidence,
			MatchingPatterns:   r.MatchingPatterns,
			RecommendedActions: r.RecommendedActions,
		}
	}
	return nil, out, nil
}

func (s *Server) handleRoute(ctx context.Context, req *mcpsdk.CallToolRequest, input RouteInput) (*mcpsdk.CallToolResult, RouteOutput, error) {
	role := model.ExecutiveRole(input.Role)
	if !role.Valid() {
		return nil, RouteOutput{}, fmt.Errorf("unknown role %q", input.Role)
	}
	dt := model.DecisionType(input.DecisionType)
	if !dt.Valid() {
		return nil, RouteOutput{}, fmt.Errorf("unknown decision type %q", input.DecisionType)
	}

	decision := model.ExecutiveDecision{
		Type:         dt,
		Title:        input.Title,
		Description:  input.Description,
		TimeHorizon:  input.TimeHorizon,
		Stakeholders: input.Stakeholders,
	}
	results, err := s.engine.RouteDecision(ctx, role, decision, nil)
	if err != nil {
		return nil, RouteOutput{}, err
	}

	out := RouteOutput{Results: make([]RouteItem, len(results))}
	failed := 0
	for i, r := range results {
		item := RouteItem{
			Industry: string(r.Industry),
			RuleID:   r.RuleID,
			Priority: string(r.Priority),
			Success:  r.Success,
			Error:    r.Error,
		}
		if r.Recommendation != nil {
			item.Summary = r.Recommendation.Summary
			item.Actions = r.Recommendation.Actions
			item.ComplianceNotes = r.Recommendation.ComplianceNotes
		}
		if !r.Success {
			failed++
		}
		out.Results[i] = item
	}
	s.logger.Debug("mcp route", zap.Int("results", len(results)), zap.Int("failed", failed))

	if len(results) > 0 && failed == len(results) {
		return &mcpsdk.CallToolResult{IsError: true}, out, nil
	}
	return nil, out, nil
}

func (s *Server) handleAnalyze(ctx context.Context, req *mcpsdk.CallToolRequest, input ContextInput) (*mcpsdk.CallToolResult, AnalyzeOutput, error) {
	industries, ictx, err := s.contextArgs(input)
	if err != nil {
		return nil, AnalyzeOutput{}, err
	}

	outcomes := s.engine.AnalyzeAcrossIndustries(ctx, industries, ictx)
	out := AnalyzeOutput{Analyses: make([]AnalysisItem, 0, len(industries))}
	seen := make(map[model.IndustryVertical]bool, len(industries))
	for _, ind := range industries {
		if seen[ind] {
			continue
		}
		seen[ind] = true
		o := outcomes[ind]
		item := AnalysisItem{Industry: string(ind), Error: o.Error}
		if a := o.Analysis; a != nil {
			item.Summary = a.Summary
			item.KeyFactors = a.KeyFactors
			item.Risks = a.Risks
			item.Opportunities = a.Opportunities
			item.Confidence = a.Confidence
		}
		out.Analyses = append(out.Analyses, item)
	}
	return nil, out, nil
}

func (s *Server) handleCompliance(ctx context.Context, req *mcpsdk.CallToolRequest, input ContextInput) (*mcpsdk.CallToolResult, ComplianceOutput, error) {
	industries, ictx, err := s.contextArgs(input)
	if err != nil {
		return nil, ComplianceOutput{}, err
	}

	outcomes := s.engine.ComplianceRequirements(ctx, industries, ictx)
	out := ComplianceOutput{Industries: make([]ComplianceItem, 0, len(industries))}
	seen := make(map[model.IndustryVertical]bool, len(industries))
	for _, ind := range industries {
		if seen[ind] {
			continue
		}
		seen[ind] = true
		o := outcomes[ind]
		item := ComplianceItem{Industry: string(ind), Error: o.Error}
		for _, r := range o.Requirements {
			item.Requirements = append(item.Requirements, RequirementItem{
				Framework:   r.Framework,
				Requirement: r.Requirement,
				Mandatory:   r.Mandatory,
			})
		}
		out.Industries = append(out.Industries, item)
	}
	return nil, out, nil
}

func (s *Server) handleIndustries(ctx context.Context, req *mcpsdk.CallToolRequest, input IndustriesInput) (*mcpsdk.CallToolResult, IndustriesOutput, error) {
	activate, err := model.ParseIndustries(input.Activate)
	if err != nil {
		return nil, IndustriesOutput{}, err
	}
	deactivate, err := model.ParseIndustries(input.Deactivate)
	if err != nil {
		return nil, IndustriesOutput{}, err
	}

	if len(activate) > 0 {
		s.engine.Activate(activate...)
	}
	if len(deactivate) > 0 {
		s.engine.Deactivate(deactivate...)
	}

	return nil, IndustriesOutput{
		Registered: names(s.engine.RegisteredIndustries()),
		Active:     names(s.engine.ActiveIndustries()),
	}, nil
}

func (s *Server) contextArgs(input ContextInput) ([]model.IndustryVertical, model.IndustryContext, error) {
	ictx := model.IndustryContext{
		Description:     input.Description,
		BusinessMetrics: input.BusinessMetrics,
		RiskTolerance:   model.RiskMedium,
	}
	if input.RiskTolerance != "" {
		ictx.RiskTolerance = model.RiskLevel(input.RiskTolerance)
		switch ictx.RiskTolerance {
		case model.RiskLow, model.RiskMedium, model.RiskHigh:
		default:
			return nil, ictx, fmt.Errorf("unknown risk tolerance %q", input.RiskTolerance)
		}
	}

	if len(input.Industries) == 0 {
		return s.engine.ActiveIndustries(), ictx, nil
	}
	industries, err := model.ParseIndustries(input.Industries)
	if err != nil {
		return nil, ictx, err
	}
	return industries, ictx, nil
}

func names(inds []model.IndustryVertical) []string {
	out := make([]string, len(inds))
	for i, ind := range inds {
		out[i] = string(ind)
	}
	return out
}
