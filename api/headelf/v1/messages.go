// Package headelfv1 defines the headelf gRPC service. Messages travel as
// JSON using Codec, so the service needs no generated protobuf code.
package headelfv1

import (
	"github.com/pauljbernard/headelf/internal/dispatch"
	"github.com/pauljbernard/headelf/internal/model"
)

type DetectRequest struct {
	Input model.DetectionInput `json:"input"`
}

type DetectResponse struct {
	Results []model.DetectionResult `json:"results"`
}

type RouteRequest struct {
	Role     model.ExecutiveRole     `json:"role"`
	Decision model.ExecutiveDecision `json:"decision"`
	Context  *model.IndustryContext  `json:"context,omitempty"`
}

type RouteResponse struct {
	DecisionID string                `json:"decision_id"`
	Results    []model.RoutingResult `json:"results"`
}

type AnalyzeRequest struct {
	Industries []model.IndustryVertical `json:"industries"`
	Context    model.IndustryContext    `json:"context"`
}

type AnalyzeResponse struct {
	Outcomes map[model.IndustryVertical]dispatch.AnalysisOutcome `json:"outcomes"`
}

type ComplianceRequest struct {
	Industries []model.IndustryVertical `json:"industries"`
	Context    model.IndustryContext    `json:"context"`
}

type ComplianceResponse struct {
	Outcomes map[model.IndustryVertical]dispatch.ComplianceOutcome `json:"outcomes"`
}

type ListIndustriesRequest struct{}

type ListIndustriesResponse struct {
	Registered   []model.IndustryVertical `json:"registered"`
	Active       []model.IndustryVertical `json:"active"`
	RulesHash    string                   `json:"rules_hash,omitempty"`
	PatternsHash string                   `json:"patterns_hash,omitempty"`
}

// SetActive modes.
const (
	ModeSet        = "set"
	ModeActivate   = "activate"
	ModeDeactivate = "deactivate"
)

type SetActiveRequest struct {
	Mode       string                   `json:"mode"`
	Industries []model.IndustryVertical `json:"industries"`
}
