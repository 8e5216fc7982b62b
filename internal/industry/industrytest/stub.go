// Package industrytest provides configurable handlers for tests.
package industrytest

import (
	"context"
	"sync/atomic"

	"github.com/pauljbernard/headelf/internal/model"
)

// Stub is a Handler whose behavior is set per call type. Nil funcs return
// a minimal successful value.
type Stub struct {
	Industry   model.IndustryVertical
	Analyze    func(ctx context.Context, ictx model.IndustryContext) (*model.IndustryAnalysis, error)
	Enhance    func(ctx context.Context, role model.ExecutiveRole, d model.ExecutiveDecision, ictx model.IndustryContext) (*model.Recommendation, error)
	Compliance func(ctx context.Context, ictx model.IndustryContext) ([]model.ComplianceRequirement, error)

	EnhanceCalls atomic.Int64
	AnalyzeCalls atomic.Int64
}

func (s *Stub) AnalyzeIndustryContext(ctx context.Context, ictx model.IndustryContext) (*model.IndustryAnalysis, error) {
	s.AnalyzeCalls.Add(1)
	if s.Analyze != nil {
		return s.Analyze(ctx, ictx)
	}
	return &model.IndustryAnalysis{Industry: s.Industry, Summary: string(s.Industry) + " analysis"}, nil
}

func (s *Stub) EnhanceDecision(ctx context.Context, role model.ExecutiveRole, d model.ExecutiveDecision, ictx model.IndustryContext) (*model.Recommendation, error) {
	s.EnhanceCalls.Add(1)
	if s.Enhance != nil {
		return s.Enhance(ctx, role, d, ictx)
	}
	return &model.Recommendation{Industry: s.Industry, Summary: string(role) + ": " + d.Description}, nil
}

func (s *Stub) ComplianceRequirements(ctx context.Context, ictx model.IndustryContext) ([]model.ComplianceRequirement, error) {
	if s.Compliance != nil {
		return s.Compliance(ctx, ictx)
	}
	return []model.ComplianceRequirement{{Industry: s.Industry, Framework: "TEST", Requirement: "keep records"}}, nil
}

// Blocking returns an Enhance func that waits for ctx to end.
func Blocking() func(ctx context.Context, role model.ExecutiveRole, d model.ExecutiveDecision, ictx model.IndustryContext) (*model.Recommendation, error) {
	return func(ctx context.Context, _ model.ExecutiveRole, _ model.ExecutiveDecision, _ model.IndustryContext) (*model.Recommendation, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
}
