// Package industry holds the handler registry and the activation state
// that decides which industries take part in detection and routing.
package industry

import (
	"context"
	"errors"
	"fmt"

	"github.com/pauljbernard/headelf/internal/model"
)

// Handler is implemented by each industry extension.
type Handler interface {
	// AnalyzeIndustryContext must not mutate ictx.
	AnalyzeIndustryContext(ctx context.Context, ictx model.IndustryContext) (*model.IndustryAnalysis, error)
	EnhanceDecision(ctx context.Context, role model.ExecutiveRole, decision model.ExecutiveDecision, ictx model.IndustryContext) (*model.Recommendation, error)
	ComplianceRequirements(ctx context.Context, ictx model.IndustryContext) ([]model.ComplianceRequirement, error)
}

// ErrHandlerNotFound is returned for an industry with no registered handler.
var ErrHandlerNotFound = errors.New("no handler registered")

// NotFound wraps ErrHandlerNotFound with the industry name.
func NotFound(industry model.IndustryVertical) error {
	return fmt.Errorf("%s: %w", industry, ErrHandlerNotFound)
}

// HandlerError records a failed handler call.
type HandlerError struct {
	Industry model.IndustryVertical
	Op       string
	Err      error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s handler %s: %v", e.Industry, e.Op, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }
