// Package engine is the host-facing entry point: it detects industry
// context, routes executive decisions to industry handlers, and publishes
// events for every state change and call.
package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pauljbernard/headelf/internal/detect"
	"github.com/pauljbernard/headelf/internal/dispatch"
	"github.com/pauljbernard/headelf/internal/event"
	"github.com/pauljbernard/headelf/internal/industry"
	"github.com/pauljbernard/headelf/internal/model"
	"github.com/pauljbernard/headelf/internal/pattern"
	"github.com/pauljbernard/headelf/internal/routing"
)

// ErrNoHandlers is returned by RouteDecision when no handler has been
// registered at all.
var ErrNoHandlers = errors.New("no industry handlers registered")

// Engine is safe for concurrent use.
type Engine struct {
	registry    *industry.Registry
	activeMu    sync.Mutex // orders activation changes with their events
	patterns    atomic.Pointer[pattern.Registry]
	rules       atomic.Pointer[routing.Engine]
	coordinator *dispatch.Coordinator
	bus         *event.Bus
	logger      *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithPatterns replaces the built-in context patterns.
func WithPatterns(reg *pattern.Registry) Option {
	return func(e *Engine) {
		if reg != nil {
			e.patterns.Store(reg)
		}
	}
}

// WithRules replaces the default routing rules.
func WithRules(cfg *routing.Config) Option {
	return func(e *Engine) {
		if cfg != nil {
			e.rules.Store(routing.NewEngine(cfg))
		}
	}
}

// WithHandlerTimeout bounds each handler call. Negative disables the bound.
func WithHandlerTimeout(d time.Duration) Option {
	return func(e *Engine) { e.coordinator.Timeout = d }
}

// WithMaxConcurrency limits in-flight handler calls per request.
func WithMaxConcurrency(n int) Option {
	return func(e *Engine) { e.coordinator.MaxConcurrency = n }
}

// WithLogger sets the logger used by the engine and its dispatcher.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithBus publishes events to an existing bus.
func WithBus(b *event.Bus) Option {
	return func(e *Engine) {
		if b != nil {
			e.bus = b
		}
	}
}

// New returns an engine with built-in patterns, default rules and no
// handlers registered.
func New(opts ...Option) *Engine {
	e := &Engine{
		registry:    industry.NewRegistry(),
		coordinator: &dispatch.Coordinator{},
		logger:      zap.NewNop(),
	}
	e.patterns.Store(pattern.Builtin())
	e.rules.Store(routing.NewEngine(routing.DefaultConfig()))
	for _, opt := range opts {
		opt(e)
	}
	e.coordinator.Logger = e.logger
	if e.bus == nil {
		e.bus = event.NewBus(e.logger)
	}
	return e
}

// Bus returns the event bus the engine publishes to.
func (e *Engine) Bus() *event.Bus { return e.bus }

// RegisterHandler adds or replaces the handler for an industry.
func (e *Engine) RegisterHandler(ind model.IndustryVertical, h industry.Handler) {
	e.registry.RegisterHandler(ind, h)
	e.logger.Debug("handler registered", zap.String("industry", string(ind)))
	e.bus.Publish(event.NewExtensionRegistered(ind))
}

// SetActiveIndustries replaces the active set.
func (e *Engine) SetActiveIndustries(industries []model.IndustryVertical) {
	e.activeMu.Lock()
	defer e.activeMu.Unlock()
	e.publishActive(e.registry.SetActive(industries))
}

// Activate adds industries to the active set.
func (e *Engine) Activate(industries ...model.IndustryVertical) {
	e.activeMu.Lock()
	defer e.activeMu.Unlock()
	if active, changed := e.registry.Activate(industries...); changed {
		e.publishActive(active)
	}
}

// Deactivate removes industries from the active set.
func (e *Engine) Deactivate(industries ...model.IndustryVertical) {
	e.activeMu.Lock()
	defer e.activeMu.Unlock()
	if active, changed := e.registry.Deactivate(industries...); changed {
		e.publishActive(active)
	}
}

// publishActive must be called with activeMu held so subscribers see
// changes in the order they were applied.
func (e *Engine) publishActive(active []model.IndustryVertical) {
	e.logger.Info("active industries updated", zap.Int("count", len(active)))
	e.bus.Publish(event.NewActiveIndustriesUpdated(active))
}

// ActiveIndustries returns the active set in canonical order.
func (e *Engine) ActiveIndustries() []model.IndustryVertical {
	return e.registry.Snapshot().Active()
}

// RegisteredIndustries returns industries with handlers in registration order.
func (e *Engine) RegisteredIndustries() []model.IndustryVertical {
	return e.registry.Snapshot().Registered()
}

// Rules returns the routing rules in effect.
func (e *Engine) Rules() []routing.Rule {
	return e.rules.Load().Rules()
}

// SetRules swaps the routing rules. In-flight calls keep the rules they
// started with. Nil restores the defaults.
func (e *Engine) SetRules(cfg *routing.Config) {
	if cfg == nil {
		cfg = routing.DefaultConfig()
	}
	e.rules.Store(routing.NewEngine(cfg))
	e.logger.Info("routing rules updated", zap.Int("rules", len(cfg.Rules)))
}

// SetPatterns swaps the context pattern registry. Nil restores the
// built-in patterns.
func (e *Engine) SetPatterns(reg *pattern.Registry) {
	if reg == nil {
		reg = pattern.Builtin()
	}
	e.patterns.Store(reg)
	e.logger.Info("context patterns updated", zap.Int("industries", len(reg.Industries())))
}

// DetectContext scores every registered industry against input.
func (e *Engine) DetectContext(input model.DetectionInput) []model.DetectionResult {
	snap := e.registry.Snapshot()
	results := detect.New(e.patterns.Load()).DetectInAll(snap.Registered(), snap.IsActive, input)
	e.bus.Publish(event.NewContextDetected(results, input))
	return results
}

// RouteDecision sends the decision to every active handler targeted by a
// matching rule and returns one result per invocation. Handler failures are
// reported in their results; the only error is ErrNoHandlers. A nil ictx is
// synthesized from the decision.
func (e *Engine) RouteDecision(ctx context.Context, role model.ExecutiveRole, decision model.ExecutiveDecision, ictx *model.IndustryContext) ([]model.RoutingResult, error) {
	snap := e.registry.Snapshot()
	if snap.Empty() {
		return nil, ErrNoHandlers
	}
	if decision.ID == "" {
		decision.ID = uuid.NewString()
	}

	var local model.IndustryContext
	if ictx != nil {
		local = ictx.Clone()
	} else {
		local = routing.SynthesizeContext(decision)
	}

	rules := e.rules.Load().ApplicableRules(role, decision, nil)
	results := e.coordinator.Enhance(ctx, snap, role, decision, local, rules)

	e.logger.Info("decision routed",
		zap.String("decision", decision.ID),
		zap.String("role", string(role)),
		zap.Int("rules", len(rules)),
		zap.Int("results", len(results)))
	e.bus.Publish(event.NewDecisionRouted(role, decision, results))
	return results, nil
}

// AnalyzeAcrossIndustries asks each listed industry's handler for an
// analysis. Missing handlers yield an ErrHandlerNotFound slot.
func (e *Engine) AnalyzeAcrossIndustries(ctx context.Context, industries []model.IndustryVertical, ictx model.IndustryContext) map[model.IndustryVertical]dispatch.AnalysisOutcome {
	return e.coordinator.Analyze(ctx, e.registry.Snapshot(), industries, ictx)
}

// ComplianceRequirements collects requirements from each listed industry.
func (e *Engine) ComplianceRequirements(ctx context.Context, industries []model.IndustryVertical, ictx model.IndustryContext) map[model.IndustryVertical]dispatch.ComplianceOutcome {
	return e.coordinator.Compliance(ctx, e.registry.Snapshot(), industries, ictx)
}
