// Package dispatch fans decisions and analysis requests out to industry
// handlers and collects every outcome, including failures.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pauljbernard/headelf/internal/industry"
	"github.com/pauljbernard/headelf/internal/model"
	"github.com/pauljbernard/headelf/internal/routing"
)

// DefaultTimeout bounds a single handler call.
const DefaultTimeout = 10 * time.Second

// ErrHandlerTimeout marks a handler call that exceeded the per-handler timeout.
var ErrHandlerTimeout = errors.New("handler timed out")

// Coordinator runs handler calls concurrently. The zero value is usable.
type Coordinator struct {
	// Timeout bounds each handler call; zero means DefaultTimeout and a
	// negative value disables the bound.
	Timeout time.Duration
	// MaxConcurrency limits in-flight calls; zero means unlimited.
	MaxConcurrency int
	Logger         *zap.Logger

	now func() time.Time
}

// AnalysisOutcome is one industry's slot in a fan-out analysis.
type AnalysisOutcome struct {
	Analysis *model.IndustryAnalysis `json:"analysis,omitempty"`
	Error    string                  `json:"error,omitempty"`
	Err      error                   `json:"-"`
}

// ComplianceOutcome is one industry's slot in a compliance fan-out.
type ComplianceOutcome struct {
	Requirements []model.ComplianceRequirement `json:"requirements,omitempty"`
	Error        string                        `json:"error,omitempty"`
	Err          error                         `json:"-"`
}

type target struct {
	industry model.IndustryVertical
	rule     routing.Rule
	handler  industry.Handler
}

// Enhance invokes EnhanceDecision for every (rule, target industry) pair
// whose industry is registered and active in snap. All calls run
// concurrently and every call produces exactly one result. Results are
// ordered by rule priority, then rule order, then target order.
func (c *Coordinator) Enhance(ctx context.Context, snap *industry.Snapshot, role model.ExecutiveRole, decision model.ExecutiveDecision, ictx model.IndustryContext, rules []routing.Rule) []model.RoutingResult {
	var targets []target
	for _, r := range rules {
		for _, ind := range r.TargetIndustries {
			if !snap.Routable(ind) {
				continue
			}
			h, _ := snap.Handler(ind)
			targets = append(targets, target{industry: ind, rule: r, handler: h})
		}
	}

	results := make([]model.RoutingResult, len(targets))
	g := c.group()
	for i, t := range targets {
		g.Go(func() error {
			results[i] = c.enhanceOne(ctx, t, role, decision, ictx.Clone())
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		return model.PriorityRank[results[i].Priority] < model.PriorityRank[results[j].Priority]
	})
	return results
}

func (c *Coordinator) enhanceOne(ctx context.Context, t target, role model.ExecutiveRole, decision model.ExecutiveDecision, ictx model.IndustryContext) model.RoutingResult {
	start := c.clock()
	rec, err := call(ctx, c.timeout(), func(ctx context.Context) (*model.Recommendation, error) {
		return t.handler.EnhanceDecision(ctx, role, decision, ictx)
	})
	if err == nil && rec == nil {
		err = errors.New("handler returned no recommendation")
	}

	res := model.RoutingResult{
		Industry:            t.industry,
		RuleID:              t.rule.ID,
		Priority:            t.rule.Priority,
		ProcessingTimestamp: c.clock().UTC(),
	}
	res.Duration = res.ProcessingTimestamp.Sub(start.UTC())

	if err != nil {
		herr := &industry.HandlerError{Industry: t.industry, Op: "enhance", Err: err}
		res.Err = herr
		res.Error = err.Error()
		c.logger().Warn("handler failed",
			zap.String("industry", string(t.industry)),
			zap.String("rule", t.rule.ID),
			zap.Error(err))
		return res
	}

	res.Recommendation = rec
	res.Success = true
	return res
}

// Analyze queries every listed industry concurrently. Industries without a
// handler get an ErrHandlerNotFound slot; activation is not required.
func (c *Coordinator) Analyze(ctx context.Context, snap *industry.Snapshot, industries []model.IndustryVertical, ictx model.IndustryContext) map[model.IndustryVertical]AnalysisOutcome {
	out := make(map[model.IndustryVertical]AnalysisOutcome, len(industries))
	slots := dedupe(industries)
	outcomes := make([]AnalysisOutcome, len(slots))

	g := c.group()
	for i, ind := range slots {
		h, ok := snap.Handler(ind)
		if !ok {
			err := industry.NotFound(ind)
			outcomes[i] = AnalysisOutcome{Err: err, Error: err.Error()}
			continue
		}
		local := ictx.Clone()
		g.Go(func() error {
			a, err := call(ctx, c.timeout(), func(ctx context.Context) (*model.IndustryAnalysis, error) {
				return h.AnalyzeIndustryContext(ctx, local)
			})
			if err == nil && a == nil {
				err = errors.New("handler returned no analysis")
			}
			if err != nil {
				c.logFailure(ind, "analyze", err)
				outcomes[i] = AnalysisOutcome{Err: &industry.HandlerError{Industry: ind, Op: "analyze", Err: err}, Error: err.Error()}
				return nil
			}
			outcomes[i] = AnalysisOutcome{Analysis: a}
			return nil
		})
	}
	_ = g.Wait()

	for i, ind := range slots {
		out[ind] = outcomes[i]
	}
	return out
}

// Compliance collects compliance requirements from every listed industry.
func (c *Coordinator) Compliance(ctx context.Context, snap *industry.Snapshot, industries []model.IndustryVertical, ictx model.IndustryContext) map[model.IndustryVertical]ComplianceOutcome {
	out := make(map[model.IndustryVertical]ComplianceOutcome, len(industries))
	slots := dedupe(industries)
	outcomes := make([]ComplianceOutcome, len(slots))

	g := c.group()
	for i, ind := range slots {
		h, ok := snap.Handler(ind)
		if !ok {
			err := industry.NotFound(ind)
			outcomes[i] = ComplianceOutcome{Err: err, Error: err.Error()}
			continue
		}
		local := ictx.Clone()
		g.Go(func() error {
			reqs, err := call(ctx, c.timeout(), func(ctx context.Context) ([]model.ComplianceRequirement, error) {
				return h.ComplianceRequirements(ctx, local)
			})
			if err != nil {
				c.logFailure(ind, "compliance", err)
				outcomes[i] = ComplianceOutcome{Err: &industry.HandlerError{Industry: ind, Op: "compliance", Err: err}, Error: err.Error()}
				return nil
			}
			outcomes[i] = ComplianceOutcome{Requirements: reqs}
			return nil
		})
	}
	_ = g.Wait()

	for i, ind := range slots {
		out[ind] = outcomes[i]
	}
	return out
}

// call runs fn in its own goroutine so a handler that ignores its context
// cannot hold the batch past the timeout. Panics become errors.
func call[T any](parent context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := parent.Err(); err != nil {
		return zero, err
	}

	ctx := parent
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, timeout)
		defer cancel()
	}

	type outcome struct {
		v   T
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("handler panic: %v", r)}
			}
		}()
		v, err := fn(ctx)
		done <- outcome{v: v, err: err}
	}()

	settle := func(o outcome) (T, error) {
		if o.err != nil {
			return zero, classify(parent, o.err, timeout)
		}
		return o.v, nil
	}

	select {
	case o := <-done:
		return settle(o)
	case <-ctx.Done():
		// A result that landed alongside cancellation still counts.
		select {
		case o := <-done:
			return settle(o)
		default:
		}
		return zero, classify(parent, ctx.Err(), timeout)
	}
}

func classify(parent context.Context, err error, timeout time.Duration) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) && timeout > 0 {
		return fmt.Errorf("%w after %s", ErrHandlerTimeout, timeout)
	}
	return err
}

func dedupe(in []model.IndustryVertical) []model.IndustryVertical {
	seen := make(map[model.IndustryVertical]bool, len(in))
	out := make([]model.IndustryVertical, 0, len(in))
	for _, ind := range in {
		if !seen[ind] {
			seen[ind] = true
			out = append(out, ind)
		}
	}
	return out
}

func (c *Coordinator) group() *errgroup.Group {
	g := new(errgroup.Group)
	if c.MaxConcurrency > 0 {
		g.SetLimit(c.MaxConcurrency)
	}
	return g
}

func (c *Coordinator) timeout() time.Duration {
	if c.Timeout == 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

func (c *Coordinator) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

func (c *Coordinator) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c *Coordinator) logFailure(ind model.IndustryVertical, op string, err error) {
	c.logger().Warn("handler failed",
		zap.String("industry", string(ind)),
		zap.String("op", op),
		zap.Error(err))
}
