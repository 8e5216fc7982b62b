package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pauljbernard/headelf/internal/dispatch"
	"github.com/pauljbernard/headelf/internal/event"
	"github.com/pauljbernard/headelf/internal/industry"
	"github.com/pauljbernard/headelf/internal/industry/industrytest"
	"github.com/pauljbernard/headelf/internal/model"
	"github.com/pauljbernard/headelf/internal/pattern"
	"github.com/pauljbernard/headelf/internal/routing"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func budgetRules() *routing.Config {
	return &routing.Config{Rules: []routing.Rule{{
		ID:               "budget",
		DecisionTypes:    []model.DecisionType{model.DecisionStrategic},
		Keywords:         []string{"budget"},
		TargetIndustries: []model.IndustryVertical{model.FinanceInsurance},
		Priority:         model.PriorityHigh,
	}}}
}

func budgetDecision() model.ExecutiveDecision {
	return model.ExecutiveDecision{ID: "d-1", Type: model.DecisionStrategic, Description: "Approve next year's budget"}
}

func recordEvents(e *Engine) (*[]event.Event, func()) {
	var mu sync.Mutex
	var got []event.Event
	unsub := e.Bus().Subscribe(func(ev event.Event) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
	})
	return &got, unsub
}

func TestRouteDecisionSingleRule(t *testing.T) {
	e := New(WithRules(budgetRules()))
	e.RegisterHandler(model.FinanceInsurance, &industrytest.Stub{Industry: model.FinanceInsurance})
	e.Activate(model.FinanceInsurance)

	results, err := e.RouteDecision(context.Background(), model.RoleCFO, budgetDecision(), nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, model.FinanceInsurance, results[0].Industry)
	require.Equal(t, "budget", results[0].RuleID)
	require.True(t, results[0].Success)
	require.NotNil(t, results[0].Recommendation)
	require.Empty(t, results[0].Error)
}

func TestRouteDecisionHandlerFailureIsData(t *testing.T) {
	e := New(WithRules(budgetRules()))
	e.RegisterHandler(model.FinanceInsurance, &industrytest.Stub{
		Industry: model.FinanceInsurance,
		Enhance: func(context.Context, model.ExecutiveRole, model.ExecutiveDecision, model.IndustryContext) (*model.Recommendation, error) {
			return nil, errors.New("timeout")
		},
	})
	e.Activate(model.FinanceInsurance)

	results, err := e.RouteDecision(context.Background(), model.RoleCFO, budgetDecision(), nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.False(t, results[0].Success)
	require.Equal(t, "timeout", results[0].Error)
	require.Nil(t, results[0].Recommendation)

	var herr *industry.HandlerError
	require.ErrorAs(t, results[0].Err, &herr)
	require.Equal(t, model.FinanceInsurance, herr.Industry)
}

func TestRouteDecisionOverlappingRulesNotDeduplicated(t *testing.T) {
	cfg := &routing.Config{Rules: []routing.Rule{
		{ID: "plant", Keywords: []string{"plant"}, TargetIndustries: []model.IndustryVertical{model.Manufacturing}, Priority: model.PriorityMedium},
		{ID: "ops", DecisionTypes: []model.DecisionType{model.DecisionOperational}, TargetIndustries: []model.IndustryVertical{model.Manufacturing}, Priority: model.PriorityMedium},
	}}
	e := New(WithRules(cfg))
	stub := &industrytest.Stub{Industry: model.Manufacturing}
	e.RegisterHandler(model.Manufacturing, stub)
	e.Activate(model.Manufacturing)

	d := model.ExecutiveDecision{Type: model.DecisionOperational, Description: "Open a second plant"}
	results, err := e.RouteDecision(context.Background(), model.RoleCOO, d, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "plant", results[0].RuleID)
	require.Equal(t, "ops", results[1].RuleID)
	for _, r := range results {
		require.Equal(t, model.Manufacturing, r.Industry)
		require.True(t, r.Success)
	}
	require.EqualValues(t, 2, stub.EnhanceCalls.Load())
}

func TestRouteDecisionNoHandlers(t *testing.T) {
	e := New()
	results, err := e.RouteDecision(context.Background(), model.RoleCEO, budgetDecision(), nil)
	require.ErrorIs(t, err, ErrNoHandlers)
	require.Nil(t, results)
}

func TestRouteDecisionNoMatchingRuleIsEmpty(t *testing.T) {
	e := New(WithRules(budgetRules()))
	e.RegisterHandler(model.FinanceInsurance, &industrytest.Stub{Industry: model.FinanceInsurance})
	e.Activate(model.FinanceInsurance)

	d := model.ExecutiveDecision{Type: model.DecisionPersonnel, Description: "hire a VP"}
	results, err := e.RouteDecision(context.Background(), model.RoleCHRO, d, nil)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestRouteDecisionSkipsInactive(t *testing.T) {
	e := New(WithRules(budgetRules()))
	stub := &industrytest.Stub{Industry: model.FinanceInsurance}
	e.RegisterHandler(model.FinanceInsurance, stub)

	results, err := e.RouteDecision(context.Background(), model.RoleCFO, budgetDecision(), nil)
	require.NoError(t, err)
	require.Empty(t, results)
	require.Zero(t, stub.EnhanceCalls.Load())
}

func TestRouteDecisionUsesProvidedContext(t *testing.T) {
	var seen model.IndustryContext
	e := New(WithRules(budgetRules()))
	e.RegisterHandler(model.FinanceInsurance, &industrytest.Stub{
		Industry: model.FinanceInsurance,
		Enhance: func(_ context.Context, _ model.ExecutiveRole, _ model.ExecutiveDecision, ictx model.IndustryContext) (*model.Recommendation, error) {
			seen = ictx
			return &model.Recommendation{Industry: model.FinanceInsurance}, nil
		},
	})
	e.Activate(model.FinanceInsurance)

	ictx := &model.IndustryContext{Description: "bank", RiskTolerance: model.RiskLow, BusinessMetrics: map[string]float64{"capitalRatio": 0.12}}
	_, err := e.RouteDecision(context.Background(), model.RoleCFO, budgetDecision(), ictx)
	require.NoError(t, err)
	require.Equal(t, model.RiskLow, seen.RiskTolerance)
	require.Equal(t, 0.12, seen.BusinessMetrics["capitalRatio"])
}

func TestRouteDecisionSynthesizesContextAndID(t *testing.T) {
	var seen model.IndustryContext
	var seenID string
	e := New(WithRules(budgetRules()))
	e.RegisterHandler(model.FinanceInsurance, &industrytest.Stub{
		Industry: model.FinanceInsurance,
		Enhance: func(_ context.Context, _ model.ExecutiveRole, d model.ExecutiveDecision, ictx model.IndustryContext) (*model.Recommendation, error) {
			seen = ictx
			seenID = d.ID
			return &model.Recommendation{Industry: model.FinanceInsurance}, nil
		},
	})
	e.Activate(model.FinanceInsurance)

	d := budgetDecision()
	d.ID = ""
	_, err := e.RouteDecision(context.Background(), model.RoleCFO, d, nil)
	require.NoError(t, err)
	require.Equal(t, model.RiskMedium, seen.RiskTolerance)
	require.Equal(t, d.Description, seen.Description)
	require.NotEmpty(t, seenID)
}

func TestDetectContextRegisteredAndActiveOnly(t *testing.T) {
	reg := pattern.NewRegistry()
	reg.Register(model.Manufacturing, []pattern.ContextPattern{{Keywords: []string{"manufacturing", "oee"}, Weight: 0.8}})
	reg.Register(model.Construction, []pattern.ContextPattern{{Keywords: []string{"manufacturing"}, Weight: 1}})

	e := New(WithPatterns(reg))
	e.RegisterHandler(model.Manufacturing, &industrytest.Stub{Industry: model.Manufacturing})
	e.Activate(model.Manufacturing, model.Construction)

	results := e.DetectContext(model.DetectionInput{Text: "Our manufacturing OEE improved this quarter"})
	require.Len(t, results, 1)
	require.Equal(t, model.Manufacturing, results[0].Industry)
	require.Greater(t, results[0].Confidence, 0.3)
}

func TestDetectContextIncludeInactive(t *testing.T) {
	e := New()
	e.RegisterHandler(model.Government, &industrytest.Stub{Industry: model.Government})

	in := model.DetectionInput{Text: "federal agency procurement policy", Domain: "agency.gov"}
	require.Empty(t, e.DetectContext(in))

	in.IncludeInactive = true
	results := e.DetectContext(in)
	require.Len(t, results, 1)
	require.Equal(t, model.Government, results[0].Industry)
}

func TestEventsPublished(t *testing.T) {
	e := New(WithRules(budgetRules()))
	got, unsub := recordEvents(e)
	defer unsub()

	e.RegisterHandler(model.FinanceInsurance, &industrytest.Stub{Industry: model.FinanceInsurance})
	e.Activate(model.FinanceInsurance)
	e.Activate(model.FinanceInsurance)
	e.DetectContext(model.DetectionInput{Text: "bank"})
	_, err := e.RouteDecision(context.Background(), model.RoleCFO, budgetDecision(), nil)
	require.NoError(t, err)

	var types []event.Type
	for _, ev := range *got {
		types = append(types, ev.Type)
	}
	require.Equal(t, []event.Type{
		event.ExtensionRegistered,
		event.ActiveIndustriesUpdated,
		event.ContextDetected,
		event.DecisionRouted,
	}, types)
	require.Equal(t, []model.IndustryVertical{model.FinanceInsurance}, (*got)[1].Industries)
	require.Len(t, (*got)[3].Routing, 1)
}

func TestActivationAccessors(t *testing.T) {
	e := New()
	e.RegisterHandler(model.Government, &industrytest.Stub{Industry: model.Government})
	e.RegisterHandler(model.Manufacturing, &industrytest.Stub{Industry: model.Manufacturing})

	e.SetActiveIndustries([]model.IndustryVertical{model.Government, model.Manufacturing})
	require.Equal(t, []model.IndustryVertical{model.Manufacturing, model.Government}, e.ActiveIndustries())
	require.Equal(t, []model.IndustryVertical{model.Government, model.Manufacturing}, e.RegisteredIndustries())

	e.Deactivate(model.Government)
	require.Equal(t, []model.IndustryVertical{model.Manufacturing}, e.ActiveIndustries())
}

func TestAnalyzeAcrossIndustriesIsolation(t *testing.T) {
	e := New()
	e.RegisterHandler(model.Manufacturing, &industrytest.Stub{
		Industry: model.Manufacturing,
		Analyze: func(context.Context, model.IndustryContext) (*model.IndustryAnalysis, error) {
			panic("analysis exploded")
		},
	})
	e.RegisterHandler(model.Government, &industrytest.Stub{Industry: model.Government})

	out := e.AnalyzeAcrossIndustries(context.Background(),
		[]model.IndustryVertical{model.Manufacturing, model.Government, model.Construction},
		model.IndustryContext{Description: "expansion"})

	require.Len(t, out, 3)
	require.Error(t, out[model.Manufacturing].Err)
	require.NotNil(t, out[model.Government].Analysis)
	require.ErrorIs(t, out[model.Construction].Err, industry.ErrHandlerNotFound)
}

func TestComplianceRequirements(t *testing.T) {
	e := New()
	e.RegisterHandler(model.HealthcareEducation, &industrytest.Stub{Industry: model.HealthcareEducation})

	out := e.ComplianceRequirements(context.Background(),
		[]model.IndustryVertical{model.HealthcareEducation}, model.IndustryContext{})
	require.Len(t, out[model.HealthcareEducation].Requirements, 1)
}

func TestHandlerTimeoutOption(t *testing.T) {
	e := New(WithRules(budgetRules()), WithHandlerTimeout(20*time.Millisecond))
	e.RegisterHandler(model.FinanceInsurance, &industrytest.Stub{Industry: model.FinanceInsurance, Enhance: industrytest.Blocking()})
	e.Activate(model.FinanceInsurance)

	results, err := e.RouteDecision(context.Background(), model.RoleCFO, budgetDecision(), nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.ErrorIs(t, results[0].Err, dispatch.ErrHandlerTimeout)
}

func TestSetRulesAndPatternsSwap(t *testing.T) {
	e := New()
	e.RegisterHandler(model.FinanceInsurance, &industrytest.Stub{Industry: model.FinanceInsurance})
	e.Activate(model.FinanceInsurance)

	e.SetRules(&routing.Config{})
	results, err := e.RouteDecision(context.Background(), model.RoleCFO, budgetDecision(), nil)
	require.NoError(t, err)
	require.Empty(t, results)

	e.SetRules(budgetRules())
	require.Len(t, e.Rules(), 1)

	e.SetPatterns(pattern.NewRegistry())
	require.Empty(t, e.DetectContext(model.DetectionInput{Text: "bank loans and insurance underwriting"}))
}

func TestConcurrentUse(t *testing.T) {
	e := New(WithRules(budgetRules()))
	e.RegisterHandler(model.FinanceInsurance, &industrytest.Stub{Industry: model.FinanceInsurance})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			e.Activate(model.FinanceInsurance)
			e.Deactivate(model.FinanceInsurance)
		}()
		go func() {
			defer wg.Done()
			e.DetectContext(model.DetectionInput{Text: "bank"})
		}()
		go func() {
			defer wg.Done()
			_, err := e.RouteDecision(context.Background(), model.RoleCFO, budgetDecision(), nil)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestSetRulesAndPatternsNilRestoresDefaults(t *testing.T) {
	e := New(WithRules(budgetRules()))
	require.NotPanics(t, func() { e.SetRules(nil) })
	require.Len(t, e.Rules(), len(routing.DefaultConfig().Rules))

	require.NotPanics(t, func() { e.SetPatterns(nil) })
	e.RegisterHandler(model.FinanceInsurance, &industrytest.Stub{Industry: model.FinanceInsurance})
	e.Activate(model.FinanceInsurance)
	require.NotEmpty(t, e.DetectContext(model.DetectionInput{Text: "bank loans and insurance underwriting"}))
}

func TestActivationEventsFollowApplyOrder(t *testing.T) {
	e := New()
	var (
		mu   sync.Mutex
		last []model.IndustryVertical
	)
	unsubscribe := e.Bus().Subscribe(func(ev event.Event) {
		if ev.Type != event.ActiveIndustriesUpdated {
			return
		}
		mu.Lock()
		last = ev.Industries
		mu.Unlock()
	})
	defer unsubscribe()

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		ind := model.AllIndustries[i%len(model.AllIndustries)]
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%3 == 0 {
				e.Deactivate(ind)
			} else {
				e.Activate(ind)
			}
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, e.ActiveIndustries(), last)
}
