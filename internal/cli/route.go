package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pauljbernard/headelf/internal/model"
)

var (
	routeRole         string
	routeType         string
	routeDescription  string
	routeTitle        string
	routeID           string
	routeHorizon      string
	routeStakeholders []string
	routeRisk         string
	routeMetrics      []string
)

func init() {
	rootCmd.AddCommand(routeCmd)
	routeCmd.Flags().StringVar(&routeRole, "role", "", "executive role (CEO, CFO, CTO, COO, CISO, CMO, CHRO, CLO)")
	routeCmd.Flags().StringVar(&routeType, "type", "", "decision type (STRATEGIC, OPERATIONAL, FINANCIAL, TECHNICAL, COMPLIANCE, PERSONNEL, CRISIS)")
	routeCmd.Flags().StringVar(&routeDescription, "description", "", "decision description (or pass as arguments)")
	routeCmd.Flags().StringVar(&routeTitle, "title", "", "short decision title")
	routeCmd.Flags().StringVar(&routeID, "id", "", "decision ID (generated when empty)")
	routeCmd.Flags().StringVar(&routeHorizon, "horizon", "", "decision time horizon")
	routeCmd.Flags().StringSliceVar(&routeStakeholders, "stakeholder", nil, "affected stakeholder (repeatable)")
	routeCmd.Flags().StringVar(&routeRisk, "risk", "", "risk tolerance (LOW, MEDIUM, HIGH); builds an explicit context")
	routeCmd.Flags().StringSliceVar(&routeMetrics, "metric", nil, "business metric name=value; builds an explicit context")
	routeCmd.MarkFlagRequired("role")
	routeCmd.MarkFlagRequired("type")
}

var routeCmd = &cobra.Command{
	Use:   "route [description...]",
	Short: "Route an executive decision to industry handlers",
	Long: "Applies the routing rules to the decision and invokes every matching active\n" +
		"industry handler concurrently. Each handler's result or error is printed\n" +
		"separately; one failing handler never hides the others.",
	RunE: runRoute,
}

type routeOutput struct {
	DecisionID string                `json:"decision_id"`
	Results    []model.RoutingResult `json:"results"`
}

func runRoute(cmd *cobra.Command, args []string) error {
	role := model.ExecutiveRole(strings.ToUpper(routeRole))
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", routeRole)
	}
	dt := model.DecisionType(strings.ToUpper(routeType))
	if !dt.Valid() {
		return fmt.Errorf("unknown decision type %q", routeType)
	}

	decision := model.ExecutiveDecision{
		ID:           routeID,
		Type:         dt,
		Title:        routeTitle,
		Description:  textArg(routeDescription, args),
		TimeHorizon:  routeHorizon,
		Stakeholders: routeStakeholders,
	}
	if decision.ID == "" {
		decision.ID = uuid.NewString()
	}

	var ictx *model.IndustryContext
	if routeRisk != "" || len(routeMetrics) > 0 {
		risk, err := parseRisk(routeRisk)
		if err != nil {
			return err
		}
		metrics, err := parseMetrics(routeMetrics)
		if err != nil {
			return err
		}
		ictx = &model.IndustryContext{
			Description:     decision.Description,
			BusinessMetrics: metrics,
			TimeHorizon:     decision.TimeHorizon,
			Stakeholders:    decision.Stakeholders,
			RiskTolerance:   risk,
		}
	}

	ctx := context.Background()

	remote, err := remoteClient()
	if err != nil {
		return err
	}
	if remote != nil {
		defer remote.Close()
		resp, err := remote.Route(ctx, role, decision, ictx)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), routeOutput{DecisionID: resp.DecisionID, Results: resp.Results})
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	results, err := rt.engine.RouteDecision(ctx, role, decision, ictx)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), routeOutput{DecisionID: decision.ID, Results: results})
}
