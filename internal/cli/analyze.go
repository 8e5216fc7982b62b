package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pauljbernard/headelf/internal/model"
)

var (
	analyzeIndustries  []string
	analyzeDescription string
	analyzeRisk        string
	analyzeMetrics     []string
)

func init() {
	rootCmd.AddCommand(analyzeCmd, complianceCmd)
	for _, c := range []*cobra.Command{analyzeCmd, complianceCmd} {
		c.Flags().StringSliceVar(&analyzeIndustries, "industry", nil, "industry to query (repeatable, default all active)")
		c.Flags().StringVar(&analyzeDescription, "description", "", "business context (or pass as arguments)")
		c.Flags().StringVar(&analyzeRisk, "risk", "", "risk tolerance (LOW, MEDIUM, HIGH)")
		c.Flags().StringSliceVar(&analyzeMetrics, "metric", nil, "business metric name=value (repeatable)")
	}
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [description...]",
	Short: "Analyze a business context across industries",
	RunE:  runAnalyze,
}

var complianceCmd = &cobra.Command{
	Use:   "compliance [description...]",
	Short: "List compliance requirements per industry for a business context",
	RunE:  runCompliance,
}

func contextFlags(args []string) ([]model.IndustryVertical, model.IndustryContext, error) {
	industries, err := model.ParseIndustries(analyzeIndustries)
	if err != nil {
		return nil, model.IndustryContext{}, err
	}
	risk, err := parseRisk(analyzeRisk)
	if err != nil {
		return nil, model.IndustryContext{}, err
	}
	metrics, err := parseMetrics(analyzeMetrics)
	if err != nil {
		return nil, model.IndustryContext{}, err
	}
	return industries, model.IndustryContext{
		Description:     textArg(analyzeDescription, args),
		BusinessMetrics: metrics,
		RiskTolerance:   risk,
	}, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	industries, ictx, err := contextFlags(args)
	if err != nil {
		return err
	}
	ctx := context.Background()

	remote, err := remoteClient()
	if err != nil {
		return err
	}
	if remote != nil {
		defer remote.Close()
		out, err := remote.Analyze(ctx, industries, ictx)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), out)
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	if len(industries) == 0 {
		industries = rt.engine.ActiveIndustries()
	}
	return printJSON(cmd.OutOrStdout(), rt.engine.AnalyzeAcrossIndustries(ctx, industries, ictx))
}

func runCompliance(cmd *cobra.Command, args []string) error {
	industries, ictx, err := contextFlags(args)
	if err != nil {
		return err
	}
	ctx := context.Background()

	remote, err := remoteClient()
	if err != nil {
		return err
	}
	if remote != nil {
		defer remote.Close()
		out, err := remote.Compliance(ctx, industries, ictx)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), out)
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	if len(industries) == 0 {
		industries = rt.engine.ActiveIndustries()
	}
	return printJSON(cmd.OutOrStdout(), rt.engine.ComplianceRequirements(ctx, industries, ictx))
}
