package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pauljbernard/headelf/internal/model"
)

var (
	detectText            string
	detectDomain          string
	detectMetrics         []string
	detectFrameworks      []string
	detectThreshold       float64
	detectIncludeInactive bool
)

func init() {
	rootCmd.AddCommand(detectCmd)
	detectCmd.Flags().StringVar(&detectText, "text", "", "free text to score (or pass as arguments)")
	detectCmd.Flags().StringVar(&detectDomain, "domain", "", "company domain, e.g. example.gov")
	detectCmd.Flags().StringSliceVar(&detectMetrics, "metric", nil, "business metric name=value (repeatable)")
	detectCmd.Flags().StringSliceVar(&detectFrameworks, "framework", nil, "compliance framework in scope (repeatable)")
	detectCmd.Flags().Float64Var(&detectThreshold, "threshold", model.DefaultConfidenceThreshold, "minimum confidence")
	detectCmd.Flags().BoolVar(&detectIncludeInactive, "include-inactive", false, "also score inactive industries")
}

var detectCmd = &cobra.Command{
	Use:   "detect [text...]",
	Short: "Detect industry context from text, metrics, domain and frameworks",
	Long: "Scores every registered industry and prints those above the confidence\n" +
		"threshold, highest first. Text weighs 40%, metrics 25%, domain 20% and\n" +
		"compliance frameworks 15%.",
	RunE: runDetect,
}

func runDetect(cmd *cobra.Command, args []string) error {
	metrics, err := parseMetrics(detectMetrics)
	if err != nil {
		return err
	}

	input := model.DetectionInput{
		Text:            textArg(detectText, args),
		BusinessMetrics: metrics,
		Domain:          detectDomain,
		IncludeInactive: detectIncludeInactive,
	}
	for _, f := range detectFrameworks {
		input.ComplianceFrameworks = append(input.ComplianceFrameworks, model.ComplianceFramework{Framework: f})
	}
	if cmd.Flags().Changed("threshold") {
		input = input.WithThreshold(detectThreshold)
	}

	remote, err := remoteClient()
	if err != nil {
		return err
	}
	if remote != nil {
		defer remote.Close()
		results, err := remote.Detect(context.Background(), input)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), results)
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	return printJSON(cmd.OutOrStdout(), rt.engine.DetectContext(input))
}
