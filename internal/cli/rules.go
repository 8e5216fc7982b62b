package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pauljbernard/headelf/internal/pattern"
	"github.com/pauljbernard/headelf/internal/routing"
)

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesShowCmd, rulesCheckCmd)
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and validate routing rules",
}

var rulesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective routing rules and their file hashes",
	RunE:  runRulesShow,
}

var rulesCheckCmd = &cobra.Command{
	Use:   "check [FILE]",
	Short: "Validate a routing rules file",
	Long: "Parses the file and reports every invalid rule, not just the first.\n" +
		"Defaults to the --rules path. Exit code 1 if the file is invalid.",
	Args: cobra.MaximumNArgs(1),
	RunE: runRulesCheck,
}

type rulesOutput struct {
	RulesPath    string         `json:"rules_path"`
	RulesHash    string         `json:"rules_hash"`
	PatternsHash string         `json:"patterns_hash"`
	Rules        []routing.Rule `json:"rules"`
}

func runRulesShow(cmd *cobra.Command, args []string) error {
	path := viper.GetString("rules")
	if path == "" {
		path = routing.DefaultPath()
	}
	cfg, rulesHash, err := routing.LoadConfigWithHash(path)
	if err != nil {
		return err
	}
	_, patternsHash, err := pattern.LoadFile(viper.GetString("patterns"))
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), rulesOutput{
		RulesPath:    path,
		RulesHash:    rulesHash,
		PatternsHash: patternsHash,
		Rules:        cfg.Rules,
	})
}

func runRulesCheck(cmd *cobra.Command, args []string) error {
	path := viper.GetString("rules")
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		path = routing.DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	cfg, err := routing.ParseConfig(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rules OK\n", path, len(cfg.Rules))
	return nil
}
