package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pauljbernard/headelf/internal/routing"
)

var initRulesForce bool

func init() {
	rootCmd.AddCommand(initRulesCmd)
	initRulesCmd.Flags().BoolVar(&initRulesForce, "force", false, "overwrite an existing rules.yaml")
}

var initRulesCmd = &cobra.Command{
	Use:   "init-rules",
	Short: "Generate default rules.yaml with comments",
	Long:  "Creates ~/.headelf/rules.yaml with the built-in routing rules.\nEdit this file to customize how decisions reach industries.",
	RunE:  runInitRules,
}

func runInitRules(cmd *cobra.Command, args []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("cannot determine home directory: %w", err)
	}

	dir := filepath.Join(home, ".headelf")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	path := filepath.Join(dir, "rules.yaml")
	if _, err := os.Stat(path); err == nil && !initRulesForce {
		return fmt.Errorf("rules.yaml already exists at %s (use --force to overwrite)", path)
	}

	if err := os.WriteFile(path, []byte(routing.DefaultConfigYAML()), 0o644); err != nil {
		return fmt.Errorf("failed to write rules.yaml: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
	return nil
}
