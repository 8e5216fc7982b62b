package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pauljbernard/headelf/internal/dispatch"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "headelf",
	Short: "Industry context detection and decision routing",
	Long: "Scores business text, metrics, domains and compliance frameworks against industry\n" +
		"verticals, and routes executive decisions to industry handlers concurrently.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.headelf/config.yaml)")
	pf.String("log-level", "warn", "log level (debug|info|warn|error)")
	pf.Bool("log-json", false, "emit JSON logs")
	pf.String("rules", "", "routing rules YAML (default ~/.headelf/rules.yaml)")
	pf.String("patterns", "", "context patterns YAML (default ~/.headelf/patterns.yaml)")
	pf.String("playbooks", "", "directory of playbook overrides (default ~/.headelf/playbooks)")
	pf.String("state", "", "active industry state file (default ~/.headelf/state.json)")
	pf.String("webhooks", "", "webhook sinks YAML (default ~/.headelf/webhooks.yaml)")
	pf.Duration("handler-timeout", dispatch.DefaultTimeout, "per-handler call timeout")
	pf.Int("max-concurrency", 0, "max concurrent handler calls per request (0 = unlimited)")
	pf.String("remote", "", "address of a headelf server; commands run remotely when set")

	for _, name := range []string{
		"log-level", "log-json", "rules", "patterns", "playbooks", "state",
		"webhooks", "handler-timeout", "max-concurrency", "remote",
	} {
		viper.BindPFlag(name, pf.Lookup(name))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".headelf"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("headelf")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "warning: cannot read config %s: %v\n", cfgFile, err)
		}
	}
}
