package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pauljbernard/headelf/internal/client"
	"github.com/pauljbernard/headelf/internal/engine"
	"github.com/pauljbernard/headelf/internal/event"
	"github.com/pauljbernard/headelf/internal/logging"
	"github.com/pauljbernard/headelf/internal/model"
	"github.com/pauljbernard/headelf/internal/pattern"
	"github.com/pauljbernard/headelf/internal/playbook"
	"github.com/pauljbernard/headelf/internal/routing"
	"github.com/pauljbernard/headelf/internal/state"
)

// runtime is a fully wired local engine for one command.
type runtime struct {
	engine *engine.Engine
	logger *zap.Logger
	store  *state.Store
	sink   *event.WebhookSink
}

func newLogger() (*zap.Logger, error) {
	return logging.New(viper.GetString("log-level"), viper.GetBool("log-json"))
}

// newRuntime loads configuration, registers the built-in playbooks and
// restores the saved active set. Without a state file every industry is
// active.
func newRuntime() (*runtime, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, err
	}

	rules, err := routing.LoadConfig(viper.GetString("rules"))
	if err != nil {
		return nil, err
	}
	patterns, _, err := pattern.LoadFile(viper.GetString("patterns"))
	if err != nil {
		return nil, err
	}

	eng := engine.New(
		engine.WithRules(rules),
		engine.WithPatterns(patterns),
		engine.WithHandlerTimeout(viper.GetDuration("handler-timeout")),
		engine.WithMaxConcurrency(viper.GetInt("max-concurrency")),
		engine.WithLogger(logger),
	)
	if err := playbook.RegisterAll(eng, viper.GetString("playbooks")); err != nil {
		return nil, err
	}

	store := state.NewStore(viper.GetString("state"))
	active, found, err := store.Load()
	if err != nil {
		return nil, err
	}
	if !found {
		active = model.AllIndustries
	}
	eng.SetActiveIndustries(active)

	hooks, err := event.LoadWebhooks(viper.GetString("webhooks"))
	if err != nil {
		return nil, err
	}
	sink := event.NewWebhookSink(hooks, logger)
	if sink != nil {
		sink.Attach(eng.Bus())
	}

	return &runtime{engine: eng, logger: logger, store: store, sink: sink}, nil
}

// Close waits for pending webhook deliveries and flushes logs.
func (r *runtime) Close() {
	if r.sink != nil {
		r.sink.Flush()
	}
	r.logger.Sync()
}

// remoteClient returns a client when --remote is set.
func remoteClient() (*client.Client, error) {
	addr := viper.GetString("remote")
	if addr == "" {
		return nil, nil
	}
	return client.New(addr)
}

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(out))
	return nil
}

// parseMetrics turns ["oee=0.8", "revenue=1e6"] into a metrics map.
func parseMetrics(pairs []string) (map[string]float64, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		name, raw, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid metric %q: expected name=value", p)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid metric %q: %w", p, err)
		}
		out[name] = v
	}
	return out, nil
}

func parseRisk(s string) (model.RiskLevel, error) {
	if s == "" {
		return model.RiskMedium, nil
	}
	r := model.RiskLevel(strings.ToUpper(s))
	switch r {
	case model.RiskLow, model.RiskMedium, model.RiskHigh:
		return r, nil
	}
	return "", fmt.Errorf("unknown risk tolerance %q", s)
}

// textArg prefers the flag value and falls back to positional args.
func textArg(flag string, args []string) string {
	if flag != "" {
		return flag
	}
	return strings.Join(args, " ")
}
