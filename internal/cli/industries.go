package cli

import (
	"context"

	"github.com/spf13/cobra"

	pb "github.com/pauljbernard/headelf/api/headelf/v1"
	"github.com/pauljbernard/headelf/internal/model"
)

func init() {
	rootCmd.AddCommand(industriesCmd)
	industriesCmd.AddCommand(industriesListCmd, industriesActivateCmd, industriesDeactivateCmd, industriesSetCmd)
}

var industriesCmd = &cobra.Command{
	Use:   "industries",
	Short: "List and change the active industry set",
	Long: "Routing only reaches industries that are both registered and active.\n" +
		"Changes are saved to the state file and survive restarts.",
	RunE: runIndustriesList,
}

var industriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show registered and active industries",
	RunE:  runIndustriesList,
}

var industriesActivateCmd = &cobra.Command{
	Use:   "activate INDUSTRY...",
	Short: "Add industries to the active set",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return changeIndustries(cmd, pb.ModeActivate, args)
	},
}

var industriesDeactivateCmd = &cobra.Command{
	Use:   "deactivate INDUSTRY...",
	Short: "Remove industries from the active set",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return changeIndustries(cmd, pb.ModeDeactivate, args)
	},
}

var industriesSetCmd = &cobra.Command{
	Use:   "set [INDUSTRY...]",
	Short: "Replace the active set (no arguments deactivates everything)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return changeIndustries(cmd, pb.ModeSet, args)
	},
}

type industriesOutput struct {
	Registered []model.IndustryVertical `json:"registered"`
	Active     []model.IndustryVertical `json:"active"`
	StatePath  string                   `json:"state_path,omitempty"`
}

func runIndustriesList(cmd *cobra.Command, args []string) error {
	remote, err := remoteClient()
	if err != nil {
		return err
	}
	if remote != nil {
		defer remote.Close()
		resp, err := remote.Industries(context.Background())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), resp)
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	return printJSON(cmd.OutOrStdout(), industriesOutput{
		Registered: rt.engine.RegisteredIndustries(),
		Active:     rt.engine.ActiveIndustries(),
		StatePath:  rt.store.Path(),
	})
}

func changeIndustries(cmd *cobra.Command, mode string, args []string) error {
	industries, err := model.ParseIndustries(args)
	if err != nil {
		return err
	}

	remote, err := remoteClient()
	if err != nil {
		return err
	}
	if remote != nil {
		defer remote.Close()
		resp, err := remote.SetActive(context.Background(), mode, industries)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), resp)
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	switch mode {
	case pb.ModeActivate:
		rt.engine.Activate(industries...)
	case pb.ModeDeactivate:
		rt.engine.Deactivate(industries...)
	default:
		rt.engine.SetActiveIndustries(industries)
	}

	// Saved unconditionally so the first change also records the default set.
	if err := rt.store.Save(rt.engine.ActiveIndustries()); err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), industriesOutput{
		Registered: rt.engine.RegisteredIndustries(),
		Active:     rt.engine.ActiveIndustries(),
		StatePath:  rt.store.Path(),
	})
}
