package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	headelfmcp "github.com/pauljbernard/headelf/internal/mcp"
)

func init() {
	rootCmd.AddCommand(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for agent integration",
	Long: "Runs headelf as an MCP (Model Context Protocol) server over stdio.\n" +
		"Exposes tools: detect, route, analyze, compliance, industries.",
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	untrack := rt.store.Track(rt.engine.Bus(), rt.logger)
	defer untrack()

	srv := headelfmcp.New(rt.engine, headelfmcp.Config{Version: version, Logger: rt.logger})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(os.Stderr, "headelf MCP server running on stdio")
	fmt.Fprintln(os.Stderr)

	return srv.Run(ctx)
}
