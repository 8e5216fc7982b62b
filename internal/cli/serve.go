package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pauljbernard/headelf/internal/pattern"
	"github.com/pauljbernard/headelf/internal/routing"
	"github.com/pauljbernard/headelf/internal/server"
)

var servePort int

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 50051, "gRPC listen port")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start gRPC routing server",
	Long: "Runs headelf as a central routing server over gRPC.\n" +
		"Clients connect with --remote. Routing rules and context patterns\n" +
		"are hot-reloaded when their files change.",
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	untrack := rt.store.Track(rt.engine.Bus(), rt.logger)
	defer untrack()

	rulesPath := viper.GetString("rules")
	if rulesPath == "" {
		rulesPath = routing.DefaultPath()
	}
	patternsPath := viper.GetString("patterns")
	if patternsPath == "" {
		patternsPath = pattern.DefaultPath()
	}

	srv, err := server.New(rt.engine, server.Config{
		Port:         servePort,
		RulesPath:    rulesPath,
		PatternsPath: patternsPath,
	}, rt.logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	reloader, err := server.NewReloader(srv)
	if err != nil {
		rt.logger.Warn("hot-reload disabled", zap.Error(err))
	} else {
		g.Go(func() error { return reloader.Run(ctx) })
	}

	g.Go(func() error {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nShutting down routing server...")
		srv.GracefulStop()
		return nil
	})

	fmt.Fprintf(os.Stderr, "headelf routing server listening on :%d\n", servePort)
	fmt.Fprintf(os.Stderr, "Active: %v\n", rt.engine.ActiveIndustries())
	if reloader != nil && len(reloader.Paths()) > 0 {
		fmt.Fprintf(os.Stderr, "Watching: %v\n", reloader.Paths())
	}
	fmt.Fprintln(os.Stderr)

	g.Go(func() error {
		err := srv.Serve()
		stop()
		return err
	})

	return g.Wait()
}
