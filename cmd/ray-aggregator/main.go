package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cuemby/ray-aggregator/internal/aggregator"
	"github.com/cuemby/ray-aggregator/pkg/config"
	"github.com/cuemby/ray-aggregator/pkg/log"
	"github.com/cuemby/ray-aggregator/pkg/metrics"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ray-aggregator",
	Short: "Telemetry event aggregator sidecar",
	Long: `ray-aggregator buffers telemetry events received from a local producer
over gRPC and forwards them to an HTTP collector and/or a cluster control
plane, decoupling producers from slow or unavailable downstream sinks.`,
	Version: Version,
	RunE:    runAggregator,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"ray-aggregator version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.Flags().String("config", "", "Path to YAML config file")

	cobra.OnInitialize(initLogging)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

func runAggregator(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	metrics.SetVersion(Version)

	agent := aggregator.New(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := agent.Start(ctx); err != nil {
		return fmt.Errorf("start aggregator: %w", err)
	}

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.Handle("/health", metrics.HealthHandler())
		mux.Handle("/ready", metrics.ReadyHandler())
		mux.Handle("/live", metrics.LivenessHandler())
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
			log.WithComponent("metrics").Error().Err(err).Msg("metrics server stopped")
		}
	}()
	log.WithComponent("metrics").Info().Str("addr", cfg.MetricsAddr).Msg("metrics server listening")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	agent.Stop()
	log.Info("shutdown complete")
	return nil
}
