package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/cdkbot/releasemgr/pkg/config"
	"github.com/cdkbot/releasemgr/pkg/log"
	"github.com/cdkbot/releasemgr/pkg/metrics"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Global flags and the loaded configuration, shared by all subcommands
var (
	flagDryRun      bool
	flagLogLevel    string
	flagLogJSON     bool
	flagConfig      string
	flagMetricsAddr string

	cfg *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "releasemgr",
	Short: "Releasemgr - release promotion engine for Canonical Kubernetes artifacts",
	Long: `Releasemgr reconciles snap and charm release channels through the
edge, beta, candidate and stable risk levels. Every command is stateless
and level-triggered: it rebuilds the current release state from the
artifact stores and the test platform, decides the one next action per
track, and exits. Repeated runs converge without duplicating side effects.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.Init(log.Config{
			Level:      log.Level(flagLogLevel),
			JSONOutput: flagLogJSON,
		})

		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return err
		}

		if flagMetricsAddr != "" {
			go func() {
				mux := http.NewServeMux()
				mux.Handle("/metrics", metrics.Handler())
				if err := http.ListenAndServe(flagMetricsAddr, mux); err != nil {
					logger := log.WithComponent("metrics")
					logger.Error().Err(err).Msg("Metrics listener stopped")
				}
			}()
		}
		return nil
	},
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Releasemgr version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().BoolVar(&flagDryRun, "dry-run", false,
		"Print what would be done without taking action")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info",
		"Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false,
		"Emit JSON logs instead of console output")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "",
		"Path to a YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&flagMetricsAddr, "metrics-addr", "",
		"Optional address to serve Prometheus metrics on while a run is in flight")

	rootCmd.AddCommand(promoteCmd)
	rootCmd.AddCommand(charmCmd)
	rootCmd.AddCommand(buildsCmd)
}
