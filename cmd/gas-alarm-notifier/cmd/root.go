package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/gas-alarm-notifier/internal/config"
	"github.com/oshokin/gas-alarm-notifier/internal/service/monitor"
	"github.com/oshokin/gas-alarm-notifier/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// rootCmd represents the base command running the notifier daemon.
	rootCmd = &cobra.Command{
		Use:   "gas-alarm-notifier",
		Short: "Watch a hydrogen gas detector contact and page operators on alarm transitions.",
		Long: `Runs the gas alarm notifier daemon.

The daemon samples the detector's relay contact on a GPIO line (debounced in
the kernel, backstopped by a fixed 0.5s poll), detects Normal/Asserted edges
and delivers notifications through the configured channels in priority order:
Twilio SMS, then authenticated mail submission (including carrier SMS/MMS
gateways), then an optional MQTT publish. Repeated raises without an
intervening clear are suppressed for the configured cooldown window.

All transitions, suppressed alarms and delivery outcomes are appended to the
configured log file. Stop with SIGINT or SIGTERM; the current evaluation is
completed before exit.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &monitor.Options{
				ConfigPath: configPath,
			}

			return monitor.Run(ctx, options)
		},
	}
)

// Execute runs the gas-alarm-notifier CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
}
