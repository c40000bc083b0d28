// Package cli implements the pulsebridge command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/pulsebridge/pulsebridge-cli/internal/core/domain"
	"github.com/pulsebridge/pulsebridge-cli/internal/core/ports/driven"
	"github.com/pulsebridge/pulsebridge-cli/internal/core/ports/driving"
	"github.com/pulsebridge/pulsebridge-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Persistent flags.
var (
	flagVerbose   bool
	flagConfigDir string
	flagDataDir   string
)

var rootCmd = &cobra.Command{
	Use:   "pulsebridge",
	Short: "Bridge Fitbit heart-rate data to MQTT",
	Long: `pulsebridge authorizes against the Fitbit API, keeps the OAuth
credential fresh, and continuously publishes the latest intraday
heart-rate sample to an MQTT broker.

Typical flow:
  pulsebridge authorize <client_id>   # one-time browser authorization
  pulsebridge poll                    # steady-state bridge loop`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(flagVerbose)
		if buildServices != nil {
			s, err := buildServices(flagConfigDir, flagDataDir)
			if err != nil {
				return err
			}
			services = s
		}
		return nil
	},
	SilenceUsage: true,
}

// Services are the driving-port handles the commands run against.
// The composition root injects them before Execute.
type Services struct {
	Authorizer driving.Authorizer
	Tokens     driving.TokenManager
	Results    driven.ResultStore

	// NewPoller builds a poll loop publishing to the given topic at the
	// given granularity. The returned cleanup releases the broker
	// connection.
	NewPoller func(topic string, detail domain.DetailLevel) (driving.Poller, func(), error)
}

var (
	services      Services
	buildServices func(configDir, dataDir string) (Services, error)
)

// SetServices injects service implementations directly. Used by tests.
func SetServices(s Services) {
	services = s
}

// SetServiceBuilder registers the factory the root command uses to
// construct services once the persistent flags are parsed.
func SetServiceBuilder(fn func(configDir, dataDir string) (Services, error)) {
	buildServices = fn
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "",
		"configuration directory (default ~/.pulsebridge)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "",
		"data directory (default ~/.pulsebridge/data)")
}
