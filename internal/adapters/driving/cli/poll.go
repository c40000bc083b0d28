package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pulsebridge/pulsebridge-cli/internal/core/domain"
)

// baseTopic is the topic the latest heart-rate sample is published to,
// optionally prefixed with a person name to keep multi-person
// deployments apart on a shared broker.
const baseTopic = "heart-rate"

var (
	pollPersonName  string
	pollDetailLevel string
)

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Run the heart-rate bridge loop",
	Long: `Continuously fetches the latest intraday heart-rate sample and
publishes it to the MQTT broker. A sample is published only when it is
newer than the last published one, so restarts and quiet periods do not
produce duplicates.

Runs until interrupted. Publish failures are retried and then skipped;
credential or API failures stop the loop since they need operator
attention.`,
	RunE: runPoll,
}

func init() {
	pollCmd.Flags().StringVar(&pollPersonName, "person-name", "",
		"optional person name prefixed to the topic")
	pollCmd.Flags().StringVar(&pollDetailLevel, "detail-level", string(domain.DetailOneMinute),
		"sampling granularity: 1sec, 1min or 5min")
	rootCmd.AddCommand(pollCmd)
}

func runPoll(cmd *cobra.Command, _ []string) error {
	if services.NewPoller == nil {
		return errors.New("poller not configured")
	}

	detail, err := domain.ParseDetailLevel(pollDetailLevel)
	if err != nil {
		return fmt.Errorf("invalid detail level %q: use 1sec, 1min or 5min", pollDetailLevel)
	}

	topic := baseTopic
	if pollPersonName != "" {
		topic = pollPersonName + "-" + baseTopic
	}

	poller, cleanup, err := services.NewPoller(topic, detail)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Bridging heart rate to topic %q (detail %s). Ctrl-C to stop.\n", topic, detail)
	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
