package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent poll cycle results",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of results to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if services.Results == nil {
		return errors.New("result store not configured")
	}

	results, err := services.Results.ListResults(context.Background(), historyLimit)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		cmd.Println("No poll cycles recorded yet.")
		return nil
	}

	for _, r := range results {
		status := "skipped"
		switch {
		case r.Error != "":
			status = "error: " + r.Error
		case r.Published:
			status = "published"
		}

		sample := "-"
		if !r.SampleTime.IsZero() {
			sample = r.SampleTime.Format(time.RFC3339)
		}
		cmd.Printf("%s  value=%-4d sample=%s  %s\n",
			r.StartedAt.Format(time.RFC3339), r.SampleValue, sample, status)
	}
	return nil
}
