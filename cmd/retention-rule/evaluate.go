package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/younsl/retention-rule/internal/retention"
	"github.com/younsl/retention-rule/pkg/formatter"
)

func newEvaluateCmd(v *viper.Viper) *cobra.Command {
	var (
		eventFile string
		testMode  bool
		output    string
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a single AWS Config event read from a file",
		Example: `  retention-rule evaluate --event event.json --test-mode
  EXPECTED='{"CLAIMS": 90}' retention-rule evaluate --event event.json -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "table" && output != "json" {
				return fmt.Errorf("unsupported output format %q", output)
			}

			data, err := os.ReadFile(eventFile)
			if err != nil {
				return fmt.Errorf("failed to read event file: %w", err)
			}
			var event events.ConfigEvent
			if err := json.Unmarshal(data, &event); err != nil {
				return fmt.Errorf("failed to parse event file: %w", err)
			}

			a, err := bootstrap(cmd.Context(), v, retention.WithTestMode(testMode))
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			s := startSpinner("Evaluating ...")
			status, err := a.evaluator.Evaluate(cmd.Context(), event)
			s.Stop()
			if err != nil {
				return err
			}

			if output == "json" {
				return formatter.FormatStatusJSON(cmd.OutOrStdout(), status)
			}
			formatter.FormatStatus(cmd.OutOrStdout(), status)
			return nil
		},
	}

	cmd.Flags().StringVarP(&eventFile, "event", "e", "", "Path to an AWS Config Lambda event (JSON)")
	cmd.Flags().BoolVar(&testMode, "test-mode", false, "Submit with TestMode so AWS Config does not record the evaluation")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")
	_ = cmd.MarkFlagRequired("event")

	return cmd
}
