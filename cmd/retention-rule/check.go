package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/younsl/retention-rule/pkg/formatter"
)

func newCheckCmd(v *viper.Viper) *cobra.Command {
	var bucket string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check one bucket's retention without reporting to AWS Config",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			s := startSpinner(fmt.Sprintf("Fetching lifecycle configuration of %s ...", bucket))
			report, err := a.evaluator.Check(cmd.Context(), bucket)
			s.Stop()
			if err != nil {
				return err
			}

			formatter.FormatBucketReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&bucket, "bucket", "b", "", "Bucket name")
	_ = cmd.MarkFlagRequired("bucket")

	return cmd
}
