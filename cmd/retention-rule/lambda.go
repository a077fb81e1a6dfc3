package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newLambdaCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Run as an AWS Lambda function handling AWS Config events",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			a.logger.Info("Starting Lambda handler")
			lambda.Start(a.evaluator.Evaluate)
			return nil
		},
	}
}
