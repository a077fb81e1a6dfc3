package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/younsl/retention-rule/internal/config"
	"github.com/younsl/retention-rule/internal/logger"
	"github.com/younsl/retention-rule/internal/retention"
	"github.com/younsl/retention-rule/internal/version"
	"github.com/younsl/retention-rule/pkg/aws"
)

// lambdaRuntimeEnv is set by the Lambda runtime for custom runtimes
const lambdaRuntimeEnv = "AWS_LAMBDA_RUNTIME_API"

func main() {
	v := config.NewViper()
	rootCmd := newRootCmd(v)

	// Custom runtimes start the bootstrap binary without arguments
	if os.Getenv(lambdaRuntimeEnv) != "" && len(os.Args) == 1 {
		rootCmd.SetArgs([]string{"lambda"})
	}

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "retention-rule",
		Short: "AWS Config rule checking S3 dataset retention",
		Long: `retention-rule evaluates whether S3 buckets carry a lifecycle rule
matching the retention expected for their dataset and reports the
verdict to AWS Config.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("expected-file", "", "YAML or JSON file mapping datasets to retention days (overrides EXPECTED)")
	flags.String("region", "", "AWS region (default: from the environment)")
	flags.String("endpoint-url", "", "Override the AWS endpoint, e.g. for LocalStack")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")

	_ = v.BindPFlag("expected_file", flags.Lookup("expected-file"))
	_ = v.BindPFlag("region", flags.Lookup("region"))
	_ = v.BindPFlag("endpoint_url", flags.Lookup("endpoint-url"))
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))

	rootCmd.AddCommand(
		newLambdaCmd(v),
		newEvaluateCmd(v),
		newCheckCmd(v),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get())
		},
	}
}

// app bundles what every command needs: settings, logger and a ready evaluator
type app struct {
	settings  config.Settings
	logger    *zap.Logger
	evaluator *retention.Evaluator
}

// bootstrap loads settings, the expectation table and the AWS clients once per process.
// A malformed expectation table is fatal.
func bootstrap(ctx context.Context, v *viper.Viper, opts ...retention.Option) (*app, error) {
	settings, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(settings.LogLevel)
	if err != nil {
		return nil, err
	}

	table, err := settings.ExpectationTable()
	if err != nil {
		return nil, err
	}

	cfg, err := aws.LoadConfig(ctx, aws.SessionOptions{
		Region:      settings.Region,
		EndpointURL: settings.EndpointURL,
	})
	if err != nil {
		return nil, err
	}

	log.Debug("Configuration loaded",
		zap.Int("datasets", len(table)),
		zap.String("region", cfg.Region),
		zap.String("version", version.Get().Version),
	)

	opts = append([]retention.Option{retention.WithLogger(log)}, opts...)
	evaluator := retention.NewEvaluator(table, aws.NewS3Client(cfg), aws.NewConfigClient(cfg), opts...)

	return &app{settings: settings, logger: log, evaluator: evaluator}, nil
}

// startSpinner creates and starts a spinner on stderr so stdout stays parseable
func startSpinner(message string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message
	s.Start()
	return s
}
