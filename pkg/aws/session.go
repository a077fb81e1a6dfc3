package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
)

// SessionOptions controls how the shared SDK configuration is loaded
type SessionOptions struct {
	Region      string
	EndpointURL string // Optional override, e.g. LocalStack
}

// LoadConfig loads the SDK configuration shared by the S3 and Config clients.
// It is called once per process; the resulting clients are passed to the evaluator.
func LoadConfig(ctx context.Context, opts SessionOptions) (aws.Config, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRetryMode(aws.RetryModeStandard),
		config.WithEC2IMDSClientEnableState(imds.ClientEnabled),
	}
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.EndpointURL != "" {
		loadOpts = append(loadOpts, config.WithBaseEndpoint(opts.EndpointURL))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("error loading AWS config: %w", err)
	}
	return cfg, nil
}
