package aws

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/configservice"
	"github.com/aws/aws-sdk-go-v2/service/configservice/types"
	"github.com/younsl/retention-rule/internal/models"
)

// ErrEvaluationRejected is returned when AWS Config reports the evaluation as failed
var ErrEvaluationRejected = errors.New("evaluation rejected by AWS Config")

// ConfigAPI is the part of the AWS Config client used to report evaluations
type ConfigAPI interface {
	PutEvaluations(ctx context.Context, params *configservice.PutEvaluationsInput, optFns ...func(*configservice.Options)) (*configservice.PutEvaluationsOutput, error)
}

// ConfigClient submits rule evaluations to AWS Config
type ConfigClient struct {
	client ConfigAPI
}

// NewConfigClient creates a new AWS Config client from a loaded SDK config
func NewConfigClient(cfg aws.Config) *ConfigClient {
	return &ConfigClient{client: configservice.NewFromConfig(cfg)}
}

// NewConfigClientWithAPI wraps an existing ConfigAPI implementation
func NewConfigClientWithAPI(api ConfigAPI) *ConfigClient {
	return &ConfigClient{client: api}
}

// PutEvaluation submits a single evaluation tagged with the rule's result token
func (c *ConfigClient) PutEvaluation(ctx context.Context, eval models.Evaluation, resultToken string, testMode bool) error {
	orderingTimestamp, err := parseCaptureTime(eval.OrderingTimestamp)
	if err != nil {
		return err
	}

	input := &configservice.PutEvaluationsInput{
		ResultToken: aws.String(resultToken),
		TestMode:    testMode,
		Evaluations: []types.Evaluation{
			{
				ComplianceResourceType: aws.String(eval.ResourceType),
				ComplianceResourceId:   aws.String(eval.ResourceID),
				ComplianceType:         types.ComplianceType(eval.ComplianceType),
				Annotation:             aws.String(eval.Annotation),
				OrderingTimestamp:      aws.Time(orderingTimestamp),
			},
		},
	}

	out, err := c.client.PutEvaluations(ctx, input)
	if err != nil {
		return fmt.Errorf("error putting evaluation for %s: %w", eval.ResourceID, err)
	}
	if len(out.FailedEvaluations) > 0 {
		return fmt.Errorf("%w: %s", ErrEvaluationRejected, eval.ResourceID)
	}
	return nil
}

// parseCaptureTime converts configurationItemCaptureTime into the SDK's timestamp type
func parseCaptureTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid ordering timestamp %q: %w", s, err)
	}
	return t, nil
}
