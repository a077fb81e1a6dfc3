package retention

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/younsl/retention-rule/internal/models"
)

// DefaultResultToken is sent when the invocation carries no result token
const DefaultResultToken = "NoTokenProvided"

var (
	// ErrMissingInvokingEvent is returned when the Config event has no invokingEvent payload
	ErrMissingInvokingEvent = errors.New("invoking event is empty")
	// ErrMissingCaptureTime is returned when the configuration item has no capture time
	ErrMissingCaptureTime = errors.New("configuration item has no capture time")
)

// EvaluationSink receives the evaluation produced for each invocation
type EvaluationSink interface {
	PutEvaluation(ctx context.Context, eval models.Evaluation, resultToken string, testMode bool) error
}

// Evaluator runs the retention rule for AWS Config invocations.
// It keeps no state between invocations.
type Evaluator struct {
	table    ExpectationTable
	source   LifecycleSource
	checker  *Checker
	sink     EvaluationSink
	logger   *zap.Logger
	testMode bool
}

// Option configures an Evaluator
type Option func(*Evaluator)

// WithLogger sets the logger used for per-invocation logging
func WithLogger(l *zap.Logger) Option {
	return func(e *Evaluator) {
		e.logger = l
	}
}

// WithTestMode submits evaluations with TestMode enabled so AWS Config does not record them
func WithTestMode(enabled bool) Option {
	return func(e *Evaluator) {
		e.testMode = enabled
	}
}

// NewEvaluator creates an Evaluator. The clients are created once per process by the caller.
func NewEvaluator(table ExpectationTable, source LifecycleSource, sink EvaluationSink, opts ...Option) *Evaluator {
	if table == nil {
		table = ExpectationTable{}
	}
	e := &Evaluator{
		table:   table,
		source:  source,
		checker: NewChecker(source),
		sink:    sink,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate handles one AWS Config rule invocation and submits its verdict.
// Events without a configuration item are ignored and nothing is submitted.
func (e *Evaluator) Evaluate(ctx context.Context, event events.ConfigEvent) (models.Status, error) {
	log := e.logger.With(zap.String("invocation_id", invocationID(ctx)))

	item, err := decodeConfigurationItem(event.InvokingEvent)
	if err != nil {
		return models.Status{}, err
	}
	if item == nil {
		log.Info("Invocation has no configuration item, ignoring")
		return models.Status{Status: models.StatusIgnored}, nil
	}

	log = log.With(
		zap.String("resource_type", item.ResourceType),
		zap.String("resource_id", item.ResourceID),
	)

	compliance, annotation, err := e.decide(ctx, log, item)
	if err != nil {
		return models.Status{}, err
	}

	if item.CaptureTime == "" {
		return models.Status{}, fmt.Errorf("%w: %s", ErrMissingCaptureTime, item.ResourceID)
	}

	eval := models.Evaluation{
		ResourceType:      item.ResourceType,
		ResourceID:        item.ResourceID,
		ComplianceType:    compliance,
		Annotation:        models.TruncateAnnotation(annotation),
		OrderingTimestamp: item.CaptureTime,
	}

	resultToken := event.ResultToken
	if resultToken == "" {
		resultToken = DefaultResultToken
	}

	if err := e.sink.PutEvaluation(ctx, eval, resultToken, e.testMode); err != nil {
		return models.Status{}, fmt.Errorf("submitting evaluation: %w", err)
	}

	log.Info("Evaluation submitted",
		zap.String("compliance", string(compliance)),
		zap.String("annotation", eval.Annotation),
		zap.Bool("test_mode", e.testMode),
	)

	return models.Status{
		Status:     models.StatusDone,
		Compliance: compliance,
		Note:       annotation,
	}, nil
}

// decide produces the verdict and annotation for a configuration item
func (e *Evaluator) decide(ctx context.Context, log *zap.Logger, item *models.ConfigurationItem) (models.ComplianceType, string, error) {
	if item.ResourceType != models.S3BucketResourceType {
		return models.NotApplicable, ReasonNotS3Bucket, nil
	}

	expected, ok := ResolveExpectedDays(item.ResourceID, e.table)
	if !ok {
		dataset, named := DatasetName(item.ResourceID)
		log.Debug("No expected retention for bucket",
			zap.Bool("name_parsed", named),
			zap.String("dataset", dataset),
		)
		return models.NonCompliant, ReasonDatasetUnrecognized, nil
	}

	passed, reason, err := e.checker.CheckRetention(ctx, item.ResourceID, expected)
	if err != nil {
		return "", "", err
	}
	if passed {
		return models.Compliant, reason, nil
	}
	return models.NonCompliant, reason, nil
}

// Check resolves and checks a single bucket without submitting anything to AWS Config
func (e *Evaluator) Check(ctx context.Context, bucketName string) (models.BucketReport, error) {
	report := models.BucketReport{BucketName: bucketName}
	report.Dataset, _ = DatasetName(bucketName)

	expected, ok := ResolveExpectedDays(bucketName, e.table)
	if !ok {
		report.ComplianceType = models.NonCompliant
		report.Reason = ReasonDatasetUnrecognized
		return report, nil
	}
	report.Recognized = true
	report.ExpectedDays = expected

	lookup, err := e.source.GetLifecycleRules(ctx, bucketName)
	if err != nil {
		return report, fmt.Errorf("checking retention of %s: %w", bucketName, err)
	}
	report.Rules = lookup.Rules

	passed, reason := MatchRules(lookup, expected)
	report.Reason = reason
	report.ComplianceType = models.NonCompliant
	if passed {
		report.ComplianceType = models.Compliant
	}
	return report, nil
}

// decodeConfigurationItem parses the invokingEvent JSON. A nil item means the
// event carries no configuration item (e.g. scheduled or oversized notifications).
func decodeConfigurationItem(invokingEvent string) (*models.ConfigurationItem, error) {
	if invokingEvent == "" {
		return nil, ErrMissingInvokingEvent
	}
	var ev models.InvokingEvent
	if err := json.Unmarshal([]byte(invokingEvent), &ev); err != nil {
		return nil, fmt.Errorf("error parsing invoking event: %w", err)
	}
	if ev.ConfigurationItem == nil || *ev.ConfigurationItem == (models.ConfigurationItem{}) {
		return nil, nil
	}
	return ev.ConfigurationItem, nil
}

// invocationID returns the Lambda request id, or a random id outside Lambda
func invocationID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return uuid.NewString()
}
