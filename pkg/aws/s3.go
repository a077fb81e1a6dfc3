package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/younsl/retention-rule/internal/models"
)

// errCodeNoLifecycle is returned by S3 when a bucket has no lifecycle configuration
const errCodeNoLifecycle = "NoSuchLifecycleConfiguration"

// S3API is the part of the S3 client used for retention checks
type S3API interface {
	GetBucketLifecycleConfiguration(ctx context.Context, params *s3.GetBucketLifecycleConfigurationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLifecycleConfigurationOutput, error)
}

// LifecycleLookup is the outcome of fetching a bucket's lifecycle configuration.
// Found is false when the bucket has no lifecycle configuration at all.
type LifecycleLookup struct {
	Found bool
	Rules []models.LifecycleRule
}

// S3Client reads bucket lifecycle configurations
type S3Client struct {
	client S3API
}

// NewS3Client creates a new S3Client from a loaded SDK config
func NewS3Client(cfg aws.Config) *S3Client {
	return &S3Client{
		client: s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.UsePathStyle = true
		}),
	}
}

// NewS3ClientWithAPI wraps an existing S3API implementation
func NewS3ClientWithAPI(api S3API) *S3Client {
	return &S3Client{client: api}
}

// GetLifecycleRules returns the lifecycle rules configured on a bucket.
// A missing lifecycle configuration is reported through LifecycleLookup.Found, not as an error.
func (c *S3Client) GetLifecycleRules(ctx context.Context, bucketName string) (LifecycleLookup, error) {
	out, err := c.client.GetBucketLifecycleConfiguration(ctx, &s3.GetBucketLifecycleConfigurationInput{
		Bucket: aws.String(bucketName),
	})
	if err != nil {
		if IsNoLifecycleConfiguration(err) {
			return LifecycleLookup{Found: false}, nil
		}
		return LifecycleLookup{}, fmt.Errorf("error getting lifecycle configuration for bucket %s: %w", bucketName, err)
	}

	rules := make([]models.LifecycleRule, 0, len(out.Rules))
	for _, r := range out.Rules {
		rules = append(rules, convertLifecycleRule(r))
	}
	return LifecycleLookup{Found: true, Rules: rules}, nil
}

// IsNoLifecycleConfiguration reports whether err is S3's NoSuchLifecycleConfiguration error
func IsNoLifecycleConfiguration(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == errCodeNoLifecycle
	}
	return false
}

func convertLifecycleRule(r types.LifecycleRule) models.LifecycleRule {
	rule := models.LifecycleRule{
		ID:      aws.ToString(r.ID),
		Enabled: r.Status == types.ExpirationStatusEnabled,
	}
	if r.Expiration != nil && r.Expiration.Days != nil {
		days := *r.Expiration.Days
		rule.ExpirationDays = &days
	}
	if r.NoncurrentVersionExpiration != nil && r.NoncurrentVersionExpiration.NoncurrentDays != nil {
		days := *r.NoncurrentVersionExpiration.NoncurrentDays
		rule.NoncurrentDays = &days
	}
	return rule
}
