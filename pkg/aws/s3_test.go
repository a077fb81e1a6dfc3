package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockS3Client implements S3API for testing purposes.
type mockS3Client struct {
	GetBucketLifecycleConfigurationFunc func(ctx context.Context, params *s3.GetBucketLifecycleConfigurationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLifecycleConfigurationOutput, error)
}

func (m *mockS3Client) GetBucketLifecycleConfiguration(ctx context.Context, params *s3.GetBucketLifecycleConfigurationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLifecycleConfigurationOutput, error) {
	if m.GetBucketLifecycleConfigurationFunc != nil {
		return m.GetBucketLifecycleConfigurationFunc(ctx, params, optFns...)
	}
	return &s3.GetBucketLifecycleConfigurationOutput{}, nil
}

func TestS3Client_GetLifecycleRules(t *testing.T) {
	var requested string
	client := NewS3ClientWithAPI(&mockS3Client{
		GetBucketLifecycleConfigurationFunc: func(ctx context.Context, params *s3.GetBucketLifecycleConfigurationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLifecycleConfigurationOutput, error) {
			requested = aws.ToString(params.Bucket)
			return &s3.GetBucketLifecycleConfigurationOutput{
				Rules: []types.LifecycleRule{
					{
						ID:     aws.String("retention"),
						Status: types.ExpirationStatusEnabled,
						Expiration: &types.LifecycleExpiration{
							Days: aws.Int32(90),
						},
						NoncurrentVersionExpiration: &types.NoncurrentVersionExpiration{
							NoncurrentDays: aws.Int32(90),
						},
					},
					{
						ID:     aws.String("abort-multipart"),
						Status: types.ExpirationStatusDisabled,
					},
				},
			}, nil
		},
	})

	lookup, err := client.GetLifecycleRules(context.Background(), "epor-dev-claims-001-data")
	require.NoError(t, err)

	assert.Equal(t, "epor-dev-claims-001-data", requested)
	assert.True(t, lookup.Found)
	require.Len(t, lookup.Rules, 2)

	first := lookup.Rules[0]
	assert.Equal(t, "retention", first.ID)
	assert.True(t, first.Enabled)
	require.NotNil(t, first.ExpirationDays)
	require.NotNil(t, first.NoncurrentDays)
	assert.Equal(t, int32(90), *first.ExpirationDays)
	assert.Equal(t, int32(90), *first.NoncurrentDays)

	second := lookup.Rules[1]
	assert.False(t, second.Enabled)
	assert.Nil(t, second.ExpirationDays)
	assert.Nil(t, second.NoncurrentDays)
}

func TestS3Client_GetLifecycleRules_NoConfiguration(t *testing.T) {
	client := NewS3ClientWithAPI(&mockS3Client{
		GetBucketLifecycleConfigurationFunc: func(ctx context.Context, params *s3.GetBucketLifecycleConfigurationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLifecycleConfigurationOutput, error) {
			return nil, &smithy.GenericAPIError{
				Code:    "NoSuchLifecycleConfiguration",
				Message: "The lifecycle configuration does not exist",
			}
		},
	})

	lookup, err := client.GetLifecycleRules(context.Background(), "epor-dev-claims-001-data")
	require.NoError(t, err)
	assert.False(t, lookup.Found)
	assert.Empty(t, lookup.Rules)
}

func TestS3Client_GetLifecycleRules_OtherErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "access denied", err: &smithy.GenericAPIError{Code: "AccessDenied", Message: "Access Denied"}},
		{name: "missing bucket", err: &smithy.GenericAPIError{Code: "NoSuchBucket"}},
		{name: "transport failure", err: errors.New("connection reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewS3ClientWithAPI(&mockS3Client{
				GetBucketLifecycleConfigurationFunc: func(ctx context.Context, params *s3.GetBucketLifecycleConfigurationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLifecycleConfigurationOutput, error) {
					return nil, tt.err
				},
			})

			_, err := client.GetLifecycleRules(context.Background(), "epor-dev-claims-001-data")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestIsNoLifecycleConfiguration(t *testing.T) {
	noConfig := &smithy.GenericAPIError{Code: "NoSuchLifecycleConfiguration"}

	assert.True(t, IsNoLifecycleConfiguration(noConfig))
	assert.True(t, IsNoLifecycleConfiguration(&smithy.OperationError{ServiceID: "S3", OperationName: "GetBucketLifecycleConfiguration", Err: noConfig}))
	assert.False(t, IsNoLifecycleConfiguration(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, IsNoLifecycleConfiguration(errors.New("NoSuchLifecycleConfiguration")))
	assert.False(t, IsNoLifecycleConfiguration(nil))
}
