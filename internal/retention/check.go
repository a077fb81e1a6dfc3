package retention

import (
	"context"
	"fmt"

	"github.com/younsl/retention-rule/internal/models"
	awsclient "github.com/younsl/retention-rule/pkg/aws"
)

// Reasons reported as annotations
const (
	ReasonMatchingRule        = "Matching expiration and noncurrent retention"
	ReasonNoLifecycle         = "No lifecycle configuration"
	ReasonNoMatchingRule      = "No matching rule found"
	ReasonDatasetUnrecognized = "Dataset not recognized for expected retention"
	ReasonNotS3Bucket         = "Not an S3 bucket"
)

// LifecycleSource fetches the lifecycle rules of a bucket
type LifecycleSource interface {
	GetLifecycleRules(ctx context.Context, bucketName string) (awsclient.LifecycleLookup, error)
}

// Checker compares a bucket's lifecycle rules against an expected retention
type Checker struct {
	source LifecycleSource
}

// NewChecker creates a Checker backed by source
func NewChecker(source LifecycleSource) *Checker {
	return &Checker{source: source}
}

// CheckRetention reports whether bucketName has an enabled rule expiring both current
// and noncurrent versions after expectedDays. Storage failures other than a missing
// lifecycle configuration are returned as errors.
func (c *Checker) CheckRetention(ctx context.Context, bucketName string, expectedDays int) (bool, string, error) {
	lookup, err := c.source.GetLifecycleRules(ctx, bucketName)
	if err != nil {
		return false, "", fmt.Errorf("checking retention of %s: %w", bucketName, err)
	}
	ok, reason := MatchRules(lookup, expectedDays)
	return ok, reason, nil
}

// MatchRules applies the retention decision to an already fetched lifecycle configuration.
// The first enabled rule matching both durations wins.
func MatchRules(lookup awsclient.LifecycleLookup, expectedDays int) (bool, string) {
	if !lookup.Found {
		return false, ReasonNoLifecycle
	}
	for _, rule := range lookup.Rules {
		if RuleMatches(rule, expectedDays) {
			return true, ReasonMatchingRule
		}
	}
	return false, ReasonNoMatchingRule
}

func daysEqual(days *int32, expected int) bool {
	return days != nil && int(*days) == expected
}

// RuleMatches reports whether an enabled rule expires both current and noncurrent
// versions after exactly expectedDays. Disabled rules never match.
func RuleMatches(rule models.LifecycleRule, expectedDays int) bool {
	if !rule.Enabled {
		return false
	}
	return daysEqual(rule.ExpirationDays, expectedDays) && daysEqual(rule.NoncurrentDays, expectedDays)
}
