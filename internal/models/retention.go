package models

import "unicode/utf8"

// ComplianceType is the verdict reported to AWS Config for a single resource
type ComplianceType string

const (
	Compliant     ComplianceType = "COMPLIANT"
	NonCompliant  ComplianceType = "NON_COMPLIANT"
	NotApplicable ComplianceType = "NOT_APPLICABLE"
)

// S3BucketResourceType is the AWS Config resource type for S3 buckets
const S3BucketResourceType = "AWS::S3::Bucket"

// MaxAnnotationLength is the longest annotation AWS Config accepts
const MaxAnnotationLength = 256

// Invocation statuses returned to the Lambda runtime
const (
	StatusIgnored = "ignored"
	StatusDone    = "done"
)

// ConfigurationItem holds the fields of an AWS Config configuration item used by the rule
type ConfigurationItem struct {
	ResourceType string `json:"resourceType"`
	ResourceID   string `json:"resourceId"`
	ResourceName string `json:"resourceName,omitempty"`
	AWSRegion    string `json:"awsRegion,omitempty"`
	Status       string `json:"configurationItemStatus,omitempty"`
	CaptureTime  string `json:"configurationItemCaptureTime"` // Kept verbatim for OrderingTimestamp
}

// InvokingEvent is the decoded form of ConfigEvent.InvokingEvent
type InvokingEvent struct {
	ConfigurationItem *ConfigurationItem `json:"configurationItem"`
	MessageType       string             `json:"messageType,omitempty"`
}

// LifecycleRule is the subset of an S3 lifecycle rule relevant to retention
type LifecycleRule struct {
	ID             string
	Enabled        bool
	ExpirationDays *int32 // Current-version expiration, nil when unset
	NoncurrentDays *int32 // Noncurrent-version expiration, nil when unset
}

// Evaluation is the record submitted to AWS Config
type Evaluation struct {
	ResourceType      string
	ResourceID        string
	ComplianceType    ComplianceType
	Annotation        string
	OrderingTimestamp string
}

// Status summarizes one invocation for the caller
type Status struct {
	Status     string         `json:"status"`
	Compliance ComplianceType `json:"compliance,omitempty"`
	Note       string         `json:"note,omitempty"`
}

// BucketReport is the result of checking a single bucket without submitting it
type BucketReport struct {
	BucketName     string
	Dataset        string
	ExpectedDays   int
	Recognized     bool
	ComplianceType ComplianceType
	Reason         string
	Rules          []LifecycleRule
}

// TruncateAnnotation cuts s to MaxAnnotationLength characters
func TruncateAnnotation(s string) string {
	if utf8.RuneCountInString(s) <= MaxAnnotationLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxAnnotationLength])
}
