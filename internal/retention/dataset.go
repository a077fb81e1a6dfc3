// Package retention decides whether an S3 bucket's lifecycle rules satisfy the
// retention period expected for the dataset it stores.
package retention

import "strings"

// Bucket names follow <prefix>-<env>-<dataset>-<id>-<suffix>.
const (
	minNameSegments = 5
	datasetSegment  = 2
)

// ExpectationTable maps upper-case dataset names to expected retention in days
type ExpectationTable map[string]int

// DatasetName extracts the upper-cased dataset segment from a bucket name.
// ok is false when the name has fewer than five hyphen-separated segments.
func DatasetName(bucketName string) (string, bool) {
	parts := strings.Split(bucketName, "-")
	if len(parts) < minNameSegments {
		return "", false
	}
	return strings.ToUpper(parts[datasetSegment]), true
}

// ResolveExpectedDays returns the retention expected for a bucket's dataset.
// Malformed names and unknown datasets both yield ok == false.
func ResolveExpectedDays(bucketName string, table ExpectationTable) (int, bool) {
	dataset, ok := DatasetName(bucketName)
	if !ok {
		return 0, false
	}
	days, ok := table[dataset]
	return days, ok
}
