package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/younsl/retention-rule/internal/models"
	"github.com/younsl/retention-rule/internal/retention"
)

// FormatStatus writes an invocation status as a two-column table
func FormatStatus(writer io.Writer, status models.Status) {
	w := tabwriter.NewWriter(writer, 0, 0, 2, ' ', tabwriter.TabIndent)

	fmt.Fprintf(w, "STATUS\t%s\n", status.Status)
	if status.Compliance != "" {
		fmt.Fprintf(w, "COMPLIANCE\t%s\n", status.Compliance)
	}
	if status.Note != "" {
		fmt.Fprintf(w, "NOTE\t%s\n", status.Note)
	}

	w.Flush()
}

// FormatStatusJSON writes an invocation status as indented JSON
func FormatStatusJSON(writer io.Writer, status models.Status) error {
	enc := json.NewEncoder(writer)
	enc.SetIndent("", "  ")
	return enc.Encode(status)
}

// FormatBucketReport writes the retention check of one bucket followed by its lifecycle rules
func FormatBucketReport(writer io.Writer, report models.BucketReport) {
	dataset := report.Dataset
	if dataset == "" {
		dataset = "-"
	}
	expected := "-"
	if report.Recognized {
		expected = formatDays(int64(report.ExpectedDays))
	}

	fmt.Fprintf(writer, "Bucket:     %s\n", report.BucketName)
	fmt.Fprintf(writer, "Dataset:    %s\n", dataset)
	fmt.Fprintf(writer, "Expected:   %s\n", expected)
	fmt.Fprintf(writer, "Compliance: %s (%s)\n", report.ComplianceType, report.Reason)

	if !report.Recognized {
		return
	}
	if len(report.Rules) == 0 {
		fmt.Fprintln(writer, "\nNo lifecycle rules found.")
		return
	}

	fmt.Fprintln(writer)
	w := tabwriter.NewWriter(writer, 0, 0, 2, ' ', tabwriter.TabIndent)
	fmt.Fprintln(w, "RULE ID\tSTATUS\tEXPIRATION\tNONCURRENT EXPIRATION\tMATCH")

	for _, rule := range report.Rules {
		id := rule.ID
		if id == "" {
			id = "(unnamed)"
		}
		statusStr := "Disabled"
		if rule.Enabled {
			statusStr = "Enabled"
		}
		matchStr := "No"
		if retention.RuleMatches(rule, report.ExpectedDays) {
			matchStr = "Yes"
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			id,
			statusStr,
			formatDaysPtr(rule.ExpirationDays),
			formatDaysPtr(rule.NoncurrentDays),
			matchStr,
		)
	}

	w.Flush()
}

func formatDaysPtr(days *int32) string {
	if days == nil {
		return "-"
	}
	return formatDays(int64(*days))
}

func formatDays(days int64) string {
	if days == 1 {
		return "1 day"
	}
	return humanize.Comma(days) + " days"
}
