package sql

import (
	"fmt"

	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/ekaya-inc/ekaya-ingest/pkg/models"
)

// InjectionCheckResult contains the result of an injection check on a cell value.
type InjectionCheckResult struct {
	IsSQLi      bool   // True if SQL injection pattern detected
	Fingerprint string // libinjection fingerprint of the detected pattern
	Column      string // Column the value came from
	Value       any    // The value that was checked
}

// CheckValueForInjection uses libinjection to detect SQL injection patterns
// in a cell value.
//
// Only string values are checked - numbers, booleans, and nil cannot
// contain SQL injection patterns and will return nil (no injection detected).
//
// Example:
//
//	result := CheckValueForInjection("notes", "'; DROP TABLE users--")
//	// result.IsSQLi == true
//	// result.Column == "notes"
func CheckValueForInjection(column string, value any) *InjectionCheckResult {
	var strValue string
	switch v := value.(type) {
	case string:
		strValue = v
	case *string:
		if v == nil {
			return nil
		}
		strValue = *v
	default:
		return nil
	}

	isSQLi, fingerprint := libinjection.IsSQLi(strValue)
	if isSQLi {
		return &InjectionCheckResult{
			IsSQLi:      true,
			Fingerprint: string(fingerprint),
			Column:      column,
			Value:       value,
		}
	}

	return nil
}

// ScanDatasetForInjection checks every retained sample row of ds and adds one
// warning per column holding a value that looks like an injection payload.
// It returns the findings, at most one per column, in column order.
func ScanDatasetForInjection(ds *models.Dataset) []*InjectionCheckResult {
	if ds == nil {
		return nil
	}

	var results []*InjectionCheckResult
	for _, column := range ds.ColumnNames {
		for _, row := range ds.SampleRows {
			if result := CheckValueForInjection(column, row[column]); result != nil {
				results = append(results, result)
				ds.AddWarning(fmt.Sprintf("Column %q contains values that resemble SQL injection payloads", column))
				break
			}
		}
	}
	return results
}
