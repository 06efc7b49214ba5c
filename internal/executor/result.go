package executor

import (
	"fmt"
	"strings"
	"time"

	"github.com/aryankumar/esadmin/internal/util"
)

// CountSuccessful returns the number of successful results (no error)
func CountSuccessful(results []Result) int {
	count := 0
	for _, r := range results {
		if r.Error == nil {
			count++
		}
	}
	return count
}

// CountFailed returns the number of failed results (has error)
func CountFailed(results []Result) int {
	return len(results) - CountSuccessful(results)
}

// FilterSuccessful returns only the successful results
func FilterSuccessful(results []Result) []Result {
	filtered := make([]Result, 0, len(results))
	for _, r := range results {
		if r.Error == nil {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// FilterFailed returns only the failed results
func FilterFailed(results []Result) []Result {
	filtered := make([]Result, 0, len(results))
	for _, r := range results {
		if r.Error != nil {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// HasErrors returns true if any results contain errors
func HasErrors(results []Result) bool {
	for _, r := range results {
		if r.Error != nil {
			return true
		}
	}
	return false
}

// Err combines the failures into one error tagged with their cluster names.
// Returns nil when every task succeeded.
func Err(results []Result) error {
	errs := make([]error, 0, len(results))
	for _, r := range results {
		errs = append(errs, util.WrapClusterError(r.ClusterName, r.Error))
	}
	return util.CombineErrors(errs...)
}

// Summary provides a summary of execution results
type Summary struct {
	Total       int
	Successful  int
	Failed      int
	MaxDuration time.Duration
}

// Summarize creates a summary of the results
func Summarize(results []Result) Summary {
	s := Summary{
		Total:      len(results),
		Successful: CountSuccessful(results),
	}
	s.Failed = s.Total - s.Successful
	for _, r := range results {
		if r.Duration > s.MaxDuration {
			s.MaxDuration = r.Duration
		}
	}
	return s
}

// String returns a human-readable string representation of the summary
func (s Summary) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total: %d, Successful: %d, Failed: %d", s.Total, s.Successful, s.Failed))
	if s.Total > 0 {
		sb.WriteString(fmt.Sprintf(", Slowest: %s", s.MaxDuration.Round(time.Millisecond)))
	}
	return sb.String()
}
