package domain

import (
	"fmt"
	"strings"
)

// DataNotFoundError reports that no observation row could be found for a
// station after every backend was consulted. It is scoped to one station:
// the batch catches it, records a warning, and moves on.
type DataNotFoundError struct {
	StationID int
}

func (e *DataNotFoundError) Error() string {
	return fmt.Sprintf("no observation rows for station %d", e.StationID)
}

// FeatureAlignmentError is raised in strict feature mode when the row lacks
// columns the model schema requires. Lenient mode (the default) substitutes
// 0.0 and reports the same names through the warning channel instead.
type FeatureAlignmentError struct {
	Missing []string
}

func (e *FeatureAlignmentError) Error() string {
	return fmt.Sprintf("row is missing %d schema feature(s): %s",
		len(e.Missing), strings.Join(e.Missing, ", "))
}
