// Package overlap computes temporal intersections between two people's
// tenures at the same organization and aggregates them into scored
// relationship records.
package overlap

import (
	"time"

	"github.com/staffgraph/staffgraph/internal/dates"
	"github.com/staffgraph/staffgraph/internal/facts"
)

// Tenure is one person's affiliation with one organization. End is the
// zero Date for an ongoing position. A person may hold overlapping
// tenures at different organizations; that is valid data, not an error.
type Tenure struct {
	Person  string
	OrgName string // raw observed name, kept for display
	OrgKey  string // canonical key from the normalizer
	Role    string
	Start   dates.Date
	End     dates.Date
	Source  facts.SourceCategory
}

// Comparable reports whether the tenure can participate in overlap
// computation. A tenure without a known start cannot intersect anything;
// it is skipped entirely rather than treated as covering all time.
func (t Tenure) Comparable() bool {
	return !t.Start.IsZero()
}

// Open reports whether the tenure is ongoing.
func (t Tenure) Open() bool {
	return t.End.IsZero()
}

// EndOr resolves an open end to the caller's notion of "now". Overlap
// computation must treat an ongoing tenure as extending through the
// present, not as missing data.
func (t Tenure) EndOr(now time.Time) time.Time {
	if t.Open() {
		return now
	}
	return t.End.Time
}
