// Package facts merges atomic assertions from sources of differing trust
// into one resolved record per subject. A subject is a person or a
// person-pair relationship; a fact is one field value tagged with where
// and when it was observed.
package facts

import (
	"strings"
	"time"
)

// SourceCategory is the trust tier of an assertion. The numeric order is
// the conflict-resolution order: higher wins outright, never blended.
type SourceCategory int

const (
	// SourceInferred is a fact extracted upstream from news or other
	// unstructured text.
	SourceInferred SourceCategory = iota
	// SourceScraped is a fact read from a live current-roster page.
	SourceScraped
	// SourceCurated is a hand-maintained assertion.
	SourceCurated
)

// String returns the wire name of the category.
func (c SourceCategory) String() string {
	switch c {
	case SourceCurated:
		return "curated"
	case SourceScraped:
		return "scraped"
	case SourceInferred:
		return "inferred"
	default:
		return "unknown"
	}
}

// ParseSourceCategory maps a wire name back to a category. Unknown names
// fall to the lowest trust tier rather than failing: a mislabeled fact
// should still participate, just never outrank a known source.
func ParseSourceCategory(s string) SourceCategory {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "curated", "manual", "manual_curated":
		return SourceCurated
	case "scraped", "scraped_current", "roster":
		return SourceScraped
	default:
		return SourceInferred
	}
}

// Fact is one atomic assertion about a subject.
type Fact struct {
	Subject    string // display name or pair key, normalized by SubjectKey before grouping
	Field      string // e.g. "role", "current_club", "classification"
	Value      string
	Source     SourceCategory
	ObservedAt time.Time
	Note       string // optional free-text note from curation
}

// SubjectKey normalizes a display name for identity matching:
// case-insensitive with collapsed whitespace. No fuzzy matching is
// performed; "H. Kohfeldt" and "Horst Kohfeldt" stay distinct subjects.
func SubjectKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
