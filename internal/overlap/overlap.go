package overlap

import (
	"time"

	"github.com/staffgraph/staffgraph/internal/facts"
)

// Likelihood classifies how likely it is that person A brought person B
// into the organization, judged purely from who arrived first and how
// close together. Swapping the two tenures flips high and low, so
// callers must put the potential hirer in the A position.
type Likelihood string

const (
	LikelihoodHigh   Likelihood = "high"
	LikelihoodMedium Likelihood = "medium"
	LikelihoodLow    Likelihood = "low"
)

// Event is the computed intersection of two tenures at one organization.
// It is derived purely from its inputs and never mutated afterwards.
type Event struct {
	PersonA string
	PersonB string
	OrgKey  string
	OrgName string

	Start time.Time
	End   time.Time
	// Years is the overlap duration in whole years, counting both
	// endpoint years.
	Years int

	Likelihood Likelihood

	SourceA facts.SourceCategory
	SourceB facts.SourceCategory
}

// Config carries the explicit parameters of overlap computation.
type Config struct {
	// Now resolves open-ended tenures. Tests pass a fixed instant for
	// reproducible durations.
	Now time.Time
	// HiringGapYears is the largest arrival gap still classified as a
	// strong hiring signal.
	HiringGapYears int
}

// DefaultHiringGapYears is the small-gap threshold used when no explicit
// configuration is supplied.
const DefaultHiringGapYears = 1

// Compute returns the overlap event for two tenures, or false when the
// intervals do not intersect. Callers guarantee that both tenures'
// organizations resolve to the same key and that both starts are known.
func Compute(a, b Tenure, cfg Config) (Event, bool) {
	gapYears := cfg.HiringGapYears
	if gapYears <= 0 {
		gapYears = DefaultHiringGapYears
	}

	start := a.Start.Time
	if b.Start.Time.After(start) {
		start = b.Start.Time
	}
	end := a.EndOr(cfg.Now)
	if bEnd := b.EndOr(cfg.Now); bEnd.Before(end) {
		end = bEnd
	}
	if start.After(end) {
		return Event{}, false
	}

	return Event{
		PersonA:    a.Person,
		PersonB:    b.Person,
		OrgKey:     a.OrgKey,
		OrgName:    a.OrgName,
		Start:      start,
		End:        end,
		Years:      wholeYears(start, end),
		Likelihood: classify(a.Start.Time, b.Start.Time, gapYears),
		SourceA:    a.Source,
		SourceB:    b.Source,
	}, true
}

// classify compares arrival instants. A strictly first with the gap
// inside the threshold is a strong signal that A was in place to hire B.
func classify(startA, startB time.Time, gapYears int) Likelihood {
	switch {
	case startA.Before(startB):
		if !startB.After(startA.AddDate(gapYears, 0, 0)) {
			return LikelihoodHigh
		}
		return LikelihoodMedium
	case startA.Equal(startB):
		return LikelihoodMedium
	default:
		return LikelihoodLow
	}
}

// wholeYears counts the overlap duration in whole years, inclusive of
// both endpoint years: an overlap from 2017 into 2018 counts as two.
func wholeYears(start, end time.Time) int {
	return end.Year() - start.Year() + 1
}
