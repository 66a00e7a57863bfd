package overlap

import "time"

// Scoring weights. The score is a weighted sum for ranking, not a
// probability.
const (
	weightPerOrg       = 10 // breadth: each distinct shared organization
	weightPerYear      = 2  // depth: each whole year of total overlap
	weightPerRecent    = 5  // recency: each event starting at or after the cutoff
	weightPerHighEvent = 15 // hiring signal: each "high" directional event
)

// Relationship classification labels derived from overlap heuristics.
// A curated label always overrides the derived one downstream.
const (
	LabelHired          = "hired"
	LabelWorkedTogether = "worked-together"
)

// ScoreConfig parameterizes aggregation.
type ScoreConfig struct {
	// RecencyCutoff marks where the per-event recency bonus starts.
	RecencyCutoff time.Time
}

// Record is the aggregated view of every overlap event between one
// unordered pair of people.
type Record struct {
	Events []Event

	Score      int
	OrgCount   int
	TotalYears int

	// Most recent event by intersection start, for display without
	// re-deriving from the event list.
	MostRecentOrg   string
	MostRecentStart time.Time

	Label string
}

// Aggregate folds all overlap events for one pair into a scored record.
// The score is always recomputed from the complete event list; there is
// no incremental update path to drift away from.
func Aggregate(events []Event, cfg ScoreConfig) Record {
	rec := Record{Events: events, Label: LabelWorkedTogether}
	if len(events) == 0 {
		return rec
	}

	orgs := make(map[string]bool)
	for _, ev := range events {
		orgs[ev.OrgKey] = true
		rec.TotalYears += ev.Years

		if !cfg.RecencyCutoff.IsZero() && !ev.Start.Before(cfg.RecencyCutoff) {
			rec.Score += weightPerRecent
		}
		if ev.Likelihood == LikelihoodHigh {
			rec.Score += weightPerHighEvent
			rec.Label = LabelHired
		}

		// The event list carries no ordering guarantee, so the summary
		// scans everything.
		if rec.MostRecentStart.IsZero() || ev.Start.After(rec.MostRecentStart) {
			rec.MostRecentStart = ev.Start
			rec.MostRecentOrg = ev.OrgName
		}
	}

	rec.OrgCount = len(orgs)
	rec.Score += rec.OrgCount * weightPerOrg
	rec.Score += rec.TotalYears * weightPerYear
	return rec
}

// Stronger ranks two records for the same person: higher score first,
// ties broken by the more recent intersection start.
func Stronger(a, b Record) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.MostRecentStart.After(b.MostRecentStart)
}
