package facts

import (
	"sort"
	"strings"

	"github.com/staffgraph/staffgraph/internal/dates"
)

// FieldResolution is the winning value for one field plus the audit
// trail of every assertion that lost to it.
type FieldResolution struct {
	Value      string         `json:"value"`
	Source     SourceCategory `json:"-"`
	SourceName string         `json:"source"`
	ObservedAt string         `json:"observed_at,omitempty"`
	Note       string         `json:"note,omitempty"`
	// Overridden lists the losing assertions, highest trust first.
	Overridden []AuditEntry `json:"overridden,omitempty"`
}

// AuditEntry records a losing assertion so callers can show which
// source won and what it displaced.
type AuditEntry struct {
	Value      string `json:"value"`
	SourceName string `json:"source"`
	ObservedAt string `json:"observed_at,omitempty"`
}

// Resolved is the merged record for one subject.
type Resolved struct {
	Subject string                     `json:"subject"`
	Fields  map[string]FieldResolution `json:"fields"`
}

// Merge resolves a flat fact list into one record per subject key.
// It is stateless and recomputed from the full fact set every time, so a
// retracted high-trust fact automatically un-suppresses whatever a lower
// tier still asserts. Running it twice on the same input yields an
// identical result.
func Merge(all []Fact) map[string]Resolved {
	grouped := make(map[string][]Fact)
	display := make(map[string]string)
	for _, f := range all {
		key := SubjectKey(f.Subject)
		if key == "" {
			continue
		}
		grouped[key] = append(grouped[key], f)
		if _, ok := display[key]; !ok {
			display[key] = strings.Join(strings.Fields(f.Subject), " ")
		}
	}

	out := make(map[string]Resolved, len(grouped))
	for key, subjectFacts := range grouped {
		out[key] = Resolved{
			Subject: display[key],
			Fields:  resolveFields(subjectFacts),
		}
	}
	return out
}

// MergeSubject resolves the facts for a single already-grouped subject.
func MergeSubject(subject string, subjectFacts []Fact) Resolved {
	return Resolved{
		Subject: subject,
		Fields:  resolveFields(subjectFacts),
	}
}

func resolveFields(subjectFacts []Fact) map[string]FieldResolution {
	byField := make(map[string][]Fact)
	for _, f := range subjectFacts {
		if f.Field == "" {
			continue
		}
		byField[f.Field] = append(byField[f.Field], f)
	}

	fields := make(map[string]FieldResolution, len(byField))
	for name, candidates := range byField {
		sortCandidates(candidates)
		winner := candidates[0]
		res := FieldResolution{
			Value:      winner.Value,
			Source:     winner.Source,
			SourceName: winner.Source.String(),
			Note:       winner.Note,
		}
		if !winner.ObservedAt.IsZero() {
			res.ObservedAt = winner.ObservedAt.UTC().Format("2006-01-02")
		}
		for _, loser := range candidates[1:] {
			if loser.Value == winner.Value {
				continue
			}
			entry := AuditEntry{Value: loser.Value, SourceName: loser.Source.String()}
			if !loser.ObservedAt.IsZero() {
				entry.ObservedAt = loser.ObservedAt.UTC().Format("2006-01-02")
			}
			res.Overridden = append(res.Overridden, entry)
		}
		fields[name] = res
	}
	return fields
}

// sortCandidates orders facts best-first: source priority, then date
// precision for date-valued fields whose values only disagree in
// precision, then observation recency. The precision rule implements the
// conservative partial-date policy: a coarse date is treated as contained
// in the finer one, and the finer assertion wins the field.
func sortCandidates(candidates []Fact) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Source != b.Source {
			return a.Source > b.Source
		}
		da, errA := dates.Parse(a.Value)
		db, errB := dates.Parse(b.Value)
		if errA == nil && errB == nil && !da.IsZero() && !db.IsZero() {
			if da.Contains(db) || db.Contains(da) {
				return da.Precision > db.Precision
			}
		}
		return a.ObservedAt.After(b.ObservedAt)
	})
}
