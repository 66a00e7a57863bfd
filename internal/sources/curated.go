package sources

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/staffgraph/staffgraph/internal/facts"
)

// CuratedAdapter handles hand-maintained career data imports
type CuratedAdapter struct {
	BaseAdapter
}

// NewCuratedAdapter creates a new curated-data adapter
func NewCuratedAdapter() *CuratedAdapter {
	return &CuratedAdapter{
		BaseAdapter: BaseAdapter{SourceName: "curated", Category: facts.SourceCurated},
	}
}

// CuratedEntry is one hand-written career record. Facts is an optional
// bag of extra field assertions; a "retracted" field with value "true"
// retracts a previous curated assertion for that field.
type CuratedEntry struct {
	Person       string            `json:"person"`
	Organization string            `json:"organization"`
	Role         string            `json:"role"`
	Start        string            `json:"start"`
	End          string            `json:"end"`
	Facts        map[string]string `json:"facts,omitempty"`
	Note         string            `json:"note,omitempty"`
}

// CuratedPayload is the import body for the curated source.
type CuratedPayload struct {
	Entries []CuratedEntry `json:"entries"`
}

// ParsePayload parses a curated import body into normalized observations
func (a *CuratedAdapter) ParsePayload(body []byte, observedAt time.Time) ([]Observation, error) {
	var payload CuratedPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse curated payload: %w", err)
	}

	var observations []Observation
	for i, entry := range payload.Entries {
		if strings.TrimSpace(entry.Person) == "" {
			return nil, fmt.Errorf("entry %d: missing person name", i)
		}

		start, err := parseDate(entry.Start)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		end, err := parseDate(entry.End)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}

		obs := Observation{
			PersonName: strings.TrimSpace(entry.Person),
			OrgName:    strings.TrimSpace(entry.Organization),
			Role:       strings.TrimSpace(entry.Role),
			Start:      start,
			End:        end,
		}
		for field, value := range entry.Facts {
			obs.Facts = append(obs.Facts, facts.Fact{
				Subject:    obs.PersonName,
				Field:      field,
				Value:      value,
				Source:     facts.SourceCurated,
				ObservedAt: observedAt,
				Note:       entry.Note,
			})
		}
		observations = append(observations, obs)
	}

	return observations, nil
}
