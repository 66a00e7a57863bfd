package sources

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/staffgraph/staffgraph/internal/facts"
)

// RosterAdapter handles scraped current-staff roster pages
type RosterAdapter struct {
	BaseAdapter
}

// NewRosterAdapter creates a new roster adapter
func NewRosterAdapter() *RosterAdapter {
	return &RosterAdapter{
		BaseAdapter: BaseAdapter{SourceName: "roster", Category: facts.SourceScraped},
	}
}

// RosterMember is one row of a staff roster. Since is when the person
// took the role; roster pages often only know the year or month.
type RosterMember struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Since string `json:"since,omitempty"`
}

// RosterPayload is a full roster snapshot for one organization. Every
// member is ongoing as of the snapshot, so observations carry no end.
type RosterPayload struct {
	Organization string         `json:"organization"`
	Members      []RosterMember `json:"members"`
}

// ParsePayload parses a roster snapshot into one observation per member
func (a *RosterAdapter) ParsePayload(body []byte, observedAt time.Time) ([]Observation, error) {
	var payload RosterPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse roster payload: %w", err)
	}
	if strings.TrimSpace(payload.Organization) == "" {
		return nil, fmt.Errorf("roster payload missing organization")
	}

	var observations []Observation
	for i, member := range payload.Members {
		if strings.TrimSpace(member.Name) == "" {
			return nil, fmt.Errorf("member %d: missing name", i)
		}

		start, err := parseDate(member.Since)
		if err != nil {
			return nil, fmt.Errorf("member %d: %w", i, err)
		}

		obs := Observation{
			PersonName: strings.TrimSpace(member.Name),
			OrgName:    strings.TrimSpace(payload.Organization),
			Role:       strings.TrimSpace(member.Role),
			Start:      start,
		}
		if member.Role != "" {
			obs.Facts = append(obs.Facts, facts.Fact{
				Subject:    obs.PersonName,
				Field:      "role",
				Value:      strings.TrimSpace(member.Role),
				Source:     facts.SourceScraped,
				ObservedAt: observedAt,
			})
			obs.Facts = append(obs.Facts, facts.Fact{
				Subject:    obs.PersonName,
				Field:      "current_club",
				Value:      strings.TrimSpace(payload.Organization),
				Source:     facts.SourceScraped,
				ObservedAt: observedAt,
			})
		}
		observations = append(observations, obs)
	}

	return observations, nil
}
