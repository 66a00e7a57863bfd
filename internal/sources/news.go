package sources

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/staffgraph/staffgraph/internal/facts"
	"github.com/staffgraph/staffgraph/internal/utils"
)

// maxHeadlineLen bounds the stored "last_news" value; article headlines
// arrive uncapped from upstream extraction.
const maxHeadlineLen = 200

// NewsAdapter handles appointments inferred from news articles
type NewsAdapter struct {
	BaseAdapter
}

// NewNewsAdapter creates a new news adapter
func NewNewsAdapter() *NewsAdapter {
	return &NewsAdapter{
		BaseAdapter: BaseAdapter{SourceName: "news", Category: facts.SourceInferred},
	}
}

// NewsItem is one appointment or departure extracted from an article.
// Kind is "appointment" (default) or "departure"; a departure closes
// the tenure at Date instead of opening one.
type NewsItem struct {
	Person       string `json:"person"`
	Organization string `json:"organization"`
	Role         string `json:"role,omitempty"`
	Date         string `json:"date"`
	Kind         string `json:"kind,omitempty"`
	Headline     string `json:"headline,omitempty"`
	URL          string `json:"url,omitempty"`
}

// NewsPayload is the import body for the news source.
type NewsPayload struct {
	Items []NewsItem `json:"items"`
}

// ParsePayload parses extracted news items into normalized observations
func (a *NewsAdapter) ParsePayload(body []byte, observedAt time.Time) ([]Observation, error) {
	var payload NewsPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse news payload: %w", err)
	}

	var observations []Observation
	for i, item := range payload.Items {
		if strings.TrimSpace(item.Person) == "" {
			return nil, fmt.Errorf("item %d: missing person name", i)
		}
		if strings.TrimSpace(item.Organization) == "" {
			return nil, fmt.Errorf("item %d: missing organization", i)
		}

		date, err := parseDate(item.Date)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}

		obs := Observation{
			PersonName: strings.TrimSpace(item.Person),
			OrgName:    strings.TrimSpace(item.Organization),
			Role:       strings.TrimSpace(item.Role),
		}
		if item.Kind == "departure" {
			obs.End = date
		} else {
			obs.Start = date
		}
		if item.Headline != "" {
			obs.Facts = append(obs.Facts, facts.Fact{
				Subject:    obs.PersonName,
				Field:      "last_news",
				Value:      utils.TruncateText(item.Headline, maxHeadlineLen),
				Source:     facts.SourceInferred,
				ObservedAt: observedAt,
				Note:       item.URL,
			})
		}
		observations = append(observations, obs)
	}

	return observations, nil
}
