package sources

import (
	"strings"
	"testing"
	"time"

	"github.com/staffgraph/staffgraph/internal/database"
	"github.com/staffgraph/staffgraph/internal/dates"
	"github.com/staffgraph/staffgraph/internal/facts"
)

var testObservedAt = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry()

	for _, name := range []string{"curated", "roster", "news"} {
		adapter, err := reg.Get(name)
		if err != nil {
			t.Fatalf("Get(%q) failed: %v", name, err)
		}
		if adapter.GetSourceName() != name {
			t.Errorf("expected source name %q, got %q", name, adapter.GetSourceName())
		}
	}

	if _, err := reg.Get("transfermarkt"); err == nil {
		t.Error("expected error for unknown source")
	}
}

func TestCuratedAdapterParsePayload(t *testing.T) {
	body := []byte(`{
		"entries": [
			{
				"person": "Markus Weber",
				"organization": "1. FC Köln",
				"role": "Head Coach",
				"start": "2015",
				"end": "06.2018",
				"facts": {"nationality": "German"},
				"note": "from club annual report"
			}
		]
	}`)

	adapter := NewCuratedAdapter()
	observations, err := adapter.ParsePayload(body, testObservedAt)
	if err != nil {
		t.Fatalf("ParsePayload failed: %v", err)
	}
	if len(observations) != 1 {
		t.Fatalf("expected 1 observation, got %d", len(observations))
	}

	obs := observations[0]
	if obs.PersonName != "Markus Weber" {
		t.Errorf("expected person 'Markus Weber', got %q", obs.PersonName)
	}
	if !obs.Start.Equal(dates.NewYear(2015)) {
		t.Errorf("expected start 2015, got %v", obs.Start)
	}
	if !obs.End.Equal(dates.NewMonth(2018, time.June)) {
		t.Errorf("expected end 06.2018, got %v", obs.End)
	}
	if len(obs.Facts) != 1 || obs.Facts[0].Field != "nationality" {
		t.Fatalf("expected one nationality fact, got %+v", obs.Facts)
	}
	if obs.Facts[0].Source != facts.SourceCurated {
		t.Errorf("expected curated fact source, got %v", obs.Facts[0].Source)
	}
	if obs.Facts[0].Note != "from club annual report" {
		t.Errorf("expected note carried onto fact, got %q", obs.Facts[0].Note)
	}
}

func TestCuratedAdapterRejectsMissingPerson(t *testing.T) {
	body := []byte(`{"entries": [{"organization": "FC Köln"}]}`)

	adapter := NewCuratedAdapter()
	if _, err := adapter.ParsePayload(body, testObservedAt); err == nil {
		t.Error("expected error for missing person name")
	}
}

func TestCuratedAdapterRejectsBadDate(t *testing.T) {
	body := []byte(`{"entries": [{"person": "X", "organization": "Y", "start": "sometime"}]}`)

	adapter := NewCuratedAdapter()
	if _, err := adapter.ParsePayload(body, testObservedAt); err == nil {
		t.Error("expected error for unparseable date")
	}
}

func TestRosterAdapterParsePayload(t *testing.T) {
	body := []byte(`{
		"organization": "VfB Stuttgart",
		"members": [
			{"name": "Jonas Hart", "role": "Sporting Director", "since": "07.2021"},
			{"name": "Lukas Brandt", "role": "Assistant Coach"}
		]
	}`)

	adapter := NewRosterAdapter()
	observations, err := adapter.ParsePayload(body, testObservedAt)
	if err != nil {
		t.Fatalf("ParsePayload failed: %v", err)
	}
	if len(observations) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(observations))
	}

	first := observations[0]
	if first.OrgName != "VfB Stuttgart" {
		t.Errorf("expected org from payload header, got %q", first.OrgName)
	}
	if !first.Start.Equal(dates.NewMonth(2021, time.July)) {
		t.Errorf("expected start 07.2021, got %v", first.Start)
	}
	if !first.End.IsZero() {
		t.Error("roster observations must be open-ended")
	}
	// role and current_club facts attached at scraped tier
	if len(first.Facts) != 2 {
		t.Fatalf("expected 2 facts, got %d", len(first.Facts))
	}
	for _, f := range first.Facts {
		if f.Source != facts.SourceScraped {
			t.Errorf("expected scraped fact source, got %v", f.Source)
		}
	}

	second := observations[1]
	if !second.Start.IsZero() {
		t.Errorf("expected unknown start, got %v", second.Start)
	}
}

func TestRosterAdapterRejectsMissingOrganization(t *testing.T) {
	body := []byte(`{"members": [{"name": "Jonas Hart"}]}`)

	adapter := NewRosterAdapter()
	if _, err := adapter.ParsePayload(body, testObservedAt); err == nil {
		t.Error("expected error for missing organization")
	}
}

func TestNewsAdapterAppointmentAndDeparture(t *testing.T) {
	body := []byte(`{
		"items": [
			{"person": "Stefan Roth", "organization": "RB Leipzig", "role": "Head Coach", "date": "2024-07-01", "headline": "Roth takes over at Leipzig", "url": "https://example.com/a"},
			{"person": "Stefan Roth", "organization": "FC Augsburg", "date": "2024-06-30", "kind": "departure"}
		]
	}`)

	adapter := NewNewsAdapter()
	observations, err := adapter.ParsePayload(body, testObservedAt)
	if err != nil {
		t.Fatalf("ParsePayload failed: %v", err)
	}
	if len(observations) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(observations))
	}

	appointment := observations[0]
	if !appointment.Start.Equal(dates.New(2024, time.July, 1)) {
		t.Errorf("expected appointment start 2024-07-01, got %v", appointment.Start)
	}
	if !appointment.End.IsZero() {
		t.Error("appointment must not carry an end")
	}
	if len(appointment.Facts) != 1 || appointment.Facts[0].Field != "last_news" {
		t.Fatalf("expected last_news fact, got %+v", appointment.Facts)
	}
	if appointment.Facts[0].Source != facts.SourceInferred {
		t.Errorf("expected inferred fact source, got %v", appointment.Facts[0].Source)
	}

	departure := observations[1]
	if !departure.Start.IsZero() {
		t.Error("departure must not carry a start")
	}
	if !departure.End.Equal(dates.New(2024, time.June, 30)) {
		t.Errorf("expected departure end 2024-06-30, got %v", departure.End)
	}
}

func TestNewsAdapterTruncatesLongHeadlines(t *testing.T) {
	long := strings.Repeat("Sensation in der Bundesliga ", 20)
	body := []byte(`{"items": [{"person": "Stefan Roth", "organization": "RB Leipzig", "date": "2024-07-01", "headline": "` + long + `"}]}`)

	adapter := NewNewsAdapter()
	observations, err := adapter.ParsePayload(body, testObservedAt)
	if err != nil {
		t.Fatalf("ParsePayload failed: %v", err)
	}
	value := observations[0].Facts[0].Value
	if len(value) > maxHeadlineLen {
		t.Errorf("headline must be capped at %d chars, got %d", maxHeadlineLen, len(value))
	}
	if !strings.HasSuffix(value, "...") {
		t.Errorf("truncated headline must carry an ellipsis: %q", value)
	}
}

func TestClassifyRole(t *testing.T) {
	tests := []struct {
		role     string
		expected database.RoleCategory
	}{
		{"Head Coach", database.RoleCoach},
		{"Cheftrainer", database.RoleCoach},
		{"Assistant Coach", database.RoleCoach},
		{"Sporting Director", database.RoleSportingDirector},
		{"Director of Football", database.RoleSportingDirector},
		{"Managing Director", database.RoleExecutive},
		{"Academy Coach", database.RoleAcademy},
		{"Chief Scout", database.RoleScouting},
		{"Physio", ""},
	}

	for _, tt := range tests {
		if got := ClassifyRole(tt.role); got != tt.expected {
			t.Errorf("ClassifyRole(%q) = %q, expected %q", tt.role, got, tt.expected)
		}
	}
}
