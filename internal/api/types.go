package api

import (
	"time"

	"github.com/staffgraph/staffgraph/internal/database"
	"github.com/staffgraph/staffgraph/internal/facts"
)

// ========== Auth Types ==========

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ========== Person Types ==========

// PersonSummary is the compact person representation used in lists and
// inside relationship responses.
type PersonSummary struct {
	UUID         string `json:"uuid"`
	Name         string `json:"name"`
	RoleCategory string `json:"role_category,omitempty"`
}

// TenureItem is one affiliation in a person detail response. Dates are
// rendered at their stored precision, so a year-only start stays "2015".
type TenureItem struct {
	OrgName string `json:"org_name"`
	OrgKey  string `json:"org_key"`
	Role    string `json:"role,omitempty"`
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
	Period  string `json:"period"`
	Source  string `json:"source"`
}

// PersonDetail is the full person view: tenures plus the merged facts
// with their audit trail.
type PersonDetail struct {
	UUID         string                           `json:"uuid"`
	Name         string                           `json:"name"`
	RoleCategory string                           `json:"role_category,omitempty"`
	FirstSeenAt  time.Time                        `json:"first_seen_at"`
	Tenures      []TenureItem                     `json:"tenures"`
	Facts        map[string]facts.FieldResolution `json:"facts"`
}

// ========== Relationship Types ==========

// OverlapItem is one shared-organization event inside a relationship.
type OverlapItem struct {
	OrgName    string    `json:"org_name"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Years      int       `json:"years"`
	Likelihood string    `json:"likelihood"`
	SourceA    string    `json:"source_a"`
	SourceB    string    `json:"source_b"`
}

// RelationshipItem is one scored pair in list responses.
type RelationshipItem struct {
	UUID            string        `json:"uuid"`
	PersonA         PersonSummary `json:"person_a"`
	PersonB         PersonSummary `json:"person_b"`
	Score           int           `json:"score"`
	OrgCount        int           `json:"org_count"`
	TotalYears      int           `json:"total_years"`
	EventCount      int           `json:"event_count"`
	MostRecentOrg   string        `json:"most_recent_org,omitempty"`
	MostRecentStart *time.Time    `json:"most_recent_start,omitempty"`
	Label           string        `json:"label"`
	CuratedLabel    string        `json:"curated_label,omitempty"`
	Overlaps        []OverlapItem `json:"overlaps,omitempty"`
}

// ConnectionItem is a relationship seen from one person's side.
type ConnectionItem struct {
	Other           PersonSummary `json:"person"`
	Score           int           `json:"score"`
	Label           string        `json:"label"`
	OrgCount        int           `json:"org_count"`
	TotalYears      int           `json:"total_years"`
	MostRecentOrg   string        `json:"most_recent_org,omitempty"`
	MostRecentStart *time.Time    `json:"most_recent_start,omitempty"`
	Overlaps        []OverlapItem `json:"overlaps,omitempty"`
}

// ConnectionsResponse is the body of GET /api/persons/:uuid/connections.
type ConnectionsResponse struct {
	Person      PersonSummary    `json:"person"`
	Connections []ConnectionItem `json:"connections"`
}

// CurateLabelRequest is the request body for PUT /api/relationships/:uuid/label.
type CurateLabelRequest struct {
	Label string `json:"label"`
}

// ========== Rebuild Types ==========

// RebuildResponse summarizes one relationship rebuild pass.
type RebuildResponse struct {
	Relationships  int    `json:"relationships"`
	Overlaps       int    `json:"overlaps"`
	TenuresSkipped int    `json:"tenures_skipped"`
	TriggeredBy    string `json:"triggered_by"`
	DurationMs     int64  `json:"duration_ms"`
}

// ========== Settings Types ==========

// UpdateScoringSettingsRequest is the request body for PUT /api/settings/scoring.
// Pointer fields distinguish "not sent" from zero values.
type UpdateScoringSettingsRequest struct {
	Enabled                *bool `json:"enabled"`
	RecencyCutoffYear      *int  `json:"recency_cutoff_year"`
	HiringGapYears         *int  `json:"hiring_gap_years"`
	RebuildIntervalMinutes *int  `json:"rebuild_interval_minutes"`
}

// Validate checks the updated values for plausible ranges.
func (r *UpdateScoringSettingsRequest) Validate() map[string]string {
	errs := make(map[string]string)
	if r.RecencyCutoffYear != nil && (*r.RecencyCutoffYear < 1900 || *r.RecencyCutoffYear > 2100) {
		errs["recency_cutoff_year"] = "must be between 1900 and 2100"
	}
	if r.HiringGapYears != nil && (*r.HiringGapYears < 1 || *r.HiringGapYears > 10) {
		errs["hiring_gap_years"] = "must be between 1 and 10"
	}
	if r.RebuildIntervalMinutes != nil && *r.RebuildIntervalMinutes < 1 {
		errs["rebuild_interval_minutes"] = "must be at least 1"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Apply copies the sent fields onto the stored settings.
func (r *UpdateScoringSettingsRequest) Apply(s *database.ScoringSettings) {
	if r.Enabled != nil {
		s.Enabled = *r.Enabled
	}
	if r.RecencyCutoffYear != nil {
		s.RecencyCutoffYear = *r.RecencyCutoffYear
	}
	if r.HiringGapYears != nil {
		s.HiringGapYears = *r.HiringGapYears
	}
	if r.RebuildIntervalMinutes != nil {
		s.RebuildIntervalMinutes = *r.RebuildIntervalMinutes
	}
}
