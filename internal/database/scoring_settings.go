package database

import "time"

// ScoringSettings controls relationship scoring and the rebuild job.
// Stored as a singleton row so operators can tune it at runtime.
type ScoringSettings struct {
	ID                     uint      `gorm:"primaryKey" json:"id"`
	Enabled                bool      `gorm:"default:true" json:"enabled"`
	RecencyCutoffYear      int       `gorm:"default:2015" json:"recency_cutoff_year"`
	HiringGapYears         int       `gorm:"default:1" json:"hiring_gap_years"`
	RebuildIntervalMinutes int       `gorm:"default:60" json:"rebuild_interval_minutes"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

func (ScoringSettings) TableName() string {
	return "scoring_settings"
}

// NewDefaultScoringSettings returns settings with default values
func NewDefaultScoringSettings() *ScoringSettings {
	return &ScoringSettings{
		Enabled:                true,
		RecencyCutoffYear:      2015,
		HiringGapYears:         1,
		RebuildIntervalMinutes: 60,
	}
}

// RecencyCutoff returns the cutoff as an instant for the aggregator.
func (s *ScoringSettings) RecencyCutoff() time.Time {
	return time.Date(s.RecencyCutoffYear, time.January, 1, 0, 0, 0, 0, time.UTC)
}
