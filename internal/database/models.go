package database

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// JSONB is a custom type for JSON columns (jsonb on PostgreSQL, text on
// SQLite).
type JSONB map[string]interface{}

// Scan implements the sql.Scanner interface
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = make(map[string]interface{})
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return errors.New("unsupported type for JSONB scan")
	}
}

// Value implements the driver.Valuer interface
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// RoleCategory buckets staff roles for filtering and display.
type RoleCategory string

const (
	RoleCoach            RoleCategory = "coach"
	RoleSportingDirector RoleCategory = "sporting-director"
	RoleExecutive        RoleCategory = "executive"
	RoleAcademy          RoleCategory = "academy"
	RoleScouting         RoleCategory = "scouting"
)

// Person is a uniquely named individual: coach, director, executive,
// academy staffer or scout. Created on first observation in any source
// and never deleted; later observations only enrich it.
type Person struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	UUID         string       `gorm:"uniqueIndex;size:36;not null" json:"uuid"`
	Name         string       `gorm:"size:255;not null" json:"name"`          // canonical display name
	NameKey      string       `gorm:"uniqueIndex;size:255;not null" json:"-"` // case/whitespace-normalized identity
	ExternalID   string       `gorm:"size:64;index" json:"external_id,omitempty"`
	RoleCategory RoleCategory `gorm:"type:varchar(50);index" json:"role_category,omitempty"`
	FirstSeenAt  time.Time    `json:"first_seen_at"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	Tenures []Tenure     `gorm:"foreignKey:PersonID" json:"tenures,omitempty"`
	Facts   []PersonFact `gorm:"foreignKey:PersonID" json:"facts,omitempty"`
}

// BeforeCreate hook to set FirstSeenAt
func (p *Person) BeforeCreate(tx *gorm.DB) error {
	if p.FirstSeenAt.IsZero() {
		p.FirstSeenAt = time.Now()
	}
	return nil
}

// Organization is a club or footballing institution. Raw observed names
// that normalize to the same canonical key are the same organization for
// overlap purposes, even if never declared equal.
type Organization struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"uniqueIndex;size:255;not null" json:"name"` // raw observed name
	CanonicalKey string    `gorm:"index;size:255;not null" json:"canonical_key"`
	ExternalID   string    `gorm:"size:64" json:"external_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Tenure is one person's time-bounded affiliation with one organization.
// A NULL StartDate means the start is wholly unknown; such rows are kept
// for display but excluded from overlap computation. A NULL EndDate
// means the position is ongoing as of the last refresh.
type Tenure struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	PersonID uint `gorm:"not null;index" json:"person_id"`

	OrgName string `gorm:"size:255;not null" json:"org_name"`
	OrgKey  string `gorm:"index;size:255;not null" json:"org_key"`
	Role    string `gorm:"size:255" json:"role"`

	StartDate      *time.Time `json:"start_date,omitempty"`
	StartPrecision string     `gorm:"size:10" json:"start_precision,omitempty"` // day/month/year
	EndDate        *time.Time `json:"end_date,omitempty"`
	EndPrecision   string     `gorm:"size:10" json:"end_precision,omitempty"`

	Source     string    `gorm:"type:varchar(50);not null;index" json:"source"` // curated/scraped/inferred
	ObservedAt time.Time `json:"observed_at"`
	CreatedAt  time.Time `json:"created_at"`

	Person Person `gorm:"foreignKey:PersonID" json:"-"`
}

// PersonFact is one stored atomic assertion about a person. The merged
// person view is recomputed from all facts on read, never persisted.
type PersonFact struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PersonID   uint      `gorm:"not null;index" json:"person_id"`
	Field      string    `gorm:"size:64;not null" json:"field"`
	Value      string    `gorm:"type:text;not null" json:"value"`
	Source     string    `gorm:"type:varchar(50);not null" json:"source"`
	ObservedAt time.Time `json:"observed_at"`
	Note       string    `gorm:"type:text" json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Relationship is the aggregated, scored summary of all overlap events
// between one unordered pair of people. PersonAID < PersonBID by
// convention so each pair stores exactly one row. Rows are never
// deleted, only superseded by the next full rebuild.
type Relationship struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	UUID      string `gorm:"uniqueIndex;size:36;not null" json:"uuid"`
	PersonAID uint   `gorm:"not null;uniqueIndex:idx_rel_pair" json:"person_a_id"`
	PersonBID uint   `gorm:"not null;uniqueIndex:idx_rel_pair" json:"person_b_id"`

	Score      int `gorm:"index" json:"score"`
	OrgCount   int `json:"org_count"`
	TotalYears int `json:"total_years"`
	EventCount int `json:"event_count"`

	MostRecentOrg   string     `gorm:"size:255" json:"most_recent_org"`
	MostRecentStart *time.Time `json:"most_recent_start,omitempty"`

	Label        string `gorm:"size:50" json:"label"`                   // derived: hired / worked-together
	CuratedLabel string `gorm:"size:50" json:"curated_label,omitempty"` // authoritative override when set

	RebuiltAt time.Time `json:"rebuilt_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PersonA  Person                `gorm:"foreignKey:PersonAID" json:"-"`
	PersonB  Person                `gorm:"foreignKey:PersonBID" json:"-"`
	Overlaps []RelationshipOverlap `gorm:"foreignKey:RelationshipID" json:"overlaps,omitempty"`
}

// EffectiveLabel applies the curated-wins rule for the classification.
func (r *Relationship) EffectiveLabel() string {
	if r.CuratedLabel != "" {
		return r.CuratedLabel
	}
	return r.Label
}

// RelationshipOverlap is one flattened overlap event attached to a
// relationship. Immutable once written; the whole set is replaced on
// rebuild.
type RelationshipOverlap struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	RelationshipID uint      `gorm:"not null;index" json:"relationship_id"`
	OrgName        string    `gorm:"size:255" json:"org_name"`
	OrgKey         string    `gorm:"size:255;index" json:"org_key"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	Years          int       `json:"years"`
	Likelihood     string    `gorm:"size:10" json:"likelihood"` // high/medium/low, person_a as potential hirer
	SourceA        string    `gorm:"size:50" json:"source_a"`
	SourceB        string    `gorm:"size:50" json:"source_b"`
	CreatedAt      time.Time `json:"created_at"`
}

// RelationshipRebuild is the audit record of one full re-aggregation
// pass, whether triggered by the periodic job or by an operator.
type RelationshipRebuild struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Relationships  int       `json:"relationships"`
	Overlaps       int       `json:"overlaps"`
	TenuresSkipped int       `json:"tenures_skipped"` // dropped for missing start dates
	TriggeredBy    string    `gorm:"size:50;not null" json:"triggered_by"` // 'system' or operator name
	DurationMs     int64     `json:"duration_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

// CacheEntry is one cached external lookup. Staleness is judged against
// the per-category TTL at read time; a failed refresh never destroys the
// last good payload.
type CacheEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:255;not null" json:"key"`
	Category  string    `gorm:"type:varchar(50);not null;index" json:"category"`
	Payload   JSONB     `gorm:"type:jsonb" json:"payload"`
	FetchedAt time.Time `gorm:"not null" json:"fetched_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides for explicit table naming
func (Person) TableName() string {
	return "persons"
}

func (Organization) TableName() string {
	return "organizations"
}

func (Tenure) TableName() string {
	return "tenures"
}

func (PersonFact) TableName() string {
	return "person_facts"
}

func (Relationship) TableName() string {
	return "relationships"
}

func (RelationshipOverlap) TableName() string {
	return "relationship_overlaps"
}

func (RelationshipRebuild) TableName() string {
	return "relationship_rebuilds"
}

func (CacheEntry) TableName() string {
	return "cache_entries"
}
