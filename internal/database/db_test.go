package database

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func TestConnect_SQLitePath(t *testing.T) {
	db, err := Connect(":memory:", logger.Silent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migration failed: %v", err)
	}
}

func TestGetOrCreateScoringSettings_Defaults(t *testing.T) {
	db := setupTestDB(t)

	settings, err := GetOrCreateScoringSettings(db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.RecencyCutoffYear != 2015 {
		t.Errorf("expected default recency cutoff 2015, got %d", settings.RecencyCutoffYear)
	}
	if settings.HiringGapYears != 1 {
		t.Errorf("expected default hiring gap of 1 year, got %d", settings.HiringGapYears)
	}
	if !settings.Enabled {
		t.Error("expected scoring enabled by default")
	}

	// Second call returns the same singleton, not a new row.
	again, err := GetOrCreateScoringSettings(db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.ID != settings.ID {
		t.Errorf("expected singleton row, got IDs %d and %d", settings.ID, again.ID)
	}
}

func TestUpdateScoringSettings(t *testing.T) {
	db := setupTestDB(t)

	settings, _ := GetOrCreateScoringSettings(db)
	settings.RecencyCutoffYear = 2018
	settings.HiringGapYears = 2
	if err := UpdateScoringSettings(db, settings); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reloaded, _ := GetOrCreateScoringSettings(db)
	if reloaded.RecencyCutoffYear != 2018 || reloaded.HiringGapYears != 2 {
		t.Errorf("settings not persisted: %+v", reloaded)
	}
}

func TestScoringSettings_RecencyCutoff(t *testing.T) {
	s := ScoringSettings{RecencyCutoffYear: 2015}
	want := time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !s.RecencyCutoff().Equal(want) {
		t.Errorf("expected %v, got %v", want, s.RecencyCutoff())
	}
}

func TestPerson_UniqueNameKey(t *testing.T) {
	db := setupTestDB(t)

	if err := db.Create(&Person{UUID: "u1", Name: "Max Eberl", NameKey: "max eberl"}).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := db.Create(&Person{UUID: "u2", Name: "MAX EBERL", NameKey: "max eberl"}).Error
	if err == nil {
		t.Error("expected unique constraint violation on name_key")
	}
}

func TestPerson_BeforeCreateSetsFirstSeen(t *testing.T) {
	db := setupTestDB(t)

	p := Person{UUID: "u1", Name: "Ole Werner", NameKey: "ole werner"}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.FirstSeenAt.IsZero() {
		t.Error("expected FirstSeenAt to be set on create")
	}
}

func TestRelationship_PairUniqueness(t *testing.T) {
	db := setupTestDB(t)

	db.Create(&Person{UUID: "a", Name: "A", NameKey: "a"})
	db.Create(&Person{UUID: "b", Name: "B", NameKey: "b"})

	if err := db.Create(&Relationship{UUID: "r1", PersonAID: 1, PersonBID: 2}).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := db.Create(&Relationship{UUID: "r2", PersonAID: 1, PersonBID: 2}).Error; err == nil {
		t.Error("expected unique constraint violation for duplicate pair")
	}
}

func TestRelationship_EffectiveLabel(t *testing.T) {
	r := Relationship{Label: "worked-together"}
	if r.EffectiveLabel() != "worked-together" {
		t.Errorf("unexpected label %q", r.EffectiveLabel())
	}
	r.CuratedLabel = "hired"
	if r.EffectiveLabel() != "hired" {
		t.Error("curated label must override the derived one")
	}
}

func TestRecordAndLastRebuild(t *testing.T) {
	db := setupTestDB(t)

	last, err := LastRebuild(db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if last != nil {
		t.Fatal("expected no rebuild before the first run")
	}

	if err := RecordRebuild(db, &RelationshipRebuild{Relationships: 3, Overlaps: 7, TriggeredBy: "system"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last, err = LastRebuild(db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if last == nil || last.Relationships != 3 || last.TriggeredBy != "system" {
		t.Errorf("unexpected rebuild record: %+v", last)
	}
}
