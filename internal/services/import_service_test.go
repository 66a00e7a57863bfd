package services

import (
	"testing"

	"gorm.io/gorm"

	"github.com/staffgraph/staffgraph/internal/cache"
	"github.com/staffgraph/staffgraph/internal/database"
	"github.com/staffgraph/staffgraph/internal/orgs"
	"github.com/staffgraph/staffgraph/internal/sources"
)

func setupImportService(t *testing.T) (*gorm.DB, *ImportService) {
	db := setupTestDB(t)
	persons := NewPersonService(db)
	svc := NewImportService(db, persons, orgs.NewNormalizer(nil), sources.NewRegistry(), cache.NewStore(db, nil))
	return db, svc
}

func TestImport_CuratedPayload(t *testing.T) {
	db, svc := setupImportService(t)

	body := []byte(`{
		"entries": [
			{"person": "Markus Weber", "organization": "1. FC Köln", "role": "Head Coach", "start": "2015", "end": "06.2018"},
			{"person": "Thomas Fischer", "organization": "FC Köln", "role": "Assistant Coach", "start": "07.2016", "end": "2019", "facts": {"nationality": "German"}}
		]
	}`)

	result, err := svc.Import("curated", body)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.Observations != 2 || result.Persons != 2 || result.Tenures != 2 || result.Facts != 1 {
		t.Errorf("unexpected result: %+v", result)
	}

	// Both raw spellings normalize to the same canonical key.
	var tenures []database.Tenure
	db.Find(&tenures)
	if len(tenures) != 2 {
		t.Fatalf("expected 2 tenures, got %d", len(tenures))
	}
	for _, tenure := range tenures {
		if tenure.OrgKey != "köln" {
			t.Errorf("expected canonical key 'köln', got %q", tenure.OrgKey)
		}
		if tenure.Source != "curated" {
			t.Errorf("expected curated source, got %q", tenure.Source)
		}
	}

	// Raw org spellings each get their own row under the shared key.
	var orgCount int64
	db.Model(&database.Organization{}).Where("canonical_key = ?", "köln").Count(&orgCount)
	if orgCount != 2 {
		t.Errorf("expected 2 organization rows, got %d", orgCount)
	}

	// Payload freshness recorded under the curated category.
	var entry database.CacheEntry
	if err := db.Where("category = ?", "curated").First(&entry).Error; err != nil {
		t.Errorf("expected a curated cache entry: %v", err)
	}
}

func TestImport_RosterClassifiesRoles(t *testing.T) {
	db, svc := setupImportService(t)

	body := []byte(`{
		"organization": "VfB Stuttgart",
		"members": [
			{"name": "Jonas Hart", "role": "Sporting Director", "since": "07.2021"}
		]
	}`)

	if _, err := svc.Import("roster", body); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	var person database.Person
	if err := db.Where("name = ?", "Jonas Hart").First(&person).Error; err != nil {
		t.Fatalf("person missing: %v", err)
	}
	if person.RoleCategory != database.RoleSportingDirector {
		t.Errorf("expected sporting-director category, got %q", person.RoleCategory)
	}

	// Roster facts land at the scraped tier.
	var factCount int64
	db.Model(&database.PersonFact{}).Where("person_id = ? AND source = ?", person.ID, "scraped").Count(&factCount)
	if factCount != 2 {
		t.Errorf("expected role and current_club facts, got %d", factCount)
	}
}

func TestImport_UnknownSource(t *testing.T) {
	_, svc := setupImportService(t)

	if _, err := svc.Import("transfermarkt", []byte(`{}`)); err == nil {
		t.Error("expected error for unknown source")
	}
}

func TestImport_MalformedPayload(t *testing.T) {
	db, svc := setupImportService(t)

	if _, err := svc.Import("curated", []byte(`{"entries": [{"organization": "no person"}]}`)); err == nil {
		t.Error("expected error for entry without person")
	}

	// Nothing half-ingested from the rejected payload.
	var count int64
	db.Model(&database.Tenure{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no tenures after rejected payload, got %d", count)
	}
}

func TestImport_ThenRebuild(t *testing.T) {
	db, svc := setupImportService(t)

	body := []byte(`{
		"entries": [
			{"person": "Markus Weber", "organization": "1. FC Köln", "role": "Head Coach", "start": "2015-01-01", "end": "2018-06-30"},
			{"person": "Thomas Fischer", "organization": "FC Köln", "role": "Assistant Coach", "start": "2016-07-01", "end": "2019-06-30"}
		]
	}`)
	if _, err := svc.Import("curated", body); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	rels := NewRelationshipService(db, nil)
	rebuild, err := rels.RebuildAll("test")
	if err != nil {
		t.Fatalf("RebuildAll failed: %v", err)
	}
	if rebuild.Relationships != 1 {
		t.Errorf("differently spelled org names must still pair up, got %d relationships", rebuild.Relationships)
	}
}
