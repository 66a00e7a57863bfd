package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/staffgraph/staffgraph/internal/database"
	"github.com/staffgraph/staffgraph/internal/dates"
	"github.com/staffgraph/staffgraph/internal/facts"
)

func seedTenure(t *testing.T, db *gorm.DB, persons *PersonService, name, org, orgKey, role, start, end string) *database.Person {
	t.Helper()
	return seedTenureFrom(t, persons, facts.SourceCurated, name, org, orgKey, role, start, end)
}

func seedTenureFrom(t *testing.T, persons *PersonService, source facts.SourceCategory, name, org, orgKey, role, start, end string) *database.Person {
	t.Helper()
	person, err := persons.GetOrCreate(name)
	if err != nil {
		t.Fatalf("seed person %q: %v", name, err)
	}
	s, err := dates.Parse(start)
	if err != nil {
		t.Fatalf("seed start %q: %v", start, err)
	}
	e, err := dates.Parse(end)
	if err != nil {
		t.Fatalf("seed end %q: %v", end, err)
	}
	if _, err := persons.AddTenure(person, org, orgKey, role, s, e, source, time.Now()); err != nil {
		t.Fatalf("seed tenure for %q: %v", name, err)
	}
	return person
}

func TestRebuildAll_ScoresSharedTenure(t *testing.T) {
	db := setupTestDB(t)
	persons := NewPersonService(db)
	rels := NewRelationshipService(db, nil)

	// Weber arrived a year and a half before Fischer; they shared the
	// club from mid-2016 to mid-2018.
	weber := seedTenure(t, db, persons, "Markus Weber", "FC Köln", "köln", "Head Coach", "2015-01-01", "2018-06-30")
	fischer := seedTenure(t, db, persons, "Thomas Fischer", "FC Köln", "köln", "Assistant Coach", "2016-07-01", "2019-06-30")

	rebuild, err := rels.RebuildAll("test")
	if err != nil {
		t.Fatalf("RebuildAll failed: %v", err)
	}
	if rebuild.Relationships != 1 {
		t.Fatalf("expected 1 relationship, got %d", rebuild.Relationships)
	}
	if rebuild.Overlaps != 1 {
		t.Errorf("expected 1 overlap event, got %d", rebuild.Overlaps)
	}

	var rel database.Relationship
	if err := db.Preload("Overlaps").Where("person_a_id = ? AND person_b_id = ?", weber.ID, fischer.ID).First(&rel).Error; err != nil {
		t.Fatalf("relationship row missing: %v", err)
	}

	// 2016, 2017 and 2018 shared; one org; overlap starts after the
	// recency cutoff. 10 + 3*2 + 5 = 21, no hiring bonus.
	if rel.TotalYears != 3 {
		t.Errorf("expected 3 whole years, got %d", rel.TotalYears)
	}
	if rel.Score != 21 {
		t.Errorf("expected score 21, got %d", rel.Score)
	}
	if rel.OrgCount != 1 || rel.EventCount != 1 {
		t.Errorf("unexpected counts: orgs=%d events=%d", rel.OrgCount, rel.EventCount)
	}
	if rel.Label != "worked-together" {
		t.Errorf("a 1.5-year arrival gap is no hiring signal, got label %q", rel.Label)
	}
	if len(rel.Overlaps) != 1 || rel.Overlaps[0].Likelihood != "medium" {
		t.Errorf("expected one medium-likelihood overlap, got %+v", rel.Overlaps)
	}
}

func TestRebuildAll_CloseArrivalsAreHiringSignal(t *testing.T) {
	db := setupTestDB(t)
	persons := NewPersonService(db)
	rels := NewRelationshipService(db, nil)

	seedTenure(t, db, persons, "Stefan Roth", "RB Leipzig", "leipzig", "Head Coach", "2020-01-01", "")
	seedTenure(t, db, persons, "Lukas Brandt", "RB Leipzig", "leipzig", "Assistant Coach", "2020-03-01", "")

	if _, err := rels.RebuildAll("test"); err != nil {
		t.Fatalf("RebuildAll failed: %v", err)
	}

	var rel database.Relationship
	if err := db.Preload("Overlaps").First(&rel).Error; err != nil {
		t.Fatalf("relationship row missing: %v", err)
	}
	if rel.Label != "hired" {
		t.Errorf("two-month arrival gap should classify as hired, got %q", rel.Label)
	}
	if len(rel.Overlaps) != 1 || rel.Overlaps[0].Likelihood != "high" {
		t.Errorf("expected one high-likelihood overlap, got %+v", rel.Overlaps)
	}
}

func TestRebuildAll_CountsMultiSourceStintOnce(t *testing.T) {
	db := setupTestDB(t)
	persons := NewPersonService(db)
	rels := NewRelationshipService(db, nil)

	// The curated list and the scraped roster both assert the same
	// shared stint; the pair must score it once, on the curated rows.
	for _, src := range []facts.SourceCategory{facts.SourceCurated, facts.SourceScraped} {
		seedTenureFrom(t, persons, src, "Markus Weber", "FC Köln", "köln", "Head Coach", "2015", "2018")
		seedTenureFrom(t, persons, src, "Thomas Fischer", "FC Köln", "köln", "Assistant Coach", "2015", "2018")
	}

	rebuild, err := rels.RebuildAll("test")
	if err != nil {
		t.Fatalf("RebuildAll failed: %v", err)
	}
	if rebuild.Relationships != 1 || rebuild.Overlaps != 1 {
		t.Fatalf("expected 1 relationship with 1 overlap, got %d/%d",
			rebuild.Relationships, rebuild.Overlaps)
	}

	var rel database.Relationship
	if err := db.First(&rel).Error; err != nil {
		t.Fatalf("loading relationship failed: %v", err)
	}
	if rel.EventCount != 1 {
		t.Errorf("expected one event for one shared stint, got %d", rel.EventCount)
	}
	if rel.TotalYears != 4 {
		t.Errorf("expected 4 shared years counted once, got %d", rel.TotalYears)
	}
	// 1 org (10) + 4 years (8) + recency (5), medium likelihood.
	if rel.Score != 23 {
		t.Errorf("expected score 23, got %d", rel.Score)
	}

	var ov database.RelationshipOverlap
	if err := db.First(&ov).Error; err != nil {
		t.Fatalf("loading overlap failed: %v", err)
	}
	if ov.SourceA != "curated" || ov.SourceB != "curated" {
		t.Errorf("highest trust tier must describe the stint, got %q/%q", ov.SourceA, ov.SourceB)
	}
}

func TestRebuildAll_SkipsTenuresWithoutStart(t *testing.T) {
	db := setupTestDB(t)
	persons := NewPersonService(db)
	rels := NewRelationshipService(db, nil)

	seedTenure(t, db, persons, "Markus Weber", "FC Köln", "köln", "Head Coach", "2015", "2018")
	seedTenure(t, db, persons, "Unknown Start", "FC Köln", "köln", "Scout", "", "2017")

	rebuild, err := rels.RebuildAll("test")
	if err != nil {
		t.Fatalf("RebuildAll failed: %v", err)
	}
	if rebuild.TenuresSkipped != 1 {
		t.Errorf("expected 1 skipped tenure, got %d", rebuild.TenuresSkipped)
	}
	if rebuild.Relationships != 0 {
		t.Errorf("skipped tenure must not pair, got %d relationships", rebuild.Relationships)
	}
}

func TestRebuildAll_IsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	persons := NewPersonService(db)
	rels := NewRelationshipService(db, nil)

	seedTenure(t, db, persons, "Markus Weber", "FC Köln", "köln", "Head Coach", "2015-01-01", "2018-06-30")
	seedTenure(t, db, persons, "Thomas Fischer", "FC Köln", "köln", "Assistant Coach", "2016-07-01", "2019-06-30")

	if _, err := rels.RebuildAll("test"); err != nil {
		t.Fatalf("first rebuild failed: %v", err)
	}
	if _, err := rels.RebuildAll("test"); err != nil {
		t.Fatalf("second rebuild failed: %v", err)
	}

	var relCount, overlapCount int64
	db.Model(&database.Relationship{}).Count(&relCount)
	db.Model(&database.RelationshipOverlap{}).Count(&overlapCount)
	if relCount != 1 || overlapCount != 1 {
		t.Errorf("rebuild must replace, not append: rels=%d overlaps=%d", relCount, overlapCount)
	}
}

func TestRebuildAll_CuratedLabelSurvivesRebuild(t *testing.T) {
	db := setupTestDB(t)
	persons := NewPersonService(db)
	rels := NewRelationshipService(db, nil)

	seedTenure(t, db, persons, "Markus Weber", "FC Köln", "köln", "Head Coach", "2015-01-01", "2018-06-30")
	seedTenure(t, db, persons, "Thomas Fischer", "FC Köln", "köln", "Assistant Coach", "2016-07-01", "2019-06-30")

	if _, err := rels.RebuildAll("test"); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	var rel database.Relationship
	db.First(&rel)
	if _, err := rels.SetCuratedLabel(rel.UUID, "hired"); err != nil {
		t.Fatalf("SetCuratedLabel failed: %v", err)
	}
	if _, err := rels.RebuildAll("test"); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}

	db.First(&rel, rel.ID)
	if rel.CuratedLabel != "hired" {
		t.Errorf("curated label must survive rebuilds, got %q", rel.CuratedLabel)
	}
	if rel.EffectiveLabel() != "hired" {
		t.Errorf("curated label must win, got %q", rel.EffectiveLabel())
	}
}

func TestRebuildAll_StalePairIsZeroedNotDeleted(t *testing.T) {
	db := setupTestDB(t)
	persons := NewPersonService(db)
	rels := NewRelationshipService(db, nil)

	seedTenure(t, db, persons, "Markus Weber", "FC Köln", "köln", "Head Coach", "2015-01-01", "2018-06-30")
	seedTenure(t, db, persons, "Thomas Fischer", "FC Köln", "köln", "Assistant Coach", "2016-07-01", "2019-06-30")

	if _, err := rels.RebuildAll("test"); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	if err := db.Where("1 = 1").Delete(&database.Tenure{}).Error; err != nil {
		t.Fatalf("clearing tenures failed: %v", err)
	}
	if _, err := rels.RebuildAll("test"); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}

	var rel database.Relationship
	if err := db.First(&rel).Error; err != nil {
		t.Fatalf("row must survive as audit trail: %v", err)
	}
	if rel.Score != 0 || rel.EventCount != 0 {
		t.Errorf("expected zeroed stats, got score=%d events=%d", rel.Score, rel.EventCount)
	}
	var overlapCount int64
	db.Model(&database.RelationshipOverlap{}).Count(&overlapCount)
	if overlapCount != 0 {
		t.Errorf("expected overlaps cleared, got %d", overlapCount)
	}
}

func TestStrongestConnections_RankedByScore(t *testing.T) {
	db := setupTestDB(t)
	persons := NewPersonService(db)
	rels := NewRelationshipService(db, nil)

	// Weber shares two clubs and many years with Fischer, only a short
	// stint with Lang.
	weber := seedTenure(t, db, persons, "Markus Weber", "FC Köln", "köln", "Head Coach", "2010-07-01", "2018-06-30")
	seedTenure(t, db, persons, "Markus Weber", "VfB Stuttgart", "stuttgart", "Head Coach", "2018-07-01", "2022-06-30")
	seedTenure(t, db, persons, "Thomas Fischer", "FC Köln", "köln", "Assistant Coach", "2010-07-01", "2018-06-30")
	seedTenure(t, db, persons, "Thomas Fischer", "VfB Stuttgart", "stuttgart", "Assistant Coach", "2018-07-01", "2022-06-30")
	seedTenure(t, db, persons, "Markus Lang", "VfB Stuttgart", "stuttgart", "Scout", "2021-07-01", "2022-06-30")

	if _, err := rels.RebuildAll("test"); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}

	person, connections, err := rels.StrongestConnections(weber.UUID, 10)
	if err != nil {
		t.Fatalf("StrongestConnections failed: %v", err)
	}
	if person.ID != weber.ID {
		t.Fatalf("wrong person resolved")
	}
	if len(connections) != 2 {
		t.Fatalf("expected 2 connections, got %d", len(connections))
	}
	if connections[0].Other.Name != "Thomas Fischer" {
		t.Errorf("expected Fischer ranked first, got %q", connections[0].Other.Name)
	}
	if connections[0].Relationship.Score <= connections[1].Relationship.Score {
		t.Errorf("ranking must be score-descending: %d then %d",
			connections[0].Relationship.Score, connections[1].Relationship.Score)
	}
}

func TestStrongestConnections_TieBrokenByRecentStart(t *testing.T) {
	db := setupTestDB(t)
	persons := NewPersonService(db)
	rels := NewRelationshipService(db, nil)

	// Same score with Maier and Keller; the more recent shared stint
	// ranks first.
	weber := seedTenure(t, db, persons, "Markus Weber", "1. FC Nürnberg", "nürnberg", "Head Coach", "2000", "2003")
	seedTenure(t, db, persons, "Markus Weber", "Hertha BSC", "hertha", "Head Coach", "2005", "2008")
	seedTenure(t, db, persons, "Rainer Maier", "1. FC Nürnberg", "nürnberg", "Assistant Coach", "2000", "2003")
	seedTenure(t, db, persons, "Jonas Keller", "Hertha BSC", "hertha", "Assistant Coach", "2005", "2008")

	if _, err := rels.RebuildAll("test"); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}

	_, connections, err := rels.StrongestConnections(weber.UUID, 10)
	if err != nil {
		t.Fatalf("StrongestConnections failed: %v", err)
	}
	if len(connections) != 2 {
		t.Fatalf("expected 2 connections, got %d", len(connections))
	}
	if connections[0].Relationship.Score != connections[1].Relationship.Score {
		t.Fatalf("fixture must tie on score: %d vs %d",
			connections[0].Relationship.Score, connections[1].Relationship.Score)
	}
	if connections[0].Other.Name != "Jonas Keller" {
		t.Errorf("expected the more recent stint ranked first, got %q", connections[0].Other.Name)
	}
}

func TestStrongestConnections_UnknownPerson(t *testing.T) {
	db := setupTestDB(t)
	rels := NewRelationshipService(db, nil)

	if _, _, err := rels.StrongestConnections("6ba7b810-9dad-11d1-80b4-00c04fd430c8", 10); err == nil {
		t.Error("expected error for unknown person")
	}
}

type recordingNotifier struct {
	stages []string
}

func (n *recordingNotifier) Progress(stage string, done, total int) {
	n.stages = append(n.stages, stage)
}

func TestRebuildAll_ReportsProgress(t *testing.T) {
	db := setupTestDB(t)
	persons := NewPersonService(db)
	rels := NewRelationshipService(db, nil)
	notifier := &recordingNotifier{}
	rels.SetNotifier(notifier)

	seedTenure(t, db, persons, "Markus Weber", "FC Köln", "köln", "Head Coach", "2015-01-01", "2018-06-30")
	seedTenure(t, db, persons, "Thomas Fischer", "FC Köln", "köln", "Assistant Coach", "2016-07-01", "2019-06-30")

	if _, err := rels.RebuildAll("test"); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	if len(notifier.stages) == 0 {
		t.Error("expected progress notifications during rebuild")
	}
}
