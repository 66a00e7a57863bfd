package services

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/staffgraph/staffgraph/internal/database"
	"github.com/staffgraph/staffgraph/internal/dates"
	"github.com/staffgraph/staffgraph/internal/facts"
	"github.com/staffgraph/staffgraph/internal/orgs"
	"github.com/staffgraph/staffgraph/internal/overlap"
	"github.com/staffgraph/staffgraph/internal/utils"
)

// ProgressNotifier receives rebuild progress updates. The websocket hub
// implements it; a nil notifier disables reporting.
type ProgressNotifier interface {
	Progress(stage string, done, total int)
}

// RelationshipService computes and serves scored relationships between
// persons. All derived state is recomputed from tenures on every
// rebuild; nothing is updated incrementally.
type RelationshipService struct {
	db       *gorm.DB
	resolver orgs.Resolver
	notifier ProgressNotifier
}

// NewRelationshipService creates a new RelationshipService
func NewRelationshipService(db *gorm.DB, resolver orgs.Resolver) *RelationshipService {
	if resolver == nil {
		resolver = orgs.LenientResolver{}
	}
	return &RelationshipService{db: db, resolver: resolver}
}

// SetNotifier attaches a progress notifier for rebuild reporting.
func (s *RelationshipService) SetNotifier(n ProgressNotifier) {
	s.notifier = n
}

func (s *RelationshipService) notify(stage string, done, total int) {
	if s.notifier != nil {
		s.notifier.Progress(stage, done, total)
	}
}

// pairKey identifies an unordered person pair, lower ID first.
type pairKey struct {
	a, b uint
}

// RebuildAll recomputes every relationship from scratch: loads all
// tenures, pairs up people who shared an organization, scores each pair
// and replaces the stored overlap events in one transaction. Returns
// the audit record of the pass.
func (s *RelationshipService) RebuildAll(triggeredBy string) (*database.RelationshipRebuild, error) {
	started := time.Now()

	settings, err := database.GetOrCreateScoringSettings(s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to load scoring settings: %w", err)
	}

	var rows []database.Tenure
	if err := s.db.Preload("Person").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load tenures: %w", err)
	}

	// Convert stored rows to comparable intervals, dropping tenures
	// whose start was never known.
	skipped := 0
	byPerson := make(map[uint][]overlap.Tenure)
	personIDs := make([]uint, 0)
	for _, row := range rows {
		tenure := overlap.Tenure{
			Person:  row.Person.Name,
			OrgName: row.OrgName,
			OrgKey:  row.OrgKey,
			Role:    row.Role,
			Start:   dates.FromTime(row.StartDate, dates.ParsePrecision(row.StartPrecision)),
			End:     dates.FromTime(row.EndDate, dates.ParsePrecision(row.EndPrecision)),
			Source:  facts.ParseSourceCategory(row.Source),
		}
		if !tenure.Comparable() {
			skipped++
			continue
		}
		if _, seen := byPerson[row.PersonID]; !seen {
			personIDs = append(personIDs, row.PersonID)
		}
		byPerson[row.PersonID] = append(byPerson[row.PersonID], tenure)
	}
	sort.Slice(personIDs, func(i, j int) bool { return personIDs[i] < personIDs[j] })

	// Multiple sources asserting the same stint must count it once, so
	// each person's tenures are reconciled across sources before pairing.
	for id, tenures := range byPerson {
		byPerson[id] = s.reconcileTenures(tenures, started)
	}

	cfg := overlap.Config{Now: started, HiringGapYears: settings.HiringGapYears}
	scoreCfg := overlap.ScoreConfig{RecencyCutoff: settings.RecencyCutoff()}

	s.notify("pairing", 0, len(personIDs))
	records := make(map[pairKey]overlap.Record)
	for i, idA := range personIDs {
		for _, idB := range personIDs[i+1:] {
			events := s.pairEvents(byPerson[idA], byPerson[idB], cfg)
			if len(events) == 0 {
				continue
			}
			records[pairKey{idA, idB}] = overlap.Aggregate(events, scoreCfg)
		}
		s.notify("pairing", i+1, len(personIDs))
	}

	overlapCount := 0
	err = s.db.Transaction(func(tx *gorm.DB) error {
		done := 0
		for key, record := range records {
			n, err := s.storeRecord(tx, key, record, started)
			if err != nil {
				return err
			}
			overlapCount += n
			done++
			s.notify("storing", done, len(records))
		}
		return s.resetStalePairs(tx, records, started)
	})
	if err != nil {
		return nil, fmt.Errorf("rebuild transaction failed: %w", err)
	}

	rebuild := &database.RelationshipRebuild{
		Relationships:  len(records),
		Overlaps:       overlapCount,
		TenuresSkipped: skipped,
		TriggeredBy:    triggeredBy,
		DurationMs:     time.Since(started).Milliseconds(),
	}
	if err := database.RecordRebuild(s.db, rebuild); err != nil {
		return nil, fmt.Errorf("failed to record rebuild: %w", err)
	}

	log.Printf("Rebuilt %d relationships (%d overlaps, %d tenures skipped) in %dms",
		rebuild.Relationships, rebuild.Overlaps, rebuild.TenuresSkipped, rebuild.DurationMs)
	return rebuild, nil
}

// reconcileTenures collapses one person's multi-source assertions of the
// same stint. When two sources claim intersecting intervals at the same
// organization, the higher trust tier describes the stint and the lower
// one is dropped. Non-intersecting intervals at the same organization
// are separate stints and all survive.
func (s *RelationshipService) reconcileTenures(tenures []overlap.Tenure, now time.Time) []overlap.Tenure {
	ordered := make([]overlap.Tenure, len(tenures))
	copy(ordered, tenures)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Source != ordered[j].Source {
			return ordered[i].Source > ordered[j].Source
		}
		return ordered[i].Start.Time.Before(ordered[j].Start.Time)
	})

	kept := ordered[:0]
	for _, tenure := range ordered {
		duplicate := false
		for _, winner := range kept {
			if s.resolver.SameOrg(tenure.OrgKey, winner.OrgKey) && intervalsIntersect(tenure, winner, now) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, tenure)
		}
	}
	return kept
}

// intervalsIntersect uses the same inclusive boundary rule as Compute:
// a stint ending the instant another starts still touches it.
func intervalsIntersect(a, b overlap.Tenure, now time.Time) bool {
	return !a.Start.Time.After(b.EndOr(now)) && !b.Start.Time.After(a.EndOr(now))
}

// pairEvents computes all overlap events between two people's tenures.
// The first argument belongs to the lower-ID person, who takes the
// potential-hirer position in every event.
func (s *RelationshipService) pairEvents(tenuresA, tenuresB []overlap.Tenure, cfg overlap.Config) []overlap.Event {
	var events []overlap.Event
	for _, a := range tenuresA {
		for _, b := range tenuresB {
			if !s.resolver.SameOrg(a.OrgKey, b.OrgKey) {
				continue
			}
			if event, ok := overlap.Compute(a, b, cfg); ok {
				events = append(events, event)
			}
		}
	}
	return events
}

// storeRecord upserts the relationship row for one pair and replaces
// its overlap events. Curated labels on the existing row survive.
func (s *RelationshipService) storeRecord(tx *gorm.DB, key pairKey, record overlap.Record, rebuiltAt time.Time) (int, error) {
	var rel database.Relationship
	err := tx.Where("person_a_id = ? AND person_b_id = ?", key.a, key.b).First(&rel).Error
	if err == gorm.ErrRecordNotFound {
		rel = database.Relationship{
			UUID:      uuid.NewString(),
			PersonAID: key.a,
			PersonBID: key.b,
		}
	} else if err != nil {
		return 0, err
	}

	rel.Score = record.Score
	rel.OrgCount = record.OrgCount
	rel.TotalYears = record.TotalYears
	rel.EventCount = len(record.Events)
	rel.MostRecentOrg = record.MostRecentOrg
	if record.MostRecentStart.IsZero() {
		rel.MostRecentStart = nil
	} else {
		start := record.MostRecentStart
		rel.MostRecentStart = &start
	}
	rel.Label = record.Label
	rel.RebuiltAt = rebuiltAt

	if err := tx.Save(&rel).Error; err != nil {
		return 0, err
	}
	if err := tx.Where("relationship_id = ?", rel.ID).Delete(&database.RelationshipOverlap{}).Error; err != nil {
		return 0, err
	}

	for _, event := range record.Events {
		row := database.RelationshipOverlap{
			RelationshipID: rel.ID,
			OrgName:        event.OrgName,
			OrgKey:         event.OrgKey,
			StartDate:      event.Start,
			EndDate:        event.End,
			Years:          event.Years,
			Likelihood:     string(event.Likelihood),
			SourceA:        event.SourceA.String(),
			SourceB:        event.SourceB.String(),
		}
		if err := tx.Create(&row).Error; err != nil {
			return 0, err
		}
	}
	return len(record.Events), nil
}

// resetStalePairs zeroes out relationships whose pairs produced no
// events this pass. Rows stay for their curated labels and audit value;
// only the derived numbers are cleared.
func (s *RelationshipService) resetStalePairs(tx *gorm.DB, current map[pairKey]overlap.Record, rebuiltAt time.Time) error {
	var existing []database.Relationship
	if err := tx.Find(&existing).Error; err != nil {
		return err
	}
	for _, rel := range existing {
		if _, live := current[pairKey{rel.PersonAID, rel.PersonBID}]; live {
			continue
		}
		if rel.Score == 0 && rel.EventCount == 0 {
			continue
		}
		updates := map[string]interface{}{
			"score":             0,
			"org_count":         0,
			"total_years":       0,
			"event_count":       0,
			"most_recent_org":   "",
			"most_recent_start": nil,
			"label":             "",
			"rebuilt_at":        rebuiltAt,
		}
		if err := tx.Model(&database.Relationship{}).Where("id = ?", rel.ID).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("relationship_id = ?", rel.ID).Delete(&database.RelationshipOverlap{}).Error; err != nil {
			return err
		}
	}
	return nil
}

// Connection is one scored relationship seen from one person's side.
type Connection struct {
	Relationship database.Relationship
	Other        database.Person
}

// StrongestConnections returns a person's relationships ranked by score,
// ties broken by most recent shared start. Ranking happens in Go rather
// than in SQL; NULL most_recent_start orders differently between sqlite
// and postgres.
func (s *RelationshipService) StrongestConnections(personUUID string, limit int) (*database.Person, []Connection, error) {
	if err := utils.ValidateUUID(personUUID); err != nil {
		return nil, nil, err
	}
	var person database.Person
	if err := s.db.Where("uuid = ?", personUUID).First(&person).Error; err != nil {
		return nil, nil, err
	}

	var rels []database.Relationship
	err := s.db.Preload("PersonA").Preload("PersonB").Preload("Overlaps").
		Where("(person_a_id = ? OR person_b_id = ?) AND event_count > 0", person.ID, person.ID).
		Find(&rels).Error
	if err != nil {
		return nil, nil, err
	}

	sort.SliceStable(rels, func(i, j int) bool {
		return overlap.Stronger(rankRecord(rels[i]), rankRecord(rels[j]))
	})
	if limit > 0 && len(rels) > limit {
		rels = rels[:limit]
	}

	connections := make([]Connection, 0, len(rels))
	for _, rel := range rels {
		other := rel.PersonA
		if rel.PersonAID == person.ID {
			other = rel.PersonB
		}
		connections = append(connections, Connection{Relationship: rel, Other: other})
	}
	return &person, connections, nil
}

// rankRecord projects a stored relationship onto the fields Stronger
// compares.
func rankRecord(rel database.Relationship) overlap.Record {
	rec := overlap.Record{Score: rel.Score}
	if rel.MostRecentStart != nil {
		rec.MostRecentStart = *rel.MostRecentStart
	}
	return rec
}

// List returns relationships above a minimum score, strongest first
func (s *RelationshipService) List(minScore, limit, offset int) ([]database.Relationship, int64, error) {
	query := s.db.Model(&database.Relationship{}).Where("score >= ? AND event_count > 0", minScore)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rels []database.Relationship
	err := query.Preload("PersonA").Preload("PersonB").Preload("Overlaps").
		Order("score DESC, most_recent_start DESC").
		Limit(limit).Offset(offset).
		Find(&rels).Error
	if err != nil {
		return nil, 0, err
	}
	return rels, total, nil
}

// SetCuratedLabel stores an authoritative classification override for a
// relationship. An empty label clears the override, restoring the
// derived one.
func (s *RelationshipService) SetCuratedLabel(relationshipUUID, label string) (*database.Relationship, error) {
	var rel database.Relationship
	if err := s.db.Where("uuid = ?", relationshipUUID).First(&rel).Error; err != nil {
		return nil, err
	}
	rel.CuratedLabel = label
	if err := s.db.Model(&rel).Update("curated_label", label).Error; err != nil {
		return nil, err
	}
	return &rel, nil
}

// LastRebuild returns the most recent rebuild audit record, if any.
func (s *RelationshipService) LastRebuild() (*database.RelationshipRebuild, error) {
	return database.LastRebuild(s.db)
}
