package services

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/staffgraph/staffgraph/internal/cache"
	"github.com/staffgraph/staffgraph/internal/database"
	"github.com/staffgraph/staffgraph/internal/orgs"
	"github.com/staffgraph/staffgraph/internal/sources"
)

// ImportService ingests source payloads: parses them through the
// matching adapter, enriches persons and tenures, and records payload
// freshness in the cache.
type ImportService struct {
	db         *gorm.DB
	persons    *PersonService
	normalizer *orgs.Normalizer
	registry   *sources.Registry
	cache      *cache.Store
}

// NewImportService creates a new ImportService
func NewImportService(db *gorm.DB, persons *PersonService, normalizer *orgs.Normalizer, registry *sources.Registry, cacheStore *cache.Store) *ImportService {
	return &ImportService{
		db:         db,
		persons:    persons,
		normalizer: normalizer,
		registry:   registry,
		cache:      cacheStore,
	}
}

// ImportResult summarizes one ingested payload.
type ImportResult struct {
	Source       string `json:"source"`
	Observations int    `json:"observations"`
	Persons      int    `json:"persons"`
	Tenures      int    `json:"tenures"`
	Facts        int    `json:"facts"`
}

// cacheKinds maps source names to freshness categories.
var cacheKinds = map[string]cache.Kind{
	"curated": cache.KindCurated,
	"roster":  cache.KindRoster,
	"news":    cache.KindNews,
}

// Import parses and ingests one payload for the named source. Ingestion
// only ever adds or refines; nothing existing is deleted. Derived
// relationships are not touched here, the next rebuild picks the new
// tenures up.
func (s *ImportService) Import(sourceName string, body []byte) (*ImportResult, error) {
	adapter, err := s.registry.Get(sourceName)
	if err != nil {
		return nil, err
	}

	observedAt := time.Now()
	observations, err := adapter.ParsePayload(body, observedAt)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Source: sourceName, Observations: len(observations)}
	seenPersons := make(map[uint]bool)

	for _, obs := range observations {
		person, err := s.persons.GetOrCreate(obs.PersonName)
		if err != nil {
			return nil, fmt.Errorf("observation for %q: %w", obs.PersonName, err)
		}
		if !seenPersons[person.ID] {
			seenPersons[person.ID] = true
			result.Persons++
		}

		if err := s.persons.SetRoleCategory(person, sources.ClassifyRole(obs.Role)); err != nil {
			return nil, err
		}

		if obs.OrgName != "" {
			orgKey := s.normalizer.Normalize(obs.OrgName)
			if err := s.ensureOrganization(obs.OrgName, orgKey); err != nil {
				return nil, err
			}
			if _, err := s.persons.AddTenure(person, obs.OrgName, orgKey, obs.Role, obs.Start, obs.End, adapter.GetCategory(), observedAt); err != nil {
				return nil, fmt.Errorf("tenure for %q at %q: %w", obs.PersonName, obs.OrgName, err)
			}
			result.Tenures++
		}

		for _, f := range obs.Facts {
			if err := s.persons.AddFact(person.ID, f); err != nil {
				return nil, err
			}
			result.Facts++
		}
	}

	if kind, ok := cacheKinds[sourceName]; ok {
		key := fmt.Sprintf("import:%s:%s", sourceName, observedAt.Format("2006-01-02"))
		payload := map[string]interface{}{
			"observations": result.Observations,
			"persons":      result.Persons,
			"tenures":      result.Tenures,
		}
		if _, err := s.cache.Put(key, kind, payload); err != nil {
			// Freshness bookkeeping must not fail the import itself.
			log.Printf("Failed to record import freshness for %s: %v", sourceName, err)
		}
	}

	log.Printf("Imported %s payload: %d observations, %d persons, %d tenures, %d facts",
		sourceName, result.Observations, result.Persons, result.Tenures, result.Facts)
	return result, nil
}

// ensureOrganization records a raw observed org name with its canonical
// key. Distinct raw spellings keep distinct rows sharing the key.
func (s *ImportService) ensureOrganization(name, key string) error {
	var org database.Organization
	return s.db.Where("name = ?", name).
		Attrs(database.Organization{CanonicalKey: key}).
		FirstOrCreate(&org, database.Organization{Name: name}).Error
}
