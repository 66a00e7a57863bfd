package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/staffgraph/staffgraph/internal/database"
	"github.com/staffgraph/staffgraph/internal/dates"
	"github.com/staffgraph/staffgraph/internal/facts"
	"github.com/staffgraph/staffgraph/internal/utils"
)

// PersonService manages persons, their tenures and their stored facts
type PersonService struct {
	db *gorm.DB
}

// NewPersonService creates a new PersonService
func NewPersonService(db *gorm.DB) *PersonService {
	return &PersonService{db: db}
}

// GetOrCreate finds a person by normalized name identity, creating the
// record on first observation. The first observed spelling becomes the
// canonical display name; later spellings that normalize to the same
// key do not change it.
func (s *PersonService) GetOrCreate(name string) (*database.Person, error) {
	display := utils.CleanDisplayName(name)
	if err := utils.ValidateDisplayName(display); err != nil {
		return nil, err
	}
	key := facts.SubjectKey(display)

	var person database.Person
	err := s.db.Where("name_key = ?", key).
		Attrs(database.Person{
			UUID: uuid.NewString(),
			Name: display,
		}).
		FirstOrCreate(&person, database.Person{NameKey: key}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get or create person %q: %w", display, err)
	}
	return &person, nil
}

// GetByUUID retrieves a person with tenures preloaded
func (s *PersonService) GetByUUID(personUUID string) (*database.Person, error) {
	if err := utils.ValidateUUID(personUUID); err != nil {
		return nil, err
	}
	var person database.Person
	err := s.db.Preload("Tenures").Where("uuid = ?", personUUID).First(&person).Error
	if err != nil {
		return nil, err
	}
	return &person, nil
}

// List returns persons matching an optional name search, newest first
func (s *PersonService) List(search string, limit, offset int) ([]database.Person, int64, error) {
	query := s.db.Model(&database.Person{})
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var persons []database.Person
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&persons).Error
	if err != nil {
		return nil, 0, err
	}
	return persons, total, nil
}

// SetRoleCategory fills in the role bucket if the person has none yet.
// An existing category is never downgraded by a later observation.
func (s *PersonService) SetRoleCategory(person *database.Person, category database.RoleCategory) error {
	if category == "" || person.RoleCategory != "" {
		return nil
	}
	person.RoleCategory = category
	return s.db.Model(person).Update("role_category", category).Error
}

// AddFact stores one assertion about a person. Facts are append-only;
// conflicting assertions coexist and are resolved at read time.
func (s *PersonService) AddFact(personID uint, f facts.Fact) error {
	row := database.PersonFact{
		PersonID:   personID,
		Field:      f.Field,
		Value:      f.Value,
		Source:     f.Source.String(),
		ObservedAt: f.ObservedAt,
		Note:       f.Note,
	}
	if row.ObservedAt.IsZero() {
		row.ObservedAt = time.Now()
	}
	return s.db.Create(&row).Error
}

// AddTenure records an affiliation. An observation refines an existing
// row for the same person/org/role/source only when it describes the
// same stint: each boundary must match the stored one at some precision,
// or fill one that was unknown. A disjoint interval is a separate stint;
// a coach who leaves and later returns to the same club keeps one row
// per stint. Refinement keeps the finer-precision date and never
// discards known data.
func (s *PersonService) AddTenure(person *database.Person, orgName, orgKey, role string, start, end dates.Date, source facts.SourceCategory, observedAt time.Time) (*database.Tenure, error) {
	var rows []database.Tenure
	err := s.db.Where("person_id = ? AND org_key = ? AND role = ? AND source = ?",
		person.ID, orgKey, role, source.String()).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for i := range rows {
		existing := &rows[i]
		stored := dates.FromTime(existing.StartDate, dates.ParsePrecision(existing.StartPrecision))
		storedEnd := dates.FromTime(existing.EndDate, dates.ParsePrecision(existing.EndPrecision))
		if !sameBoundary(stored, start) || !sameBoundary(storedEnd, end) {
			continue
		}
		applyDate(&existing.StartDate, &existing.StartPrecision, refineDate(stored, start))
		applyDate(&existing.EndDate, &existing.EndPrecision, refineDate(storedEnd, end))
		existing.ObservedAt = observedAt
		if err := s.db.Save(existing).Error; err != nil {
			return nil, err
		}
		return existing, nil
	}

	tenure := database.Tenure{
		PersonID:   person.ID,
		OrgName:    orgName,
		OrgKey:     orgKey,
		Role:       role,
		Source:     source.String(),
		ObservedAt: observedAt,
	}
	applyDate(&tenure.StartDate, &tenure.StartPrecision, start)
	applyDate(&tenure.EndDate, &tenure.EndPrecision, end)
	if err := s.db.Create(&tenure).Error; err != nil {
		return nil, err
	}
	return &tenure, nil
}

// MergedFacts resolves all stored facts for a person into the merged
// view. Recomputed on every call; the resolution is never persisted.
func (s *PersonService) MergedFacts(person *database.Person) (facts.Resolved, error) {
	var rows []database.PersonFact
	if err := s.db.Where("person_id = ?", person.ID).Find(&rows).Error; err != nil {
		return facts.Resolved{}, err
	}

	all := make([]facts.Fact, 0, len(rows))
	for _, row := range rows {
		all = append(all, facts.Fact{
			Subject:    person.Name,
			Field:      row.Field,
			Value:      row.Value,
			Source:     facts.ParseSourceCategory(row.Source),
			ObservedAt: row.ObservedAt,
			Note:       row.Note,
		})
	}
	return facts.MergeSubject(facts.SubjectKey(person.Name), all), nil
}

// applyDate writes a Date into the nullable column pair used in storage.
func applyDate(col **time.Time, precisionCol *string, d dates.Date) {
	if d.IsZero() {
		return
	}
	t := d.Time
	*col = &t
	*precisionCol = d.Precision.String()
}

// sameBoundary reports whether two observations can describe the same
// date boundary: either side is unknown, or one contains the other at a
// coarser precision. "2007" and "1998" are different boundaries, not a
// refinement.
func sameBoundary(stored, observed dates.Date) bool {
	if stored.IsZero() || observed.IsZero() {
		return true
	}
	return stored.Contains(observed) || observed.Contains(stored)
}

// refineDate merges a new observation of the same date boundary into
// the stored one. The finer precision wins when one contains the other;
// otherwise the stored value stands and only fills in if it was unknown.
func refineDate(stored, observed dates.Date) dates.Date {
	if stored.IsZero() {
		return observed
	}
	if observed.IsZero() {
		return stored
	}
	if stored.Contains(observed) || observed.Contains(stored) {
		return dates.Finer(stored, observed)
	}
	return stored
}
