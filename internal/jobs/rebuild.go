package jobs

import (
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/staffgraph/staffgraph/internal/database"
	"github.com/staffgraph/staffgraph/internal/services"
)

// RebuildJob periodically recomputes all relationships from tenures
type RebuildJob struct {
	db   *gorm.DB
	rels *services.RelationshipService
}

// NewRebuildJob creates a new rebuild job
func NewRebuildJob(db *gorm.DB, rels *services.RelationshipService) *RebuildJob {
	return &RebuildJob{db: db, rels: rels}
}

// Run executes one rebuild pass. Returns the number of relationships
// recomputed, or zero when scoring is disabled.
func (j *RebuildJob) Run() (int, error) {
	settings, err := database.GetOrCreateScoringSettings(j.db)
	if err != nil {
		return 0, err
	}

	if !settings.Enabled {
		log.Println("Relationship scoring is disabled, skipping rebuild")
		return 0, nil
	}

	rebuild, err := j.rels.RebuildAll("system")
	if err != nil {
		return 0, err
	}
	return rebuild.Relationships, nil
}

// Start begins the periodic rebuild passes
func (j *RebuildJob) Start(stop <-chan struct{}) {
	settings, err := database.GetOrCreateScoringSettings(j.db)
	if err != nil {
		log.Printf("Failed to get scoring settings, using default interval: %v", err)
		settings = database.NewDefaultScoringSettings()
	}

	interval := time.Duration(settings.RebuildIntervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			count, err := j.Run()
			if err != nil {
				log.Printf("Rebuild job error: %v", err)
			} else if count > 0 {
				log.Printf("Rebuild job: recomputed %d relationships", count)
			}

			// Refresh interval from settings (in case it changed)
			newSettings, err := database.GetOrCreateScoringSettings(j.db)
			if err == nil && newSettings.RebuildIntervalMinutes != settings.RebuildIntervalMinutes {
				settings = newSettings
				interval = time.Duration(settings.RebuildIntervalMinutes) * time.Minute
				ticker.Reset(interval)
				log.Printf("Rebuild interval updated to %d minutes", settings.RebuildIntervalMinutes)
			}

		case <-stop:
			log.Println("Rebuild job stopped")
			return
		}
	}
}
