package database

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the database. PostgreSQL DSNs ("postgres://...") go to
// the postgres driver; anything else is treated as a SQLite path, which
// is the default deployment (one file next to the data directory).
func Connect(dsn string, logLevel logger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// AutoMigrate runs database migrations
func AutoMigrate(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		&Person{},
		&Organization{},
		&Tenure{},
		&PersonFact{},
		&Relationship{},
		&RelationshipOverlap{},
		&RelationshipRebuild{},
		&CacheEntry{},
		&ScoringSettings{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// GetOrCreateScoringSettings retrieves or creates the settings singleton.
func GetOrCreateScoringSettings(db *gorm.DB) (*ScoringSettings, error) {
	var settings ScoringSettings
	result := db.First(&settings)
	if result.Error == gorm.ErrRecordNotFound {
		settings = *NewDefaultScoringSettings()
		if err := db.Create(&settings).Error; err != nil {
			return nil, err
		}
	} else if result.Error != nil {
		return nil, result.Error
	}
	return &settings, nil
}

// UpdateScoringSettings updates the settings singleton.
// Uses Save() which handles both insert and update operations.
func UpdateScoringSettings(db *gorm.DB, settings *ScoringSettings) error {
	return db.Save(settings).Error
}

// RecordRebuild stores the audit row for one re-aggregation pass.
func RecordRebuild(db *gorm.DB, rebuild *RelationshipRebuild) error {
	return db.Create(rebuild).Error
}

// LastRebuild returns the most recent rebuild audit row, or nil if no
// rebuild has run yet.
func LastRebuild(db *gorm.DB) (*RelationshipRebuild, error) {
	var rebuild RelationshipRebuild
	err := db.Order("created_at DESC").First(&rebuild).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rebuild, nil
}

// Close closes the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
