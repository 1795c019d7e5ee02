package store

import (
	"github.com/go-socialhub/socialhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store wraps the relational database holding credential records, publish
// configs and publication join records.
type Store struct {
	db *gorm.DB
}

// New opens the database and migrates the schema.
func New(driver, dsn string) (*Store, error) {
	dialector, err := GetDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.PlatformAccount{},
		&models.PublishConfig{},
		&models.ContentItem{},
		&models.ContentPublication{},
	); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Health checks database connectivity.
func (s *Store) Health() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// DB exposes the underlying gorm handle for tests.
func (s *Store) DB() *gorm.DB {
	return s.db
}
