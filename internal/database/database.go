package database

import (
	"fmt"
	"sync"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	once    sync.Once
	shared  *gorm.DB
	connErr error
)

// Connect establishes the process-wide database handle. Concurrent first
// callers coordinate on a single connection attempt; every caller observes the
// same handle or the same error. TranslateError is enabled so unique-index
// violations surface as gorm.ErrDuplicatedKey across drivers.
func Connect(dsn string) (*gorm.DB, error) {
	once.Do(func() {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err != nil {
			connErr = fmt.Errorf("failed to connect to database: %w", err)
			return
		}
		shared = db
	})
	return shared, connErr
}
