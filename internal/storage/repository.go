package storage

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no row matches the requested id.
var ErrNotFound = errors.New("not found")

// BaseRepository provides common functionality for all repositories.
type BaseRepository struct {
	db *DB
}

// NewBaseRepository creates a new base repository with the given database connection.
func NewBaseRepository(db *DB) BaseRepository {
	return BaseRepository{db: db}
}

// DB returns the underlying database connection.
func (r *BaseRepository) DB() *DB {
	return r.db
}

// Now returns the current time in UTC for database timestamps.
func (r *BaseRepository) Now() time.Time {
	return time.Now().UTC()
}

// GenerateID creates a new random id for use as a primary key.
func GenerateID() string {
	return uuid.NewString()
}
