package gallery

import (
	"database/sql"
	"time"
)

// BuildStats counts what a build did to the manifest.
type BuildStats struct {
	Total     int
	New       int
	Updated   int
	Unchanged int
	Deleted   int
	Skipped   int
}

// BuildRecord is one row of build history.
type BuildRecord struct {
	ID              int64
	BuildID         string
	Operation       string
	StartedAt       time.Time
	FinishedAt      sql.NullTime
	Status          string
	Stats           BuildStats
	ManifestVersion string
}

// Database records build history.
type Database interface {
	// CreateBuild inserts a started build and returns its row ID.
	CreateBuild(buildID, operation string, startedAt time.Time) (int64, error)

	// FinishBuild marks a build finished with the given status and counts.
	FinishBuild(id int64, status string, finishedAt time.Time, stats BuildStats, manifestVersion string) error

	// ListBuilds returns the most recent builds, newest first.
	ListBuilds(limit int) ([]*BuildRecord, error)

	// CheckMigrations verifies the schema is up to date.
	CheckMigrations() error

	// Close closes the database connection.
	Close() error
}
