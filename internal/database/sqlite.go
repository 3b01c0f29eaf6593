package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gallery-go/internal/database/migrations"
	"gallery-go/internal/gallery"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const timeLayout = time.RFC3339Nano

// SQLiteDatabase implements gallery.Database using SQLite.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

// NewSQLiteDatabase opens the database at path (or ":memory:") and applies
// pending migrations.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &SQLiteDatabase{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite connection.
// path can be a file path or ":memory:" for an in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Builds are recorded by one process at a time; a single connection also
	// keeps ":memory:" databases from splitting across the pool.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

func (s *SQLiteDatabase) CreateBuild(buildID, operation string, startedAt time.Time) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO builds (build_id, operation, started_at, status) VALUES (?, ?, ?, 'running')",
		buildID, operation, startedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("creating build: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading build id: %w", err)
	}
	return id, nil
}

func (s *SQLiteDatabase) FinishBuild(id int64, status string, finishedAt time.Time, stats gallery.BuildStats, manifestVersion string) error {
	res, err := s.db.Exec(`
		UPDATE builds
		SET finished_at = ?, status = ?, total = ?, new = ?, updated = ?,
		    unchanged = ?, deleted = ?, skipped = ?, manifest_version = ?
		WHERE id = ?`,
		finishedAt.UTC().Format(timeLayout), status,
		stats.Total, stats.New, stats.Updated, stats.Unchanged, stats.Deleted, stats.Skipped,
		manifestVersion, id,
	)
	if err != nil {
		return fmt.Errorf("finishing build %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finishing build %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("build %d not found", id)
	}
	return nil
}

func (s *SQLiteDatabase) ListBuilds(limit int) ([]*gallery.BuildRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, build_id, operation, started_at, finished_at, status,
		       total, new, updated, unchanged, deleted, skipped, manifest_version
		FROM builds
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing builds: %w", err)
	}
	defer rows.Close()

	var builds []*gallery.BuildRecord
	for rows.Next() {
		var (
			b        gallery.BuildRecord
			started  string
			finished sql.NullString
		)
		err := rows.Scan(&b.ID, &b.BuildID, &b.Operation, &started, &finished, &b.Status,
			&b.Stats.Total, &b.Stats.New, &b.Stats.Updated, &b.Stats.Unchanged,
			&b.Stats.Deleted, &b.Stats.Skipped, &b.ManifestVersion)
		if err != nil {
			return nil, fmt.Errorf("scanning build: %w", err)
		}

		if b.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("parsing started_at of build %d: %w", b.ID, err)
		}
		if finished.Valid {
			t, err := time.Parse(timeLayout, finished.String)
			if err != nil {
				return nil, fmt.Errorf("parsing finished_at of build %d: %w", b.ID, err)
			}
			b.FinishedAt = sql.NullTime{Time: t, Valid: true}
		}
		builds = append(builds, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing builds: %w", err)
	}
	return builds, nil
}

// CheckMigrations verifies that the schema is up to date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

func (s *SQLiteDatabase) Close() error {
	return s.db.Close()
}

// Compile-time check that SQLiteDatabase implements gallery.Database
var _ gallery.Database = (*SQLiteDatabase)(nil)
