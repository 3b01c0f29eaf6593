package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gallery-go/internal/config"
	"gallery-go/internal/database"
	"gallery-go/internal/gallery"
	"gallery-go/internal/keyfilter"
	"gallery-go/internal/manifest"
	"gallery-go/internal/storage"
	"gallery-go/internal/store"

	"github.com/gofrs/flock"
)

// ErrBuildInProgress is returned when another process holds the build lock.
var ErrBuildInProgress = errors.New("another build is already running")

// Options tweaks how the app is wired.
type Options struct {
	// Verbose enables debug logging.
	Verbose bool
	// Clock and IDs default to the system clock and UUIDv7 build IDs.
	Clock gallery.Clock
	IDs   gallery.IDGenerator
}

// GalleryApp is the application layer between the CLI and the Builder.
// It constructs all dependencies from config, exposes high-level operations
// and manages the DB lifecycle on Close.
type GalleryApp struct {
	cfg      *config.Config
	db       gallery.Database
	provider gallery.StorageProvider
	store    gallery.ManifestStore
	builder  *gallery.Builder
	logger   gallery.Logger
	clock    gallery.Clock
	op       *BuildOperation
	lock     *flock.Flock
	logFile  *os.File
}

// NewGalleryApp creates a fully wired GalleryApp from the given config.
// operation identifies the CLI command being run (e.g. "build", "migrate").
// The caller must call Close when done.
func NewGalleryApp(ctx context.Context, cfg *config.Config, operation string, opts Options) (*GalleryApp, error) {
	provider, err := storage.NewProviderFromConfig(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("creating storage provider: %w", err)
	}

	st, err := store.NewStoreFromConfig(ctx, cfg.Manifest, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("creating manifest store: %w", err)
	}

	exclude, err := excludePatterns(cfg.Storage)
	if err != nil {
		return nil, err
	}

	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	if err := db.CheckMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	clock, ids := opts.Clock, opts.IDs
	if clock == nil {
		clock = gallery.RealClock{}
	}
	if ids == nil {
		ids = gallery.UUIDGenerator{}
	}
	op := NewBuildOperation(operation, ids.New())

	sl, logFile, err := newLogger(cfg.LogDir, op.BuildID, opts.Verbose)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: sl}

	builder := gallery.NewBuilder(provider, st, manifest.NewMigrator(), logger, clock, gallery.BuilderConfig{
		Prefix:          cfg.Storage.Prefix,
		PublicBaseURL:   cfg.Storage.PublicBaseURL,
		ThumbnailPrefix: cfg.Storage.ThumbnailPrefix,
		Exclude:         keyfilter.New(exclude),
		Retry:           cfg.Retry.Policy(),
	})

	return &GalleryApp{
		cfg:      cfg,
		db:       db,
		provider: provider,
		store:    st,
		builder:  builder,
		logger:   logger,
		clock:    clock,
		op:       op,
		lock:     flock.New(filepath.Join(cfg.BaseDir, "gallery.lock")),
		logFile:  logFile,
	}, nil
}

// excludePatterns merges the inline patterns with those read from exclude_file.
func excludePatterns(cfg config.StorageConfig) ([]string, error) {
	patterns := append([]string{}, cfg.Exclude...)
	if cfg.ExcludeFile == "" {
		return patterns, nil
	}

	f, err := os.Open(cfg.ExcludeFile)
	if err != nil {
		return nil, fmt.Errorf("opening exclude file: %w", err)
	}
	defer f.Close()

	fromFile, err := keyfilter.Parse(f)
	if err != nil {
		return nil, err
	}
	return append(patterns, fromFile...), nil
}

// BuildID returns the ID of the current operation.
func (a *GalleryApp) BuildID() string {
	return a.op.BuildID
}

// ManifestLocation describes where the manifest is stored.
func (a *GalleryApp) ManifestLocation() string {
	return a.store.Location()
}

// persistOperation takes the build lock and saves the build operation to the
// database, giving it an auto-increment ID.
// This should only be called for manifest-changing commands.
func (a *GalleryApp) persistOperation() error {
	if a.op.Persisted() {
		return nil
	}

	if err := os.MkdirAll(a.cfg.BaseDir, 0755); err != nil {
		return fmt.Errorf("creating base directory: %w", err)
	}
	ok, err := a.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire build lock: %w", err)
	}
	if !ok {
		return ErrBuildInProgress
	}

	id, err := a.db.CreateBuild(a.op.BuildID, a.op.Operation, a.clock.Now())
	if err != nil {
		_ = a.lock.Unlock()
		return fmt.Errorf("persisting build operation: %w", err)
	}
	a.op.ID = id
	return nil
}

// Build runs one manifest build and records it in the build history.
func (a *GalleryApp) Build(ctx context.Context, opts gallery.BuildOptions) (*gallery.BuildResult, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}
	res, err := a.builder.Build(ctx, opts)
	a.op.Record(res, err)
	return res, err
}

// Migrate brings the stored manifest to the current version in place.
func (a *GalleryApp) Migrate(ctx context.Context) (*gallery.BuildResult, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}
	res, err := a.builder.Migrate(ctx)
	a.op.Record(res, err)
	return res, err
}

// Inspect lists storage with each object's classification.
func (a *GalleryApp) Inspect(ctx context.Context, all bool) ([]gallery.ObjectInfo, error) {
	return a.builder.Inspect(ctx, all)
}

// History returns the most recent builds.
func (a *GalleryApp) History(limit int) ([]*gallery.BuildRecord, error) {
	return a.db.ListBuilds(limit)
}

// ValidationReport describes the state of the configured backends.
type ValidationReport struct {
	StorageErr      error
	ManifestErr     error
	ManifestFound   bool
	ManifestVersion manifest.Version
}

// OK reports whether every check passed.
func (r *ValidationReport) OK() bool {
	return r.StorageErr == nil && r.ManifestErr == nil
}

// Validate checks that storage is reachable and the stored manifest, if any,
// can be read and is current.
func (a *GalleryApp) Validate(ctx context.Context) *ValidationReport {
	report := &ValidationReport{}

	if err := a.builder.ValidateStorage(ctx); err != nil {
		report.StorageErr = err
	}

	doc, err := a.store.Load(ctx)
	switch {
	case err != nil:
		report.ManifestErr = err
	case doc != nil:
		report.ManifestFound = true
		report.ManifestVersion = doc.Version
		report.ManifestErr = manifest.Validate(doc)
	}

	a.logger.Info("validated setup",
		"storage_ok", report.StorageErr == nil,
		"manifest_found", report.ManifestFound,
		"manifest_ok", report.ManifestErr == nil)
	return report
}

// Close finalizes the operation and closes all resources.
func (a *GalleryApp) Close() error {
	var firstErr error

	if a.op.Persisted() {
		if err := a.db.FinishBuild(a.op.ID, a.op.Status, a.clock.Now(), a.op.Stats, a.op.ManifestVersion); err != nil {
			firstErr = fmt.Errorf("finishing build operation: %w", err)
		}
	}

	if a.lock.Locked() {
		if err := a.lock.Unlock(); err != nil {
			a.logger.Warn("failed to release build lock", "error", err)
		}
	}

	if err := a.db.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
