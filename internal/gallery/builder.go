package gallery

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"gallery-go/internal/format"
	"gallery-go/internal/keyfilter"
	"gallery-go/internal/manifest"
	"gallery-go/internal/retry"
)

const defaultThumbnailPrefix = "/thumbnails"

// BuilderConfig holds the settings that shape manifest entries.
type BuilderConfig struct {
	// Prefix limits the listing to keys under it.
	Prefix string
	// PublicBaseURL is prepended to object keys to form originalUrl.
	PublicBaseURL string
	// ThumbnailPrefix is the URL path thumbnails are served from.
	ThumbnailPrefix string
	// Exclude drops matching keys before classification.
	Exclude *keyfilter.Matcher
	// Retry applies to storage listings and manifest reads and writes.
	Retry retry.Policy
}

// BuildOptions controls a single build.
type BuildOptions struct {
	// Force ignores the stored manifest and rebuilds from the listing alone.
	Force bool
	// DryRun computes the manifest without saving it.
	DryRun bool
}

// BuildResult summarizes a build.
type BuildResult struct {
	BuildStats
	Document *manifest.Document
	// PreviousVersion is the version of the stored manifest before migration.
	PreviousVersion manifest.Version
	Migrated        bool
	Reset           bool
	Saved           bool
}

// Builder turns a storage listing into the site manifest.
type Builder struct {
	provider StorageProvider
	store    ManifestStore
	migrator *manifest.Migrator
	logger   Logger
	clock    Clock
	cfg      BuilderConfig
}

// NewBuilder creates a Builder with all its dependencies.
func NewBuilder(provider StorageProvider, store ManifestStore, migrator *manifest.Migrator, logger Logger, clock Clock, cfg BuilderConfig) *Builder {
	if cfg.ThumbnailPrefix == "" {
		cfg.ThumbnailPrefix = defaultThumbnailPrefix
	}
	if logger == nil {
		logger = NopLogger{}
	}
	if clock == nil {
		clock = RealClock{}
	}
	return &Builder{
		provider: provider,
		store:    store,
		migrator: migrator,
		logger:   logger,
		clock:    clock,
		cfg:      cfg,
	}
}

// Build runs one pass: load and migrate the stored manifest, list storage,
// merge the listing into the manifest and save it.
func (b *Builder) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	started := b.clock.Now()
	res := &BuildResult{}

	previous := manifest.Empty()
	if opts.Force {
		b.logger.Info("forced build, ignoring stored manifest", "location", b.store.Location())
	} else {
		migrated, err := b.loadCurrent(ctx, res)
		if err != nil {
			return nil, err
		}
		previous = migrated
	}

	objects, err := b.listObjects(ctx)
	if err != nil {
		return nil, err
	}
	b.logger.Info("listed storage objects", "count", len(objects), "prefix", b.cfg.Prefix)

	doc, stats := b.merge(previous, objects)
	res.BuildStats = stats
	res.Document = doc

	if err := manifest.Validate(doc); err != nil {
		return nil, fmt.Errorf("built manifest is invalid: %w", err)
	}

	if opts.DryRun {
		b.logger.Info("dry run, manifest not saved", "photos", stats.Total)
	} else {
		err := retry.Do(ctx, b.cfg.Retry, b.logger, "save manifest", func(ctx context.Context) error {
			return b.store.Save(ctx, doc)
		})
		if err != nil {
			return nil, fmt.Errorf("saving manifest: %w", err)
		}
		res.Saved = true
	}

	b.logger.Info("build finished",
		"photos", stats.Total,
		"new", stats.New,
		"updated", stats.Updated,
		"unchanged", stats.Unchanged,
		"deleted", stats.Deleted,
		"skipped", stats.Skipped,
		"duration", b.clock.Now().Sub(started).String())

	return res, nil
}

// Migrate loads the stored manifest, brings it to the current version and
// saves it back when anything changed.
func (b *Builder) Migrate(ctx context.Context) (*BuildResult, error) {
	res := &BuildResult{}
	doc, err := b.loadCurrent(ctx, res)
	if err != nil {
		return nil, err
	}
	res.Document = doc
	res.Total = len(doc.Data)

	if !res.Migrated {
		b.logger.Info("manifest already current", "version", doc.Version.String())
		return res, nil
	}

	err = retry.Do(ctx, b.cfg.Retry, b.logger, "save manifest", func(ctx context.Context) error {
		return b.store.Save(ctx, doc)
	})
	if err != nil {
		return nil, fmt.Errorf("saving manifest: %w", err)
	}
	res.Saved = true
	return res, nil
}

// loadCurrent reads the stored manifest and migrates it. Malformed documents
// and failing migration steps fall back to an empty manifest.
func (b *Builder) loadCurrent(ctx context.Context, res *BuildResult) (*manifest.Document, error) {
	var stored *manifest.Document
	err := retry.Do(ctx, b.cfg.Retry, b.logger, "load manifest", func(ctx context.Context) error {
		doc, err := b.store.Load(ctx)
		if err != nil {
			if errors.Is(err, manifest.ErrMalformed) {
				return retry.Permanent(err)
			}
			return err
		}
		stored = doc
		return nil
	})

	switch {
	case errors.Is(err, manifest.ErrMalformed):
		b.logger.Warn("stored manifest is malformed", "location", b.store.Location(), "error", err)
		stored = &manifest.Document{}
	case err != nil:
		return nil, fmt.Errorf("loading manifest: %w", err)
	case stored == nil:
		b.logger.Info("no stored manifest, starting fresh", "location", b.store.Location())
		return manifest.Empty(), nil
	}

	res.PreviousVersion = stored.Version
	mres, err := b.migrator.Run(stored, manifest.MigrationContext{Logger: b.logger})
	if err != nil {
		var stepErr *manifest.StepError
		if !errors.As(err, &stepErr) {
			return nil, err
		}
		b.logger.Error("manifest migration failed, rebuilding from scratch", "error", err)
		res.Migrated, res.Reset = true, true
		return manifest.Empty(), nil
	}

	res.Migrated = mres.Migrated()
	res.Reset = mres.Reset
	return mres.Document, nil
}

func (b *Builder) listObjects(ctx context.Context) ([]StorageObject, error) {
	var objects []StorageObject
	err := retry.Do(ctx, b.cfg.Retry, b.logger, "list objects", func(ctx context.Context) error {
		objs, err := b.provider.ListObjects(ctx, b.cfg.Prefix)
		if err != nil {
			return err
		}
		objects = objs
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing objects: %w", err)
	}
	return objects, nil
}

// merge builds the new manifest from the previous one and the listing.
func (b *Builder) merge(previous *manifest.Document, objects []StorageObject) (*manifest.Document, BuildStats) {
	var stats BuildStats

	prevByKey := make(map[string]manifest.Entry, len(previous.Data))
	for _, e := range previous.Data {
		if key := e.S3Key(); key != "" {
			prevByKey[key] = e
		}
	}

	doc := manifest.Empty()
	seenKeys := make(map[string]bool, len(objects))
	seenIDs := make(map[string]string, len(objects))

	for _, obj := range objects {
		if b.cfg.Exclude.Match(obj.Key) || !format.IsSupportedImage(obj.Key) {
			stats.Skipped++
			continue
		}
		if seenKeys[obj.Key] {
			stats.Skipped++
			continue
		}

		id := photoID(obj.Key)
		if id == "" {
			b.logger.Warn("object has no usable photo id, skipping", "key", obj.Key)
			stats.Skipped++
			continue
		}
		if other, dup := seenIDs[id]; dup {
			b.logger.Warn("duplicate photo id, skipping object", "id", id, "key", obj.Key, "kept", other)
			stats.Skipped++
			continue
		}
		seenKeys[obj.Key] = true
		seenIDs[id] = obj.Key

		entry := b.entryFor(id, obj)
		old, existed := prevByKey[obj.Key]
		switch {
		case !existed:
			stats.New++
			b.logger.Debug("new photo", "key", obj.Key)
		case old.ETag() != "" && old.ETag() == obj.ETagValue():
			// Content unchanged: keep metadata written by earlier builds or tools.
			merged := old.Clone()
			for k, v := range entry {
				merged[k] = v
			}
			entry = merged
			stats.Unchanged++
		default:
			stats.Updated++
			b.logger.Debug("photo changed", "key", obj.Key, "old_etag", old.ETag(), "new_etag", obj.ETagValue())
		}

		doc.Data = append(doc.Data, entry)
	}

	for key := range prevByKey {
		if !seenKeys[key] {
			stats.Deleted++
			b.logger.Debug("photo removed", "key", key)
		}
	}

	sortEntries(doc.Data)
	doc.Cameras = distinctField(doc.Data, manifest.FieldCamera)
	doc.Lenses = distinctField(doc.Data, manifest.FieldLens)
	stats.Total = len(doc.Data)

	return doc, stats
}

func (b *Builder) entryFor(id string, obj StorageObject) manifest.Entry {
	e := manifest.Entry{
		manifest.FieldID:           id,
		manifest.FieldS3Key:        obj.Key,
		manifest.FieldOriginalURL:  b.originalURL(obj.Key),
		manifest.FieldThumbnailURL: path.Join(b.cfg.ThumbnailPrefix, id+".jpg"),
		manifest.FieldFormat:       format.Name(obj.Key),
		manifest.FieldIsHeic:       format.IsHeicFormat(obj.Key),
	}
	if obj.Size != nil {
		e[manifest.FieldSize] = *obj.Size
	}
	if obj.LastModified != nil {
		e[manifest.FieldLastModified] = obj.LastModified.UTC().Format(time.RFC3339)
	}
	if obj.ETag != nil {
		e[manifest.FieldETag] = *obj.ETag
	}
	return e
}

func (b *Builder) originalURL(key string) string {
	if b.cfg.PublicBaseURL == "" {
		return key
	}
	return strings.TrimRight(b.cfg.PublicBaseURL, "/") + "/" + strings.TrimLeft(key, "/")
}

// photoID is the object's base name without its extension.
func photoID(key string) string {
	base := path.Base(key)
	return strings.TrimSuffix(base, path.Ext(base))
}

// sortEntries orders entries newest first; entries without a timestamp go last.
func sortEntries(entries []manifest.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ti, _ := entries[i].String(manifest.FieldLastModified)
		tj, _ := entries[j].String(manifest.FieldLastModified)
		if ti != tj {
			return ti > tj
		}
		return entries[i].S3Key() < entries[j].S3Key()
	})
}

func distinctField(entries []manifest.Entry, field string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, e := range entries {
		v, ok := e.String(field)
		v = strings.TrimSpace(v)
		if !ok || v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
