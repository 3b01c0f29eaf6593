package app

import "gallery-go/internal/gallery"

// BuildOperation tracks a CLI operation that may change the manifest.
// Operations are created in memory with ID=0. Only manifest-changing commands
// persist them (giving them an auto-increment ID from the database).
type BuildOperation struct {
	ID              int64
	BuildID         string
	Operation       string
	Status          string // "success" or "error"
	Stats           gallery.BuildStats
	ManifestVersion string
}

// NewBuildOperation creates a new in-memory build operation.
func NewBuildOperation(operation, buildID string) *BuildOperation {
	return &BuildOperation{
		BuildID:   buildID,
		Operation: operation,
		Status:    "success",
	}
}

// Persisted returns true if this operation has been saved to the database.
func (op *BuildOperation) Persisted() bool {
	return op.ID != 0
}

// Record copies the outcome of a build into the operation.
func (op *BuildOperation) Record(res *gallery.BuildResult, err error) {
	if err != nil {
		op.Status = "error"
		return
	}
	op.Stats = res.BuildStats
	if res.Document != nil {
		op.ManifestVersion = string(res.Document.Version)
	}
}
