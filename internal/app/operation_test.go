package app

import (
	"errors"
	"testing"

	"gallery-go/internal/gallery"
	"gallery-go/internal/manifest"
)

func TestNewBuildOperation(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		buildID   string
	}{
		{
			name:      "build",
			operation: "build",
			buildID:   "0b4c7e9a-1f2d-4c3b-9a8e-5d6f7a8b9c0d",
		},
		{
			name:      "empty build id",
			operation: "migrate",
			buildID:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := NewBuildOperation(tt.operation, tt.buildID)

			if op.Operation != tt.operation {
				t.Errorf("Operation = %q, want %q", op.Operation, tt.operation)
			}
			if op.BuildID != tt.buildID {
				t.Errorf("BuildID = %q, want %q", op.BuildID, tt.buildID)
			}
			if op.Status != "success" {
				t.Errorf("Status = %q, want %q", op.Status, "success")
			}
			if op.ID != 0 {
				t.Errorf("ID = %d, want 0", op.ID)
			}
		})
	}
}

func TestBuildOperation_Persisted(t *testing.T) {
	tests := []struct {
		name string
		id   int64
		want bool
	}{
		{name: "not persisted when ID is 0", id: 0, want: false},
		{name: "persisted when ID is positive", id: 1, want: true},
		{name: "persisted when ID is large", id: 99999, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := &BuildOperation{ID: tt.id}
			if got := op.Persisted(); got != tt.want {
				t.Errorf("Persisted() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildOperation_Record(t *testing.T) {
	t.Run("success copies stats and version", func(t *testing.T) {
		op := NewBuildOperation("build", "b-1")
		op.Record(&gallery.BuildResult{
			BuildStats: gallery.BuildStats{Total: 3, New: 2, Unchanged: 1},
			Document:   manifest.Empty(),
		}, nil)

		if op.Status != "success" {
			t.Errorf("Status = %q, want success", op.Status)
		}
		if op.Stats.Total != 3 || op.Stats.New != 2 {
			t.Errorf("Stats = %+v", op.Stats)
		}
		if op.ManifestVersion != string(manifest.CurrentVersion) {
			t.Errorf("ManifestVersion = %q, want %q", op.ManifestVersion, manifest.CurrentVersion)
		}
	})

	t.Run("error marks the operation failed", func(t *testing.T) {
		op := NewBuildOperation("build", "b-1")
		op.Record(nil, errors.New("boom"))

		if op.Status != "error" {
			t.Errorf("Status = %q, want error", op.Status)
		}
	})
}
