package gallery

import (
	"context"

	"gallery-go/internal/format"
)

// ObjectInfo is a listed object with its classification.
type ObjectInfo struct {
	StorageObject
	Supported bool
	Heic      bool
}

// Inspect lists storage and classifies every object. Excluded keys are
// reported as unsupported. When all is false only supported images are returned.
func (b *Builder) Inspect(ctx context.Context, all bool) ([]ObjectInfo, error) {
	objects, err := b.listObjects(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]ObjectInfo, 0, len(objects))
	for _, obj := range objects {
		info := ObjectInfo{
			StorageObject: obj,
			Supported:     !b.cfg.Exclude.Match(obj.Key) && format.IsSupportedImage(obj.Key),
			Heic:          format.IsHeicFormat(obj.Key),
		}
		if !all && !info.Supported {
			continue
		}
		infos = append(infos, info)
	}
	b.logger.Debug("inspected storage", "listed", len(objects), "returned", len(infos))
	return infos, nil
}

// ValidateStorage checks that the storage backend is reachable.
func (b *Builder) ValidateStorage(ctx context.Context) error {
	return b.provider.ValidateSetup(ctx)
}
