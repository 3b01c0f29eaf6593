// Package storage lists photo objects from storage backends and normalizes
// them into gallery.StorageObject records.
package storage

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"gallery-go/internal/gallery"
)

// SanitizeETag strips every double quote from raw and trims whitespace.
// It returns nil when raw is nil or nothing is left.
func SanitizeETag(raw *string) *string {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(strings.ReplaceAll(*raw, `"`, ""))
	if s == "" {
		return nil
	}
	return &s
}

// FromS3Object converts an S3 listing entry into a StorageObject.
func FromS3Object(o types.Object) gallery.StorageObject {
	obj := gallery.StorageObject{
		LastModified: o.LastModified,
		ETag:         SanitizeETag(o.ETag),
		Size:         o.Size,
	}
	if o.Key != nil {
		obj.Key = *o.Key
	}
	if sc := string(o.StorageClass); sc != "" {
		obj.StorageClass = &sc
	}
	return obj
}
