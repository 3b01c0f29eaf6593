package manifest

import "strings"

const (
	deprecatedThumbnailExt = ".webp"
	thumbnailExt           = ".jpg"
)

func defaultSteps() map[Version]Step {
	return map[Version]Step{
		V1: {To: V6, Name: "reset-v1", Apply: resetEntries},
		V6: {To: V7, Name: "thumbnail-jpg", Apply: rewriteThumbnailExt(deprecatedThumbnailExt, thumbnailExt)},
	}
}

// resetEntries drops everything a v1 manifest recorded. Its thumbnails and
// metadata were generated by a pipeline that no longer exists, so the next
// build re-derives them from storage.
func resetEntries(doc *Document, _ MigrationContext) error {
	doc.Data = []Entry{}
	doc.Cameras = []string{}
	doc.Lenses = []string{}
	return nil
}

// rewriteThumbnailExt replaces a trailing from extension on every string
// thumbnailUrl with to. Other fields and non-string values are left alone.
func rewriteThumbnailExt(from, to string) func(*Document, MigrationContext) error {
	return func(doc *Document, _ MigrationContext) error {
		for _, e := range doc.Data {
			if e == nil {
				continue
			}
			thumb, ok := e.String(FieldThumbnailURL)
			if !ok || !strings.HasSuffix(thumb, from) {
				continue
			}
			e[FieldThumbnailURL] = strings.TrimSuffix(thumb, from) + to
		}
		return nil
	}
}
