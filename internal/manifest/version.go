package manifest

// Version tags a manifest schema revision.
type Version string

const (
	V1 Version = "v1"
	V2 Version = "v2"
	V3 Version = "v3"
	V4 Version = "v4"
	V5 Version = "v5"
	V6 Version = "v6"
	V7 Version = "v7"

	CurrentVersion = V7
)

// knownVersions is ordered oldest first.
var knownVersions = []Version{V1, V2, V3, V4, V5, V6, V7}

// KnownVersions returns every schema version this build understands, oldest first.
func KnownVersions() []Version {
	return append([]Version{}, knownVersions...)
}

func (v Version) index() int {
	for i, k := range knownVersions {
		if k == v {
			return i
		}
	}
	return -1
}

// Valid reports whether v is a recognized schema version.
func (v Version) Valid() bool {
	return v.index() >= 0
}

// Before reports whether v is an older schema than other. Unknown versions are
// never before anything.
func (v Version) Before(other Version) bool {
	a, b := v.index(), other.index()
	return a >= 0 && b >= 0 && a < b
}

func (v Version) String() string {
	if v == "" {
		return "<missing>"
	}
	return string(v)
}
