package keyfilter

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("skips blank lines and comments", func(t *testing.T) {
		t.Parallel()
		m := New([]string{"", "  ", "# comment", "*.log"})
		if len(m.patterns) != len(defaultPatterns)+1 {
			t.Fatalf("expected %d patterns, got %d", len(defaultPatterns)+1, len(m.patterns))
		}
		if got := m.patterns[len(m.patterns)-1].glob; got != "*.log" {
			t.Errorf("expected *.log, got %s", got)
		}
	})

	t.Run("drops invalid globs", func(t *testing.T) {
		t.Parallel()
		m := New([]string{"[", "*.tmp"})
		if len(m.patterns) != len(defaultPatterns)+1 {
			t.Fatalf("expected %d patterns, got %d", len(defaultPatterns)+1, len(m.patterns))
		}
	})

	t.Run("classifies path vs basename patterns", func(t *testing.T) {
		t.Parallel()
		m := New([]string{"*.jpg", "drafts/*"})
		n := len(defaultPatterns)
		if m.patterns[n].matchPath {
			t.Error("*.jpg should not be a path pattern")
		}
		if !m.patterns[n+1].matchPath {
			t.Error("drafts/* should be a path pattern")
		}
	})
}

func TestMatcher_Match(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		key      string
		want     bool
	}{
		{"appledouble excluded by default", nil, "2024/._IMG_0001.jpg", true},
		{"regular photo kept", nil, "2024/IMG_0001.jpg", false},
		{"basename glob in subdirectory", []string{"*-edit.jpg"}, "2024/a-edit.jpg", true},
		{"basename glob different name", []string{"*-edit.jpg"}, "2024/a.jpg", false},
		{"path glob", []string{"drafts/*"}, "drafts/a.jpg", true},
		{"path glob does not cross directories", []string{"drafts/*"}, "drafts/sub/a.jpg", false},
		{"path glob anchored at root", []string{"drafts/*"}, "2024/drafts/a.jpg", false},
		{"leading slash on pattern", []string{"/drafts/*"}, "drafts/a.jpg", true},
		{"leading slash on key", []string{"drafts/*"}, "/drafts/a.jpg", true},
		{"bad pattern ignored", []string{"[", "*.tmp"}, "x.tmp", true},
		{"double star spans directories", []string{"drafts/**"}, "drafts/sub/a.jpg", true},
		{"double star in the middle", []string{"**/raw/*"}, "2024/trip/raw/a.jpg", true},
		{"double star in the middle no match", []string{"**/raw/*"}, "2024/trip/a.jpg", false},
		{"brace alternatives", []string{"*.{tmp,part}"}, "2024/a.part", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.patterns).Match(tt.key); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestMatcher_Nil(t *testing.T) {
	var m *Matcher
	if m.Match("._a.jpg") {
		t.Error("nil matcher should not exclude anything")
	}
}

func TestParse(t *testing.T) {
	got, err := Parse(strings.NewReader("*.tmp\n# note\ndrafts/*\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(got) != 3 || got[0] != "*.tmp" || got[2] != "drafts/*" {
		t.Errorf("Parse() = %q", got)
	}
}
