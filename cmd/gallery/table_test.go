package main

import (
	"strings"
	"testing"
)

func TestRenderTable(t *testing.T) {
	headers := []string{"KEY", "SIZE"}
	rows := [][]string{
		{"2024/a.jpg", "1.2 MB"},
		{"2024/b.heic"},
	}

	t.Run("styled", func(t *testing.T) {
		out := renderTable(headers, rows, []columnAlignment{alignLeft, alignRight}, true)
		if !strings.Contains(out, "╭") {
			t.Errorf("expected rounded border, got:\n%s", out)
		}
		if !strings.Contains(out, "2024/a.jpg") || !strings.Contains(out, "1.2 MB") {
			t.Errorf("missing row data:\n%s", out)
		}
	})

	t.Run("plain", func(t *testing.T) {
		out := renderTable(headers, rows, nil, false)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		if len(lines) != 3 {
			t.Fatalf("got %d lines, want 3:\n%s", len(lines), out)
		}
		if lines[1] != "2024/a.jpg\t1.2 MB" {
			t.Errorf("row = %q", lines[1])
		}
	})

	t.Run("no headers", func(t *testing.T) {
		if out := renderTable(nil, rows, nil, true); out != "" {
			t.Errorf("expected empty output, got %q", out)
		}
	})
}
