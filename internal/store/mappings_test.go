package store_test

import (
	"path/filepath"
	"testing"

	"github.com/batchmates/batchmates/internal/store"
)

func TestLoadInterestMappings(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "mappings.json")
	writeFile(t, path, `{"mapping": {"Rust": "systems", "go": "systems"}}`)

	m, err := store.LoadInterestMappings(path)
	if err != nil {
		t.Fatalf("LoadInterestMappings: %v", err)
	}

	if len(m) != 2 || m["Rust"] != "systems" {
		t.Errorf("mapping = %v", m)
	}

	missing, err := store.LoadInterestMappings(filepath.Join(dir, "nope.json"))
	if err != nil || len(missing) != 0 {
		t.Errorf("missing file: mapping=%v err=%v", missing, err)
	}

	bad := filepath.Join(dir, "bad.json")
	writeFile(t, bad, `{"mapping": [1,2]}`)

	if _, err := store.LoadInterestMappings(bad); err == nil {
		t.Error("expected parse error")
	}
}

func TestNormalizeInterest(t *testing.T) {
	mapping := map[string]string{
		"Rust":   "Systems",
		"golang": "systems",
		"empty":  " ",
	}

	tests := []struct {
		raw  string
		want string
	}{
		{raw: "Rust", want: "systems"},
		{raw: " Golang ", want: "systems"},
		{raw: "knitting", want: "misc"},
		{raw: "empty", want: "misc"},
	}

	for _, tc := range tests {
		if got := store.NormalizeInterest(tc.raw, mapping); got != tc.want {
			t.Errorf("NormalizeInterest(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}
