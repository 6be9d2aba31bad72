package id_test

import (
	"strings"
	"testing"

	"sidenotes/internal/id"
)

func TestNew_Format(t *testing.T) {
	got := id.New("notepad")
	parts := strings.Split(got, "_")
	if len(parts) != 3 {
		t.Fatalf("expected 3 parts, got %d in %q", len(parts), got)
	}
	if parts[0] != "notepad" {
		t.Errorf("expected prefix 'notepad', got %q", parts[0])
	}
	if len(parts[2]) != 8 {
		t.Errorf("expected 8 random chars, got %d in %q", len(parts[2]), got)
	}
}

func TestNew_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 5000; i++ {
		v := id.New("note")
		if seen[v] {
			t.Fatalf("duplicate id generated: %q", v)
		}
		seen[v] = true
	}
}
