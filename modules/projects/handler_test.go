package projects

import (
	"regexp"
	"testing"
)

func TestNewProjectID(t *testing.T) {
	pattern := regexp.MustCompile(`^video_\d+_[0-9a-f]{9}$`)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewProjectID()
		if !pattern.MatchString(id) {
			t.Fatalf("unexpected id format: %s", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}
