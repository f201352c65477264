package utils

import "testing"

func TestGenerateName(t *testing.T) {
	s := GenerateName(12)
	if len(s) != 12 {
		t.Fatalf("len = %d, want 12", len(s))
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			t.Fatalf("unexpected rune %q in %q", r, s)
		}
	}
}

func TestGetUUID(t *testing.T) {
	// Upload filenames are built from these, so they must be well formed and
	// not repeat.
	a, b := GetUUID(), GetUUID()
	if len(a) != 36 {
		t.Errorf("len = %d, want 36", len(a))
	}
	if a == b {
		t.Error("two ids should not collide")
	}
}
