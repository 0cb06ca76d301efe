package ledger

import (
	"strings"
	"testing"
)

func TestNewReference(t *testing.T) {
	ref := NewReference("DEP")
	if !strings.HasPrefix(ref, "DEP") {
		t.Errorf("reference %q missing prefix", ref)
	}
	if len(ref) != 15 {
		t.Errorf("reference %q length = %d, want 15", ref, len(ref))
	}
	if ref != strings.ToUpper(ref) {
		t.Errorf("reference %q is not uppercase", ref)
	}
}

func TestNewReferenceUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		ref := NewReference("TRF")
		if seen[ref] {
			t.Fatalf("duplicate reference %q", ref)
		}
		seen[ref] = true
	}
}
