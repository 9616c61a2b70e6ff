package payment

import (
	"strings"
	"testing"
)

func TestNewReferenceIsUnique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		ref := NewReference()
		if _, ok := seen[ref]; ok {
			t.Fatalf("duplicate reference %q", ref)
		}
		seen[ref] = struct{}{}
	}
}

func TestNewReferenceShape(t *testing.T) {
	ref := NewReference()
	if !strings.HasPrefix(ref, "pf-") {
		t.Fatalf("unexpected reference prefix: %q", ref)
	}
	if strings.ContainsAny(ref[3:], "- ") {
		t.Fatalf("reference body should be opaque hex, got %q", ref)
	}
}
