package analysis_test

import (
	"testing"

	"bank_reviews/internal/analysis"
)

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"", "App Keeps CRASHING", "ももクロ", "MiXeD 123 CaSe!"}
	for _, in := range inputs {
		once := analysis.Normalize(in)
		if twice := analysis.Normalize(once); twice != once {
			t.Fatalf("not idempotent for %q: %q != %q", in, twice, once)
		}
	}
}

func TestNormalize_NonString(t *testing.T) {
	if got := analysis.Normalize(nil); got != "" {
		t.Fatalf("nil: got %q", got)
	}
	if got := analysis.Normalize(42); got != "42" {
		t.Fatalf("int: got %q", got)
	}
	if got := analysis.Normalize(true); got != "true" {
		t.Fatalf("bool: got %q", got)
	}
}
