package id

import (
	"testing"

	"github.com/google/uuid"
)

func TestTimeOrderedGenerator(t *testing.T) {
	gen := NewTimeOrderedGenerator()
	first, err := gen.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	second, err := gen.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}

	parsed, err := uuid.Parse(first)
	if err != nil {
		t.Fatalf("parse id: %v", err)
	}
	if parsed.Version() != 7 {
		t.Fatalf("expected uuid v7, got v%d", parsed.Version())
	}
	if first == second {
		t.Fatalf("expected distinct ids")
	}
}
