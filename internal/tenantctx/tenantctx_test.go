package tenantctx

import (
	"context"
	"testing"
)

func TestFromEmptyContext(t *testing.T) {
	if id, ok := From(context.Background()); ok || id != 0 {
		t.Fatalf("expected absent tenant, got %d %v", id, ok)
	}
}

func TestWithAndFrom(t *testing.T) {
	ctx := With(context.Background(), 17)

	id, ok := From(ctx)
	if !ok {
		t.Fatal("expected tenant to round-trip")
	}
	if id != 17 {
		t.Fatalf("expected tenant 17, got %d", id)
	}
}

func TestWithOverridesPreviousTenant(t *testing.T) {
	ctx := With(With(context.Background(), 1), 2)

	if id, _ := From(ctx); id != 2 {
		t.Fatalf("expected innermost tenant 2, got %d", id)
	}
}
