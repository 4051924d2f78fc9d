package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestKindOfRecognisesOwnedEntities(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  EntityKind
	}{
		{"workshop pointer", &Workshop{}, KindWorkshop},
		{"customer value", Customer{}, KindCustomer},
		{"work order", &WorkOrder{}, KindWorkOrder},
		{"vehicle", &Vehicle{}, KindVehicle},
		{"part", &Part{}, KindPart},
		{"part type", &PartType{}, KindPartType},
		{"user", &User{}, KindUser},
		{"unrelated", "not an entity", KindUnknown},
		{"nil", nil, KindUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.value); got != tc.want {
				t.Fatalf("expected kind %q, got %q", tc.want, got)
			}
		})
	}
}

func TestResolveTenantDirectOwnership(t *testing.T) {
	workshop := &Workshop{ID: 42}

	customer := &Customer{ID: uuid.New(), Workshop: workshop}
	tenantID, ok := ResolveTenant(customer)
	if !ok {
		t.Fatal("expected resolution for customer with workshop")
	}
	if tenantID != 42 {
		t.Fatalf("expected tenant 42, got %d", tenantID)
	}

	if tenantID, ok := ResolveTenant(workshop); !ok || tenantID != 42 {
		t.Fatalf("expected workshop to resolve to itself, got %d %v", tenantID, ok)
	}
}

func TestResolveTenantWalksOwnershipChain(t *testing.T) {
	workshop := &Workshop{ID: 7}
	order := &WorkOrder{ID: uuid.New(), Workshop: workshop}
	vehicle := &Vehicle{ID: uuid.New(), Order: order}
	part := &Part{ID: uuid.New(), Vehicle: vehicle}

	tenantID, ok := ResolveTenant(part)
	if !ok {
		t.Fatal("expected three-hop chain to resolve")
	}
	if tenantID != 7 {
		t.Fatalf("expected tenant 7, got %d", tenantID)
	}
}

func TestResolveTenantBrokenChainIsAbsent(t *testing.T) {
	cases := []struct {
		name  string
		value any
	}{
		{"customer without workshop", &Customer{ID: uuid.New()}},
		{"vehicle without order", &Vehicle{ID: uuid.New()}},
		{"part with vehicle missing order", &Part{Vehicle: &Vehicle{ID: uuid.New()}}},
		{"order with zero workshop id", &WorkOrder{Workshop: &Workshop{}}},
		{"nil entity", (*Customer)(nil)},
		{"unknown type", struct{ Name string }{Name: "x"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tenantID, ok := ResolveTenant(tc.value); ok {
				t.Fatalf("expected absent resolution, got tenant %d", tenantID)
			}
		})
	}
}

func TestResolveTenantBatchUsesFirstElement(t *testing.T) {
	first := &Customer{ID: uuid.New(), Workshop: &Workshop{ID: 11}}
	second := &Customer{ID: uuid.New(), Workshop: &Workshop{ID: 99}}

	tenantID, ok := ResolveTenant([]*Customer{first, second})
	if !ok {
		t.Fatal("expected batch to resolve through first element")
	}
	if tenantID != 11 {
		t.Fatalf("expected tenant 11 from first element, got %d", tenantID)
	}
}

func TestResolveTenantEmptyBatchIsAbsent(t *testing.T) {
	if _, ok := ResolveTenant([]*Customer{}); ok {
		t.Fatal("expected empty batch to resolve as absent")
	}
	if _, ok := ResolveTenant([]*Customer{nil}); ok {
		t.Fatal("expected batch with nil head to resolve as absent")
	}
}
