package domain

import "reflect"

// EntityKind tags the closed set of syncable entity kinds. Tenant
// attribution is a data lookup over this set rather than an open-ended
// conditional chain; adding a kind means adding a chain entry.
type EntityKind string

const (
	KindUnknown   EntityKind = ""
	KindWorkshop  EntityKind = "workshop"
	KindCustomer  EntityKind = "customer"
	KindWorkOrder EntityKind = "work_order"
	KindVehicle   EntityKind = "vehicle"
	KindPart      EntityKind = "part"
	KindPartType  EntityKind = "part_type"
	KindUser      EntityKind = "user"
)

// ownershipStep advances one parent reference toward the tenant root.
// A nil result means the link is absent and resolution must stop.
type ownershipStep func(value any) any

// ownershipChains maps each entity kind to the ordered parent steps
// reaching its *Workshop. The workshop itself has an empty chain.
var ownershipChains = map[EntityKind][]ownershipStep{
	KindWorkshop: {},
	KindCustomer: {
		func(v any) any { return nilable(v.(*Customer).Workshop) },
	},
	KindWorkOrder: {
		func(v any) any { return nilable(v.(*WorkOrder).Workshop) },
	},
	KindPartType: {
		func(v any) any { return nilable(v.(*PartType).Workshop) },
	},
	KindUser: {
		func(v any) any { return nilable(v.(*User).Workshop) },
	},
	KindVehicle: {
		func(v any) any { return nilable(v.(*Vehicle).Order) },
		func(v any) any { return nilable(v.(*WorkOrder).Workshop) },
	},
	KindPart: {
		func(v any) any { return nilable(v.(*Part).Vehicle) },
		func(v any) any { return nilable(v.(*Vehicle).Order) },
		func(v any) any { return nilable(v.(*WorkOrder).Workshop) },
	},
}

// KindOf classifies a mutated value. Values outside the closed set,
// including nil, report KindUnknown.
func KindOf(value any) EntityKind {
	switch value.(type) {
	case *Workshop, Workshop:
		return KindWorkshop
	case *Customer, Customer:
		return KindCustomer
	case *WorkOrder, WorkOrder:
		return KindWorkOrder
	case *Vehicle, Vehicle:
		return KindVehicle
	case *Part, Part:
		return KindPart
	case *PartType, PartType:
		return KindPartType
	case *User, User:
		return KindUser
	default:
		return KindUnknown
	}
}

// ResolveTenant determines the owning tenant of a mutated value by
// walking its ownership chain. A missing link anywhere in the chain
// yields absent; the resolver never guesses.
//
// Collections resolve through their first element only: batch writes
// are assumed single-tenant, so one attribution covers the whole
// batch. A batch spanning tenants would mis-attribute every element
// past the first; callers must not batch across tenants.
func ResolveTenant(value any) (TenantID, bool) {
	value, ok := unwrap(value)
	if !ok {
		return 0, false
	}

	kind := KindOf(value)
	chain, known := ownershipChains[kind]
	if !known {
		return 0, false
	}

	for _, step := range chain {
		value = step(value)
		if value == nil {
			return 0, false
		}
	}

	ws, ok := value.(*Workshop)
	if !ok || ws == nil || ws.ID <= 0 {
		return 0, false
	}
	return ws.ID, true
}

// unwrap normalizes the incoming value: nil and empty collections are
// absent, collections reduce to their first element, and plain entity
// values are rewritten to the pointer form the chain tables expect.
func unwrap(value any) (any, bool) {
	if value == nil {
		return nil, false
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return nil, false
		}
		return unwrap(rv.Index(0).Interface())
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, false
		}
		return value, true
	case reflect.Struct:
		ptr := reflect.New(rv.Type())
		ptr.Elem().Set(rv)
		return ptr.Interface(), true
	default:
		return value, true
	}
}

func nilable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return p
}
