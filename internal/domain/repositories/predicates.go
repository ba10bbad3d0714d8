package repositories

import (
	"reflect"

	"github.com/shopspring/decimal"
	shared "github.com/whiteelite/registry/pkg/shared/domain/entities"
)

// FieldEquals matches records whose named field equals value. Records that
// do not have the field never match.
//
//	byStatus := repositories.FieldEquals[entities.Task]("status", entities.StatusNew)
func FieldEquals[T any, P interface {
	*T
	shared.Fielder
}](field string, value any) Predicate[T] {
	return func(record T) bool {
		got, ok := P(&record).Field(field)
		if !ok {
			return false
		}
		return valuesEqual(got, value)
	}
}

// All matches when every predicate matches. No predicates match everything.
func All[T any](preds ...Predicate[T]) Predicate[T] {
	return func(record T) bool {
		for _, p := range preds {
			if !p(record) {
				return false
			}
		}
		return true
	}
}

// Any matches when at least one predicate matches.
func Any[T any](preds ...Predicate[T]) Predicate[T] {
	return func(record T) bool {
		for _, p := range preds {
			if p(record) {
				return true
			}
		}
		return false
	}
}

func Not[T any](p Predicate[T]) Predicate[T] {
	return func(record T) bool { return !p(record) }
}

// valuesEqual compares a field value with a filter value. String-based,
// signed and unsigned integer named types compare by their underlying value
// so a typed field matches an untyped literal.
func valuesEqual(a, b any) bool {
	if da, ok := a.(decimal.Decimal); ok {
		db, ok := b.(decimal.Decimal)
		return ok && da.Equal(db)
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !va.IsValid() || !vb.IsValid() {
		return !va.IsValid() && !vb.IsValid()
	}
	switch {
	case va.Kind() == reflect.String && vb.Kind() == reflect.String:
		return va.String() == vb.String()
	case va.CanInt() && vb.CanInt():
		return va.Int() == vb.Int()
	case va.CanUint() && vb.CanUint():
		return va.Uint() == vb.Uint()
	case va.CanUint() && vb.CanInt():
		return vb.Int() >= 0 && va.Uint() == uint64(vb.Int())
	case va.CanInt() && vb.CanUint():
		return va.Int() >= 0 && uint64(va.Int()) == vb.Uint()
	case va.Comparable() && vb.Comparable():
		return a == b
	}
	return false
}
