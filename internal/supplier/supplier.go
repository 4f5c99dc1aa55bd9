// Package supplier implements lazy values with provenance lineage. A
// Supplier[T] either produces a T or fails with an Empty error; suppliers
// are immutable and record the suppliers they were derived from so that
// callers can walk the dependency lineage of any value.
package supplier

import (
	krakenerrors "github.com/krakenbuild/kraken/pkg/errors"
)

// Any is the type-erased form of a Supplier, used when lineage needs to mix
// suppliers of different element types.
type Any interface {
	// DerivedFrom returns the suppliers this one is directly derived from.
	DerivedFrom() []Any
	// IsVoid reports whether this supplier always fails with Empty.
	IsVoid() bool
	// Describe returns a short human-readable identity used in error messages.
	Describe() string
}

// Supplier is a lazily evaluated value of type T.
type Supplier[T any] interface {
	Any
	// Get returns the value, or fails with an *errors.EmptyError.
	Get() (T, error)
}

// GetOr returns the value of s, or fallback if s is empty.
func GetOr[T any](s Supplier[T], fallback T) T {
	v, err := s.Get()
	if err != nil {
		return fallback
	}
	return v
}

// IsEmpty reports whether s currently fails to produce a value.
func IsEmpty[T any](s Supplier[T]) bool {
	_, err := s.Get()
	return err != nil
}

// Of returns a supplier that always yields value, derived from the given
// upstream suppliers (used to preserve lineage through a constant).
func Of[T any](value T, derivedFrom ...Any) Supplier[T] {
	return &constantSupplier[T]{value: value, derivedFrom: derivedFrom}
}

// OfCallable returns a supplier whose value is computed by calling fn on
// every Get.
func OfCallable[T any](fn func() (T, error), derivedFrom ...Any) Supplier[T] {
	return &callableSupplier[T]{fn: fn, derivedFrom: derivedFrom}
}

// Void returns a supplier that always fails with Empty.
func Void[T any](cause error, derivedFrom ...Any) Supplier[T] {
	return &voidSupplier[T]{cause: cause, derivedFrom: derivedFrom}
}

// Map returns a supplier that applies fn to the value produced by s. If s is
// empty the failure propagates (chained) without calling fn; a failure
// inside fn surfaces as an ordinary (non-Empty) error.
func Map[T, U any](s Supplier[T], fn func(T) (U, error)) Supplier[U] {
	return &mappedSupplier[T, U]{upstream: s, fn: fn}
}

// Once wraps s so that the first resolved value (or the first failure) is
// memoized forever.
func Once[T any](s Supplier[T]) Supplier[T] {
	return &onceSupplier[T]{upstream: s}
}

// Erase adapts a Supplier[T] into a Supplier[any], preserving lineage. Go's
// generics are invariant, so a Supplier[*Task] is not itself a
// Supplier[any]; this wrapper lets a narrowly typed supplier be assigned
// into a Property[any] without losing its provenance edge.
func Erase[T any](s Supplier[T]) Supplier[any] {
	return &erasedSupplier[T]{upstream: s}
}

type erasedSupplier[T any] struct {
	upstream Supplier[T]
}

func (e *erasedSupplier[T]) DerivedFrom() []Any { return []Any{e.upstream} }
func (e *erasedSupplier[T]) IsVoid() bool       { return e.upstream.IsVoid() }
func (e *erasedSupplier[T]) Describe() string   { return e.upstream.Describe() }
func (e *erasedSupplier[T]) Get() (any, error)  { return e.upstream.Get() }

// LineageEntry pairs a supplier with the suppliers it is directly derived
// from, as yielded by Lineage.
type LineageEntry struct {
	Supplier    Any
	DerivedFrom []Any
}

// Lineage performs an iterative breadth-first walk of s's provenance graph.
func Lineage(s Any) []LineageEntry {
	var out []LineageEntry
	queue := []Any{s}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		derived := current.DerivedFrom()
		out = append(out, LineageEntry{Supplier: current, DerivedFrom: derived})
		queue = append(queue, derived...)
	}
	return out
}

type constantSupplier[T any] struct {
	value       T
	derivedFrom []Any
}

func (c *constantSupplier[T]) DerivedFrom() []Any { return c.derivedFrom }
func (c *constantSupplier[T]) IsVoid() bool       { return false }
func (c *constantSupplier[T]) Describe() string   { return "constant" }
func (c *constantSupplier[T]) Get() (T, error)    { return c.value, nil }

type callableSupplier[T any] struct {
	fn          func() (T, error)
	derivedFrom []Any
}

func (c *callableSupplier[T]) DerivedFrom() []Any { return c.derivedFrom }
func (c *callableSupplier[T]) IsVoid() bool       { return false }
func (c *callableSupplier[T]) Describe() string   { return "callable" }
func (c *callableSupplier[T]) Get() (T, error)    { return c.fn() }

type voidSupplier[T any] struct {
	cause       error
	derivedFrom []Any
}

func (v *voidSupplier[T]) DerivedFrom() []Any { return v.derivedFrom }
func (v *voidSupplier[T]) IsVoid() bool       { return true }
func (v *voidSupplier[T]) Describe() string   { return "void" }
func (v *voidSupplier[T]) Get() (T, error) {
	var zero T
	return zero, krakenerrors.NewEmptyError(v.Describe(), "", v.cause)
}

type mappedSupplier[T, U any] struct {
	upstream Supplier[T]
	fn       func(T) (U, error)
}

func (m *mappedSupplier[T, U]) DerivedFrom() []Any { return []Any{m.upstream} }
func (m *mappedSupplier[T, U]) IsVoid() bool       { return false }
func (m *mappedSupplier[T, U]) Describe() string   { return "map" }

func (m *mappedSupplier[T, U]) Get() (U, error) {
	var zero U
	value, err := m.upstream.Get()
	if err != nil {
		return zero, krakenerrors.NewEmptyError(m.Describe(), "", err)
	}
	out, err := m.fn(value)
	if err != nil {
		return zero, err
	}
	return out, nil
}

type onceSupplier[T any] struct {
	upstream Supplier[T]
	resolved bool
	value    T
	failure  error
}

func (o *onceSupplier[T]) DerivedFrom() []Any { return []Any{o.upstream} }
func (o *onceSupplier[T]) IsVoid() bool       { return false }
func (o *onceSupplier[T]) Describe() string   { return "once" }

func (o *onceSupplier[T]) Get() (T, error) {
	if o.resolved {
		return o.value, o.failure
	}
	value, err := o.upstream.Get()
	o.resolved = true
	if err != nil {
		var zero T
		o.value, o.failure = zero, krakenerrors.NewEmptyError(o.Describe(), "", err)
		return o.value, o.failure
	}
	o.value = value
	return o.value, nil
}
