// Package property implements Property[T], a named supplier owned by a task
// or project with a statically declared item-type, input/output direction,
// finalization, and type-checked assignment.
package property

import (
	"fmt"

	"github.com/krakenbuild/kraken/internal/supplier"
	krakenerrors "github.com/krakenbuild/kraken/pkg/errors"
)

// Property is a named supplier with a declared item-type. It is either an
// input or an output property of its owner, and can be finalized to freeze
// further writes.
type Property[T any] struct {
	name     string
	owner    string
	itemType ItemType
	isOutput bool

	current    supplier.Supplier[T]
	derivedVia supplier.Any // non-nil when current wraps another supplier (lineage edge)
	finalized  bool
	errMessage string
}

// New creates a property named name, owned by a task/project described by
// owner (used for error messages, Describe, and OwnerPath), with the given
// item-type. isOutput marks it as an output property per the task schema.
func New[T any](owner, name string, itemType ItemType, isOutput bool) *Property[T] {
	return &Property[T]{
		name:     name,
		owner:    owner,
		itemType: itemType,
		isOutput: isOutput,
		current:  supplier.Void[T](nil),
	}
}

// Describe returns the owner.name identity used in error messages.
func (p *Property[T]) Describe() string {
	return fmt.Sprintf("%s.%s", p.owner, p.name)
}

// Name returns the property's bare name, without the owner prefix.
func (p *Property[T]) Name() string { return p.name }

// OwnerPath returns the path of the task or project that owns this property,
// used by dependency derivation to detect cross-task lineage edges.
func (p *Property[T]) OwnerPath() string { return p.owner }

// IsOutput reports whether this property was declared as an output.
func (p *Property[T]) IsOutput() bool { return p.isOutput }

// ItemType returns the property's declared item-type union.
func (p *Property[T]) ItemType() ItemType { return p.itemType }

// IsFinalized reports whether the property has been finalized.
func (p *Property[T]) IsFinalized() bool { return p.finalized }

// DerivedFrom implements supplier.Any: a property derived from another
// supplier (via Set with a supplier argument) reports that
// supplier as its single upstream, establishing a lineage edge.
func (p *Property[T]) DerivedFrom() []supplier.Any {
	if p.derivedVia != nil {
		return []supplier.Any{p.derivedVia}
	}
	return nil
}

// IsVoid implements supplier.Any.
func (p *Property[T]) IsVoid() bool { return p.current.IsVoid() }

// Get returns the property's value, failing with an EmptyError (naming this
// property) if no upstream value is set.
func (p *Property[T]) Get() (T, error) {
	v, err := p.current.Get()
	if err != nil {
		var zero T
		return zero, krakenerrors.NewEmptyError(p.Describe(), p.errMessage, err)
	}
	return v, nil
}

// GetOr returns the value, or fallback if the property is empty.
func (p *Property[T]) GetOr(fallback T) T {
	return supplier.GetOr[T](p.current, fallback)
}

// Set assigns a raw value after adapting it through the item-type union; the
// first union branch that accepts the value determines the conversion. If
// value is itself a supplier.Supplier[T], it is adopted directly and a
// lineage edge is recorded instead of going through adaptation.
func (p *Property[T]) Set(value any) error {
	if p.finalized {
		return krakenerrors.NewFinalizedError(p.Describe())
	}

	if s, ok := value.(supplier.Supplier[T]); ok {
		p.current = s
		p.derivedVia = s
		return nil
	}

	converted, _, ok := adapt(p.itemType, value)
	if !ok {
		return krakenerrors.NewTypeError(p.Describe(), p.itemType.Names(), value)
	}
	typed, ok := converted.(T)
	if !ok {
		return krakenerrors.NewTypeError(p.Describe(), p.itemType.Names(), value)
	}

	p.current = supplier.Of(typed)
	p.derivedVia = nil
	return nil
}

// SetMap replaces the current value by applying f to it, failing if the
// property is currently empty.
func (p *Property[T]) SetMap(f func(T) (T, error)) error {
	if p.finalized {
		return krakenerrors.NewFinalizedError(p.Describe())
	}
	current, err := p.Get()
	if err != nil {
		return err
	}
	mapped := supplier.Map[T, T](supplier.Of(current), f)
	value, err := mapped.Get()
	if err != nil {
		return err
	}
	p.current = supplier.Of(value)
	p.derivedVia = nil
	return nil
}

// SetDefault assigns value only if the property is currently void.
func (p *Property[T]) SetDefault(value any) error {
	if !p.current.IsVoid() {
		return nil
	}
	return p.Set(value)
}

// SetFinal assigns value and immediately finalizes the property.
func (p *Property[T]) SetFinal(value any) error {
	if err := p.Set(value); err != nil {
		return err
	}
	p.Finalize()
	return nil
}

// Clear resets the property to void. Fails if the property is finalized.
func (p *Property[T]) Clear() error {
	if p.finalized {
		return krakenerrors.NewFinalizedError(p.Describe())
	}
	p.current = supplier.Void[T](nil)
	p.derivedVia = nil
	return nil
}

// SetError attaches a human-readable message surfaced when Get fails.
func (p *Property[T]) SetError(message string) {
	p.errMessage = message
}

// Finalize prevents further Set/SetMap/Clear calls. Reads still work.
func (p *Property[T]) Finalize() {
	p.finalized = true
}

// Provides reports whether this property's item-type can deliver a value (or
// sequence/set element) of the requested kind.
func (p *Property[T]) Provides(kind Kind) bool {
	return Provides(p.itemType, kind)
}

// GetOfType returns the resolved value if the declared item-type provides a
// value of the requested kind — used by consumers that only care about one branch
// of a union (e.g. "does this property provide a Path?").
func (p *Property[T]) GetOfType(kind Kind) (any, bool) {
	if !p.Provides(kind) {
		return nil, false
	}
	v, err := p.Get()
	if err != nil {
		return nil, false
	}
	return v, true
}
