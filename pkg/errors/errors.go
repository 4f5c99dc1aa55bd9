// Package errors defines the typed error kinds raised across the kraken
// engine. Each kind wraps an optional underlying cause so callers can use
// errors.As/errors.Is against either the concrete kind or the root cause.
package errors

import (
	"fmt"
	"strings"
)

// EmptyError is raised when a Supplier or Property has no value to give.
type EmptyError struct {
	Supplier string
	Message  string
	Err      error
}

// NewEmptyError constructs an EmptyError referencing the supplier/property
// description that failed to produce a value.
func NewEmptyError(supplier, message string, err error) error {
	return &EmptyError{Supplier: supplier, Message: message, Err: err}
}

func (e *EmptyError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Supplier)
	}
	return fmt.Sprintf("empty: %s", e.Supplier)
}

// Unwrap exposes the chained cause, if any.
func (e *EmptyError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// TypeError is raised when Property.Set is given a value that satisfies no
// branch of the property's declared item-type union.
type TypeError struct {
	Property string
	Branches []string
	Value    any
}

// NewTypeError constructs a TypeError listing the union branches that were
// tried and rejected.
func NewTypeError(property string, branches []string, value any) error {
	return &TypeError{Property: property, Branches: append([]string(nil), branches...), Value: value}
}

func (e *TypeError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("property %s rejected value %v (%T): expected one of [%s]",
		e.Property, e.Value, e.Value, strings.Join(e.Branches, ", "))
}

// FinalizedError is raised on any write to a property that has already been
// finalized.
type FinalizedError struct {
	Property string
}

// NewFinalizedError constructs a FinalizedError for the named property.
func NewFinalizedError(property string) error {
	return &FinalizedError{Property: property}
}

func (e *FinalizedError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("property %s is finalized", e.Property)
}

// SelectorError is raised when a task selector fails to resolve and was not
// marked optional.
type SelectorError struct {
	Selector string
	Message  string
}

// NewSelectorError constructs a SelectorError for the given selector string.
func NewSelectorError(selector, message string) error {
	return &SelectorError{Selector: selector, Message: message}
}

func (e *SelectorError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("selector %q: %s", e.Selector, e.Message)
}

// CycleError is raised when TaskGraph construction discovers a cycle among
// strict edges, or when ExecutionOrder cannot sort the graph.
type CycleError struct {
	Path []string
}

// NewCycleError constructs a CycleError carrying the offending cycle path.
func NewCycleError(path []string) error {
	return &CycleError{Path: append([]string(nil), path...)}
}

func (e *CycleError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("cycle detected: %s", strings.Join(e.Path, " -> "))
}

// DuplicateError is raised when a project or task member name collides with
// an existing member.
type DuplicateError struct {
	Owner  string
	Member string
}

// NewDuplicateError constructs a DuplicateError for the colliding member.
func NewDuplicateError(owner, member string) error {
	return &DuplicateError{Owner: owner, Member: member}
}

func (e *DuplicateError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s already has a member named %q", e.Owner, e.Member)
}

// BuildError aggregates the paths of every task that did not finish ok at
// the end of a GraphExecutor.Run invocation.
type BuildError struct {
	FailedPaths []string
}

// NewBuildError constructs a BuildError from the failed task paths.
func NewBuildError(failedPaths []string) error {
	if len(failedPaths) == 0 {
		return nil
	}
	return &BuildError{FailedPaths: append([]string(nil), failedPaths...)}
}

func (e *BuildError) Error() string {
	if e == nil || len(e.FailedPaths) == 0 {
		return "build failed"
	}
	return fmt.Sprintf("build failed: %d task(s) did not succeed: %s",
		len(e.FailedPaths), strings.Join(e.FailedPaths, ", "))
}
