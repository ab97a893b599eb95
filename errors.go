package modelkit

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by errors.Is against the typed errors below.
var (
	// ErrNotFound is matched by every NotFoundError.
	ErrNotFound = errors.New("modelkit: row not found")

	// ErrNotSingular is matched by every NotSingularError.
	ErrNotSingular = errors.New("modelkit: row not singular")

	// ErrUnknownField is wrapped by ValidationError when a mutation or a
	// row accessor names a field the schema does not declare.
	ErrUnknownField = errors.New("modelkit: unknown field")
)

// as reports whether err, or an error it wraps, has type T.
func as[T error](err error) bool {
	var target T
	return err != nil && errors.As(err, &target)
}

// NotFoundError is returned when a lookup by id, or a query expecting a
// row, finds nothing.
type NotFoundError struct {
	label string
	id    any
}

// NewNotFoundError returns a NotFoundError for the schema type label.
func NewNotFoundError(label string) *NotFoundError {
	return &NotFoundError{label: label}
}

// NewNotFoundErrorWithID returns a NotFoundError for the row with the given id.
func NewNotFoundErrorWithID(label string, id any) *NotFoundError {
	return &NotFoundError{label: label, id: id}
}

func (e *NotFoundError) Error() string {
	if e.id == nil {
		return fmt.Sprintf("modelkit: %s not found", e.label)
	}
	return fmt.Sprintf("modelkit: %s not found (id=%v)", e.label, e.id)
}

// Is makes errors.Is(err, ErrNotFound) hold.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Label returns the schema type name.
func (e *NotFoundError) Label() string { return e.label }

// ID returns the id that was looked up, or nil.
func (e *NotFoundError) ID() any { return e.id }

// IsNotFound reports whether err is, or wraps, a NotFoundError or ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// NotSingularError is returned by queries expecting exactly one row that
// matched several.
type NotSingularError struct {
	label string
	count int // -1 when unknown.
}

// NewNotSingularError returns a NotSingularError with an unknown row count.
func NewNotSingularError(label string) *NotSingularError {
	return &NotSingularError{label: label, count: -1}
}

// NewNotSingularErrorWithCount returns a NotSingularError reporting how
// many rows matched.
func NewNotSingularErrorWithCount(label string, count int) *NotSingularError {
	return &NotSingularError{label: label, count: count}
}

func (e *NotSingularError) Error() string {
	if e.count < 0 {
		return fmt.Sprintf("modelkit: %s not singular", e.label)
	}
	return fmt.Sprintf("modelkit: %s not singular (got %d results, expected 1)", e.label, e.count)
}

// Is makes errors.Is(err, ErrNotSingular) hold.
func (e *NotSingularError) Is(target error) bool { return target == ErrNotSingular }

// Count returns the number of matched rows, or -1.
func (e *NotSingularError) Count() int { return e.count }

// IsNotSingular reports whether err is, or wraps, a NotSingularError or
// ErrNotSingular.
func IsNotSingular(err error) bool {
	return errors.Is(err, ErrNotSingular)
}

// NotLoadedError is returned when reading an edge the query did not load.
type NotLoadedError struct {
	edge string
}

// NewNotLoadedError returns a NotLoadedError for the named edge.
func NewNotLoadedError(edge string) *NotLoadedError {
	return &NotLoadedError{edge: edge}
}

func (e *NotLoadedError) Error() string {
	return fmt.Sprintf("modelkit: edge %q was not loaded", e.edge)
}

// IsNotLoaded reports whether err is, or wraps, a NotLoadedError.
func IsNotLoaded(err error) bool { return as[*NotLoadedError](err) }

// ConstraintError is returned when the database rejects a statement for
// violating a unique, not-null, foreign key or check constraint.
type ConstraintError struct {
	msg  string
	wrap error
}

// NewConstraintError returns a ConstraintError wrapping the driver error.
func NewConstraintError(msg string, wrap error) error {
	return ConstraintError{msg: msg, wrap: wrap}
}

func (e ConstraintError) Error() string { return "modelkit: constraint failed: " + e.msg }

// Unwrap returns the driver error.
func (e ConstraintError) Unwrap() error { return e.wrap }

// IsConstraintError reports whether err is, or wraps, a ConstraintError.
func IsConstraintError(err error) bool { return as[ConstraintError](err) }

// ValidationError is returned when a mutation sets a value the field
// rejects, or names a field the schema does not declare.
type ValidationError struct {
	Name string // field name.
	Err  error
}

// NewValidationError returns a ValidationError for the named field.
func NewValidationError(name string, err error) *ValidationError {
	return &ValidationError{Name: name, Err: err}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("modelkit: validator failed for field %q: %s", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidationError reports whether err is, or wraps, a ValidationError.
func IsValidationError(err error) bool { return as[*ValidationError](err) }

// QueryError wraps a failed query with the schema type and the kind of
// query, such as "select", "count" or "edge".
type QueryError struct {
	Entity string
	Op     string
	Err    error
}

// NewQueryError returns a QueryError.
func NewQueryError(entity, op string, err error) *QueryError {
	return &QueryError{Entity: entity, Op: op, Err: err}
}

func (e *QueryError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("modelkit: querying %s: %v", e.Entity, e.Err)
	}
	return fmt.Sprintf("modelkit: querying %s (%s): %v", e.Entity, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error { return e.Err }

// IsQueryError reports whether err is, or wraps, a QueryError.
func IsQueryError(err error) bool { return as[*QueryError](err) }

// MutationError wraps a failed mutation statement with the schema type
// and the operation, such as "create", "update" or "delete".
type MutationError struct {
	Entity string
	Op     string
	Err    error
}

// NewMutationError returns a MutationError.
func NewMutationError(entity, op string, err error) *MutationError {
	return &MutationError{Entity: entity, Op: op, Err: err}
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("modelkit: %s %s: %v", e.Op, e.Entity, e.Err)
}

// Unwrap returns the underlying error.
func (e *MutationError) Unwrap() error { return e.Err }

// IsMutationError reports whether err is, or wraps, a MutationError.
func IsMutationError(err error) bool { return as[*MutationError](err) }
