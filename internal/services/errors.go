package services

import (
	"fmt"
)

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Entity string
	ID     string
	Op     string
	Err    error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s %q not found", e.Op, e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// ConflictError reports a uniqueness violation.
type ConflictError struct {
	Entity string
	ID     string
	Op     string
	Err    error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s %q already exists", e.Op, e.Entity, e.ID)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// InvalidStateError reports an operation not allowed from the entity's current state.
type InvalidStateError struct {
	Entity string
	ID     string
	Op     string
	State  string
	Reason string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: %s %q in state %s: %s", e.Op, e.Entity, e.ID, e.State, e.Reason)
}

// ValidationError reports bad input.
type ValidationError struct {
	Field  string
	Reason string
	Op     string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("%s: invalid %s: %s", e.Op, e.Field, e.Reason)
}

// UpstreamError reports a failure of the store or the chain.
type UpstreamError struct {
	Service string
	Op      string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s failure: %v", e.Op, e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func storeError(op string, err error) error {
	return &UpstreamError{Service: "store", Op: op, Err: err}
}

func chainError(op string, err error) error {
	return &UpstreamError{Service: "chain", Op: op, Err: err}
}
