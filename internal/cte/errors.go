package cte

import (
	"errors"
	"fmt"
	"strings"
)

// ResolveError is the failure type for all graph operations.
//
// Traversals fail fast: there is no partial result and no recovery
// inside the engine. Callers translate these into user-facing messages;
// the CLI maps Code to its exit-code and error-code scheme.
type ResolveError struct {
	// Code identifies the failure category.
	Code ErrorCode

	// Name is the CTE the failure was detected at: the missing target
	// for NOT_FOUND, the first revisited node for CIRCULAR_DEPENDENCY.
	Name string

	// Path is the dependency chain that closed the cycle, first node
	// repeated at the end. Set for CIRCULAR_DEPENDENCY only.
	Path []string
}

// ErrorCode categorizes resolution failures.
type ErrorCode string

const (
	// ErrCodeNotFound indicates the requested target is not a key of
	// the supplied mapping.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeCircularDependency indicates a traversal revisited a node
	// that is still on the current DFS path.
	ErrCodeCircularDependency ErrorCode = "CIRCULAR_DEPENDENCY"
)

// Error implements the error interface.
func (e *ResolveError) Error() string {
	switch e.Code {
	case ErrCodeCircularDependency:
		if len(e.Path) > 0 {
			return fmt.Sprintf("%s: cycle through %q (%s)", e.Code, e.Name, strings.Join(e.Path, " -> "))
		}
		return fmt.Sprintf("%s: cycle through %q", e.Code, e.Name)
	case ErrCodeNotFound:
		return fmt.Sprintf("%s: cte %q is not in the mapping", e.Code, e.Name)
	}
	return fmt.Sprintf("%s: %q", e.Code, e.Name)
}

// IsNotFound returns true if err is or wraps a NOT_FOUND ResolveError.
func IsNotFound(err error) bool {
	var re *ResolveError
	return errors.As(err, &re) && re.Code == ErrCodeNotFound
}

// IsCircular returns true if err is or wraps a CIRCULAR_DEPENDENCY
// ResolveError.
func IsCircular(err error) bool {
	var re *ResolveError
	return errors.As(err, &re) && re.Code == ErrCodeCircularDependency
}

func newNotFoundError(name string) *ResolveError {
	return &ResolveError{Code: ErrCodeNotFound, Name: name}
}

func newCycleError(name string, path []string) *ResolveError {
	return &ResolveError{Code: ErrCodeCircularDependency, Name: name, Path: path}
}
