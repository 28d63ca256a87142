package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrTenantNotFound = errors.New("tenant not found")
	ErrInvalidToken   = errors.New("invalid or expired token")
)

// ValidationCode identifies which rule rejected a submission.
type ValidationCode string

const (
	CodeMissingFields    ValidationCode = "missing-fields"
	CodeReservedWord     ValidationCode = "reserved-word"
	CodeDomainRequired   ValidationCode = "domain-required"
	CodeTitleRequired    ValidationCode = "title-required"
	CodeEmailMissing     ValidationCode = "email-missing"
	CodeEmailFormat      ValidationCode = "email-format"
	CodeLogPathInvalid   ValidationCode = "log-path-invalid"
	CodeSourceIneligible ValidationCode = "source-ineligible"
)

// ValidationError is the single field error reported for a submission.
type ValidationError struct {
	Code    ValidationCode
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AuthorizationError is returned when the anti-forgery or capability check
// fails. It is reported before any field is inspected.
type AuthorizationError struct {
	Err error
}

func (e *AuthorizationError) Error() string {
	return "you do not have sufficient permissions to duplicate sites"
}

func (e *AuthorizationError) Unwrap() error { return e.Err }

// EngineError wraps a failure reported by the duplication engine. Its
// message is the engine's message, unchanged.
type EngineError struct {
	Err error
}

func (e *EngineError) Error() string { return e.Err.Error() }

func (e *EngineError) Unwrap() error { return e.Err }

// CatalogEmptyError is returned when no tenant may serve as a source.
type CatalogEmptyError struct{}

func (e *CatalogEmptyError) Error() string {
	return "no site is available for duplication"
}

// SiteConflictError is returned when a tenant already owns the target address.
type SiteConflictError struct {
	Domain string
	Path   string
}

func (e *SiteConflictError) Error() string {
	return fmt.Sprintf("site %q is already in use", e.Domain+e.Path)
}

// TransitionError is returned when a state transition is not allowed.
type TransitionError struct {
	Event   Event
	Current Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from state %q", e.Event, e.Current)
}
