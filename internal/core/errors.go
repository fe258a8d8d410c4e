package core

import (
	"errors"
	"fmt"
)

// FailureKind classifies a domain failure so callers can branch on it without
// string matching. Validation failures are malformed input; business-rule
// failures are expected outcomes (insufficient stock, unknown item); a
// collaborator failure means the AI agent errored or returned unusable output.
type FailureKind string

const (
	KindValidation   FailureKind = "validation"
	KindBusinessRule FailureKind = "business_rule"
	KindCollaborator FailureKind = "collaborator"
)

// DomainError carries a machine-checkable kind plus a human-readable message.
type DomainError struct {
	Kind    FailureKind
	Message string
}

func (e *DomainError) Error() string { return e.Message }

// Validationf builds a validation-kind DomainError.
func Validationf(format string, args ...any) error {
	return &DomainError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// BusinessRulef builds a business-rule-kind DomainError.
func BusinessRulef(format string, args ...any) error {
	return &DomainError{Kind: KindBusinessRule, Message: fmt.Sprintf(format, args...)}
}

// Collaboratorf builds a collaborator-kind DomainError.
func Collaboratorf(format string, args ...any) error {
	return &DomainError{Kind: KindCollaborator, Message: fmt.Sprintf(format, args...)}
}

// HasKind reports whether err (or anything it wraps) is a DomainError of the
// given kind.
func HasKind(err error, kind FailureKind) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Kind == kind
}
