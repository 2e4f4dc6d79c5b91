/*
Package shared holds the building blocks every subdomain uses.

Error handling:
 1. Sentinel errors classify failures for errors.Is().
 2. DomainError captures the call stack when created and formats it only when logged.
 3. Domain errors carry no transport concepts such as HTTP status codes.
*/
package shared

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrConflict covers unique constraints, duplicate lines and in-use references.
	ErrConflict = errors.New("conflict")

	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidAmount is a more specific ErrInvalidInput for quantities.
	ErrInvalidAmount = fmt.Errorf("invalid amount: %w", ErrInvalidInput)

	ErrInsufficientBalance = errors.New("insufficient balance")

	ErrUnauthorized = errors.New("unauthorized")

	ErrInvalidCredentials = fmt.Errorf("invalid phone or password: %w", ErrUnauthorized)

	ErrForbidden = errors.New("forbidden")

	// ErrConcurrentModification is returned when an optimistic lock check fails.
	ErrConcurrentModification = errors.New("modified by another transaction, please retry")

	// ErrTransactionFailed wraps storage failures surfaced after a rollback.
	ErrTransactionFailed = errors.New("transaction failed")
)

// DomainError carries business context and the stack of the place it was created.
type DomainError struct {
	Err     error  // sentinel for errors.Is
	Entity  string // "order", "material", ...
	ID      string
	Field   string // validation errors only
	Message string
	Cause   error

	stack []uintptr
}

func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap exposes both the sentinel and the cause.
func (e *DomainError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// Stack formats the captured frames on demand.
func (e *DomainError) Stack() []string {
	return FormatStack(e.stack)
}

// CaptureStack records the current call stack.
// skip is usually 3: runtime.Callers, CaptureStack and the NewXxxError constructor.
func CaptureStack(skip int) []uintptr {
	var pcs [32]uintptr
	n := runtime.Callers(skip, pcs[:])
	return pcs[:n]
}

// FormatStack renders frames as "file:line function", skipping runtime frames.
func FormatStack(stack []uintptr) []string {
	if len(stack) == 0 {
		return nil
	}

	frames := runtime.CallersFrames(stack)
	var out []string
	for f, more := frames.Next(); ; f, more = frames.Next() {
		if !strings.HasPrefix(f.Function, "runtime.") {
			out = append(out, fmt.Sprintf("%s:%d %s", f.File, f.Line, f.Function))
		}
		if !more || len(out) > 10 {
			return out
		}
	}
}

// build stamps e with the stack of whoever called the exported constructor.
func build(e DomainError) error {
	e.stack = CaptureStack(4)
	return &e
}

// NewEntityError builds a DomainError around a subdomain sentinel.
func NewEntityError(sentinel error, entity, id, message string) error {
	return build(DomainError{Err: sentinel, Entity: entity, ID: id, Message: message})
}

func NewNotFoundError(entity, id string) error {
	return build(DomainError{Err: ErrNotFound, Entity: entity, ID: id, Message: entity + " not found: " + id})
}

func NewConflictError(entity, message string) error {
	return build(DomainError{Err: ErrConflict, Entity: entity, Message: message})
}

func NewValidationError(entity, field, reason string) error {
	return build(DomainError{Err: ErrInvalidInput, Entity: entity, Field: field, Message: field + ": " + reason})
}

// NewInvalidAmountError reports a non-positive quantity for a material.
func NewInvalidAmountError(materialID string, amount int) error {
	return build(DomainError{
		Err:     ErrInvalidAmount,
		Entity:  "material",
		ID:      materialID,
		Field:   "amount",
		Message: fmt.Sprintf("amount must be positive for material %s, got %d", materialID, amount),
	})
}

// NewInvalidCredentialsError does not say which half of the credentials was wrong.
func NewInvalidCredentialsError() error {
	return build(DomainError{Err: ErrInvalidCredentials, Message: "invalid phone or password"})
}

func NewUnauthorizedError(reason string) error {
	return build(DomainError{Err: ErrUnauthorized, Message: reason})
}

func NewConcurrentModificationError(entity, id string) error {
	return build(DomainError{
		Err:     ErrConcurrentModification,
		Entity:  entity,
		ID:      id,
		Message: fmt.Sprintf("%s %s was modified by another transaction, please retry", entity, id),
	})
}

// NewTransactionFailedError wraps a storage failure.
func NewTransactionFailedError(cause error) error {
	return build(DomainError{Err: ErrTransactionFailed, Message: "transaction failed: " + cause.Error(), Cause: cause})
}

// IsDomainError reports whether err already belongs to the domain taxonomy.
// Anything else coming out of a transaction is a storage failure.
func IsDomainError(err error) bool {
	for _, sentinel := range []error{
		ErrNotFound,
		ErrConflict,
		ErrInvalidInput,
		ErrInsufficientBalance,
		ErrUnauthorized,
		ErrForbidden,
		ErrConcurrentModification,
		ErrTransactionFailed,
		context.Canceled,
		context.DeadlineExceeded,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// Stacker is implemented by errors that captured a stack.
type Stacker interface {
	Stack() []string
}
