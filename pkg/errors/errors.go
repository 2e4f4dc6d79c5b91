/*
Package errors maps domain failures to application error codes.

The API layer turns codes into HTTP statuses; nothing below it knows about HTTP.
*/
package errors

import (
	"context"
	"errors"
	"fmt"

	"workshop/domain/material"
	"workshop/domain/order"
	"workshop/domain/shared"
)

type ErrorCode string

const (
	CodeInternal        ErrorCode = "INTERNAL_ERROR"
	CodeBadRequest      ErrorCode = "BAD_REQUEST"
	CodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	CodeForbidden       ErrorCode = "FORBIDDEN"
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeConflict        ErrorCode = "CONFLICT"
	CodeTooManyRequests ErrorCode = "TOO_MANY_REQUESTS"
	CodeValidation      ErrorCode = "VALIDATION_ERROR"
	CodeTimeout         ErrorCode = "TIMEOUT"

	CodeOrderNotFound       ErrorCode = "ORDER_NOT_FOUND"
	CodeLineNotFound        ErrorCode = "LINE_NOT_FOUND"
	CodeMaterialNotFound    ErrorCode = "MATERIAL_NOT_FOUND"
	CodeDuplicateLine       ErrorCode = "DUPLICATE_LINE"
	CodeMaterialInUse       ErrorCode = "MATERIAL_IN_USE"
	CodeInvalidAmount       ErrorCode = "INVALID_AMOUNT"
	CodeInsufficientBalance ErrorCode = "INSUFFICIENT_BALANCE"
	CodeConcurrentModify    ErrorCode = "CONCURRENT_MODIFICATION"
	CodeTransactionFailed   ErrorCode = "TRANSACTION_FAILED"
	CodeInvalidCredentials  ErrorCode = "INVALID_CREDENTIALS"
)

// AppError is what controllers render.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Err     error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// InvalidCredentials never says which half of the credentials was wrong.
func InvalidCredentials() *AppError {
	return New(CodeInvalidCredentials, "invalid phone or password")
}

// Is reports whether err is an AppError with the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// rule maps a sentinel to a code. An empty message exposes err.Error().
type rule struct {
	target  error
	code    ErrorCode
	message string
}

// rules are checked in order: specific sentinels come before the generic
// ones they wrap.
var rules = []rule{
	{order.ErrOrderNotFound, CodeOrderNotFound, ""},
	{order.ErrLineNotFound, CodeLineNotFound, ""},
	{material.ErrMaterialNotFound, CodeMaterialNotFound, ""},
	{order.ErrDuplicateLine, CodeDuplicateLine, ""},
	{material.ErrMaterialInUse, CodeMaterialInUse, ""},
	{shared.ErrInvalidAmount, CodeInvalidAmount, ""},
	{shared.ErrInsufficientBalance, CodeInsufficientBalance, ""},
	{shared.ErrConcurrentModification, CodeConcurrentModify, ""},
	{shared.ErrNotFound, CodeNotFound, ""},
	{shared.ErrConflict, CodeConflict, ""},
	{shared.ErrInvalidInput, CodeValidation, ""},
	{shared.ErrInvalidCredentials, CodeInvalidCredentials, "invalid phone or password"},
	{shared.ErrUnauthorized, CodeUnauthorized, ""},
	{shared.ErrForbidden, CodeForbidden, ""},
	{shared.ErrTransactionFailed, CodeTransactionFailed, "transaction failed"},
	{context.DeadlineExceeded, CodeTimeout, "request timed out"},
	{context.Canceled, CodeTimeout, "request timed out"},
}

// FromDomainError classifies err. Unknown errors become CodeInternal with a
// generic message.
func FromDomainError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var shortage *material.InsufficientBalanceError
	if errors.As(err, &shortage) {
		e := Wrap(err, CodeInsufficientBalance, shortage.Error())
		e.Details = map[string]any{
			"material_id": shortage.MaterialID,
			"requested":   shortage.Requested,
			"available":   shortage.Available,
		}
		return e
	}

	for _, r := range rules {
		if !errors.Is(err, r.target) {
			continue
		}
		msg := r.message
		if msg == "" {
			msg = err.Error()
		}
		return Wrap(err, r.code, msg)
	}
	return Wrap(err, CodeInternal, "internal server error")
}
