package errors

import (
	"errors"
	"fmt"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Kind identifies a recoverable economy failure reported back to the caller.
type Kind string

const (
	KindInvalidAmount      Kind = "invalid_amount"
	KindInvalidJob         Kind = "invalid_job"
	KindNoJob              Kind = "no_job"
	KindUnknownItem        Kind = "unknown_item"
	KindItemNotOwned       Kind = "item_not_owned"
	KindInsufficientFunds  Kind = "insufficient_funds"
	KindNothingToSteal     Kind = "nothing_to_steal"
	KindInvalidTicketCount Kind = "invalid_ticket_count"
	KindNoParticipants     Kind = "no_participants"
	KindStorage            Kind = "storage"
)

type AppError struct {
	Kind        Kind
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

// KindOf extracts the failure kind from err, or an empty Kind for unknown errors.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return appErr.Kind
	}

	return ""
}

// IsValidation reports whether err is a precondition failure that left the
// ledger untouched, as opposed to a storage fault.
func IsValidation(err error) bool {
	kind := KindOf(err)
	return kind != "" && kind != KindStorage
}

func newValidationError(kind Kind, msg, userMsg string) *AppError {
	return &AppError{
		Kind:        kind,
		Message:     msg,
		UserMessage: userMsg,
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}

func NewInvalidAmount(amount int64) *AppError {
	return newValidationError(KindInvalidAmount,
		fmt.Sprintf("invalid amount: %d", amount),
		"Invalid amount.")
}

func NewInvalidJob(job string) *AppError {
	return newValidationError(KindInvalidJob,
		fmt.Sprintf("unknown job: %q", job),
		"Invalid job choice.")
}

func NewNoJob() *AppError {
	return newValidationError(KindNoJob,
		"user has no job",
		"You must choose a job first.")
}

func NewUnknownItem(item string) *AppError {
	return newValidationError(KindUnknownItem,
		fmt.Sprintf("unknown shop item: %q", item),
		"Item not found.")
}

func NewItemNotOwned(item string) *AppError {
	return newValidationError(KindItemNotOwned,
		fmt.Sprintf("item not in inventory: %q", item),
		"You don't own this item.")
}

func NewInsufficientFunds(price, wallet int64) *AppError {
	return newValidationError(KindInsufficientFunds,
		fmt.Sprintf("insufficient funds: price %d, wallet %d", price, wallet),
		"Not enough money.")
}

func NewNothingToSteal() *AppError {
	return newValidationError(KindNothingToSteal,
		"target wallet is empty",
		"Target has no money to rob.")
}

func NewInvalidTicketCount(count int) *AppError {
	return newValidationError(KindInvalidTicketCount,
		fmt.Sprintf("invalid ticket count: %d", count),
		"Not enough money or invalid ticket count.")
}

func NewNoParticipants() *AppError {
	return newValidationError(KindNoParticipants,
		"ledger table is empty",
		"No users available.")
}

// NewStorageError wraps a persistence fault. The caller may retry; ledger
// state must be treated as unmodified.
func NewStorageError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Kind:        KindStorage,
		Message:     fmt.Sprintf("storage error: %s", underlyingMsg),
		UserMessage: "Temporary problem, please try again later.",
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}
