package apperror

import (
	"errors"
	"fmt"
)

// AppError is a structured error carrying a stable code for callers to branch on.
type AppError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
	Err     error  `json:"-"` // Wrapped internal error (not shown to the user)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Is reports whether err (or anything it wraps) is an AppError with the given code.
func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Error codes.
const (
	CodeInsufficientFunds   = "PAY_001"
	CodeInvalidAmount       = "PAY_002"
	CodeInvalidTransition   = "FLOW_001"
	CodeCancelNotAllowed    = "FLOW_002"
	CodeUnknownProvider     = "FLOW_003"
	CodeSettlementFailed    = "FLOW_004"
	CodeRetryExhausted      = "FLOW_005"
	CodeInvalidRadius       = "GEO_001"
	CodeInvalidCoordinates  = "GEO_002"
	CodeInvalidKind         = "GEO_003"
	CodeEmptyMessage        = "CHAT_001"
	CodeInvalidConversation = "CHAT_002"
	CodeRateLimited         = "CHAT_003"
	CodeNotFound            = "CAT_001"
	CodeInternal            = "SYS_001"
)

// ---- Wallet (PAY) ----

func ErrInsufficientFunds() *AppError {
	return New(CodeInsufficientFunds, "Insufficient balance in wallet")
}

func ErrInvalidAmount() *AppError {
	return New(CodeInvalidAmount, "Invalid amount")
}

// ---- Payment flow (FLOW) ----

func ErrInvalidTransition(op string, stage string) *AppError {
	return New(CodeInvalidTransition, fmt.Sprintf("cannot %s while %s", op, stage))
}

func ErrCancelNotAllowed(stage string) *AppError {
	return New(CodeCancelNotAllowed, fmt.Sprintf("payment cannot be cancelled while %s", stage))
}

func ErrUnknownProvider(name string) *AppError {
	return New(CodeUnknownProvider, fmt.Sprintf("unknown payment provider %q", name))
}

func ErrSettlementFailed(err error) *AppError {
	return Wrap(CodeSettlementFailed, "Settlement failed", err)
}

func ErrRetryExhausted(attempts int) *AppError {
	return New(CodeRetryExhausted, fmt.Sprintf("settlement retries exhausted after %d attempts", attempts))
}

// ---- Search (GEO) ----

func ErrInvalidRadius() *AppError {
	return New(CodeInvalidRadius, "Search radius must be a positive number of miles")
}

func ErrInvalidCoordinates() *AppError {
	return New(CodeInvalidCoordinates, "Coordinates out of range")
}

func ErrInvalidKind(kind string) *AppError {
	return New(CodeInvalidKind, fmt.Sprintf("unknown listing kind %q", kind))
}

// ---- Chat (CHAT) ----

func ErrEmptyMessage() *AppError {
	return New(CodeEmptyMessage, "Message is empty")
}

func ErrInvalidConversation() *AppError {
	return New(CodeInvalidConversation, "Conversation id is required")
}

func ErrRateLimited() *AppError {
	return New(CodeRateLimited, "Sending too fast, slow down")
}

// ---- Catalog (CAT) / System (SYS) ----

func ErrNotFound(entity string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", entity))
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal error", err)
}
