package resolution

import "errors"

// Code is a stable machine-readable error code surfaced to callers.
type Code string

const (
	// Caller/validation errors.
	CodeEmptySlot          Code = "EMPTY_SLOT"
	CodeNoTimestamp        Code = "NO_TIMESTAMP"
	CodeNoDuration         Code = "NO_DURATION"
	CodeNotReady           Code = "NOT_READY"
	CodeNoReadyPredictions Code = "NO_READY_PREDICTIONS"
	CodeInvalidAgent       Code = "INVALID_AGENT"
	CodeMissingWallet      Code = "MISSING_WALLET"

	// Transient infrastructure errors; the caller may retry.
	CodeLockHeld         Code = "LOCK_HELD"
	CodePriceFetchFailed Code = "PRICE_FETCH_FAILED"

	// Fatal for this request.
	CodeAccountNotFound   Code = "ACCOUNT_NOT_FOUND"
	CodeTransactionFailed Code = "TRANSACTION_FAILED"
)

type Error struct {
	Code      Code
	Message   string
	Retryable bool
	cause     error
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func newRetryable(code Code, message string) *Error {
	return &Error{Code: code, Message: message, Retryable: true}
}

func wrapError(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// AsError extracts a coded resolution error, if err carries one.
func AsError(err error) (*Error, bool) {
	var coded *Error
	if errors.As(err, &coded) {
		return coded, true
	}
	return nil, false
}
