// Package apperror defines the error taxonomy shared by all services and the
// canonical JSON envelope returned to clients. Every failure crossing a
// service boundary is an *apperror.Error carrying a Kind (maps to HTTP
// status), a stable machine-readable Code and, when applicable, the offending
// field. Internal details (stack traces, DB errors) never reach clients.
package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an error for propagation and HTTP mapping.
type Kind int

const (
	// KindInternal is an unexpected failure; details are logged, never exposed.
	KindInternal Kind = iota
	// KindValidation is malformed or out-of-range input. Recoverable by the
	// caller, never retried automatically.
	KindValidation
	// KindConflict is a state-machine violation (session already open/closed,
	// sale posted after close). Surfaced to the caller, never silently resolved.
	KindConflict
	// KindNotFound signals a missing entity (no open session, unknown method).
	KindNotFound
	// KindArithmetic is an invalid fee configuration detected at quote time.
	// Fatal for that quote, not retried.
	KindArithmetic
)

// Stable error codes referenced by clients and tests.
const (
	CodeSessionAlreadyOpen      = "SESSION_ALREADY_OPEN"
	CodeSessionClosed           = "SESSION_CLOSED"
	CodeAlreadyClosed           = "ALREADY_CLOSED"
	CodeMissingJustification    = "MISSING_JUSTIFICATION"
	CodeInvalidAmount           = "INVALID_AMOUNT"
	CodeInvalidInstallmentCount = "INVALID_INSTALLMENT_COUNT"
	CodeInstallmentsNotAllowed  = "INSTALLMENTS_NOT_ALLOWED"
	CodeInstallmentsExceedMax   = "INSTALLMENTS_EXCEED_MAX"
	CodeInvalidFeeConfig        = "INVALID_FEE_CONFIG"
	CodeNoOpenSession           = "NO_OPEN_SESSION"
	CodeMethodNotFound          = "METHOD_NOT_FOUND"
	CodeSaleNotFound            = "SALE_NOT_FOUND"
	CodeSaleAlreadyVoided       = "SALE_ALREADY_VOIDED"
	CodeReceivableNotPending    = "RECEIVABLE_NOT_PENDING"
	CodeReceivableNotFound      = "RECEIVABLE_NOT_FOUND"
	CodeSessionNotFound         = "SESSION_NOT_FOUND"
	CodeProductNotFound         = "PRODUCT_NOT_FOUND"
)

// Error is the canonical application error.
type Error struct {
	Kind    Kind   `json:"-"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"detail"`
}

func (e *Error) Error() string { return e.Message }

func Validation(code, field, msg string) *Error {
	return &Error{Kind: KindValidation, Code: code, Field: field, Message: msg}
}

func Conflict(code, msg string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: msg}
}

func NotFound(code, msg string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: msg}
}

func Arithmetic(code, field, msg string) *Error {
	return &Error{Kind: KindArithmetic, Code: code, Field: field, Message: msg}
}

func Internal(msg string) *Error {
	return &Error{Kind: KindInternal, Message: msg}
}

// As extracts an *Error from an error chain, or nil.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr := As(err)
	return appErr != nil && appErr.Kind == kind
}

// IsCode reports whether err is an *Error carrying the given code.
func IsCode(err error, code string) bool {
	appErr := As(err)
	return appErr != nil && appErr.Code == code
}

// HTTPStatus maps an error to the status the handler should answer with.
func HTTPStatus(err error) int {
	appErr := As(err)
	if appErr == nil {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindArithmetic:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Envelope is the JSON error body for failures that are not *Error
// (bind errors, panics). Same shape clients already parse.
type Envelope struct {
	Detail string `json:"detail"`
}

func New(msg string) *Envelope { return &Envelope{Detail: msg} }

// ValidationFields wraps per-field binding errors.
type ValidationFields struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidationFields(fields map[string]string) *ValidationFields {
	return &ValidationFields{Detail: "Erro de validação", Fields: fields}
}
