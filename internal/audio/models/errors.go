package models

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid arguments")
)

// Kind — машинный код ошибки, попадает в поле error_code HTTP-ответа.
type Kind string

const (
	KindNotFound      Kind = "NOT_FOUND"
	KindValidation    Kind = "VALIDATION_ERROR"
	KindUnsafePath    Kind = "UNSAFE_PATH"
	KindFileError     Kind = "FILE_ERROR"
	KindDatabase      Kind = "DATABASE_ERROR"
	KindConfiguration Kind = "CONFIGURATION_ERROR"
	KindInternal      Kind = "INTERNAL_ERROR"
)

// Error — единый тип прикладной ошибки вместо иерархии исключений:
// закрытый набор Kind + сообщение + опциональные метаданные.
type Error struct {
	Kind    Kind
	Message string
	Meta    map[string]any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.cause.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// E constructs an application error of the given kind.
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a cause and returns the same error for chaining.
func (e *Error) Wrap(cause error) *Error {
	e.cause = cause
	return e
}

// WithMeta attaches structured metadata and returns the same error.
func (e *Error) WithMeta(meta map[string]any) *Error {
	e.Meta = meta
	return e
}

// KindOf extracts the application kind from an error chain.
// Plain ErrNotFound maps to KindNotFound, everything unknown to KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	if errors.Is(err, ErrNotFound) {
		return KindNotFound
	}
	if errors.Is(err, ErrInvalidArgument) {
		return KindValidation
	}
	return KindInternal
}
