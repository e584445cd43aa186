package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Kind classifies a business-rule violation so the HTTP layer can map it
// to a status class without string matching.
type Kind int

const (
	KindUnauthorized Kind = iota
	KindForbidden
	KindNotFound
	KindInvalidArgument
	KindInvalidState
	KindInternal
)

// FieldError is one violated field in an InvalidArgument error.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a classified, client-facing error. InvalidArgument errors carry
// the full list of violated fields, not just the first failure.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	cause   error
}

func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		parts := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
		}
		return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Unauthorized signals a missing or invalid token.
func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// Forbidden signals a role or ownership mismatch.
func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// NotFound signals a missing entity.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// InvalidState signals an operation rejected by a lifecycle guard.
func InvalidState(msg string) *Error {
	return &Error{Kind: KindInvalidState, Message: msg}
}

// InvalidArgument signals schema or field validation failure.
func InvalidArgument(msg string, fields ...FieldError) *Error {
	return &Error{Kind: KindInvalidArgument, Message: msg, Fields: fields}
}

// Internal wraps an unexpected store or infrastructure failure.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", cause: err}
}

// FromBinding converts a gin/validator binding failure into an
// InvalidArgument error listing every violated field.
func FromBinding(err error) *Error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field:   strings.ToLower(fe.Field()),
				Message: bindingMessage(fe),
			})
		}
		return InvalidArgument("validation failed", fields...)
	}
	return InvalidArgument(err.Error())
}

func bindingMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be %s or more", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "len":
		return fmt.Sprintf("must have length %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// HTTPStatus maps an error to its HTTP status class. Unclassified errors
// are treated as internal.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidArgument, KindInvalidState:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// As extracts a classified error, if err carries one.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
