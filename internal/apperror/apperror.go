package apperror

import (
	"errors"
	"net/http"
)

type Kind string

const (
	AuthenticationMissing Kind = "authentication_missing"
	AuthorizationDenied   Kind = "authorization_denied"
	Persistence           Kind = "persistence"
	Validation            Kind = "validation"
	AlreadyProcessed      Kind = "already_processed"
	NotFound              Kind = "not_found"
)

// Error: ошибка прикладного уровня с классом из таксономии.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap: текст ошибки БД как есть
func Wrap(kind Kind, err error) *Error {
	return &Error{Kind: kind, Message: err.Error(), Err: err}
}

func Unauthenticated() *Error {
	return New(AuthenticationMissing, "not authenticated")
}

func Denied(msg string) *Error {
	if msg == "" {
		msg = "insufficient permissions"
	}
	return New(AuthorizationDenied, msg)
}

func Invalid(msg string) *Error {
	return New(Validation, msg)
}

func Store(err error) *Error {
	return Wrap(Persistence, err)
}

// KindOf: класс ошибки; неизвестные считаем ошибкой хранилища
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Persistence
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case AuthenticationMissing:
		return http.StatusUnauthorized
	case AuthorizationDenied:
		return http.StatusForbidden
	case Validation:
		return http.StatusBadRequest
	case AlreadyProcessed:
		return http.StatusConflict
	case NotFound:
		return http.StatusNotFound
	case "":
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}
