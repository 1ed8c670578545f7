package service

import (
	"errors"
	"fmt"
)

// 业务错误种类，handler 据此映射 HTTP 状态码
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation error")
	ErrSelfFollow   = errors.New("self follow")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Error 带提示信息的业务错误
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...interface{}) error {
	return newError(ErrNotFound, format, args...)
}

func conflict(format string, args ...interface{}) error {
	return newError(ErrConflict, format, args...)
}

func invalid(format string, args ...interface{}) error {
	return newError(ErrValidation, format, args...)
}
