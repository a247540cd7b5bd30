package api

import (
	"errors"
	"fmt"
)

// ErrorKind классифицирует неудачу запроса.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNetwork    ErrorKind = "network"
	KindParse      ErrorKind = "parse"
	KindServer     ErrorKind = "server"
)

// Error описывает неудачный вызов. Message предназначен для пользователя.
type Error struct {
	Op      string
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "api error"
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s: %v", e.Op, e.Kind, e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf возвращает вид ошибки или пустую строку для посторонних ошибок.
func KindOf(err error) ErrorKind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// UserMessage возвращает текст ошибки, пригодный для показа пользователю.
func UserMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
