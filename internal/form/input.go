// Package form разбирает значения полей формы перед отправкой запроса.
package form

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrMissingField возвращается, если обязательное поле пустое.
var ErrMissingField = errors.New("form: required field is missing")

// ListSeparator разделяет элементы списков вроде "A/B/C".
const ListSeparator = "/"

// MissingFieldError называет первое незаполненное поле.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMissingField, e.Field)
}

func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}

// UserMessage возвращает текст предупреждения для пользователя.
func (e *MissingFieldError) UserMessage() string {
	return "Заполните поле " + e.Field
}

// Input хранит сырые значения полей одной отправки формы.
type Input map[string]string

// Value возвращает значение поля в NFC без пробелов по краям.
func (in Input) Value(field string) string {
	return clean(in[field])
}

// Require проверяет поля в заданном порядке и сообщает о первом пустом.
func (in Input) Require(fields ...string) error {
	for _, field := range fields {
		if in.Value(field) == "" {
			return &MissingFieldError{Field: field}
		}
	}
	return nil
}

// Int разбирает поле как целое число.
func (in Input) Int(field string) Int {
	return ParseInt(in[field])
}

// List делит поле по "/" с сохранением порядка.
func (in Input) List(field string) []string {
	return SplitList(in[field])
}

// IntList делит поле по "/" и разбирает каждый элемент как число.
func (in Input) IntList(field string) []Int {
	parts := SplitList(in[field])
	out := make([]Int, len(parts))
	for i, part := range parts {
		out[i] = ParseInt(part)
	}
	return out
}

// SplitList делит строку по "/"; пустая строка даёт пустой список.
// Элементы не обрезаются и не отбрасываются.
func SplitList(value string) []string {
	value = norm.NFC.String(value)
	if strings.TrimSpace(value) == "" {
		return []string{}
	}
	return strings.Split(strings.TrimSpace(value), ListSeparator)
}

func clean(value string) string {
	return strings.TrimSpace(norm.NFC.String(value))
}
