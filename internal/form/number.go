package form

import (
	"strconv"
	"strings"
	"unicode"
)

// Int хранит результат доверительного разбора числа. Нераспознанное значение
// остаётся невалидным и сериализуется в JSON как null: сервер сам решает,
// отклонять ли его.
type Int struct {
	Value int64
	Valid bool
}

// NewInt возвращает валидное число.
func NewInt(v int64) Int {
	return Int{Value: v, Valid: true}
}

// ParseInt берёт самый длинный десятичный префикс после пробелов и знака:
// "12abc" даёт 12, "abc" и "" дают невалидное значение.
func ParseInt(raw string) Int {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return Int{}
	}
	v, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return Int{}
	}
	return NewInt(v)
}

// MarshalJSON кодирует невалидное значение как null.
func (i Int) MarshalJSON() ([]byte, error) {
	if !i.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, i.Value, 10), nil
}

// UnmarshalJSON принимает число или null.
func (i *Int) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*i = Int{}
		return nil
	}
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return err
	}
	*i = NewInt(v)
	return nil
}

func (i Int) String() string {
	if !i.Valid {
		return "NaN"
	}
	return strconv.FormatInt(i.Value, 10)
}
