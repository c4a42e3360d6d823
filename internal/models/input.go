package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"pm-dashboard/internal/apperror"
)

const DateLayout = "2006-01-02"

// fieldSet собирает карту колонок из формы и первую ошибку валидации.
// Пустые строки оставляются как есть: их обнуляет sanitize.
type fieldSet struct {
	values map[string]any
	err    error
}

func (f *fieldSet) put(key string, v any) {
	if f.values == nil {
		f.values = map[string]any{}
	}
	f.values[key] = v
}

func (f *fieldSet) fail(format string, args ...any) {
	if f.err == nil {
		f.err = apperror.Invalid(fmt.Sprintf(format, args...))
	}
}

func (f *fieldSet) text(key string, v *string) {
	if v != nil {
		f.put(key, *v)
	}
}

func (f *fieldSet) flag(key string, v *bool) {
	if v != nil {
		f.put(key, *v)
	}
}

func (f *fieldSet) date(key string, v *string) {
	if v == nil {
		return
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		f.put(key, *v)
		return
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		f.fail("%s: invalid date %q", key, s)
		return
	}
	f.put(key, t)
}

func (f *fieldSet) integer(key string, v *string) {
	if v == nil {
		return
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		f.put(key, *v)
		return
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		f.fail("%s must be a whole number", key)
		return
	}
	f.put(key, n)
}

func (f *fieldSet) decimal(key string, v *string) {
	if v == nil {
		return
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		f.put(key, *v)
		return
	}
	n, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		f.fail("%s must be a number", key)
		return
	}
	f.put(key, n)
}

func (f *fieldSet) result() (map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.values == nil {
		return map[string]any{}, nil
	}
	return f.values, nil
}

func setEnum[T ~string](f *fieldSet, key string, v *string, allowed []T) {
	if v == nil {
		return
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		f.put(key, *v)
		return
	}
	for _, a := range allowed {
		if string(a) == s {
			f.put(key, s)
			return
		}
	}
	f.fail("%s: unknown value %q", key, s)
}
