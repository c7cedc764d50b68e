package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Форматы даты и длительности, принятые у клиентов
const (
	EventTimeLayout = "2006-01-02 15:04:05"
	eventTimeInput  = "2006-1-2 15:04:05"
)

// FlexInt принимает число как в виде JSON-числа, так и в виде строки.
// Разбор откладывается до Int, чтобы ошибка формата стала ошибкой валидации.
type FlexInt struct {
	raw string
	set bool
}

// NewFlexInt создает значение из числа
func NewFlexInt(v int64) FlexInt {
	return FlexInt{raw: strconv.FormatInt(v, 10), set: true}
}

// UnmarshalJSON сохраняет исходное значение без интерпретации
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = FlexInt{}
		return nil
	}
	f.set = true
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f.raw = strings.TrimSpace(s)
		return nil
	}
	f.raw = string(data)
	return nil
}

// MarshalJSON выводит значение как число
func (f FlexInt) MarshalJSON() ([]byte, error) {
	if !f.set {
		return []byte("null"), nil
	}
	v, err := f.Int()
	if err != nil {
		return json.Marshal(f.raw)
	}
	return []byte(strconv.FormatInt(v, 10)), nil
}

// IsSet сообщает, присутствовало ли поле в запросе
func (f FlexInt) IsSet() bool {
	return f.set
}

// Int возвращает целое значение
func (f FlexInt) Int() (int64, error) {
	if !f.set {
		return 0, fmt.Errorf("value is missing")
	}
	v, err := strconv.ParseInt(f.raw, 10, 64)
	if err == nil {
		return v, nil
	}
	// Допускаем "50.0", но не дробные значения
	fv, ferr := strconv.ParseFloat(f.raw, 64)
	if ferr != nil || fv != float64(int64(fv)) {
		return 0, fmt.Errorf("%q is not an integer", f.raw)
	}
	return int64(fv), nil
}

// FlexBool принимает true/false как JSON-логическое значение или строку
type FlexBool struct {
	raw string
	set bool
}

// NewFlexBool создает значение из bool
func NewFlexBool(v bool) FlexBool {
	return FlexBool{raw: strconv.FormatBool(v), set: true}
}

// UnmarshalJSON сохраняет исходное значение без интерпретации
func (f *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = FlexBool{}
		return nil
	}
	f.set = true
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f.raw = strings.TrimSpace(s)
		return nil
	}
	f.raw = string(data)
	return nil
}

// MarshalJSON выводит значение как bool
func (f FlexBool) MarshalJSON() ([]byte, error) {
	if !f.set {
		return []byte("null"), nil
	}
	v, err := f.Bool()
	if err != nil {
		return json.Marshal(f.raw)
	}
	return []byte(strconv.FormatBool(v)), nil
}

// IsSet сообщает, присутствовало ли поле в запросе
func (f FlexBool) IsSet() bool {
	return f.set
}

// Bool возвращает логическое значение; допустимы только "true" и "false"
func (f FlexBool) Bool() (bool, error) {
	switch f.raw {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("%q is not a boolean", f.raw)
}

// ParseEventTime разбирает дату события: "2023-09-21 19:30:00" или RFC3339
func ParseEventTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(eventTimeInput, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t.UTC(), nil
}

// FormatEventTime выводит дату события в формате клиентов
func FormatEventTime(t time.Time) string {
	return t.UTC().Format(EventTimeLayout)
}

// MaxGameDuration наибольшая допустимая длительность события
const MaxGameDuration = 7 * 24 * time.Hour

// ParseGameDuration разбирает длительность "H:MM:SS" или "H:MM" не длиннее MaxGameDuration
func ParseGameDuration(s string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	units := []time.Duration{time.Hour, time.Minute, time.Second}
	var total time.Duration
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		if i > 0 && n >= 60 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		// Проверка до умножения, иначе часы переполняют наносекунды
		if time.Duration(n) > MaxGameDuration/units[i] {
			return 0, fmt.Errorf("duration %q exceeds %s", s, FormatGameDuration(MaxGameDuration))
		}
		total += time.Duration(n) * units[i]
	}
	if total > MaxGameDuration {
		return 0, fmt.Errorf("duration %q exceeds %s", s, FormatGameDuration(MaxGameDuration))
	}
	return total, nil
}

// FormatGameDuration выводит длительность в формате "H:MM:SS"
func FormatGameDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
