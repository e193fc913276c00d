package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

// DateFormat формат календарной даты
const DateFormat = "2006-01-02"

var (
	// ErrInvalidDateString возвращается при некорректном формате даты
	ErrInvalidDateString = errors.New("invalid date string format")
)

// DateString календарная дата без часового пояса в формате "YYYY-MM-DD"
type DateString string

// NewDateString берёт год, месяц и день из time.Time как есть
func NewDateString(t time.Time) DateString {
	return DateString(t.Format(DateFormat))
}

// NewDateStringFromString парсит и валидирует строку "YYYY-MM-DD"
func NewDateStringFromString(s string) (DateString, error) {
	d := DateString(s)
	if err := d.Validate(); err != nil {
		return "", err
	}
	return d, nil
}

// Validate проверяет формат и существование даты
func (d DateString) Validate() error {
	if len(d) != len(DateFormat) {
		return fmt.Errorf("%w: %q", ErrInvalidDateString, string(d))
	}
	if _, err := time.Parse(DateFormat, string(d)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDateString, string(d))
	}
	return nil
}

func (d DateString) IsZero() bool {
	return d == ""
}

func (d DateString) String() string {
	return string(d)
}

// Time возвращает полночь даты в UTC, используется только для календарной арифметики
func (d DateString) Time() (time.Time, error) {
	t, err := time.Parse(DateFormat, string(d))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateString, string(d))
	}
	return t, nil
}

// Weekday день недели даты (не зависит от часового пояса)
func (d DateString) Weekday() (time.Weekday, error) {
	t, err := d.Time()
	if err != nil {
		return 0, err
	}
	return t.Weekday(), nil
}

func (d DateString) IsBefore(other DateString) bool {
	return d < other
}

func (d DateString) IsAfter(other DateString) bool {
	return d > other
}

// Scan реализует sql.Scanner
// lib/pq отдаёт DATE как time.Time в UTC, берём только календарную часть
func (d *DateString) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = ""
		return nil
	case time.Time:
		*d = NewDateString(v)
		return nil
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidDateString, src)
	}
}

func (d *DateString) scanString(s string) error {
	if len(s) > len(DateFormat) {
		s = s[:len(DateFormat)]
	}
	parsed, err := NewDateStringFromString(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value реализует driver.Valuer
func (d DateString) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return string(d), nil
}
