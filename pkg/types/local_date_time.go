package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidLocalDateTime возвращается при некорректном формате даты-времени
	ErrInvalidLocalDateTime = errors.New("invalid local date-time format")
)

// LocalDateTime "наивные" дата и время, выбранные пользователем.
// Никогда не конвертируется между часовыми поясами.
type LocalDateTime struct {
	Date DateString
	Time TimeString
}

// NewLocalDateTime собирает значение из даты и времени
func NewLocalDateTime(date DateString, t TimeString) LocalDateTime {
	return LocalDateTime{Date: date, Time: t}
}

// ParseLocalDateTime парсит "YYYY-MM-DDTHH:MM"
func ParseLocalDateTime(s string) (LocalDateTime, error) {
	datePart, timePart, ok := strings.Cut(s, "T")
	if !ok {
		return LocalDateTime{}, fmt.Errorf("%w: %q", ErrInvalidLocalDateTime, s)
	}
	date, err := NewDateStringFromString(datePart)
	if err != nil {
		return LocalDateTime{}, fmt.Errorf("%w: %v", ErrInvalidLocalDateTime, err)
	}
	t, err := NewTimeStringFromString(timePart)
	if err != nil {
		return LocalDateTime{}, fmt.Errorf("%w: %v", ErrInvalidLocalDateTime, err)
	}
	return LocalDateTime{Date: date, Time: t}, nil
}

func (dt LocalDateTime) String() string {
	return dt.Date.String() + "T" + dt.Time.String()
}

func (dt LocalDateTime) Equal(other LocalDateTime) bool {
	return dt.Date == other.Date && dt.Time == other.Time
}

func (dt LocalDateTime) IsBefore(other LocalDateTime) bool {
	return dt.String() < other.String()
}

func (dt LocalDateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(dt.String())
}

func (dt *LocalDateTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLocalDateTime, err)
	}
	parsed, err := ParseLocalDateTime(s)
	if err != nil {
		return err
	}
	*dt = parsed
	return nil
}
