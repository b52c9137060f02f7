package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ErrInvalidTimeString возвращается, когда строка не соответствует формату HH:MM
var ErrInvalidTimeString = errors.New("invalid time string format")

var timeStringPattern = regexp.MustCompile(`^\d{2}:\d{2}$`)

// TimeString время суток в формате "HH:MM" (24ч, с ведущими нулями)
type TimeString string

// NewTimeString возвращает время суток из time.Time (в его локации)
func NewTimeString(t time.Time) TimeString {
	return TimeString(t.Format("15:04"))
}

// NewTimeStringFromString парсит и валидирует строку "HH:MM"
func NewTimeStringFromString(s string) (TimeString, error) {
	ts := TimeString(s)
	if err := ts.Validate(); err != nil {
		return "", err
	}
	return ts, nil
}

// NewTimeStringFromMinutes собирает время из количества минут от начала суток
func NewTimeStringFromMinutes(minutes int) (TimeString, error) {
	if minutes < 0 || minutes >= 24*60 {
		return "", fmt.Errorf("%w: minutes out of range: %d", ErrInvalidTimeString, minutes)
	}
	return TimeString(fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)), nil
}

// Validate проверяет строгий формат HH:MM и диапазон часов/минут
func (t TimeString) Validate() error {
	if !timeStringPattern.MatchString(string(t)) {
		return fmt.Errorf("%w: %q", ErrInvalidTimeString, string(t))
	}
	h, _ := strconv.Atoi(string(t[:2]))
	m, _ := strconv.Atoi(string(t[3:]))
	if h > 23 || m > 59 {
		return fmt.Errorf("%w: %q", ErrInvalidTimeString, string(t))
	}
	return nil
}

// Minutes возвращает количество минут от начала суток, -1 для невалидного значения
func (t TimeString) Minutes() int {
	if t.Validate() != nil {
		return -1
	}
	h, _ := strconv.Atoi(string(t[:2]))
	m, _ := strconv.Atoi(string(t[3:]))
	return h*60 + m
}

// AddMinutes сдвигает время на указанное количество минут в пределах суток
func (t TimeString) AddMinutes(minutes int) (TimeString, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	return NewTimeStringFromMinutes(t.Minutes() + minutes)
}

func (t TimeString) IsBefore(other TimeString) bool {
	return t.Minutes() < other.Minutes()
}

func (t TimeString) IsAfter(other TimeString) bool {
	return t.Minutes() > other.Minutes()
}

func (t TimeString) IsZero() bool {
	return t == ""
}

func (t TimeString) String() string {
	return string(t)
}

// On возвращает момент времени для даты day (берутся год/месяц/день в loc) и этого времени суток
func (t TimeString) On(day time.Time, loc *time.Location) time.Time {
	y, mo, d := day.In(loc).Date()
	mins := t.Minutes()
	return time.Date(y, mo, d, mins/60, mins%60, 0, 0, loc)
}

// Scan реализует sql.Scanner
func (t *TimeString) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = ""
		return nil
	case string:
		*t = TimeString(v)
		return nil
	case []byte:
		*t = TimeString(string(v))
		return nil
	case time.Time:
		*t = NewTimeString(v)
		return nil
	default:
		return fmt.Errorf("types.TimeString: cannot scan %T", src)
	}
}

// Value реализует driver.Valuer
func (t TimeString) Value() (driver.Value, error) {
	return string(t), nil
}
