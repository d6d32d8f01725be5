// internal/domain/date.go
package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// DateLayout — формат даты в JSON и в БД (без времени суток).
const DateLayout = "2006-01-02"

// Date представляет календарную дату без компонента времени.
// Сериализуется в JSON как строка "2006-01-02" и хранится в колонках типа DATE.
type Date struct {
	time.Time
}

// NewDate создает дату из года, месяца и дня (UTC).
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON сериализует дату как "2006-01-02".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

// UnmarshalJSON принимает только строку вида "2006-01-02".
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// Value реализует driver.Valuer для записи в колонку DATE.
func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}

// Scan реализует sql.Scanner для чтения из колонки DATE.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		d.Time = time.Time{}
		return nil
	case time.Time:
		d.Time = v.UTC()
		return nil
	case []byte:
		return d.parse(string(v))
	case string:
		return d.parse(v)
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

func (d *Date) parse(s string) error {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return fmt.Errorf("cannot scan %q into Date: %w", s, err)
	}
	d.Time = t
	return nil
}
