package database

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// DateLayout is the wire format of DATE parameters for both drivers
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// Date is a calendar day at UTC midnight. lib/pq returns DATE columns as
// time.Time while SQLite may hand back text, so Date scans both.
type Date struct {
	time.Time
}

// NewDate keeps the calendar day of t (in its own location) at UTC midnight
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t}, nil
}

// String formats the date as YYYY-MM-DD
func (d Date) String() string {
	return d.Format(DateLayout)
}

// Value implements driver.Valuer
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan implements sql.Scanner
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewDate(v)
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	case nil:
		return fmt.Errorf("scan date: null value")
	default:
		return fmt.Errorf("scan date: unsupported type %T", src)
	}
}

func (d *Date) parse(s string) error {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*d = NewDate(t)
			return nil
		}
	}
	return fmt.Errorf("scan date: unrecognised format %q", s)
}
