package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

type (
	// Date is a calendar day at UTC midnight.
	Date struct {
		time.Time
	}

	// Month is a calendar month, the granularity of the selected period.
	Month struct {
		Year  int
		Month time.Month
	}
)

var ErrZeroDate = &ValidationError{Field: "date", Message: "date cannot be zero"}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, &ValidationError{Field: "date", Message: fmt.Sprintf("invalid date %q", s)}
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrZeroDate
	}
	return nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// AddMonths shifts the date by n months with calendar rollover
// (January 31 plus one month is March 2 or 3).
func (d Date) AddMonths(n int) Date {
	return Date{Time: d.AddDate(0, n, 0)}
}

// MonthOf returns the month the date falls in.
func (d Date) MonthOf() Month {
	return Month{Year: d.Year(), Month: d.Time.Month()}
}

// DaysUntil returns the whole-day difference from d to other.
func (d Date) DaysUntil(other Date) int {
	return int(other.Sub(d.Time).Hours() / 24)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON overrides the promoted time.Time encoding with "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return &ValidationError{Field: "date", Message: "date must be a YYYY-MM-DD string"}
	}
	return d.UnmarshalText([]byte(s))
}

// NewMonth builds a Month, rejecting out-of-range months.
func NewMonth(year, month int) (Month, error) {
	if month < 1 || month > 12 {
		return Month{}, ErrInvalidMonth
	}
	return Month{Year: year, Month: time.Month(month)}, nil
}

// ParseMonth parses "YYYY-MM".
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, ErrInvalidMonth
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// Contains reports whether d falls within the month.
func (m Month) Contains(d Date) bool {
	return d.Year() == m.Year && d.Time.Month() == m.Month
}

// FirstDay returns the first calendar day of the month.
func (m Month) FirstDay() Date {
	return NewDate(m.Year, int(m.Month), 1)
}

// LastDay returns the last calendar day of the month.
func (m Month) LastDay() Date {
	return NewDate(m.Year, int(m.Month)+1, 0)
}

// Next returns the following calendar month.
func (m Month) Next() Month {
	return m.FirstDay().AddMonths(1).MonthOf()
}

// Prev returns the preceding calendar month.
func (m Month) Prev() Month {
	return m.FirstDay().AddMonths(-1).MonthOf()
}

func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Month) UnmarshalText(b []byte) error {
	parsed, err := ParseMonth(string(b))
	if err != nil {
		return errors.New("invalid month, expected YYYY-MM")
	}
	*m = parsed
	return nil
}
