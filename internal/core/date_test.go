package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "2024-02-29" {
		t.Fatalf("round trip mismatch: %s", d)
	}
	if _, err := ParseDate("2023-02-29"); err == nil {
		t.Fatalf("expected error for invalid day")
	}
	if _, err := ParseDate("29/02/2024"); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDateAddMonthsRollover(t *testing.T) {
	cases := []struct {
		from Date
		n    int
		want string
	}{
		{NewDate(2024, 1, 15), 1, "2024-02-15"},
		{NewDate(2024, 1, 31), 1, "2024-03-02"}, // leap year
		{NewDate(2023, 1, 31), 1, "2023-03-03"},
		{NewDate(2024, 11, 10), 2, "2025-01-10"},
		{NewDate(2024, 3, 31), -1, "2024-03-02"},
	}
	for _, tc := range cases {
		if got := tc.from.AddMonths(tc.n).String(); got != tc.want {
			t.Fatalf("%s + %d months = %s, want %s", tc.from, tc.n, got, tc.want)
		}
	}
}

func TestDaysUntil(t *testing.T) {
	today := NewDate(2024, 3, 10)
	if got := today.DaysUntil(NewDate(2024, 3, 17)); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
	if got := today.DaysUntil(NewDate(2024, 3, 9)); got != -1 {
		t.Fatalf("expected -1, got %d", got)
	}
	if got := today.DaysUntil(today); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestMonth(t *testing.T) {
	m, err := ParseMonth("2024-12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Next().String() != "2025-01" {
		t.Fatalf("next of december should roll the year, got %s", m.Next())
	}
	if m.Prev().String() != "2024-11" {
		t.Fatalf("unexpected prev %s", m.Prev())
	}
	if m.LastDay().String() != "2024-12-31" {
		t.Fatalf("unexpected last day %s", m.LastDay())
	}
	feb, _ := NewMonth(2024, 2)
	if feb.LastDay().Day() != 29 {
		t.Fatalf("expected leap day, got %s", feb.LastDay())
	}
	if !feb.Contains(NewDate(2024, 2, 1)) || feb.Contains(NewDate(2025, 2, 1)) {
		t.Fatalf("contains must compare year and month")
	}
	if _, err := NewMonth(2024, 13); err == nil {
		t.Fatalf("expected error for month 13")
	}
	if _, err := ParseMonth("2024-00"); err == nil {
		t.Fatalf("expected error for month 0")
	}
}

func TestDateText(t *testing.T) {
	var d Date
	if err := d.UnmarshalText([]byte("2024-05-06")); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	b, _ := d.MarshalText()
	if string(b) != "2024-05-06" {
		t.Fatalf("unexpected text %s", b)
	}
	var m Month
	if err := m.UnmarshalText([]byte("2024-5")); err == nil {
		t.Fatalf("expected error for unpadded month")
	}
}

func TestDateJSON(t *testing.T) {
	type wrapper struct {
		Date Date `json:"date"`
	}

	b, err := json.Marshal(wrapper{Date: NewDate(2024, 5, 10)})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"date":"2024-05-10"}` {
		t.Fatalf("Marshal = %s", b)
	}

	var w wrapper
	if err := json.Unmarshal([]byte(`{"date":"2024-02-29"}`), &w); err != nil {
		t.Fatal(err)
	}
	if !w.Date.Equal(NewDate(2024, 2, 29).Time) {
		t.Fatalf("Unmarshal = %v", w.Date)
	}

	for _, bad := range []string{`{"date":"2024-02-30"}`, `{"date":20240229}`} {
		err := json.Unmarshal([]byte(bad), &w)
		if !IsValidation(err) {
			t.Errorf("Unmarshal(%s) error = %v, want a validation error", bad, err)
		}
	}
}
