package core

import (
	"encoding/json"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"33.335", 3334, true},
		{" 2.50 ", 250, true},
		{"1234.56", 123456, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"0.001", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		m    Money
		want string
	}{
		{Money{Cents: 0}, "0.00"},
		{Money{Cents: 5}, "0.05"},
		{Money{Cents: 3333}, "33.33"},
		{Money{Cents: -1250}, "-12.50"},
	}
	for _, tc := range cases {
		if got := tc.m.String(); got != tc.want {
			t.Fatalf("String(%d) = %q, want %q", tc.m.Cents, got, tc.want)
		}
	}
}

func TestMoneyFormatBRL(t *testing.T) {
	cases := []struct {
		m    Money
		want string
	}{
		{Money{Cents: 0}, "R$ 0,00"},
		{Money{Cents: 10000}, "R$ 100,00"},
		{Money{Cents: 123456}, "R$ 1.234,56"},
		{Money{Cents: 123456789}, "R$ 1.234.567,89"},
		{Money{Cents: -99999}, "-R$ 999,99"},
	}
	for _, tc := range cases {
		if got := tc.m.FormatBRL(); got != tc.want {
			t.Fatalf("FormatBRL(%d) = %q, want %q", tc.m.Cents, got, tc.want)
		}
	}
}

func TestMoneyFromFloat(t *testing.T) {
	if got := MoneyFromFloat(0.1 + 0.2); got.Cents != 30 {
		t.Fatalf("expected 30 cents, got %d", got.Cents)
	}
	if got := MoneyFromFloat(19.999); got.Cents != 2000 {
		t.Fatalf("expected 2000 cents, got %d", got.Cents)
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Amount Money `json:"amount"`
	}{Money{Cents: 3334}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"amount":33.34}` {
		t.Fatalf("unexpected json %s", b)
	}

	var in struct {
		Amount Money `json:"amount"`
	}
	for _, body := range []string{`{"amount":12.5}`, `{"amount":"12,50"}`} {
		if err := json.Unmarshal([]byte(body), &in); err != nil {
			t.Fatalf("unmarshal %s: %v", body, err)
		}
		if in.Amount.Cents != 1250 {
			t.Fatalf("%s: expected 1250 cents, got %d", body, in.Amount.Cents)
		}
	}
	if err := json.Unmarshal([]byte(`{"amount":"dez"}`), &in); err == nil {
		t.Fatalf("expected error for non-numeric amount")
	}
}
