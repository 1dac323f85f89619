package datemath

import (
	"encoding/json"
	"testing"
	"time"
)

func TestExpiry(t *testing.T) {
	tests := []struct {
		name     string
		purchase string
		days     int
		want     string
	}{
		{"SameMonth", "2024-03-01", 5, "2024-03-06"},
		{"MonthBoundary", "2024-01-30", 3, "2024-02-02"},
		{"LeapDay", "2024-02-27", 2, "2024-02-29"},
		{"NonLeapYear", "2023-02-27", 2, "2023-03-01"},
		{"YearBoundary", "2024-12-30", 5, "2025-01-04"},
		{"ZeroShelfLife", "2024-06-15", 0, "2024-06-15"},
		{"LongShelfLife", "2025-11-02", 180, "2026-05-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Expiry(MustParseDate(tt.purchase), tt.days)
			if got.String() != tt.want {
				t.Errorf("Expected expiry %s, got %s", tt.want, got)
			}
		})
	}
}

func TestWithinHorizon(t *testing.T) {
	today := MustParseDate("2024-05-10")

	tests := []struct {
		name string
		date string
		days int
		want bool
	}{
		{"Today", "2024-05-10", 0, true},
		{"Tomorrow with zero horizon", "2024-05-11", 0, false},
		{"Yesterday", "2024-05-09", 7, false},
		{"Last day of horizon", "2024-05-17", 7, true},
		{"Past horizon", "2024-05-18", 7, false},
		{"Negative horizon", "2024-05-10", -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithinHorizon(MustParseDate(tt.date), today, tt.days); got != tt.want {
				t.Errorf("WithinHorizon(%s, %d) = %v, want %v", tt.date, tt.days, got, tt.want)
			}
		})
	}
}

func TestDaysUntil(t *testing.T) {
	a := MustParseDate("2024-02-27")
	b := MustParseDate("2024-03-02")
	if got := a.DaysUntil(b); got != 4 {
		t.Errorf("Expected 4 days, got %d", got)
	}
	if got := b.DaysUntil(a); got != -4 {
		t.Errorf("Expected -4 days, got %d", got)
	}
}

func TestParseDate(t *testing.T) {
	t.Run("Trims whitespace", func(t *testing.T) {
		d, err := ParseDate(" 2024-01-30 ")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if !d.Equal(NewDate(2024, time.January, 30)) {
			t.Errorf("Unexpected date %s", d)
		}
	})

	for _, in := range []string{"", "2024/01/30", "30-01-2024", "2024-02-30"} {
		t.Run("Invalid "+in, func(t *testing.T) {
			if _, err := ParseDate(in); err == nil {
				t.Errorf("Expected an error for %q, got nil", in)
			}
		})
	}
}

func TestDateJSON(t *testing.T) {
	type payload struct {
		Date Date `json:"date"`
	}

	data, err := json.Marshal(payload{Date: NewDate(2024, time.February, 2)})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"date":"2024-02-02"}` {
		t.Errorf("Unexpected JSON %s", data)
	}

	var p payload
	if err := json.Unmarshal([]byte(`{"date":"2025-10-30"}`), &p); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if p.Date.String() != "2025-10-30" {
		t.Errorf("Expected 2025-10-30, got %s", p.Date)
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan("2024-01-30"); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if d.String() != "2024-01-30" {
		t.Errorf("Expected 2024-01-30, got %s", d)
	}
	if err := d.Scan(42); err == nil {
		t.Error("Expected an error scanning an int, got nil")
	}
}

func TestFixedClock(t *testing.T) {
	c := FixedClock{Date: MustParseDate("2024-01-01")}
	if c.Today().String() != "2024-01-01" {
		t.Errorf("Unexpected today %s", c.Today())
	}
}
