package service

import (
	"testing"
	"time"
)

func TestValidatePrizes(t *testing.T) {
	cases := []struct {
		name   string
		prizes []string
		ok     bool
	}{
		{"five prizes", []string{"1234", "56", "789", "1", "2222"}, true},
		{"seven prizes", []string{"1234", "56", "789", "1", "2222", "3", "44"}, true},
		{"too few", []string{"1234", "56", "789", "1"}, false},
		{"too many", []string{"1", "2", "3", "4", "5", "6", "7", "8"}, false},
		{"empty prize", []string{"1234", "", "789", "1", "2222"}, false},
		{"five digits", []string{"12345", "56", "789", "1", "2222"}, false},
		{"non numeric", []string{"12a4", "56", "789", "1", "2222"}, false},
	}
	for _, c := range cases {
		err := validatePrizes(c.prizes)
		if c.ok && err != nil {
			t.Fatalf("%s: unexpected error: %v", c.name, err)
		}
		if !c.ok && err == nil {
			t.Fatalf("%s: expected error", c.name)
		}
	}
}

func TestNextDrawDateBeforeCutoff(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.Local)
	d := nextDrawDate("14:20", now)
	if d.Year() != 2024 || d.Month() != 3 || d.Day() != 15 {
		t.Fatalf("before cutoff should stay same day, got %v", d)
	}
}

func TestNextDrawDateAfterCutoffRollsOver(t *testing.T) {
	now := time.Date(2024, 3, 15, 14, 20, 0, 0, time.Local)
	d := nextDrawDate("14:20", now)
	if d.Day() != 16 {
		t.Fatalf("at cutoff should roll to next day, got %v", d)
	}

	now = time.Date(2024, 3, 15, 23, 59, 0, 0, time.Local)
	d = nextDrawDate("14:20", now)
	if d.Day() != 16 {
		t.Fatalf("after cutoff should roll to next day, got %v", d)
	}
}

func TestNextDrawDateMonthBoundary(t *testing.T) {
	now := time.Date(2024, 3, 31, 22, 0, 0, 0, time.Local)
	d := nextDrawDate("21:20", now)
	if d.Month() != 4 || d.Day() != 1 {
		t.Fatalf("should roll into next month, got %v", d)
	}
}
