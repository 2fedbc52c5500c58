package service

import (
	"testing"
	"time"
)

func TestNormalizeReadingTimeKeepsInstant(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// 18:30 UTC is already the next calendar day in UTC+7
	utc := time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC)
	local := NormalizeReadingTime(utc, jakarta)

	if !local.Equal(utc) {
		t.Fatalf("normalization must not move the instant")
	}
	if got := DateOf(local); got.Day() != 11 {
		t.Fatalf("expected local date March 11, got %s", got.Format("2006-01-02"))
	}
}

func TestNormalizeReadingTimeNilLocation(t *testing.T) {
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.FixedZone("X", 3600))
	got := NormalizeReadingTime(at, nil)
	if got.Location() != time.UTC {
		t.Fatalf("nil location should fall back to UTC, got %v", got.Location())
	}
}

func TestDateOfTruncates(t *testing.T) {
	at := time.Date(2026, 3, 10, 23, 59, 59, 999, time.UTC)
	day := DateOf(at)
	if day.Hour() != 0 || day.Minute() != 0 || day.Second() != 0 || day.Nanosecond() != 0 {
		t.Fatalf("date should be midnight, got %s", day)
	}
	if day.Day() != 10 {
		t.Fatalf("date should keep the calendar day, got %d", day.Day())
	}
}

func TestDaysBetween(t *testing.T) {
	cases := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"same day", ts(2026, 3, 10), ts(2026, 3, 10), 0},
		{"next day", ts(2026, 3, 10), ts(2026, 3, 11), 1},
		{"next day across midnight", time.Date(2026, 3, 10, 23, 50, 0, 0, time.UTC), time.Date(2026, 3, 11, 0, 10, 0, 0, time.UTC), 1},
		{"three days", ts(2026, 3, 10), ts(2026, 3, 13), 3},
		{"month boundary", ts(2026, 2, 28), ts(2026, 3, 1), 1},
		{"reversed is negative", ts(2026, 3, 11), ts(2026, 3, 10), -1},
		{
			"utc date against facility morning",
			time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 8, 28, 6, 0, 0, 0, time.FixedZone("UTC+7", 7*3600)),
			2,
		},
		{
			"facility evening against utc date",
			time.Date(2026, 8, 26, 22, 0, 0, 0, time.FixedZone("UTC+7", 7*3600)),
			time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC),
			1,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DaysBetween(tc.a, tc.b); got != tc.want {
				t.Fatalf("DaysBetween(%s, %s) = %d, want %d",
					tc.a.Format("2006-01-02"), tc.b.Format("2006-01-02"), got, tc.want)
			}
		})
	}
}

func TestDaysBetweenAcrossDST(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	// March 29 2026 is a 23-hour day in Berlin
	a := time.Date(2026, 3, 28, 9, 0, 0, 0, berlin)
	b := time.Date(2026, 3, 30, 9, 0, 0, 0, berlin)
	if got := DaysBetween(a, b); got != 2 {
		t.Fatalf("DST-shortened day should still count whole, got %d", got)
	}
}
