package bettingstats

import (
	"testing"
	"time"
)

func TestDayClock_Day(t *testing.T) {
	t.Parallel()

	clock := NewDayClock(seoul, 5)
	tests := []struct {
		name string
		at   time.Time
		want time.Time
	}{
		{name: "after boundary", at: kst(2025, time.June, 4, 5, 0), want: date(2025, time.June, 4)},
		{name: "before boundary", at: kst(2025, time.June, 4, 4, 59), want: date(2025, time.June, 3)},
		{name: "midnight", at: kst(2025, time.June, 4, 0, 0), want: date(2025, time.June, 3)},
		{name: "year rollover", at: kst(2026, time.January, 1, 1, 30), want: date(2025, time.December, 31)},
		{name: "utc input converted to local", at: time.Date(2025, time.June, 3, 19, 30, 0, 0, time.UTC), want: date(2025, time.June, 3)},
		{name: "utc input after local boundary", at: time.Date(2025, time.June, 3, 20, 30, 0, 0, time.UTC), want: date(2025, time.June, 4)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := clock.Day(tc.at); !got.Equal(tc.want) {
				t.Fatalf("Day(%s) = %s, want %s", tc.at, got, tc.want)
			}
		})
	}
}

func TestDayClock_MonthFollowsShiftedDay(t *testing.T) {
	t.Parallel()

	clock := NewDayClock(seoul, 5)
	if got := clock.Month(kst(2025, time.July, 1, 4, 0)); !got.Equal(date(2025, time.June, 1)) {
		t.Fatalf("unexpected month: %s", got)
	}
	if got := clock.Month(kst(2025, time.July, 1, 6, 0)); !got.Equal(date(2025, time.July, 1)) {
		t.Fatalf("unexpected month: %s", got)
	}
}

func TestNewDayClock_Defaults(t *testing.T) {
	t.Parallel()

	clock := NewDayClock(nil, 42)
	if clock.Location != time.UTC {
		t.Fatalf("expected UTC location fallback")
	}
	if clock.BoundaryHour != DefaultBoundaryHour {
		t.Fatalf("expected default boundary hour, got %d", clock.BoundaryHour)
	}

	zero := NewDayClock(time.UTC, 0)
	if got := zero.Day(time.Date(2025, time.June, 4, 0, 10, 0, 0, time.UTC)); !got.Equal(date(2025, time.June, 4)) {
		t.Fatalf("boundary hour 0 should use calendar days, got %s", got)
	}
}
