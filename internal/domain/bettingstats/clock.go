package bettingstats

import "time"

const DefaultBoundaryHour = 5

// DayClock maps instants to crawler days. A crawler day starts at
// BoundaryHour local time, so 02:00 on the 4th belongs to the 3rd.
// Months are taken from the shifted day, keeping daily and monthly buckets
// consistent with each other.
type DayClock struct {
	Location     *time.Location
	BoundaryHour int
}

func NewDayClock(loc *time.Location, boundaryHour int) DayClock {
	if loc == nil {
		loc = time.UTC
	}
	if boundaryHour < 0 || boundaryHour > 23 {
		boundaryHour = DefaultBoundaryHour
	}
	return DayClock{Location: loc, BoundaryHour: boundaryHour}
}

func (c DayClock) Day(t time.Time) time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}

	local := t.In(loc)
	y, m, d := local.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if local.Hour() < c.BoundaryHour {
		day = day.AddDate(0, 0, -1)
	}
	return day
}

func (c DayClock) Month(t time.Time) time.Time {
	return MonthStart(c.Day(t))
}

// MonthStart truncates a date to the first day of its month in UTC.
func MonthStart(day time.Time) time.Time {
	y, m, _ := day.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// DateOnly normalizes a calendar date to UTC midnight.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
