// Package calendar implements Monday-anchored week bucketing for the
// collections charts. Weeks are contiguous 7-day spans starting Monday, and a
// "fiscal year" is anchored at the Monday on or before January 1, so early
// January dates can fall into the previous fiscal year's last week.
package calendar

import "time"

// DateOnly normalizes a timestamp to its local calendar date, materialized as
// midnight UTC. All week arithmetic runs on these normalized values so day
// subtraction is exact across DST transitions.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Monday of the week containing d.
func WeekStart(t time.Time) time.Time {
	d := DateOnly(t)
	offset := (int(d.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	return d.AddDate(0, 0, -offset)
}

// YearFirstWeekStart returns the Monday on or before January 1 of year.
func YearFirstWeekStart(year int) time.Time {
	return WeekStart(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC))
}

// WeekNumber returns the 1-based week number of d within the given fiscal
// year. Callers are expected to pass the year returned by Anchors.Assign for
// the same date; other years produce out-of-range numbers.
func WeekNumber(t time.Time, year int) int {
	days := int(WeekStart(t).Sub(YearFirstWeekStart(year)) / (24 * time.Hour))
	return days/7 + 1
}

// Anchor is the first week start of one fiscal year.
type Anchor struct {
	Year  int
	Start time.Time
}

// Anchors is a sorted list of fiscal-year anchors covering an observation
// window.
type Anchors []Anchor

// BuildAnchors builds anchors for [minYear-1, maxYear+2]. The extra slots keep
// Assign total for dates slightly outside the observed range.
func BuildAnchors(minYear, maxYear int) Anchors {
	if maxYear < minYear {
		minYear, maxYear = maxYear, minYear
	}
	anchors := make(Anchors, 0, maxYear-minYear+4)
	for y := minYear - 1; y <= maxYear+2; y++ {
		anchors = append(anchors, Anchor{Year: y, Start: YearFirstWeekStart(y)})
	}
	return anchors
}

// Assign returns the greatest anchored year whose first week start is on or
// before d. A January 1st that falls mid-week is thereby assigned to the
// previous year's final week.
func (a Anchors) Assign(t time.Time) int {
	d := DateOnly(t)
	year := 0
	for _, anchor := range a {
		if !anchor.Start.After(d) {
			year = anchor.Year
		}
	}
	if year == 0 && len(a) > 0 {
		year = a[0].Year
	}
	return year
}
