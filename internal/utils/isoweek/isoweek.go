// Package isoweek converts between ISO-8601 week numbers and calendar dates.
//
// ISO weeks start on Monday and week 1 is the week containing the year's first
// Thursday, equivalently the week containing 4 January. Week 1 can therefore
// begin in the previous calendar year, and the last days of December can belong
// to week 1 of the next ISO year.
package isoweek

import (
	"fmt"
	"time"
)

// WeeksInYear returns 52 or 53, the number of ISO weeks in isoYear.
// 28 December always falls in the last ISO week of its year.
func WeeksInYear(isoYear int) int {
	_, w := time.Date(isoYear, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}

// StartOf returns the Monday (00:00 UTC) that begins ISO week isoWeek of isoYear.
func StartOf(isoYear, isoWeek int) (time.Time, error) {
	if isoYear < 1 || isoYear > 9999 {
		return time.Time{}, fmt.Errorf("iso year %d out of range", isoYear)
	}
	if isoWeek < 1 || isoWeek > WeeksInYear(isoYear) {
		return time.Time{}, fmt.Errorf("iso week %d out of range for %d (1-%d)", isoWeek, isoYear, WeeksInYear(isoYear))
	}

	jan4 := time.Date(isoYear, time.January, 4, 0, 0, 0, 0, time.UTC)
	// Days since Monday, with Sunday counted as 6.
	offset := (int(jan4.Weekday()) + 6) % 7
	week1Monday := jan4.AddDate(0, 0, -offset)
	return week1Monday.AddDate(0, 0, (isoWeek-1)*7), nil
}

// Range returns the first (Monday) and last (Sunday) dates of an ISO week,
// both inclusive.
func Range(isoYear, isoWeek int) (time.Time, time.Time, error) {
	start, err := StartOf(isoYear, isoWeek)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.AddDate(0, 0, 6), nil
}
