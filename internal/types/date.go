package types

import (
	"time"
)

// Period arithmetic. Every helper works on UTC instants and returns UTC.

const day = 24 * time.Hour

// AddDays shifts t by n calendar days, keeping the time of day
func AddDays(t time.Time, n int) time.Time {
	return t.UTC().AddDate(0, 0, n)
}

// AddMonths shifts t by n calendar months. When the source day does not exist
// in the target month it is clamped to the last day of that month, so
// Jan 31 + 1 month is Feb 28 (or Feb 29 in a leap year). n may be negative.
func AddMonths(t time.Time, n int) time.Time {
	t = t.UTC()
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()

	total := int(m) - 1 + n
	year := y + floorDiv(total, 12)
	month := time.Month(total - floorDiv(total, 12)*12 + 1)

	if last := DaysInMonth(year, month); d > last {
		d = last
	}
	return time.Date(year, month, d, hh, mm, ss, t.Nanosecond(), time.UTC)
}

// AddYears shifts t by n years with the same clamping rule as AddMonths
func AddYears(t time.Time, n int) time.Time {
	return AddMonths(t, 12*n)
}

// DaysInMonth returns the number of days in the given Gregorian month
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsLeapYear reports whether year is a Gregorian leap year
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// StartOfDay truncates t to 00:00:00.000 UTC
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AlignToWeekday returns t when it already falls on weekday, otherwise the
// next date that does. weekday is 0 (Sunday) to 6 (Saturday); 7 is accepted
// as Sunday so that Monday-based 1..7 settings work unchanged.
func AlignToWeekday(t time.Time, weekday int) time.Time {
	t = t.UTC()
	target := ((weekday % 7) + 7) % 7
	diff := (target - int(t.Weekday()) + 7) % 7
	return AddDays(t, diff)
}

// AlignToMonthDay returns 00:00 UTC of the first date on or after t whose day
// of month is dayOfMonth. Months shorter than dayOfMonth clamp to their last
// day. The comparison is done on calendar dates, the time of day of t is ignored.
func AlignToMonthDay(t time.Time, dayOfMonth int) time.Time {
	start := StartOfDay(t)
	candidate := monthDay(start.Year(), start.Month(), dayOfMonth)
	if candidate.Before(start) {
		next := AddMonths(time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC), 1)
		candidate = monthDay(next.Year(), next.Month(), dayOfMonth)
	}
	return candidate
}

// NearestMidnight rounds t to the closer of the midnight before it and the
// midnight after it. An exact tie goes to the earlier midnight.
func NearestMidnight(t time.Time) time.Time {
	prev := StartOfDay(t)
	next := prev.Add(day)
	if t.UTC().Sub(prev) <= next.Sub(t.UTC()) {
		return prev
	}
	return next
}

// FirstDayOfMonthAfter returns 00:00 UTC on the first day of the month n months after t
func FirstDayOfMonthAfter(t time.Time, n int) time.Time {
	first := time.Date(t.UTC().Year(), t.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)
	return AddMonths(first, n)
}

// DaysBetween returns the number of whole days from a to b, truncated toward zero
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a) / day)
}

// WholeHoursBetween returns the number of whole hours from a to b, truncated toward zero
func WholeHoursBetween(a, b time.Time) int64 {
	return int64(b.Sub(a) / time.Hour)
}

// MonthDayOf returns 00:00 UTC of dayOfMonth in the given month, clamped to the month length
func MonthDayOf(year int, month time.Month, dayOfMonth int) time.Time {
	return monthDay(year, month, dayOfMonth)
}

func monthDay(year int, month time.Month, dayOfMonth int) time.Time {
	if dayOfMonth < 1 {
		dayOfMonth = 1
	}
	if last := DaysInMonth(year, month); dayOfMonth > last {
		dayOfMonth = last
	}
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
