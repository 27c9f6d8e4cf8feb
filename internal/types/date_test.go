package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func utc(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		n    int
		want time.Time
	}{
		{"clamps to february in a leap year", utc(2024, 1, 31, 0, 0), 1, utc(2024, 2, 29, 0, 0)},
		{"clamps to february in a common year", utc(2023, 1, 31, 0, 0), 1, utc(2023, 2, 28, 0, 0)},
		{"crosses the year boundary", utc(2023, 11, 15, 9, 30), 3, utc(2024, 2, 15, 9, 30)},
		{"negative shift", utc(2024, 3, 31, 0, 0), -1, utc(2024, 2, 29, 0, 0)},
		{"negative shift across years", utc(2024, 1, 10, 0, 0), -13, utc(2022, 12, 10, 0, 0)},
		{"zero is identity", utc(2024, 5, 5, 5, 5), 0, utc(2024, 5, 5, 5, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddMonths(tt.in, tt.n))
		})
	}
}

func TestAddDaysKeepsClock(t *testing.T) {
	assert.Equal(t, utc(2024, 3, 1, 8, 15), AddDays(utc(2024, 2, 28, 8, 15), 2))
	assert.Equal(t, utc(2023, 12, 31, 8, 15), AddDays(utc(2024, 1, 1, 8, 15), -1))
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 29, DaysInMonth(2024, time.February))
	assert.Equal(t, 28, DaysInMonth(2100, time.February))
	assert.Equal(t, 29, DaysInMonth(2000, time.February))
	assert.Equal(t, 31, DaysInMonth(2024, time.December))
	assert.Equal(t, 30, DaysInMonth(2024, time.April))
	assert.True(t, IsLeapYear(2000))
	assert.False(t, IsLeapYear(1900))
}

func TestAlignToWeekday(t *testing.T) {
	// 2024-01-03 is a Wednesday
	wed := utc(2024, 1, 3, 10, 0)

	assert.Equal(t, wed, AlignToWeekday(wed, int(time.Wednesday)))
	assert.Equal(t, utc(2024, 1, 8, 10, 0), AlignToWeekday(wed, int(time.Monday)))
	assert.Equal(t, utc(2024, 1, 7, 10, 0), AlignToWeekday(wed, int(time.Sunday)))
	assert.Equal(t, utc(2024, 1, 7, 10, 0), AlignToWeekday(wed, 7), "7 means Sunday")
}

func TestAlignToMonthDay(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		day  int
		want time.Time
	}{
		{"same day keeps the date", utc(2024, 1, 15, 13, 0), 15, utc(2024, 1, 15, 0, 0)},
		{"later day in the same month", utc(2024, 1, 10, 0, 0), 15, utc(2024, 1, 15, 0, 0)},
		{"earlier day rolls to next month", utc(2024, 1, 20, 0, 0), 15, utc(2024, 2, 15, 0, 0)},
		{"clamps in a short month", utc(2024, 2, 10, 0, 0), 31, utc(2024, 2, 29, 0, 0)},
		{"rolls and clamps", utc(2023, 1, 31, 12, 0), 30, utc(2023, 2, 28, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AlignToMonthDay(tt.in, tt.day))
		})
	}
}

func TestNearestMidnight(t *testing.T) {
	assert.Equal(t, utc(2024, 1, 1, 0, 0), NearestMidnight(utc(2024, 1, 1, 11, 59)))
	assert.Equal(t, utc(2024, 1, 2, 0, 0), NearestMidnight(utc(2024, 1, 1, 12, 1)))
	assert.Equal(t, utc(2024, 1, 1, 0, 0), NearestMidnight(utc(2024, 1, 1, 12, 0)), "ties go to the earlier midnight")
	assert.Equal(t, utc(2024, 2, 1, 0, 0), NearestMidnight(time.Date(2024, 1, 31, 23, 59, 59, 999e6, time.UTC)))
}

func TestDaysAndHoursBetween(t *testing.T) {
	assert.Equal(t, 14, DaysBetween(utc(2024, 1, 17, 0, 0), utc(2024, 1, 31, 0, 0)))
	assert.Equal(t, 0, DaysBetween(utc(2024, 1, 1, 0, 0), utc(2024, 1, 1, 23, 0)))
	assert.Equal(t, int64(2), WholeHoursBetween(utc(2024, 1, 30, 8, 0), utc(2024, 1, 30, 10, 30)))
}

func TestFirstDayOfMonthAfter(t *testing.T) {
	assert.Equal(t, utc(2024, 2, 1, 0, 0), FirstDayOfMonthAfter(utc(2024, 1, 31, 18, 0), 1))
	assert.Equal(t, utc(2025, 1, 1, 0, 0), FirstDayOfMonthAfter(utc(2024, 10, 5, 0, 0), 3))
}
