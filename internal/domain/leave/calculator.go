package leave

import (
	"context"
	"time"

	"hrms/internal/domain/holiday"
)

// WeeklyOff is the non-working day of the week.
const WeeklyOff = time.Sunday

// MaxRangeDays caps a working-day preview, both ends inclusive.
const MaxRangeDays = 366

// SpanDays is the number of calendar days in [start, end].
func SpanDays(start, end time.Time) int {
	return int(holiday.Day(end).Sub(holiday.Day(start)).Hours()/24) + 1
}

// DayCount splits a date range into working days and holidays. Weekly offs
// are in neither bucket.
type DayCount struct {
	WorkingDays int `json:"workingDays"`
	HolidayDays int `json:"holidayDays"`
}

type Calculator struct {
	Holidays holiday.Lister
}

func NewCalculator(holidays holiday.Lister) *Calculator {
	return &Calculator{Holidays: holidays}
}

// CountWorkingDays walks every calendar day in [start, end]. A holiday that
// falls on the weekly off is not counted as a holiday. start after end yields
// a zero count.
func (c *Calculator) CountWorkingDays(ctx context.Context, start, end time.Time, subject holiday.Subject) (DayCount, error) {
	from, to := holiday.Day(start), holiday.Day(end)
	if from.After(to) {
		return DayCount{}, nil
	}

	holidays, err := c.Holidays.ListOverlapping(ctx, from, to)
	if err != nil {
		return DayCount{}, err
	}

	var out DayCount
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == WeeklyOff {
			continue
		}
		if _, ok := holiday.Match(holidays, day, subject); ok {
			out.HolidayDays++
			continue
		}
		out.WorkingDays++
	}
	return out, nil
}
