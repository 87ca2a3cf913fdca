// This file implements the per-interval stepping of recurring
// transactions. Each interval has its own stepper so the month-length
// clamping stays in one place.

package services

import (
	"fmt"

	"carteira/internal/core"
)

// OccurrenceStepper computes the next due date after a given occurrence.
// anchorDay is the day-of-month of the template's first occurrence, so a
// series anchored on the 31st clamps to short months and recovers in long
// ones.
type OccurrenceStepper interface {
	Next(after core.Date, anchorDay int) core.Date
}

// DailyStepper advances one day at a time.
type DailyStepper struct{}

func (DailyStepper) Next(after core.Date, _ int) core.Date {
	return after.AddDays(1)
}

// WeeklyStepper advances seven days at a time.
type WeeklyStepper struct{}

func (WeeklyStepper) Next(after core.Date, _ int) core.Date {
	return after.AddDays(7)
}

// MonthlyStepper advances to the anchor day of the next month, clamped to
// that month's length. An occurrence materialized on the 30th because
// February was short still lands on the 31st in March.
type MonthlyStepper struct{}

func (MonthlyStepper) Next(after core.Date, anchorDay int) core.Date {
	year, month := after.Year(), after.Month()+1
	if month > 12 {
		month = 1
		year++
	}
	day := anchorDay
	if last := core.DaysInMonth(year, month); day > last {
		day = last
	}
	return core.NewDate(year, month, day)
}

// YearlyStepper advances to the same month and anchor day next year,
// clamped for February 29th anchors in non-leap years.
type YearlyStepper struct{}

func (YearlyStepper) Next(after core.Date, anchorDay int) core.Date {
	year, month := after.Year()+1, after.Month()
	day := anchorDay
	if last := core.DaysInMonth(year, month); day > last {
		day = last
	}
	return core.NewDate(year, month, day)
}

var occurrenceSteppers = map[core.Interval]OccurrenceStepper{
	core.Daily:   DailyStepper{},
	core.Weekly:  WeeklyStepper{},
	core.Monthly: MonthlyStepper{},
	core.Yearly:  YearlyStepper{},
}

// StepperFor returns the stepper for a recurrence interval.
func StepperFor(interval core.Interval) (OccurrenceStepper, error) {
	s, ok := occurrenceSteppers[interval]
	if !ok {
		return nil, fmt.Errorf("unknown recurrence interval: %s", interval)
	}
	return s, nil
}
