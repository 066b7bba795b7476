package feed

import (
	"fmt"
	"strings"
	"time"
)

type Unit string

const (
	UnitMinute Unit = "minute"
	UnitHour   Unit = "hour"
	UnitDay    Unit = "day"
	UnitWeek   Unit = "week"
	UnitMonth  Unit = "month"
	UnitYear   Unit = "year"
)

// ParseUnit normalizes an age window unit. Singular and plural spellings are
// accepted, case-insensitively ("day", "Days", "DAYS").
func ParseUnit(s string) (Unit, error) {
	u := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s")

	switch Unit(u) {
	case UnitMinute, UnitHour, UnitDay, UnitWeek, UnitMonth, UnitYear:
		return Unit(u), nil
	}

	return "", fmt.Errorf("unsupported unit: %q", s)
}

// Cutoff returns the point in time `amount` units before now. Days, weeks,
// months and years use calendar arithmetic, so a one month window ending on
// March 31 starts on the last day of February rather than 30 days earlier.
func Cutoff(now time.Time, amount int, unit Unit) time.Time {
	switch unit {
	case UnitMinute:
		return now.Add(-time.Duration(amount) * time.Minute)
	case UnitHour:
		return now.Add(-time.Duration(amount) * time.Hour)
	case UnitDay:
		return now.AddDate(0, 0, -amount)
	case UnitWeek:
		return now.AddDate(0, 0, -7*amount)
	case UnitMonth:
		return now.AddDate(0, -amount, 0)
	case UnitYear:
		return now.AddDate(-amount, 0, 0)
	}

	return now
}
