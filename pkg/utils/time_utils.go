package utils

import "time"

const (
	MonthlyPeriodDays = 30
	YearlyPeriodDays  = 365
	RenewalPeriodDays = 30
)

const secondsPerDay = 24 * 60 * 60

// Clock is injected wherever "now" feeds a persisted timestamp.
type Clock func() time.Time

func SystemClock() time.Time { return time.Now().UTC() }

// AddDays shifts an epoch value in seconds by whole days.
func AddDays(unixSeconds int64, days int) int64 {
	return unixSeconds + int64(days)*secondsPerDay
}

// PeriodDays is the billing period length for the selected cycle.
func PeriodDays(isYearly bool) int {
	if isYearly {
		return YearlyPeriodDays
	}
	return MonthlyPeriodDays
}

// FormatUnixRFC3339 renders epoch seconds in UTC. Zero renders as "".
func FormatUnixRFC3339(t int64) string {
	if t <= 0 {
		return ""
	}
	return time.Unix(t, 0).UTC().Format(time.RFC3339)
}

func FormatUnixPtr(t *int64) *string {
	if t == nil {
		return nil
	}
	s := FormatUnixRFC3339(*t)
	return &s
}
