package service

import "time"

// EthiopianYear approximates the Ethiopian calendar year for t: seven years
// behind the Gregorian year from September, eight years before that.
func EthiopianYear(t time.Time) int {
	if t.Month() < time.September {
		return t.Year() - 8
	}
	return t.Year() - 7
}
