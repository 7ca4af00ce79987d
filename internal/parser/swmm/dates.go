package swmm

import (
	"math"
	"time"
)

// SpreadsheetEpoch is day zero of the date encoding used by the engine.
var SpreadsheetEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

const secondsPerDay = 86400

// FromSpreadsheet converts fractional days since SpreadsheetEpoch to a UTC
// time, rounded to the nearest whole second. Stamps written as float64 days
// routinely land a few microseconds either side of the intended second.
func FromSpreadsheet(days float64) time.Time {
	seconds := math.Round(days * secondsPerDay)
	return SpreadsheetEpoch.Add(time.Duration(seconds) * time.Second)
}

// ToSpreadsheet converts t to fractional days since SpreadsheetEpoch.
func ToSpreadsheet(t time.Time) float64 {
	return t.Sub(SpreadsheetEpoch).Seconds() / secondsPerDay
}
