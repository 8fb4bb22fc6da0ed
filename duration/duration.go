// Package duration renders elapsed or remaining seconds as a single rounded
// human unit ("3 days", "1 heure").
package duration

import (
	"math"
	"time"
)

// Unit is a display unit. Key is the i18n key of its plural forms.
type Unit struct {
	Name    string
	Seconds int64
}

// Key returns the message key for u
func (u Unit) Key() string {
	return "duration." + u.Name
}

var (
	Minute = Unit{Name: "minute", Seconds: 60}
	Hour   = Unit{Name: "hour", Seconds: 60 * 60}
	Day    = Unit{Name: "day", Seconds: 24 * 60 * 60}
	Week   = Unit{Name: "week", Seconds: 7 * 24 * 60 * 60}
	Month  = Unit{Name: "month", Seconds: 30 * 24 * 60 * 60}
	Year   = Unit{Name: "year", Seconds: 365 * 24 * 60 * 60}
)

// descending; Bucket takes the first unit that fits
var units = []Unit{Year, Month, Week, Day, Hour, Minute}

// Bucket picks the unit and count used to display seconds. Negative and
// non-finite input counts as zero, and anything under a minute is one minute.
func Bucket(seconds float64) (Unit, int) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	s := math.Floor(seconds)
	if s < float64(Minute.Seconds) {
		return Minute, 1
	}
	for _, u := range units {
		size := float64(u.Seconds)
		if s >= size {
			return u, int(math.Round(s / size))
		}
	}
	return Minute, 1
}

// BucketDuration is Bucket for a time.Duration
func BucketDuration(d time.Duration) (Unit, int) {
	return Bucket(d.Seconds())
}
