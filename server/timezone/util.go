// Package timezone provides timezone utilities for the Sweax application.
//
// All user-facing date/time answers are computed in a fixed civil zone
// (Europe/Istanbul by default), never in UTC or server-local time.
package timezone

import (
	"fmt"
	"time"
)

// TimezoneEuropeIstanbul is the default zone for all date/time answers.
const TimezoneEuropeIstanbul = "Europe/Istanbul"

// LocationEuropeIstanbul is the pre-loaded Europe/Istanbul location.
var LocationEuropeIstanbul = MustParseTimezone(TimezoneEuropeIstanbul)

// ParseTimezone parses an IANA timezone identifier (e.g., "Europe/Istanbul").
// If the timezone is invalid, returns UTC and an error.
func ParseTimezone(tz string) (*time.Location, error) {
	if tz == "" || tz == "UTC" {
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	return loc, nil
}

// MustParseTimezone parses a timezone or panics if invalid.
// Use this for constants that are known to be valid at compile time.
func MustParseTimezone(tz string) *time.Location {
	loc, err := ParseTimezone(tz)
	if err != nil {
		panic(err)
	}
	return loc
}

// IsValidTimezone checks if a timezone identifier is valid.
func IsValidTimezone(tz string) bool {
	_, err := ParseTimezone(tz)
	return err == nil
}

// NowInTimezone returns the current time in the given timezone.
func NowInTimezone(tz *time.Location) time.Time {
	if tz == nil {
		tz = time.UTC
	}
	return time.Now().In(tz)
}
