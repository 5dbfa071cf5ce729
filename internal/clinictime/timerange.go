package clinictime

import (
	"strconv"
	"strings"
)

// DefaultMinDuration is the shortest appointment, in minutes.
const DefaultMinDuration = 30

// ParseClock converts "H:MM" or "HH:MM" to minutes since midnight.
func ParseClock(value string) (int, bool) {
	hh, mm, found := strings.Cut(strings.TrimSpace(value), ":")
	if !found || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 || !digits(hh) || !digits(mm) {
		return 0, false
	}
	hours, err := strconv.Atoi(hh)
	if err != nil || hours < 0 || hours > 23 {
		return 0, false
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, false
	}
	return hours*60 + minutes, true
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ValidateTimeRange reports whether end follows start by at least
// minDuration minutes. Missing or malformed input yields false.
func ValidateTimeRange(start, end string, minDuration int) bool {
	startMinutes, ok := ParseClock(start)
	if !ok {
		return false
	}
	endMinutes, ok := ParseClock(end)
	if !ok {
		return false
	}
	return endMinutes > startMinutes && endMinutes-startMinutes >= minDuration
}

// DurationMinutes returns end-start in minutes, or false when either side is malformed.
func DurationMinutes(start, end string) (int, bool) {
	startMinutes, ok := ParseClock(start)
	if !ok {
		return 0, false
	}
	endMinutes, ok := ParseClock(end)
	if !ok {
		return 0, false
	}
	return endMinutes - startMinutes, true
}
