package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatDateKey renders t as the D_M_YYYY key used to index booked slots.
func FormatDateKey(t time.Time) string {
	return fmt.Sprintf("%d_%d_%d", t.Day(), int(t.Month()), t.Year())
}

// ParseDateKey parses a D_M_YYYY key into midnight of that day in loc.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	parts := strings.Split(key, "_")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("date key %q must look like D_M_YYYY", key)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		if p == "" || strings.HasPrefix(p, "0") {
			return time.Time{}, fmt.Errorf("date key %q has an invalid component %q", key, p)
		}
		n, err := atoiDigits(p)
		if err != nil {
			return time.Time{}, fmt.Errorf("date key %q has a non-numeric component %q", key, p)
		}
		nums[i] = n
	}
	day, month, year := nums[0], nums[1], nums[2]
	if len(parts[2]) != 4 {
		return time.Time{}, fmt.Errorf("date key %q must carry a four digit year", key)
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return time.Time{}, fmt.Errorf("date key %q is not a calendar date", key)
	}
	return t, nil
}

// FormatSlotTime renders t as a zero-padded 24-hour HH:MM string.
func FormatSlotTime(t time.Time) string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// ParseSlotTime parses HH:MM into hour and minute.
func ParseSlotTime(s string) (int, int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, 0, fmt.Errorf("slot time %q must look like HH:MM", s)
	}
	hour, err := atoiDigits(s[:2])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("slot time %q has an invalid hour", s)
	}
	minute, err := atoiDigits(s[3:])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("slot time %q has an invalid minute", s)
	}
	return hour, minute, nil
}

// atoiDigits is strconv.Atoi without sign prefixes, so every accepted key has
// exactly one spelling.
func atoiDigits(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("%q is not an unsigned number", s)
		}
	}
	return strconv.Atoi(s)
}

// SlotStart combines a date key and slot time into an instant in loc.
func SlotStart(dateKey, slotTime string, loc *time.Location) (time.Time, error) {
	day, err := ParseDateKey(dateKey, loc)
	if err != nil {
		return time.Time{}, err
	}
	hour, minute, err := ParseSlotTime(slotTime)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc), nil
}
