package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
)

// SlotsBooked maps a date-key (D_M_YYYY) to the HH:MM times already taken on that day.
// It is stored as a jsonb object on the doctor row.
type SlotsBooked map[string][]string

// Has reports whether time is booked on dateKey.
func (s SlotsBooked) Has(dateKey, slotTime string) bool {
	for _, t := range s[dateKey] {
		if t == slotTime {
			return true
		}
	}
	return false
}

// Times returns a sorted copy of the booked times for dateKey.
func (s SlotsBooked) Times(dateKey string) []string {
	times := append([]string(nil), s[dateKey]...)
	sort.Strings(times)
	return times
}

// Clone returns a deep copy.
func (s SlotsBooked) Clone() SlotsBooked {
	out := make(SlotsBooked, len(s))
	for k, v := range s {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func (s SlotsBooked) Value() (driver.Value, error) {
	if s == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string][]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *SlotsBooked) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*s = SlotsBooked{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported slots_booked type %T", value)
	}
	m := map[string][]string{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &m); err != nil {
			return fmt.Errorf("failed to decode slots_booked: %w", err)
		}
	}
	*s = m
	return nil
}

func (SlotsBooked) GormDataType() string {
	return "jsonb"
}
