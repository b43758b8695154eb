package schedule

import (
	"fmt"
	"time"

	"TeleClinic/models"
)

// Slot is one bookable start time.
type Slot struct {
	DateTime time.Time `json:"datetime"`
	Time     string    `json:"time"`
}

// DaySlots holds the available slots of one calendar day.
type DaySlots struct {
	DateKey string    `json:"dateKey"`
	Date    time.Time `json:"date"`
	Slots   []Slot    `json:"slots"`
}

// Generator derives the rolling slot board shown to patients. Its output is advisory;
// the booking path re-validates against the persisted record.
type Generator struct {
	StartHour int
	EndHour   int
	Step      time.Duration
	Days      int
}

// DefaultGenerator is 10:00-21:00 in 30 minute steps over 7 days.
func DefaultGenerator() Generator {
	return Generator{StartHour: 10, EndHour: 21, Step: 30 * time.Minute, Days: 7}
}

// Week returns Days ordered days starting at now's calendar day, each with the slots
// not present in booked. All arithmetic happens in now's location.
func (g Generator) Week(now time.Time, booked models.SlotsBooked) []DaySlots {
	week := make([]DaySlots, 0, g.Days)
	for i := 0; i < g.Days; i++ {
		day := time.Date(now.Year(), now.Month(), now.Day()+i, 0, 0, 0, 0, now.Location())
		week = append(week, g.Day(now, day, booked))
	}
	return week
}

// Day returns the available slots of day as seen at now. Days before now's calendar
// day have no slots.
func (g Generator) Day(now, day time.Time, booked models.SlotsBooked) DaySlots {
	loc := now.Location()
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	out := DaySlots{DateKey: FormatDateKey(day), Date: day, Slots: []Slot{}}
	if day.Before(today) {
		return out
	}

	start := g.at(day, g.StartHour, 0)
	if day.Equal(today) {
		start = g.firstStart(now)
	}
	end := g.at(day, g.EndHour, 0)

	for t := start; t.Before(end); t = t.Add(g.Step) {
		slotTime := FormatSlotTime(t)
		if booked.Has(out.DateKey, slotTime) {
			continue
		}
		out.Slots = append(out.Slots, Slot{DateTime: t, Time: slotTime})
	}
	return out
}

// firstStart is the next step boundary strictly after now, never earlier than StartHour.
func (g Generator) firstStart(now time.Time) time.Time {
	step := int(g.Step / time.Minute)
	minutes := now.Hour()*60 + now.Minute()
	next := (minutes/step + 1) * step
	start := g.at(now, 0, next)
	floor := g.at(now, g.StartHour, 0)
	if start.Before(floor) {
		return floor
	}
	return start
}

func (g Generator) at(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

// Validate checks that slotTime sits on the step grid inside working hours.
func (g Generator) Validate(dateKey, slotTime string, loc *time.Location) (time.Time, error) {
	start, err := SlotStart(dateKey, slotTime, loc)
	if err != nil {
		return time.Time{}, err
	}
	open := g.at(start, g.StartHour, 0)
	closing := g.at(start, g.EndHour, 0)
	if start.Before(open) || !start.Before(closing) {
		return time.Time{}, fmt.Errorf("slot %s is outside working hours %02d:00-%02d:00", slotTime, g.StartHour, g.EndHour)
	}
	if start.Sub(open)%g.Step != 0 {
		return time.Time{}, fmt.Errorf("slot %s is not on the %s grid", slotTime, g.Step)
	}
	return start, nil
}
