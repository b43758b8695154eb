package models

import (
	"time"
)

// Doctor live status values.
const (
	StatusInClinic    = "in-clinic"
	StatusInConsult   = "in-consult"
	StatusOnBreak     = "on-break"
	StatusUnavailable = "unavailable"
)

// DoctorStatuses lists every accepted live status.
var DoctorStatuses = []interface{}{StatusInClinic, StatusInConsult, StatusOnBreak, StatusUnavailable}

// IsConsulting reports whether status means the doctor is seeing patients.
func IsConsulting(status string) bool {
	return status == StatusInClinic || status == StatusInConsult
}

// Doctor model
type Doctor struct {
	ID              string      `gorm:"primaryKey;column:id" json:"id"`
	Name            string      `gorm:"column:name;not null;index" json:"name"`
	Email           string      `gorm:"column:email;not null;uniqueIndex" json:"email"`
	Phone           string      `gorm:"column:phone" json:"phone"`
	Speciality      string      `gorm:"column:speciality;not null;index" json:"speciality"`
	Degree          string      `gorm:"column:degree" json:"degree"`
	Experience      string      `gorm:"column:experience" json:"experience"`
	About           string      `gorm:"column:about;type:text" json:"about"`
	Fee             float64     `gorm:"column:fee;not null" json:"fee"`
	Address         string      `gorm:"column:address" json:"address"`
	ImageURL        string      `gorm:"column:image_url" json:"image_url"`
	Available       bool        `gorm:"column:available;not null" json:"available"`
	Status          string      `gorm:"column:status;not null;check:status IN ('in-clinic', 'in-consult', 'on-break', 'unavailable')" json:"status"`
	Timezone        string      `gorm:"column:timezone;not null" json:"timezone"`
	SlotsBooked     SlotsBooked `gorm:"column:slots_booked;type:jsonb;not null" json:"slots_booked"`
	StatusUpdatedAt time.Time   `gorm:"column:status_updated_at" json:"status_updated_at"`
	CreatedAt       time.Time   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Doctor) TableName() string {
	return "doctors"
}

// Location resolves the doctor's clinic timezone, falling back to fallback.
func (d *Doctor) Location(fallback *time.Location) *time.Location {
	if d.Timezone == "" {
		return fallback
	}
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return fallback
	}
	return loc
}

// DoctorStatusView is the payload of the live status polling endpoint.
type DoctorStatusView struct {
	DoctorID  string    `json:"docId"`
	Status    string    `json:"status"`
	Available bool      `json:"available"`
	UpdatedAt time.Time `json:"updatedAt"`
}
