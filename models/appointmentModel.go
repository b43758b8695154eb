package models

import (
	"time"

	"gorm.io/datatypes"
)

// Payment states of an appointment.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
)

// ProxyPatient describes the person attending when a patient books on someone else's behalf.
type ProxyPatient struct {
	Name     string `json:"name"`
	Age      int    `json:"age,omitempty"`
	Gender   string `json:"gender,omitempty"`
	Relation string `json:"relation,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Appointment model. Rows are never deleted; cancellation is a flag.
type Appointment struct {
	ID              string                      `gorm:"primaryKey;column:id" json:"id"`
	DoctorID        string                      `gorm:"column:doctor_id;not null;index:idx_appointments_doctor_day,priority:1" json:"doctor_id"`
	PatientID       string                      `gorm:"column:patient_id;not null;index" json:"patient_id"`
	SlotDate        string                      `gorm:"column:slot_date;not null;index:idx_appointments_doctor_day,priority:2" json:"slot_date"`
	SlotTime        string                      `gorm:"column:slot_time;not null" json:"slot_time"`
	TokenNumber     int                         `gorm:"column:token_number;not null" json:"token_number"`
	Amount          float64                     `gorm:"column:amount;not null" json:"amount"`
	PaymentState    string                      `gorm:"column:payment_state;not null;check:payment_state IN ('pending', 'paid')" json:"payment_state"`
	PaymentProvider string                      `gorm:"column:payment_provider" json:"payment_provider,omitempty"`
	PaymentRef      string                      `gorm:"column:payment_ref" json:"payment_ref,omitempty"`
	Cancelled       bool                        `gorm:"column:cancelled;not null" json:"cancelled"`
	CancelledAt     *time.Time                  `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	Completed       bool                        `gorm:"column:completed;not null" json:"completed"`
	CompletedAt     *time.Time                  `gorm:"column:completed_at" json:"completed_at,omitempty"`
	Symptoms        datatypes.JSONSlice[string] `gorm:"column:symptoms;not null" json:"symptoms"`
	ReportRefs      datatypes.JSONSlice[string] `gorm:"column:report_refs" json:"report_refs,omitempty"`
	PrescriptionRef string                      `gorm:"column:prescription_ref" json:"prescription_ref,omitempty"`
	Proxy           *ProxyPatient               `gorm:"column:proxy;type:jsonb;serializer:json" json:"proxy,omitempty"`
	CreatedAt       time.Time                   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time                   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	Doctor          *Doctor                     `gorm:"foreignKey:DoctorID;references:ID" json:"doctor,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// Active reports whether the appointment still holds its slot.
func (a *Appointment) Active() bool {
	return !a.Cancelled
}

// AwaitingConsultation reports whether the appointment is still in the doctor's queue.
func (a *Appointment) AwaitingConsultation() bool {
	return !a.Cancelled && !a.Completed
}
