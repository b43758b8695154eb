package schedule

import (
	"sort"
	"time"

	"TeleClinic/models"
)

// QueueStatus is the patient-facing snapshot of a doctor's queue for one day.
// It is derived on every request and never stored.
type QueueStatus struct {
	AppointmentID     string    `json:"appointmentId"`
	DoctorID          string    `json:"doctorId"`
	SlotDate          string    `json:"slotDate"`
	SlotTime          string    `json:"slotTime"`
	TokenNumber       int       `json:"tokenNumber"`
	QueuePosition     int       `json:"queuePosition"`
	TotalInQueue      int       `json:"totalInQueue"`
	EstimatedWaitTime int       `json:"estimatedWaitTime"`
	IsDelayed         bool      `json:"isDelayed"`
	DelayMinutes      int       `json:"delayMinutes"`
	IsNextUp          bool      `json:"isNextUp"`
	DoctorStatus      string    `json:"doctorStatus"`
	Completed         bool      `json:"completed"`
	Cancelled         bool      `json:"cancelled"`
	GeneratedAt       time.Time `json:"generatedAt"`
}

// Estimator computes queue positions and waits from a fixed consultation length.
type Estimator struct {
	AverageConsultation time.Duration
	DelayThreshold      time.Duration
}

// DefaultEstimator uses 15 minute consultations and a 15 minute delay threshold.
func DefaultEstimator() Estimator {
	return Estimator{AverageConsultation: 15 * time.Minute, DelayThreshold: 15 * time.Minute}
}

// Estimate places target among day, the doctor's appointments sharing target's date.
// day may contain cancelled rows; they are ignored. now should be expressed in the
// doctor's timezone loc.
func (e Estimator) Estimate(target models.Appointment, day []models.Appointment, doctorStatus string, now time.Time, loc *time.Location) QueueStatus {
	status := QueueStatus{
		AppointmentID: target.ID,
		DoctorID:      target.DoctorID,
		SlotDate:      target.SlotDate,
		SlotTime:      target.SlotTime,
		TokenNumber:   target.TokenNumber,
		DoctorStatus:  doctorStatus,
		Completed:     target.Completed,
		Cancelled:     target.Cancelled,
		GeneratedAt:   now,
	}

	waiting := WaitingOrder(day)
	status.TotalInQueue = len(waiting)
	for i, a := range waiting {
		if a.ID == target.ID {
			status.QueuePosition = i + 1
			break
		}
	}
	if status.QueuePosition == 0 {
		return status
	}

	wait := time.Duration(status.QueuePosition-1) * e.AverageConsultation
	if wait < 0 {
		wait = 0
	}
	status.EstimatedWaitTime = int(wait / time.Minute)
	status.IsNextUp = status.QueuePosition == 1 && models.IsConsulting(doctorStatus)

	if !models.IsConsulting(doctorStatus) {
		return status
	}
	if delay := e.delay(target, now.Add(wait), now, loc); delay > e.DelayThreshold {
		status.IsDelayed = true
		status.DelayMinutes = int(delay / time.Minute)
	}
	return status
}

// delay is how far the expected start runs past the scheduled slot. Only appointments
// scheduled for now's calendar day can be running late, and only while the doctor is
// seeing patients.
func (e Estimator) delay(target models.Appointment, expected, now time.Time, loc *time.Location) time.Duration {
	if FormatDateKey(now.In(loc)) != target.SlotDate {
		return 0
	}
	scheduled, err := SlotStart(target.SlotDate, target.SlotTime, loc)
	if err != nil {
		return 0
	}
	return expected.Sub(scheduled)
}

// WaitingOrder returns the not-cancelled, not-completed appointments of day ordered by
// token number.
func WaitingOrder(day []models.Appointment) []models.Appointment {
	waiting := make([]models.Appointment, 0, len(day))
	for _, a := range day {
		if a.AwaitingConsultation() {
			waiting = append(waiting, a)
		}
	}
	sort.SliceStable(waiting, func(i, j int) bool {
		return waiting[i].TokenNumber < waiting[j].TokenNumber
	})
	return waiting
}
