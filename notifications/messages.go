package notifications

import (
	"fmt"
	"html"

	"TeleClinic/models"
)

// Booking is the data the booking templates render.
type Booking struct {
	Appointment models.Appointment
	DoctorName  string
	Patient     Recipient
	VerifyURL   string
}

func attendee(b Booking) string {
	if b.Appointment.Proxy != nil && b.Appointment.Proxy.Name != "" {
		return b.Appointment.Proxy.Name
	}
	return b.Patient.Name
}

// BookingConfirmed renders the message sent after a successful reservation.
func BookingConfirmed(b Booking) Message {
	a := b.Appointment
	body := fmt.Sprintf("Hi %s, your appointment with %s is confirmed for %s at %s. Your token number is %d.",
		b.Patient.Name, b.DoctorName, a.SlotDate, a.SlotTime, a.TokenNumber)
	if who := attendee(b); who != b.Patient.Name {
		body += fmt.Sprintf(" Patient attending: %s.", who)
	}
	if b.VerifyURL != "" {
		body += " Show this at the desk: " + b.VerifyURL
	}

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
	<h1>Appointment confirmed</h1>
	<p>Doctor: %s</p>
	<p>Date: %s at %s</p>
	<p>Token number: <strong>%d</strong></p>
	<p>Patient attending: %s</p>
</body>
</html>`,
		html.EscapeString(b.DoctorName), html.EscapeString(a.SlotDate), html.EscapeString(a.SlotTime),
		a.TokenNumber, html.EscapeString(attendee(b)))

	return Message{
		Event:         EventBooked,
		AppointmentID: a.ID,
		To:            b.Patient,
		Subject:       "Appointment confirmed",
		Body:          body,
		HTML:          htmlBody,
	}
}

// BookingCancelled renders the message sent after a cancellation.
func BookingCancelled(b Booking) Message {
	a := b.Appointment
	return Message{
		Event:         EventCancelled,
		AppointmentID: a.ID,
		To:            b.Patient,
		Subject:       "Appointment cancelled",
		Body: fmt.Sprintf("Hi %s, your appointment with %s on %s at %s (token %d) has been cancelled.",
			b.Patient.Name, b.DoctorName, a.SlotDate, a.SlotTime, a.TokenNumber),
	}
}

// ConsultationCompleted renders the follow-up sent when the doctor closes a consultation.
func ConsultationCompleted(b Booking) Message {
	a := b.Appointment
	return Message{
		Event:         EventCompleted,
		AppointmentID: a.ID,
		To:            b.Patient,
		Subject:       "Consultation completed",
		Body: fmt.Sprintf("Hi %s, your consultation with %s is complete. Thank you for visiting.",
			b.Patient.Name, b.DoctorName),
	}
}
