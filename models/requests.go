package models

// BookingRequest is what a patient submits to reserve a slot.
type BookingRequest struct {
	DoctorID string        `json:"docId"`
	SlotDate string        `json:"slotDate"`
	SlotTime string        `json:"slotTime"`
	Symptoms []string      `json:"symptoms"`
	Proxy    *ProxyPatient `json:"proxy,omitempty"`

	ReportRefs      []string `json:"reportRefs,omitempty"`
	PrescriptionRef string   `json:"prescriptionRef,omitempty"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type AvailabilityRequest struct {
	Available *bool `json:"available"`
}

type CheckoutRequest struct {
	Provider string `json:"provider"`
}

// DoctorInput carries the editable profile fields of a doctor.
type DoctorInput struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Speciality string  `json:"speciality"`
	Degree     string  `json:"degree"`
	Experience string  `json:"experience"`
	About      string  `json:"about"`
	Fee        float64 `json:"fee"`
	Address    string  `json:"address"`
	ImageURL   string  `json:"imageUrl"`
	Timezone   string  `json:"timezone"`
	Available  *bool   `json:"available"`
}

type PatientInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"dob"`
}
