package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"TeleClinic/apperrors"
	"TeleClinic/models"
	"TeleClinic/repositories"
	"TeleClinic/utils"

	"github.com/skip2/go-qrcode"
)

const (
	confirmationFooter = "confirmation"
	qrCodeSize         = 256
)

// ConfirmationPayload is sealed into the booking confirmation token.
type ConfirmationPayload struct {
	AppointmentID string    `json:"appointmentId"`
	DoctorID      string    `json:"doctorId"`
	SlotDate      string    `json:"slotDate"`
	SlotTime      string    `json:"slotTime"`
	TokenNumber   int       `json:"tokenNumber"`
	IssuedAt      time.Time `json:"issuedAt"`
}

// Confirmation is returned with a successful booking.
type Confirmation struct {
	Token     string `json:"token"`
	VerifyURL string `json:"verifyUrl"`
}

// VerifiedConfirmation is what the clinic desk sees after scanning a code.
type VerifiedConfirmation struct {
	ConfirmationPayload
	PaymentState string `json:"paymentState"`
	Cancelled    bool   `json:"cancelled"`
	Completed    bool   `json:"completed"`
}

type ConfirmationService struct {
	tokens       *utils.TokenMaker
	appointments repositories.AppointmentRepository
	frontendURL  string
	now          func() time.Time
}

func NewConfirmationService(tokens *utils.TokenMaker, appointments repositories.AppointmentRepository, frontendURL string) *ConfirmationService {
	return &ConfirmationService{
		tokens:       tokens,
		appointments: appointments,
		frontendURL:  strings.TrimRight(frontendURL, "/"),
		now:          time.Now,
	}
}

func (s *ConfirmationService) Issue(appt *models.Appointment) (*Confirmation, error) {
	token, err := s.tokens.Encrypt(ConfirmationPayload{
		AppointmentID: appt.ID,
		DoctorID:      appt.DoctorID,
		SlotDate:      appt.SlotDate,
		SlotTime:      appt.SlotTime,
		TokenNumber:   appt.TokenNumber,
		IssuedAt:      s.now(),
	}, confirmationFooter)
	if err != nil {
		return nil, err
	}
	return &Confirmation{
		Token:     token,
		VerifyURL: fmt.Sprintf("%s/verify-booking?token=%s", s.frontendURL, url.QueryEscape(token)),
	}, nil
}

// QRCode renders the confirmation's verify URL as a PNG.
func (s *ConfirmationService) QRCode(appt *models.Appointment) ([]byte, error) {
	confirmation, err := s.Issue(appt)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(confirmation.VerifyURL, qrcode.Medium, qrCodeSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render qr code: %w", err)
	}
	return png, nil
}

// Verify opens a confirmation token and checks it against the current appointment.
func (s *ConfirmationService) Verify(ctx context.Context, token string) (*VerifiedConfirmation, error) {
	var payload ConfirmationPayload
	if err := s.tokens.Decrypt(token, &payload, confirmationFooter); err != nil {
		return nil, apperrors.ErrInvalidConfirmation
	}

	appt, err := s.appointments.GetByID(ctx, payload.AppointmentID)
	if err != nil {
		return nil, err
	}
	if appt.DoctorID != payload.DoctorID || appt.SlotDate != payload.SlotDate ||
		appt.SlotTime != payload.SlotTime || appt.TokenNumber != payload.TokenNumber {
		return nil, apperrors.ErrInvalidConfirmation
	}

	return &VerifiedConfirmation{
		ConfirmationPayload: payload,
		PaymentState:        appt.PaymentState,
		Cancelled:           appt.Cancelled,
		Completed:           appt.Completed,
	}, nil
}
