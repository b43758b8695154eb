package apperrors

import (
	"errors"
	"fmt"
)

// ErrorType groups failures by how callers should react to them.
type ErrorType string

const (
	TypeValidation   ErrorType = "VALIDATION"
	TypeConflict     ErrorType = "CONFLICT"
	TypeNotFound     ErrorType = "NOT_FOUND"
	TypeState        ErrorType = "STATE"
	TypeDependency   ErrorType = "DEPENDENCY"
	TypeUnauthorized ErrorType = "UNAUTHORIZED"
	TypeForbidden    ErrorType = "FORBIDDEN"
	TypeInternal     ErrorType = "INTERNAL"
)

// Stable codes surfaced to API clients.
const (
	CodeDoctorNotFound      = "DOCTOR_NOT_FOUND"
	CodeDoctorUnavailable   = "DOCTOR_UNAVAILABLE"
	CodeSlotUnavailable     = "SLOT_UNAVAILABLE"
	CodeMissingSymptoms     = "MISSING_SYMPTOMS"
	CodeInvalidSlot         = "INVALID_SLOT"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeAlreadyCancelled    = "ALREADY_CANCELLED"
	CodeAlreadyCompleted    = "ALREADY_COMPLETED"
	CodeAppointmentNotFound = "APPOINTMENT_NOT_FOUND"
	CodeAlreadyPaid         = "ALREADY_PAID"
	CodeDoctorExists        = "DOCTOR_EXISTS"
	CodeDoctorInUse         = "DOCTOR_HAS_APPOINTMENTS"
	CodeInvalidSignature    = "INVALID_SIGNATURE"
	CodeInvalidConfirmation = "INVALID_CONFIRMATION"
	CodePatientNotFound     = "PATIENT_NOT_FOUND"
	CodePaymentNotFound     = "PAYMENT_NOT_FOUND"
	CodePaymentProvider     = "PAYMENT_PROVIDER_ERROR"
	CodeNotificationFailed  = "NOTIFICATION_FAILED"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeInternal            = "INTERNAL"
)

// AppError is the error value returned across service boundaries.
type AppError struct {
	Type    ErrorType
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on Code so callers can compare against the exported sentinels.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinels for errors.Is checks.
var (
	ErrDoctorNotFound      = &AppError{Type: TypeNotFound, Code: CodeDoctorNotFound, Message: "doctor not found"}
	ErrDoctorUnavailable   = &AppError{Type: TypeState, Code: CodeDoctorUnavailable, Message: "doctor is not accepting bookings"}
	ErrSlotUnavailable     = &AppError{Type: TypeConflict, Code: CodeSlotUnavailable, Message: "slot was just taken by someone else"}
	ErrMissingSymptoms     = &AppError{Type: TypeValidation, Code: CodeMissingSymptoms, Message: "at least one symptom is required"}
	ErrAlreadyCancelled    = &AppError{Type: TypeState, Code: CodeAlreadyCancelled, Message: "appointment is already cancelled"}
	ErrAlreadyCompleted    = &AppError{Type: TypeState, Code: CodeAlreadyCompleted, Message: "appointment is already completed"}
	ErrAppointmentNotFound = &AppError{Type: TypeNotFound, Code: CodeAppointmentNotFound, Message: "appointment not found"}
	ErrPatientNotFound     = &AppError{Type: TypeNotFound, Code: CodePatientNotFound, Message: "patient not found"}
	ErrPaymentNotFound     = &AppError{Type: TypeNotFound, Code: CodePaymentNotFound, Message: "payment not found"}
	ErrForbidden           = &AppError{Type: TypeForbidden, Code: CodeForbidden, Message: "not allowed to access this resource"}
	ErrAlreadyPaid         = &AppError{Type: TypeState, Code: CodeAlreadyPaid, Message: "appointment is already paid"}
	ErrDoctorExists        = &AppError{Type: TypeConflict, Code: CodeDoctorExists, Message: "a doctor with this email already exists"}
	ErrDoctorInUse         = &AppError{Type: TypeState, Code: CodeDoctorInUse, Message: "doctor still has appointments; mark unavailable instead"}
	ErrInvalidSignature    = &AppError{Type: TypeUnauthorized, Code: CodeInvalidSignature, Message: "webhook signature verification failed"}
	ErrInvalidConfirmation = &AppError{Type: TypeValidation, Code: CodeInvalidConfirmation, Message: "confirmation code is not valid"}
)

func NewValidationError(code, message string) *AppError {
	return &AppError{Type: TypeValidation, Code: code, Message: message}
}

func NewInvalidSlotError(message string) *AppError {
	return &AppError{Type: TypeValidation, Code: CodeInvalidSlot, Message: message}
}

func NewInvalidInputError(err error) *AppError {
	return &AppError{Type: TypeValidation, Code: CodeInvalidInput, Message: err.Error(), Err: err}
}

func NewDependencyError(code, message string, err error) *AppError {
	return &AppError{Type: TypeDependency, Code: code, Message: message, Err: err}
}

func NewInternalError(message string, err error) *AppError {
	return &AppError{Type: TypeInternal, Code: CodeInternal, Message: message, Err: err}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Type: TypeUnauthorized, Code: CodeUnauthorized, Message: message}
}

// As extracts an *AppError from err, wrapping unknown errors as internal.
func As(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError("internal server error", err)
}

// TypeOf reports the ErrorType of err, or TypeInternal for foreign errors.
func TypeOf(err error) ErrorType {
	return As(err).Type
}
