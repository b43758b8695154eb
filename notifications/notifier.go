package notifications

import (
	"context"
	"fmt"

	"TeleClinic/config"

	"go.uber.org/zap"
)

// Event names the booking lifecycle change a message reports.
type Event string

const (
	EventBooked    Event = "appointment.booked"
	EventCancelled Event = "appointment.cancelled"
	EventCompleted Event = "appointment.completed"
)

// Recipient is who a message goes to. Providers use whichever channel they support.
type Recipient struct {
	Name  string
	Phone string
	Email string
}

// Message is one outbound notification.
type Message struct {
	Event         Event
	AppointmentID string
	To            Recipient
	Subject       string
	Body          string
	HTML          string
}

// Notifier delivers a message over one provider.
type Notifier interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// New returns the notifier selected by NOTIFY_PROVIDER.
func New(cfg *config.AppConfig, log *zap.Logger) (Notifier, error) {
	switch cfg.NotifyProvider {
	case "whatsapp":
		return NewWhatsAppCloudSender(cfg.WhatsAppAccessToken, cfg.WhatsAppPhoneNumberID)
	case "twilio":
		return NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFrom)
	case "email":
		return NewEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	case "log", "":
		return NewLogNotifier(log), nil
	default:
		return nil, fmt.Errorf("unknown notification provider %q", cfg.NotifyProvider)
	}
}

// LogNotifier writes messages to the log. Used in development and as a fallback.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Name() string { return "log" }

func (n *LogNotifier) Send(_ context.Context, msg Message) error {
	n.log.Info("notification",
		zap.String("event", string(msg.Event)),
		zap.String("appointment_id", msg.AppointmentID),
		zap.String("to", msg.To.Name),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}
