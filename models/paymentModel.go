package models

import (
	"time"
)

// Payment providers.
const (
	ProviderStripe   = "stripe"
	ProviderRazorpay = "razorpay"
)

// Payment ledger statuses.
const (
	PaymentStatusCreated = "created"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// Payment records one checkout attempt with a gateway.
type Payment struct {
	ID            string       `gorm:"primaryKey;column:id" json:"id"`
	AppointmentID string       `gorm:"column:appointment_id;not null;index" json:"appointment_id"`
	Provider      string       `gorm:"column:provider;not null;check:provider IN ('stripe', 'razorpay')" json:"provider"`
	ProviderRef   string       `gorm:"column:provider_ref;not null;uniqueIndex" json:"provider_ref"`
	Amount        float64      `gorm:"column:amount;not null" json:"amount"`
	Currency      string       `gorm:"column:currency;not null" json:"currency"`
	Status        string       `gorm:"column:status;not null;check:status IN ('created', 'paid', 'failed')" json:"status"`
	EventID       string       `gorm:"column:event_id" json:"event_id,omitempty"`
	CreatedAt     time.Time    `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	Appointment   *Appointment `gorm:"foreignKey:AppointmentID;references:ID" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}

// CheckoutSession is what a client needs to complete payment with the gateway.
type CheckoutSession struct {
	PaymentID   string  `json:"paymentId"`
	Provider    string  `json:"provider"`
	ProviderRef string  `json:"providerRef"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	RedirectURL string  `json:"redirectUrl,omitempty"`
	PublicKey   string  `json:"publicKey,omitempty"`
}
