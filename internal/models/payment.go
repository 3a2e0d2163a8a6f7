package models

import (
	"net/url"
	"time"
)

// Payment request statuses. Unpaid is the only non-terminal state.
const (
	StatusUnpaid  = "Unpaid"
	StatusPaid    = "Paid"
	StatusExpired = "Expired"
)

// PaymentRequest represents a payment-link document in the payments collection.
type PaymentRequest struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	OwnerID   string    `bson:"owner_id" json:"owner_id"`
	PayeeName string    `bson:"payee_name" json:"payee_name"`
	PayeeUPI  string    `bson:"payee_upi" json:"payee_upi"`
	Amount    string    `bson:"amount" json:"amount"` // decimal string, never a float
	Note      string    `bson:"note,omitempty" json:"note,omitempty"`
	Status    string    `bson:"status" json:"status"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
}

// UPIURI builds the QR-encodable payment URI from the stored fields.
// Derived on demand, never persisted.
func (p *PaymentRequest) UPIURI() string {
	return "upi://pay?pa=" + p.PayeeUPI +
		"&pn=" + url.QueryEscape(p.PayeeName) +
		"&am=" + p.Amount +
		"&cu=INR"
}
