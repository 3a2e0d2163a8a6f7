package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/neonpay/neonpay-gobackend/internal/clock"
	"github.com/neonpay/neonpay-gobackend/internal/models"
	"github.com/neonpay/neonpay-gobackend/internal/store"
)

// paymentTTL is how long a request stays payable after creation.
const paymentTTL = 10 * time.Minute

// maxNoteLength caps the optional note shown on the payer page.
const maxNoteLength = 18

var (
	// ErrNotFound is returned when the payment id is unknown.
	ErrNotFound = store.ErrNotFound
	// ErrNotOwner is returned when the caller does not own the payment.
	ErrNotOwner = errors.New("not the owner of this payment")
	// ErrExpired is returned when the payment window has passed. Handlers
	// surface it distinctly so clients can render "this request has expired".
	ErrExpired = errors.New("payment request has expired")
)

// ValidationError reports a rejected creation input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

// EventPublisher receives the full updated record when a payment changes
// state. The websocket hub implements it in production.
type EventPublisher interface {
	Publish(ownerID string, payment *models.PaymentRequest)
}

// PublicPayment is the payer-facing view of a request. The URI is empty
// unless the request is still payable.
type PublicPayment struct {
	UPIURI    string    `json:"upiURI"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Stats aggregates a user's payment history.
type Stats struct {
	TotalPayments  int             `json:"totalPayments"`
	PaidPayments   int             `json:"paidPayments"`
	UnpaidPayments int             `json:"unpaidPayments"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
}

// PaymentService owns the payment lifecycle: creation, expiry, confirmation
// and the events they emit. All status transitions go through it.
type PaymentService struct {
	store  store.PaymentStore
	clock  clock.Clock
	events EventPublisher
}

func NewPaymentService(s store.PaymentStore, c clock.Clock, events EventPublisher) *PaymentService {
	return &PaymentService{store: s, clock: c, events: events}
}

// Create validates the inputs and persists a new Unpaid request expiring
// ten minutes from now. No notification is emitted on create.
func (s *PaymentService) Create(ctx context.Context, ownerID, payeeName, payeeUPI, amount, note string) (*models.PaymentRequest, error) {
	payeeName = strings.TrimSpace(payeeName)
	payeeUPI = strings.TrimSpace(payeeUPI)
	amount = strings.TrimSpace(amount)
	note = strings.TrimSpace(note)

	if payeeName == "" {
		return nil, &ValidationError{Field: "name", Reason: "is required"}
	}
	if payeeUPI == "" {
		return nil, &ValidationError{Field: "upi", Reason: "is required"}
	}
	if amount == "" {
		return nil, &ValidationError{Field: "amount", Reason: "is required"}
	}
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, &ValidationError{Field: "amount", Reason: "must be a decimal number"}
	}
	if !value.IsPositive() {
		return nil, &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if len(note) > maxNoteLength {
		return nil, &ValidationError{Field: "note", Reason: fmt.Sprintf("must be at most %d characters", maxNoteLength)}
	}

	now := s.clock.Now()
	payment := &models.PaymentRequest{
		OwnerID:   ownerID,
		PayeeName: payeeName,
		PayeeUPI:  payeeUPI,
		Amount:    amount,
		Note:      note,
		Status:    models.StatusUnpaid,
		CreatedAt: now,
		ExpiresAt: now.Add(paymentTTL),
	}
	if _, err := s.store.Insert(ctx, payment); err != nil {
		log.Printf("Failed to save payment: %v", err)
		return nil, err
	}
	return payment, nil
}

// GetPublic serves the payer page. Expiry is discovered lazily here: an
// Unpaid record past its deadline is transitioned to Expired and persisted
// before responding. There is no background sweep; every single-record read
// re-checks, which keeps the answer correct without a scheduler.
func (s *PaymentService) GetPublic(ctx context.Context, id string) (*PublicPayment, error) {
	payment, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if payment.Status == models.StatusUnpaid && s.clock.Now().After(payment.ExpiresAt) {
		if err := s.store.UpdateStatus(ctx, payment.ID, models.StatusExpired); err != nil {
			log.Printf("Failed to expire payment %s: %v", payment.ID, err)
			return nil, err
		}
		payment.Status = models.StatusExpired
	}

	public := &PublicPayment{Status: payment.Status, ExpiresAt: payment.ExpiresAt}
	if payment.Status == models.StatusUnpaid {
		public.UPIURI = payment.UPIURI()
	}
	return public, nil
}

// List returns the owner's requests, newest first. An unknown status value
// is ignored rather than rejected. Listed records are not lazily expired;
// only the single-record read path does that.
func (s *PaymentService) List(ctx context.Context, ownerID, search, status string) ([]models.PaymentRequest, error) {
	filter := store.PaymentFilter{Search: search}
	switch status {
	case models.StatusPaid, models.StatusUnpaid, models.StatusExpired:
		filter.Status = status
	}
	return s.store.ListByOwner(ctx, ownerID, filter)
}

// Confirm marks a request Paid on behalf of its owner and notifies the
// owner's live connections. Expiry is authoritative by time: a request past
// its deadline is rejected no matter what status the store still holds, so
// a race with the lazy-expiry path cannot let a late confirmation through.
// Confirming an already-Paid request is an idempotent no-op.
func (s *PaymentService) Confirm(ctx context.Context, id, callerID string) (*models.PaymentRequest, error) {
	payment, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.OwnerID != callerID {
		return nil, ErrNotOwner
	}
	if payment.Status == models.StatusExpired || s.clock.Now().After(payment.ExpiresAt) {
		return nil, ErrExpired
	}
	if payment.Status == models.StatusPaid {
		return payment, nil
	}

	if err := s.store.UpdateStatus(ctx, payment.ID, models.StatusPaid); err != nil {
		log.Printf("Failed to confirm payment %s: %v", payment.ID, err)
		return nil, err
	}
	payment.Status = models.StatusPaid

	if s.events != nil {
		s.events.Publish(payment.OwnerID, payment)
	}
	return payment, nil
}

// Stats derives the owner's aggregate counts and the decimal sum of Paid
// amounts. Pure read: it never triggers expiry.
func (s *PaymentService) Stats(ctx context.Context, ownerID string) (*Stats, error) {
	payments, err := s.store.ListByOwner(ctx, ownerID, store.PaymentFilter{})
	if err != nil {
		return nil, err
	}

	stats := &Stats{TotalPayments: len(payments)}
	for _, payment := range payments {
		switch payment.Status {
		case models.StatusPaid:
			stats.PaidPayments++
			value, err := decimal.NewFromString(payment.Amount)
			if err != nil {
				log.Printf("Skipping unparseable amount %q on payment %s", payment.Amount, payment.ID)
				continue
			}
			stats.TotalAmount = stats.TotalAmount.Add(value)
		case models.StatusUnpaid:
			stats.UnpaidPayments++
		}
	}
	return stats, nil
}
