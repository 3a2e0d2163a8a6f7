// Package store holds the durable keyed record stores behind the services.
// MongoDB backs production; the memory implementations back tests.
package store

import (
	"context"
	"errors"

	"github.com/neonpay/neonpay-gobackend/internal/models"
)

var (
	// ErrNotFound is returned when no payment matches the given id.
	ErrNotFound = errors.New("payment not found")
	// ErrUserNotFound is returned when no user matches the given id or username.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned on signup with a taken username.
	ErrUserExists = errors.New("user already exists")
)

// PaymentFilter narrows a ListByOwner query. Zero values mean no filtering.
type PaymentFilter struct {
	Search string // case-insensitive substring match on payee name
	Status string // exact status match
}

// PaymentStore is the durable keyed storage for payment requests.
type PaymentStore interface {
	// Insert persists a new record, assigns its ID and returns it.
	Insert(ctx context.Context, payment *models.PaymentRequest) (string, error)
	// Get fetches a single record by id.
	Get(ctx context.Context, id string) (*models.PaymentRequest, error)
	// UpdateStatus sets the status field of an existing record.
	UpdateStatus(ctx context.Context, id, status string) error
	// ListByOwner returns the owner's records, newest first.
	ListByOwner(ctx context.Context, ownerID string, filter PaymentFilter) ([]models.PaymentRequest, error)
}

// UserStore is the durable keyed storage for user accounts.
type UserStore interface {
	Insert(ctx context.Context, user *models.User) (string, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUsername(ctx context.Context, id, username string) (*models.User, error)
}
