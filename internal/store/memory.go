package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/neonpay/neonpay-gobackend/internal/models"
)

// MemoryPaymentStore is an in-process PaymentStore used by tests.
type MemoryPaymentStore struct {
	mu       sync.RWMutex
	payments map[string]models.PaymentRequest
}

func NewMemoryPaymentStore() *MemoryPaymentStore {
	return &MemoryPaymentStore{payments: make(map[string]models.PaymentRequest)}
}

func (s *MemoryPaymentStore) Insert(_ context.Context, payment *models.PaymentRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payment.ID = uuid.NewString()
	s.payments[payment.ID] = *payment
	return payment.ID, nil
}

func (s *MemoryPaymentStore) Get(_ context.Context, id string) (*models.PaymentRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payment, ok := s.payments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &payment, nil
}

func (s *MemoryPaymentStore) UpdateStatus(_ context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payment, ok := s.payments[id]
	if !ok {
		return ErrNotFound
	}
	payment.Status = status
	s.payments[id] = payment
	return nil
}

func (s *MemoryPaymentStore) ListByOwner(_ context.Context, ownerID string, filter PaymentFilter) ([]models.PaymentRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payments []models.PaymentRequest
	for _, payment := range s.payments {
		if payment.OwnerID != ownerID {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(payment.PayeeName), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.Status != "" && payment.Status != filter.Status {
			continue
		}
		payments = append(payments, payment)
	}

	sort.Slice(payments, func(i, j int) bool {
		return payments[i].CreatedAt.After(payments[j].CreatedAt)
	})
	return payments, nil
}

// MemoryUserStore is an in-process UserStore used by tests.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]models.User)}
}

func (s *MemoryUserStore) Insert(_ context.Context, user *models.User) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username {
			return "", ErrUserExists
		}
	}

	user.ID = uuid.NewString()
	s.users[user.ID] = *user
	return user.ID, nil
}

func (s *MemoryUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (s *MemoryUserStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Username == username {
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *MemoryUserStore) UpdateUsername(_ context.Context, id, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	user.Username = username
	s.users[id] = user
	return &user, nil
}
