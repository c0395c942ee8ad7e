package mocks

import (
	"context"
	"time"

	"github.com/you/erpauth/domain"
)

// MockSessionRepository implements domain.SessionRepository interface for testing
type MockSessionRepository struct {
	CreateFunc                   func(ctx context.Context, session *domain.Session) error
	FindByIDFunc                 func(ctx context.Context, sessionID string) (*domain.Session, error)
	FindActiveByRefreshTokenFunc func(ctx context.Context, sessionID, refreshToken string) (*domain.Session, error)
	FindActiveByUserFunc         func(ctx context.Context, userID string, now time.Time) ([]domain.Session, error)
	TouchFunc                    func(ctx context.Context, sessionID string, at time.Time) error
	DeactivateFunc               func(ctx context.Context, sessionID string) error
	DeactivateAllForUserFunc     func(ctx context.Context, userID string) (int64, error)
	DeactivateExpiredFunc        func(ctx context.Context, now time.Time) (int64, error)
}

// NewMockSessionRepository creates a new MockSessionRepository with default behaviors
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{}
}

// Create creates a new session
func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	// Default behavior: success
	return nil
}

// FindByID finds a session by ID
func (m *MockSessionRepository) FindByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, sessionID)
	}
	// Default behavior: not found
	return nil, domain.ErrSessionNotFound
}

// FindActiveByRefreshToken finds an active session holding the refresh token
func (m *MockSessionRepository) FindActiveByRefreshToken(ctx context.Context, sessionID, refreshToken string) (*domain.Session, error) {
	if m.FindActiveByRefreshTokenFunc != nil {
		return m.FindActiveByRefreshTokenFunc(ctx, sessionID, refreshToken)
	}
	// Default behavior: not found
	return nil, domain.ErrSessionNotFound
}

// FindActiveByUser lists a user's live sessions
func (m *MockSessionRepository) FindActiveByUser(ctx context.Context, userID string, now time.Time) ([]domain.Session, error) {
	if m.FindActiveByUserFunc != nil {
		return m.FindActiveByUserFunc(ctx, userID, now)
	}
	return nil, nil
}

// Touch bumps last activity
func (m *MockSessionRepository) Touch(ctx context.Context, sessionID string, at time.Time) error {
	if m.TouchFunc != nil {
		return m.TouchFunc(ctx, sessionID, at)
	}
	return nil
}

// Deactivate deactivates one session
func (m *MockSessionRepository) Deactivate(ctx context.Context, sessionID string) error {
	if m.DeactivateFunc != nil {
		return m.DeactivateFunc(ctx, sessionID)
	}
	return nil
}

// DeactivateAllForUser deactivates every session of a user
func (m *MockSessionRepository) DeactivateAllForUser(ctx context.Context, userID string) (int64, error) {
	if m.DeactivateAllForUserFunc != nil {
		return m.DeactivateAllForUserFunc(ctx, userID)
	}
	return 0, nil
}

// DeactivateExpired deactivates sessions past their expiry
func (m *MockSessionRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	if m.DeactivateExpiredFunc != nil {
		return m.DeactivateExpiredFunc(ctx, now)
	}
	return 0, nil
}

// Compile-time interface compliance verification
var _ domain.SessionRepository = (*MockSessionRepository)(nil)
