package mocks

import (
	"context"
	"time"

	"github.com/you/erpauth/domain"
)

// MockUserRepository implements domain.UserRepository interface for testing
type MockUserRepository struct {
	CreateFunc            func(ctx context.Context, user *domain.User) error
	FindByEmailFunc       func(ctx context.Context, email string) (*domain.User, error)
	FindByIDFunc          func(ctx context.Context, id string) (*domain.User, error)
	RecordFailedLoginFunc func(ctx context.Context, userID string, threshold int, now, lockUntil time.Time) (*domain.User, error)
	ResetLockoutFunc      func(ctx context.Context, userID string) error
	RecordLoginFunc       func(ctx context.Context, userID string, at time.Time) error
	UpdatePasswordFunc    func(ctx context.Context, userID, passwordHash string, changedAt time.Time) error
	MarkEmailVerifiedFunc func(ctx context.Context, userID string) error

	ResetLockoutCalls int
}

// NewMockUserRepository creates a new MockUserRepository with default behaviors
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

// Create creates a new user
func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

// FindByEmail finds a user by email
func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// FindByID finds a user by ID
func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// RecordFailedLogin increments the failure counter
func (m *MockUserRepository) RecordFailedLogin(ctx context.Context, userID string, threshold int, now, lockUntil time.Time) (*domain.User, error) {
	if m.RecordFailedLoginFunc != nil {
		return m.RecordFailedLoginFunc(ctx, userID, threshold, now, lockUntil)
	}
	// Default behavior: first failure
	return &domain.User{ID: userID, IsActive: true, FailedLoginAttempts: 1}, nil
}

// ResetLockout clears the failure counter and lock
func (m *MockUserRepository) ResetLockout(ctx context.Context, userID string) error {
	m.ResetLockoutCalls++
	if m.ResetLockoutFunc != nil {
		return m.ResetLockoutFunc(ctx, userID)
	}
	return nil
}

// RecordLogin stamps the last login time
func (m *MockUserRepository) RecordLogin(ctx context.Context, userID string, at time.Time) error {
	if m.RecordLoginFunc != nil {
		return m.RecordLoginFunc(ctx, userID, at)
	}
	return nil
}

// UpdatePassword stores a new password hash
func (m *MockUserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string, changedAt time.Time) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, userID, passwordHash, changedAt)
	}
	return nil
}

// MarkEmailVerified sets the email verified flag
func (m *MockUserRepository) MarkEmailVerified(ctx context.Context, userID string) error {
	if m.MarkEmailVerifiedFunc != nil {
		return m.MarkEmailVerifiedFunc(ctx, userID)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.UserRepository = (*MockUserRepository)(nil)
