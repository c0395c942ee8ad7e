package mocks

import (
	"context"
	"time"

	"github.com/you/erpauth/domain"
)

// MockVerificationRepository implements domain.VerificationRepository interface for testing
type MockVerificationRepository struct {
	CreateFunc            func(ctx context.Context, code *domain.VerificationCode) error
	FindLatestUnusedFunc  func(ctx context.Context, userID string, purpose domain.CodePurpose) (*domain.VerificationCode, error)
	IncrementAttemptsFunc func(ctx context.Context, codeID string, maxAttempts int) (int, bool, error)
	MarkUsedFunc          func(ctx context.Context, codeID string, at time.Time) (bool, error)
	ExpireOutstandingFunc func(ctx context.Context, userID string, purpose domain.CodePurpose, now time.Time) (int64, error)
	DeleteExpiredFunc     func(ctx context.Context, now time.Time) (int64, error)
}

// NewMockVerificationRepository creates a new MockVerificationRepository with default behaviors
func NewMockVerificationRepository() *MockVerificationRepository {
	return &MockVerificationRepository{}
}

// Create stores a code
func (m *MockVerificationRepository) Create(ctx context.Context, code *domain.VerificationCode) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, code)
	}
	return nil
}

// FindLatestUnused returns the newest unused code
func (m *MockVerificationRepository) FindLatestUnused(ctx context.Context, userID string, purpose domain.CodePurpose) (*domain.VerificationCode, error) {
	if m.FindLatestUnusedFunc != nil {
		return m.FindLatestUnusedFunc(ctx, userID, purpose)
	}
	// Default behavior: no code
	return nil, domain.ErrNoCodeFound
}

// IncrementAttempts counts one verification attempt
func (m *MockVerificationRepository) IncrementAttempts(ctx context.Context, codeID string, maxAttempts int) (int, bool, error) {
	if m.IncrementAttemptsFunc != nil {
		return m.IncrementAttemptsFunc(ctx, codeID, maxAttempts)
	}
	return 1, true, nil
}

// MarkUsed consumes a code
func (m *MockVerificationRepository) MarkUsed(ctx context.Context, codeID string, at time.Time) (bool, error) {
	if m.MarkUsedFunc != nil {
		return m.MarkUsedFunc(ctx, codeID, at)
	}
	return true, nil
}

// ExpireOutstanding expires live codes of one purpose
func (m *MockVerificationRepository) ExpireOutstanding(ctx context.Context, userID string, purpose domain.CodePurpose, now time.Time) (int64, error) {
	if m.ExpireOutstandingFunc != nil {
		return m.ExpireOutstandingFunc(ctx, userID, purpose, now)
	}
	return 0, nil
}

// DeleteExpired removes expired unused codes
func (m *MockVerificationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if m.DeleteExpiredFunc != nil {
		return m.DeleteExpiredFunc(ctx, now)
	}
	return 0, nil
}

// Compile-time interface compliance verification
var _ domain.VerificationRepository = (*MockVerificationRepository)(nil)
