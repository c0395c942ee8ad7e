package mocks

import (
	"context"

	"github.com/you/erpauth/domain"
)

// MockVerificationService implements domain.VerificationService interface for testing
type MockVerificationService struct {
	SendVerificationCodeFunc        func(ctx context.Context, email string, client *domain.ClientContext) (*domain.CodeDispatch, error)
	VerifyCodeFunc                  func(ctx context.Context, email, code string) error
	SendPasswordResetCodeFunc       func(ctx context.Context, email string, client *domain.ClientContext) (*domain.CodeDispatch, error)
	VerifyPasswordResetCodeFunc     func(ctx context.Context, email, code string) error
	SendTwoFactorCodeFunc           func(ctx context.Context, email string, client *domain.ClientContext) (*domain.CodeDispatch, error)
	VerifyTwoFactorCodeFunc         func(ctx context.Context, email, code string) error
	CleanupExpiredVerificationsFunc func(ctx context.Context) (int64, error)
}

// NewMockVerificationService creates a new MockVerificationService with default behaviors
func NewMockVerificationService() *MockVerificationService {
	return &MockVerificationService{}
}

// SendVerificationCode issues an email verification code
func (m *MockVerificationService) SendVerificationCode(ctx context.Context, email string, client *domain.ClientContext) (*domain.CodeDispatch, error) {
	if m.SendVerificationCodeFunc != nil {
		return m.SendVerificationCodeFunc(ctx, email, client)
	}
	return &domain.CodeDispatch{Purpose: domain.PurposeEmailVerification, ExpiresInMinutes: 10}, nil
}

// VerifyCode checks an email verification code
func (m *MockVerificationService) VerifyCode(ctx context.Context, email, code string) error {
	if m.VerifyCodeFunc != nil {
		return m.VerifyCodeFunc(ctx, email, code)
	}
	return nil
}

// SendPasswordResetCode issues a password reset code
func (m *MockVerificationService) SendPasswordResetCode(ctx context.Context, email string, client *domain.ClientContext) (*domain.CodeDispatch, error) {
	if m.SendPasswordResetCodeFunc != nil {
		return m.SendPasswordResetCodeFunc(ctx, email, client)
	}
	return &domain.CodeDispatch{Purpose: domain.PurposePasswordReset, ExpiresInMinutes: 10}, nil
}

// VerifyPasswordResetCode checks a password reset code
func (m *MockVerificationService) VerifyPasswordResetCode(ctx context.Context, email, code string) error {
	if m.VerifyPasswordResetCodeFunc != nil {
		return m.VerifyPasswordResetCodeFunc(ctx, email, code)
	}
	return nil
}

// SendTwoFactorCode issues a two-factor code
func (m *MockVerificationService) SendTwoFactorCode(ctx context.Context, email string, client *domain.ClientContext) (*domain.CodeDispatch, error) {
	if m.SendTwoFactorCodeFunc != nil {
		return m.SendTwoFactorCodeFunc(ctx, email, client)
	}
	return &domain.CodeDispatch{Purpose: domain.PurposeTwoFactor, ExpiresInMinutes: 10}, nil
}

// VerifyTwoFactorCode checks a two-factor code
func (m *MockVerificationService) VerifyTwoFactorCode(ctx context.Context, email, code string) error {
	if m.VerifyTwoFactorCodeFunc != nil {
		return m.VerifyTwoFactorCodeFunc(ctx, email, code)
	}
	return nil
}

// CleanupExpiredVerifications deletes expired codes
func (m *MockVerificationService) CleanupExpiredVerifications(ctx context.Context) (int64, error) {
	if m.CleanupExpiredVerificationsFunc != nil {
		return m.CleanupExpiredVerificationsFunc(ctx)
	}
	return 0, nil
}

// Compile-time interface compliance verification
var _ domain.VerificationService = (*MockVerificationService)(nil)
