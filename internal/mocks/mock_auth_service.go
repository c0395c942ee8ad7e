package mocks

import (
	"context"
	"time"

	"github.com/you/erpauth/domain"
)

// MockAuthService implements domain.AuthService interface for testing
type MockAuthService struct {
	SignInFunc                 func(ctx context.Context, email, password string, client *domain.ClientContext) (*domain.AuthResult, error)
	SetNewPasswordFunc         func(ctx context.Context, identifier, newPassword, confirmPassword string, client *domain.ClientContext) (*domain.AuthResult, error)
	RefreshAccessTokenFunc     func(ctx context.Context, refreshToken string) (*domain.AuthResult, error)
	LogoutFunc                 func(ctx context.Context, sessionID, refreshToken string)
	LogoutFromAllDevicesFunc   func(ctx context.Context, userID string) (int64, error)
	GetActiveSessionsFunc      func(ctx context.Context, userID string) ([]domain.Session, error)
	CleanupExpiredSessionsFunc func(ctx context.Context) (int64, error)
}

// NewMockAuthService creates a new MockAuthService with default behaviors
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

func mockAuthResult(email string) *domain.AuthResult {
	now := time.Now()
	return &domain.AuthResult{
		User: domain.UserSummary{
			ID:     "11111111-1111-1111-1111-111111111111",
			Name:   "Test User",
			Email:  email,
			RoleID: "role-user",
		},
		AccessToken:     "mock_access_token",
		AccessExpiresAt: now.Add(30 * time.Minute),
		RefreshToken:    "mock_refresh_token",
		SessionID:       "mock_session_id",
		SessionExpires:  now.Add(7 * 24 * time.Hour),
	}
}

// SignIn authenticates a user
func (m *MockAuthService) SignIn(ctx context.Context, email, password string, client *domain.ClientContext) (*domain.AuthResult, error) {
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, email, password, client)
	}
	// Default behavior: return successful auth result
	return mockAuthResult(email), nil
}

// SetNewPassword replaces the password and signs the user in
func (m *MockAuthService) SetNewPassword(ctx context.Context, identifier, newPassword, confirmPassword string, client *domain.ClientContext) (*domain.AuthResult, error) {
	if m.SetNewPasswordFunc != nil {
		return m.SetNewPasswordFunc(ctx, identifier, newPassword, confirmPassword, client)
	}
	return mockAuthResult(identifier), nil
}

// RefreshAccessToken mints a new access token
func (m *MockAuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	if m.RefreshAccessTokenFunc != nil {
		return m.RefreshAccessTokenFunc(ctx, refreshToken)
	}
	return mockAuthResult("test@example.com"), nil
}

// Logout deactivates a session
func (m *MockAuthService) Logout(ctx context.Context, sessionID, refreshToken string) {
	if m.LogoutFunc != nil {
		m.LogoutFunc(ctx, sessionID, refreshToken)
	}
}

// LogoutFromAllDevices deactivates every session of the user
func (m *MockAuthService) LogoutFromAllDevices(ctx context.Context, userID string) (int64, error) {
	if m.LogoutFromAllDevicesFunc != nil {
		return m.LogoutFromAllDevicesFunc(ctx, userID)
	}
	return 0, nil
}

// GetActiveSessions lists live sessions
func (m *MockAuthService) GetActiveSessions(ctx context.Context, userID string) ([]domain.Session, error) {
	if m.GetActiveSessionsFunc != nil {
		return m.GetActiveSessionsFunc(ctx, userID)
	}
	return nil, nil
}

// CleanupExpiredSessions deactivates expired sessions
func (m *MockAuthService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	if m.CleanupExpiredSessionsFunc != nil {
		return m.CleanupExpiredSessionsFunc(ctx)
	}
	return 0, nil
}

// Compile-time interface compliance verification
var _ domain.AuthService = (*MockAuthService)(nil)
