package domain

import (
	"context"
	"time"
)

// UserRepository defines credential store operations
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	// RecordFailedLogin increments the failure counter in one statement and sets
	// the lock when the incremented value reaches threshold. A lock that ended
	// at or before now is cleared by the same statement and counting restarts.
	RecordFailedLogin(ctx context.Context, userID string, threshold int, now, lockUntil time.Time) (*User, error)
	ResetLockout(ctx context.Context, userID string) error
	RecordLogin(ctx context.Context, userID string, at time.Time) error
	UpdatePassword(ctx context.Context, userID, passwordHash string, changedAt time.Time) error
	MarkEmailVerified(ctx context.Context, userID string) error
}

// SessionRepository defines session store operations
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, sessionID string) (*Session, error)
	// FindActiveByRefreshToken matches id, refresh token and active flag in a single query.
	FindActiveByRefreshToken(ctx context.Context, sessionID, refreshToken string) (*Session, error)
	FindActiveByUser(ctx context.Context, userID string, now time.Time) ([]Session, error)
	Touch(ctx context.Context, sessionID string, at time.Time) error
	Deactivate(ctx context.Context, sessionID string) error
	DeactivateAllForUser(ctx context.Context, userID string) (int64, error)
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

// VerificationRepository defines verification code store operations
type VerificationRepository interface {
	Create(ctx context.Context, code *VerificationCode) error
	FindLatestUnused(ctx context.Context, userID string, purpose CodePurpose) (*VerificationCode, error)
	// IncrementAttempts counts one attempt against an unused code still under
	// maxAttempts and returns the new count. ok is false when nothing was counted.
	IncrementAttempts(ctx context.Context, codeID string, maxAttempts int) (attempts int, ok bool, err error)
	MarkUsed(ctx context.Context, codeID string, at time.Time) (bool, error)
	ExpireOutstanding(ctx context.Context, userID string, purpose CodePurpose, now time.Time) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// AuthService defines authentication business logic
type AuthService interface {
	SignIn(ctx context.Context, email, password string, client *ClientContext) (*AuthResult, error)
	SetNewPassword(ctx context.Context, identifier, newPassword, confirmPassword string, client *ClientContext) (*AuthResult, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (*AuthResult, error)
	Logout(ctx context.Context, sessionID, refreshToken string)
	LogoutFromAllDevices(ctx context.Context, userID string) (int64, error)
	GetActiveSessions(ctx context.Context, userID string) ([]Session, error)
	CleanupExpiredSessions(ctx context.Context) (int64, error)
}

// VerificationService defines verification code business logic
type VerificationService interface {
	SendVerificationCode(ctx context.Context, email string, client *ClientContext) (*CodeDispatch, error)
	VerifyCode(ctx context.Context, email, code string) error
	SendPasswordResetCode(ctx context.Context, email string, client *ClientContext) (*CodeDispatch, error)
	VerifyPasswordResetCode(ctx context.Context, email, code string) error
	SendTwoFactorCode(ctx context.Context, email string, client *ClientContext) (*CodeDispatch, error)
	VerifyTwoFactorCode(ctx context.Context, email, code string) error
	CleanupExpiredVerifications(ctx context.Context) (int64, error)
}

// PasswordService defines password operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService defines token operations
type TokenService interface {
	GenerateAccessToken(user *User) (string, time.Time, error)
	GenerateRefreshToken(userID, sessionID string) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
	ValidateRefreshToken(token string) (*TokenClaims, error)
	RefreshTTL() time.Duration
}

// MailSender delivers HTML mail
type MailSender interface {
	SendMail(ctx context.Context, to, subject, htmlBody string) error
}

// SMSSender delivers text messages
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// NotificationService is the notification collaborator
type NotificationService interface {
	Notify(ctx context.Context, n Notification) error
	CountUnread(ctx context.Context, userID string) (int64, error)
}

// NotificationPublisher queues notifications without waiting on delivery
type NotificationPublisher interface {
	Publish(n Notification)
}

// Token types carried in the "type" claim
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenClaims represents JWT token claims
type TokenClaims struct {
	ID        string `json:"jti"`
	UserID    string `json:"user_id"`
	Email     string `json:"email,omitempty"`
	RoleID    string `json:"role_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Type      string `json:"type"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}
