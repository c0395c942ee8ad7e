package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/you/erpauth/domain"
	"go.uber.org/zap"
)

// dummyPassword is hashed once and compared against when the email is unknown
// so both failure paths pay for a bcrypt comparison.
const dummyPassword = "erpauth-timing-equalizer"

// AuthSettings carries the lockout policy parameters
type AuthSettings struct {
	LockoutThreshold int
	LockoutDuration  time.Duration
}

// AuthServiceImpl implements domain.AuthService
type AuthServiceImpl struct {
	userRepo      domain.UserRepository
	sessionRepo   domain.SessionRepository
	passwordSvc   domain.PasswordService
	tokenSvc      domain.TokenService
	notifications domain.NotificationService
	publisher     domain.NotificationPublisher
	auditLogger   domain.AuditLogger
	logger        *zap.Logger
	lockout       LockoutPolicy
	now           func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo domain.UserRepository,
	sessionRepo domain.SessionRepository,
	passwordSvc domain.PasswordService,
	tokenSvc domain.TokenService,
	notifications domain.NotificationService,
	publisher domain.NotificationPublisher,
	auditLogger domain.AuditLogger,
	settings AuthSettings,
	logger *zap.Logger,
) *AuthServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthServiceImpl{
		userRepo:      userRepo,
		sessionRepo:   sessionRepo,
		passwordSvc:   passwordSvc,
		tokenSvc:      tokenSvc,
		notifications: notifications,
		publisher:     publisher,
		auditLogger:   auditLogger,
		logger:        logger,
		lockout:       NewLockoutPolicy(settings.LockoutThreshold, settings.LockoutDuration),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// SignIn implements domain.AuthService
func (s *AuthServiceImpl) SignIn(ctx context.Context, email, password string, client *domain.ClientContext) (*domain.AuthResult, error) {
	email = normalizeEmail(email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.passwordSvc.Verify(s.timingHash(), password)
			s.audit(ctx, domain.NewAuditEvent(domain.UserLoginFailureEvent, "").
				WithEmail(email).
				WithClientContext(client).
				WithError(domain.ErrInvalidCredentials))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, s.internal("sign in: find user", err)
	}

	if !user.IsActive {
		s.audit(ctx, domain.NewAuditEvent(domain.UserLoginFailureEvent, user.ID).
			WithClientContext(client).
			WithError(domain.ErrAccountDeactivated))
		return nil, domain.ErrAccountDeactivated
	}

	now := s.now()
	if s.lockout.IsLocked(user, now) {
		lockErr := &domain.LockedError{Remaining: s.lockout.RemainingLock(user, now)}
		s.audit(ctx, domain.NewAuditEvent(domain.UserLoginFailureEvent, user.ID).
			WithClientContext(client).
			WithError(lockErr))
		return nil, lockErr
	}

	if !s.passwordSvc.Verify(user.PasswordHash, password) {
		return nil, s.recordFailure(ctx, user, now, client)
	}

	if s.lockout.NeedsReset(user) {
		if err := s.userRepo.ResetLockout(ctx, user.ID); err != nil {
			return nil, s.internal("sign in: reset lockout", err)
		}
		user.FailedLoginAttempts = 0
		user.AccountLockedUntil = nil
	}

	result, err := s.issueSession(ctx, user, client, now)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, domain.NewAuditEvent(domain.UserLoginEvent, user.ID).
		WithEmail(user.Email).
		WithSession(result.SessionID).
		WithClientContext(client))
	return result, nil
}

// recordFailure applies the failed-attempt branch of the lockout policy
func (s *AuthServiceImpl) recordFailure(ctx context.Context, user *domain.User, now time.Time, client *domain.ClientContext) error {
	updated, err := s.userRepo.RecordFailedLogin(ctx, user.ID, s.lockout.Threshold, now, s.lockout.LockUntil(now))
	if err != nil {
		return s.internal("sign in: record failure", err)
	}

	decision := s.lockout.Failure(updated.FailedLoginAttempts, now)
	if decision.Locked {
		lockedUntil := decision.LockedUntil
		if s.lockout.IsLocked(updated, now) {
			lockedUntil = *updated.AccountLockedUntil
		}
		lockErr := &domain.LockedError{Remaining: lockedUntil.Sub(now)}
		s.audit(ctx, domain.NewAuditEvent(domain.AccountLockedEvent, user.ID).
			WithClientContext(client).
			WithMetadata("failed_attempts", updated.FailedLoginAttempts).
			WithMetadata("locked_until", lockedUntil.Format(time.RFC3339)).
			WithError(lockErr))
		return lockErr
	}

	s.audit(ctx, domain.NewAuditEvent(domain.UserLoginFailureEvent, user.ID).
		WithClientContext(client).
		WithMetadata("remaining_attempts", decision.Remaining).
		WithError(domain.ErrInvalidCredentials))
	return &domain.CredentialsError{RemainingAttempts: decision.Remaining}
}

// SetNewPassword implements domain.AuthService
func (s *AuthServiceImpl) SetNewPassword(ctx context.Context, identifier, newPassword, confirmPassword string, client *domain.ClientContext) (*domain.AuthResult, error) {
	var violations []string
	if confirmPassword != "" && newPassword != confirmPassword {
		violations = append(violations, RuleMismatch)
	}
	violations = append(violations, ValidatePassword(newPassword)...)
	if len(violations) > 0 {
		return nil, &domain.PasswordPolicyError{Violations: violations}
	}

	user, err := s.findByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, s.internal("set password: find user", err)
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDeactivated
	}

	hash, err := s.passwordSvc.Hash(newPassword)
	if err != nil {
		return nil, s.internal("set password: hash", err)
	}

	now := s.now()
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash, now); err != nil {
		return nil, s.internal("set password: update", err)
	}
	user.PasswordHash = hash
	user.PasswordChangedAt = &now
	user.FailedLoginAttempts = 0
	user.AccountLockedUntil = nil

	s.publish(domain.Notification{
		UserID:  user.ID,
		Title:   "Password changed",
		Message: "Your password was changed. If this was not you, contact your administrator.",
		Type:    domain.NotificationSecurity,
	})

	result, err := s.issueSession(ctx, user, client, now)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, domain.NewAuditEvent(domain.PasswordChangedEvent, user.ID).
		WithEmail(user.Email).
		WithSession(result.SessionID).
		WithClientContext(client))
	return result, nil
}

// RefreshAccessToken implements domain.AuthService. The refresh token itself is
// not rotated.
func (s *AuthServiceImpl) RefreshAccessToken(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	claims, err := s.tokenSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.logger.Debug("refresh token rejected", zap.Error(err))
		return nil, domain.ErrInvalidRefreshToken
	}
	if claims.Type != domain.TokenTypeRefresh {
		return nil, domain.ErrInvalidTokenType
	}

	session, err := s.sessionRepo.FindActiveByRefreshToken(ctx, claims.SessionID, refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrSessionExpiredOrInvalid
		}
		return nil, s.internal("refresh: find session", err)
	}

	now := s.now()
	if !session.Usable(now) {
		return nil, domain.ErrSessionExpiredOrInvalid
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrSessionExpiredOrInvalid
		}
		return nil, s.internal("refresh: find user", err)
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDeactivated
	}

	if err := s.sessionRepo.Touch(ctx, session.ID, now); err != nil {
		return nil, s.internal("refresh: touch session", err)
	}

	accessToken, accessExpires, err := s.tokenSvc.GenerateAccessToken(user)
	if err != nil {
		return nil, s.internal("refresh: access token", err)
	}

	s.audit(ctx, domain.NewAuditEvent(domain.TokenRefreshEvent, user.ID).WithSession(session.ID))

	return &domain.AuthResult{
		User:            s.summary(ctx, user),
		AccessToken:     accessToken,
		AccessExpiresAt: accessExpires,
		RefreshToken:    refreshToken,
		SessionID:       session.ID,
		SessionExpires:  session.ExpiresAt,
	}, nil
}

// Logout implements domain.AuthService. Failures are logged and never surface.
func (s *AuthServiceImpl) Logout(ctx context.Context, sessionID, refreshToken string) {
	if sessionID == "" && refreshToken != "" {
		claims, err := s.tokenSvc.ValidateRefreshToken(refreshToken)
		if err != nil {
			s.logger.Debug("logout with unusable refresh token", zap.Error(err))
			return
		}
		sessionID = claims.SessionID
	}
	if sessionID == "" {
		return
	}

	if err := s.sessionRepo.Deactivate(ctx, sessionID); err != nil {
		s.logger.Error("logout: deactivate session", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	s.audit(ctx, domain.NewAuditEvent(domain.UserLogoutEvent, "").WithSession(sessionID))
}

// LogoutFromAllDevices implements domain.AuthService
func (s *AuthServiceImpl) LogoutFromAllDevices(ctx context.Context, userID string) (int64, error) {
	count, err := s.sessionRepo.DeactivateAllForUser(ctx, userID)
	if err != nil {
		return 0, s.internal("logout all: deactivate sessions", err)
	}
	s.audit(ctx, domain.NewAuditEvent(domain.UserLogoutAllEvent, userID).WithMetadata("sessions", count))
	return count, nil
}

// GetActiveSessions implements domain.AuthService
func (s *AuthServiceImpl) GetActiveSessions(ctx context.Context, userID string) ([]domain.Session, error) {
	sessions, err := s.sessionRepo.FindActiveByUser(ctx, userID, s.now())
	if err != nil {
		return nil, s.internal("list sessions", err)
	}
	return sessions, nil
}

// CleanupExpiredSessions implements domain.AuthService
func (s *AuthServiceImpl) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	count, err := s.sessionRepo.DeactivateExpired(ctx, s.now())
	if err != nil {
		return 0, s.internal("cleanup sessions", err)
	}
	return count, nil
}

// issueSession mints the access token and a new session for an authenticated
// user and stamps the login time.
func (s *AuthServiceImpl) issueSession(ctx context.Context, user *domain.User, client *domain.ClientContext, now time.Time) (*domain.AuthResult, error) {
	accessToken, accessExpires, err := s.tokenSvc.GenerateAccessToken(user)
	if err != nil {
		return nil, s.internal("issue access token", err)
	}

	session, err := s.createSession(ctx, user.ID, client, now)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.RecordLogin(ctx, user.ID, now); err != nil {
		return nil, s.internal("record login", err)
	}
	user.LastLoginAt = &now

	return &domain.AuthResult{
		User:            s.summary(ctx, user),
		AccessToken:     accessToken,
		AccessExpiresAt: accessExpires,
		RefreshToken:    session.RefreshToken,
		SessionID:       session.SessionID,
		SessionExpires:  session.ExpiresAt,
	}, nil
}

// createSession is the only place sessions are built
func (s *AuthServiceImpl) createSession(ctx context.Context, userID string, client *domain.ClientContext, now time.Time) (*domain.NewSession, error) {
	sessionID := uuid.NewString()
	refreshToken, err := s.tokenSvc.GenerateRefreshToken(userID, sessionID)
	if err != nil {
		return nil, s.internal("issue refresh token", err)
	}

	session := &domain.Session{
		ID:             sessionID,
		UserID:         userID,
		RefreshToken:   refreshToken,
		IsActive:       true,
		ExpiresAt:      now.Add(s.tokenSvc.RefreshTTL()),
		LastActivityAt: now,
		CreatedAt:      now,
	}
	if client != nil {
		session.IPAddress = client.IPAddress
		session.UserAgent = client.UserAgent
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, s.internal("create session", err)
	}

	return &domain.NewSession{
		SessionID:    session.ID,
		RefreshToken: refreshToken,
		ExpiresAt:    session.ExpiresAt,
	}, nil
}

func (s *AuthServiceImpl) summary(ctx context.Context, user *domain.User) domain.UserSummary {
	out := domain.UserSummary{
		ID:            user.ID,
		Name:          user.FullName(),
		Email:         user.Email,
		RoleID:        user.RoleID,
		EmailVerified: user.EmailVerified,
	}
	if s.notifications != nil {
		unread, err := s.notifications.CountUnread(ctx, user.ID)
		if err != nil {
			s.logger.Warn("unread notification count unavailable", zap.String("user_id", user.ID), zap.Error(err))
		}
		out.UnreadNotifications = unread
	}
	return out
}

func (s *AuthServiceImpl) findByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	identifier = strings.TrimSpace(identifier)
	if _, err := uuid.Parse(identifier); err == nil {
		return s.userRepo.FindByID(ctx, identifier)
	}
	return s.userRepo.FindByEmail(ctx, normalizeEmail(identifier))
}

func (s *AuthServiceImpl) timingHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.passwordSvc.Hash(dummyPassword)
		if err != nil {
			s.logger.Error("timing hash unavailable", zap.Error(err))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func (s *AuthServiceImpl) publish(n domain.Notification) {
	if s.publisher != nil {
		s.publisher.Publish(n)
	}
}

func (s *AuthServiceImpl) audit(ctx context.Context, event *domain.AuditEvent) {
	if s.auditLogger != nil {
		s.auditLogger.LogEvent(ctx, event)
	}
}

// internal logs a store or infrastructure failure and hides it behind ErrInternal
func (s *AuthServiceImpl) internal(op string, err error) error {
	s.logger.Error(op, zap.Error(err))
	return domain.ErrInternal
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ domain.AuthService = (*AuthServiceImpl)(nil)
