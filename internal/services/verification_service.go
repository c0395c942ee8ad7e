package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/you/erpauth/domain"
	"go.uber.org/zap"
)

const (
	DefaultCodeTTL         = 10 * time.Minute
	DefaultCodeMaxAttempts = 5

	codeMin   = 100000
	codeRange = 900000
)

// VerificationSettings configures code lifetime and attempt budget
type VerificationSettings struct {
	CodeTTL     time.Duration
	MaxAttempts int
}

// VerificationServiceImpl implements domain.VerificationService
type VerificationServiceImpl struct {
	userRepo    domain.UserRepository
	codeRepo    domain.VerificationRepository
	mailer      domain.MailSender
	sms         domain.SMSSender
	publisher   domain.NotificationPublisher
	auditLogger domain.AuditLogger
	logger      *zap.Logger
	codeTTL     time.Duration
	maxAttempts int
	now         func() time.Time
	generate    func() (string, error)
}

// NewVerificationService creates a new verification service. sms may be nil,
// two-factor codes then go out by mail.
func NewVerificationService(
	userRepo domain.UserRepository,
	codeRepo domain.VerificationRepository,
	mailer domain.MailSender,
	sms domain.SMSSender,
	publisher domain.NotificationPublisher,
	auditLogger domain.AuditLogger,
	settings VerificationSettings,
	logger *zap.Logger,
) *VerificationServiceImpl {
	if settings.CodeTTL <= 0 {
		settings.CodeTTL = DefaultCodeTTL
	}
	if settings.MaxAttempts <= 0 {
		settings.MaxAttempts = DefaultCodeMaxAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VerificationServiceImpl{
		userRepo:    userRepo,
		codeRepo:    codeRepo,
		mailer:      mailer,
		sms:         sms,
		publisher:   publisher,
		auditLogger: auditLogger,
		logger:      logger,
		codeTTL:     settings.CodeTTL,
		maxAttempts: settings.MaxAttempts,
		now:         func() time.Time { return time.Now().UTC() },
		generate:    GenerateCode,
	}
}

// GenerateCode returns a uniformly random six digit code in 100000-999999
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeRange))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}

// SendVerificationCode implements domain.VerificationService
func (s *VerificationServiceImpl) SendVerificationCode(ctx context.Context, email string, client *domain.ClientContext) (*domain.CodeDispatch, error) {
	return s.send(ctx, email, domain.PurposeEmailVerification, client)
}

// VerifyCode implements domain.VerificationService
func (s *VerificationServiceImpl) VerifyCode(ctx context.Context, email, code string) error {
	return s.verify(ctx, email, code, domain.PurposeEmailVerification)
}

// SendPasswordResetCode implements domain.VerificationService
func (s *VerificationServiceImpl) SendPasswordResetCode(ctx context.Context, email string, client *domain.ClientContext) (*domain.CodeDispatch, error) {
	return s.send(ctx, email, domain.PurposePasswordReset, client)
}

// VerifyPasswordResetCode implements domain.VerificationService
func (s *VerificationServiceImpl) VerifyPasswordResetCode(ctx context.Context, email, code string) error {
	return s.verify(ctx, email, code, domain.PurposePasswordReset)
}

// SendTwoFactorCode implements domain.VerificationService
func (s *VerificationServiceImpl) SendTwoFactorCode(ctx context.Context, email string, client *domain.ClientContext) (*domain.CodeDispatch, error) {
	return s.send(ctx, email, domain.PurposeTwoFactor, client)
}

// VerifyTwoFactorCode implements domain.VerificationService
func (s *VerificationServiceImpl) VerifyTwoFactorCode(ctx context.Context, email, code string) error {
	return s.verify(ctx, email, code, domain.PurposeTwoFactor)
}

// CleanupExpiredVerifications implements domain.VerificationService
func (s *VerificationServiceImpl) CleanupExpiredVerifications(ctx context.Context) (int64, error) {
	count, err := s.codeRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, s.internal("cleanup codes", err)
	}
	return count, nil
}

func (s *VerificationServiceImpl) send(ctx context.Context, email string, purpose domain.CodePurpose, client *domain.ClientContext) (*domain.CodeDispatch, error) {
	user, err := s.findUser(ctx, email)
	if err != nil {
		return nil, err
	}

	now := s.now()
	outstanding, err := s.codeRepo.FindLatestUnused(ctx, user.ID, purpose)
	switch {
	case err == nil:
		if !outstanding.Expired(now) && outstanding.AttemptCount >= s.maxAttempts {
			return nil, domain.ErrTooManyAttempts
		}
	case !errors.Is(err, domain.ErrNoCodeFound):
		return nil, s.internal("send code: find outstanding", err)
	}

	if _, err := s.codeRepo.ExpireOutstanding(ctx, user.ID, purpose, now); err != nil {
		return nil, s.internal("send code: expire outstanding", err)
	}

	code, err := s.generate()
	if err != nil {
		return nil, s.internal("send code: generate", err)
	}

	record := &domain.VerificationCode{
		UserID:    user.ID,
		Email:     user.Email,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: now.Add(s.codeTTL),
		CreatedAt: now,
	}
	if client != nil {
		record.IPAddress = client.IPAddress
		record.UserAgent = client.UserAgent
	}
	if err := s.codeRepo.Create(ctx, record); err != nil {
		return nil, s.internal("send code: store", err)
	}

	minutes := int(s.codeTTL / time.Minute)
	if err := s.deliver(ctx, user, purpose, code, minutes); err != nil {
		s.logger.Error("verification code delivery failed",
			zap.String("user_id", user.ID),
			zap.String("purpose", string(purpose)),
			zap.Error(err))
		return nil, domain.ErrDeliveryFailed
	}

	s.audit(ctx, domain.NewAuditEvent(domain.CodeRequestEvent, user.ID).
		WithEmail(user.Email).
		WithClientContext(client).
		WithMetadata("purpose", string(purpose)))

	return &domain.CodeDispatch{Purpose: purpose, ExpiresInMinutes: minutes}, nil
}

func (s *VerificationServiceImpl) verify(ctx context.Context, email, code string, purpose domain.CodePurpose) error {
	user, err := s.findUser(ctx, email)
	if err != nil {
		return err
	}

	record, err := s.codeRepo.FindLatestUnused(ctx, user.ID, purpose)
	if err != nil {
		if errors.Is(err, domain.ErrNoCodeFound) {
			return domain.ErrNoCodeFound
		}
		return s.internal("verify code: find", err)
	}

	// counted before the comparison, so a correct but expired code still costs an attempt
	attempts, counted, err := s.codeRepo.IncrementAttempts(ctx, record.ID, s.maxAttempts)
	if err != nil {
		return s.internal("verify code: count attempt", err)
	}
	if !counted {
		return s.verifyFailed(ctx, user, purpose, domain.ErrTooManyAttempts)
	}

	now := s.now()
	if record.Expired(now) {
		return s.verifyFailed(ctx, user, purpose, domain.ErrCodeExpired)
	}

	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(code)), []byte(record.Code)) != 1 {
		remaining := s.maxAttempts - attempts
		if remaining < 0 {
			remaining = 0
		}
		return s.verifyFailed(ctx, user, purpose, &domain.InvalidCodeError{RemainingAttempts: remaining})
	}

	// the flag is set before the code is spent so a failed write leaves the code usable
	if purpose == domain.PurposeEmailVerification {
		if err := s.userRepo.MarkEmailVerified(ctx, user.ID); err != nil {
			return s.internal("verify code: mark email verified", err)
		}
	}

	consumed, err := s.codeRepo.MarkUsed(ctx, record.ID, now)
	if err != nil {
		return s.internal("verify code: mark used", err)
	}
	if !consumed {
		return domain.ErrNoCodeFound
	}

	if purpose == domain.PurposeEmailVerification {
		s.publish(domain.Notification{
			UserID:  user.ID,
			Title:   "Email verified",
			Message: "Your email address has been verified.",
			Type:    domain.NotificationAccount,
		})
	}

	s.audit(ctx, domain.NewAuditEvent(domain.CodeVerifyEvent, user.ID).
		WithEmail(user.Email).
		WithMetadata("purpose", string(purpose)))
	return nil
}

func (s *VerificationServiceImpl) verifyFailed(ctx context.Context, user *domain.User, purpose domain.CodePurpose, err error) error {
	s.audit(ctx, domain.NewAuditEvent(domain.CodeVerifyFailureEvent, user.ID).
		WithEmail(user.Email).
		WithMetadata("purpose", string(purpose)).
		WithError(err))
	return err
}

func (s *VerificationServiceImpl) findUser(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrEmailNotFound
		}
		return nil, s.internal("find user", err)
	}
	return user, nil
}

func (s *VerificationServiceImpl) deliver(ctx context.Context, user *domain.User, purpose domain.CodePurpose, code string, minutes int) error {
	if purpose == domain.PurposeTwoFactor && s.sms != nil && user.Phone != "" {
		return s.sms.SendSMS(ctx, user.Phone, fmt.Sprintf("Your sign-in code is %s. It expires in %d minutes.", code, minutes))
	}

	subject, heading := codeMailCopy(purpose)
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>%s</p><h2 style=\"letter-spacing:4px\">%s</h2><p>This code expires in %d minutes.</p>",
		user.FullName(), heading, code, minutes,
	)
	return s.mailer.SendMail(ctx, user.Email, subject, body)
}

func codeMailCopy(purpose domain.CodePurpose) (subject, heading string) {
	switch purpose {
	case domain.PurposePasswordReset:
		return "Reset your password", "Use this code to reset your password:"
	case domain.PurposeTwoFactor:
		return "Your sign-in code", "Use this code to finish signing in:"
	default:
		return "Verify your email address", "Use this code to verify your email address:"
	}
}

func (s *VerificationServiceImpl) publish(n domain.Notification) {
	if s.publisher != nil {
		s.publisher.Publish(n)
	}
}

func (s *VerificationServiceImpl) audit(ctx context.Context, event *domain.AuditEvent) {
	if s.auditLogger != nil {
		s.auditLogger.LogEvent(ctx, event)
	}
}

func (s *VerificationServiceImpl) internal(op string, err error) error {
	s.logger.Error(op, zap.Error(err))
	return domain.ErrInternal
}

var _ domain.VerificationService = (*VerificationServiceImpl)(nil)
