package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/you/erpauth/domain"
	"github.com/you/erpauth/internal/infrastructure/auth"
	"github.com/you/erpauth/internal/infrastructure/repositories"
	"github.com/you/erpauth/internal/mocks"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testUserID   = "5b1f7d8e-0c2a-4e59-9a43-3f5a9e7b2c11"
	testEmail    = "test@example.com"
	testPassword = "Str0ng!Pass"
)

// testClock is a settable clock shared by a service under test
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Now().UTC().Truncate(time.Second)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// createValidUser creates a valid user entity for testing
func createValidUser(t *testing.T) *domain.User {
	t.Helper()

	return &domain.User{
		ID:           testUserID,
		Email:        testEmail,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "hashed_" + testPassword,
		RoleID:       "role-user",
		IsActive:     true,
	}
}

// createValidSession creates an active session for the user
func createValidSession(t *testing.T, userID string, now time.Time) *domain.Session {
	t.Helper()

	return &domain.Session{
		ID:             "sess-1",
		UserID:         userID,
		RefreshToken:   "valid_refresh_token",
		IsActive:       true,
		ExpiresAt:      now.Add(7 * 24 * time.Hour),
		LastActivityAt: now,
		CreatedAt:      now,
	}
}

type authFixture struct {
	svc         *AuthServiceImpl
	userRepo    *mocks.MockUserRepository
	sessionRepo *mocks.MockSessionRepository
	passwordSvc *mocks.MockPasswordService
	tokenSvc    *mocks.MockTokenService
	notifier    *mocks.MockNotificationService
	publisher   *mocks.MockNotificationPublisher
	audit       *mocks.MockAuditLogger
	clock       *testClock
}

// newAuthFixture creates an AuthService with mock dependencies for testing
func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	f := &authFixture{
		userRepo:    mocks.NewMockUserRepository(),
		sessionRepo: mocks.NewMockSessionRepository(),
		passwordSvc: mocks.NewMockPasswordService(),
		tokenSvc:    mocks.NewMockTokenService(),
		notifier:    mocks.NewMockNotificationService(),
		publisher:   mocks.NewMockNotificationPublisher(),
		audit:       mocks.NewMockAuditLogger(),
		clock:       newTestClock(),
	}
	f.svc = NewAuthService(f.userRepo, f.sessionRepo, f.passwordSvc, f.tokenSvc, f.notifier, f.publisher, f.audit,
		AuthSettings{LockoutThreshold: 5, LockoutDuration: 15 * time.Minute}, nil)
	f.svc.now = f.clock.Now
	return f
}

// integrationEnv wires the real repositories, token issuer and bcrypt over SQLite
type integrationEnv struct {
	db           *gorm.DB
	auth         *AuthServiceImpl
	verification *VerificationServiceImpl
	users        *repositories.UserRepositoryImpl
	sessions     *repositories.SessionRepositoryImpl
	codes        *repositories.VerificationRepositoryImpl
	tokens       *auth.JWTServiceImpl
	mailer       *mocks.MockMailSender
	sms          *mocks.MockSMSSender
	publisher    *mocks.MockNotificationPublisher
	clock        *testClock
}

func setupIntegration(t *testing.T) *integrationEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&repositories.DBUser{}, &repositories.DBSession{}, &repositories.DBVerificationCode{}, &repositories.DBNotification{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	env := &integrationEnv{
		db:        db,
		users:     repositories.NewUserRepository(db),
		sessions:  repositories.NewSessionRepository(db),
		codes:     repositories.NewVerificationRepository(db),
		mailer:    mocks.NewMockMailSender(),
		sms:       mocks.NewMockSMSSender(),
		publisher: mocks.NewMockNotificationPublisher(),
		clock:     newTestClock(),
	}
	env.tokens = auth.NewJWTService(auth.JWTSettings{
		AccessSecret:  "access-secret-for-tests",
		RefreshSecret: "refresh-secret-for-tests",
		Issuer:        "erpauth-test",
		AccessTTL:     "30m",
		RefreshTTL:    "7d",
	})
	notifications := repositories.NewNotificationRepository(db)
	passwords := auth.NewPasswordService(bcrypt.MinCost)

	env.auth = NewAuthService(env.users, env.sessions, passwords, env.tokens, notifications, env.publisher, nil,
		AuthSettings{LockoutThreshold: 5, LockoutDuration: 15 * time.Minute}, nil)
	env.auth.now = env.clock.Now
	env.verification = NewVerificationService(env.users, env.codes, env.mailer, env.sms, env.publisher, nil,
		VerificationSettings{CodeTTL: 10 * time.Minute, MaxAttempts: 5}, nil)
	env.verification.now = env.clock.Now

	return env
}

// seedUser stores an active user whose password is testPassword
func (e *integrationEnv) seedUser(t *testing.T, email string) *domain.User {
	t.Helper()

	hash, err := auth.NewPasswordService(bcrypt.MinCost).Hash(testPassword)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &domain.User{
		Email:        email,
		FirstName:    "Grace",
		LastName:     "Hopper",
		Phone:        "+15550002222",
		PasswordHash: hash,
		RoleID:       "role-manager",
		IsActive:     true,
	}
	if err := e.users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}
