package repositories

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/you/erpauth/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	// every pooled connection would get its own :memory: database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&DBUser{}, &DBSession{}, &DBVerificationCode{}, &DBNotification{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

func seedUser(t *testing.T, repo *UserRepositoryImpl, email string) *domain.User {
	t.Helper()

	user := &domain.User{
		Email:        email,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Phone:        "+15550001111",
		PasswordHash: "hashed_password",
		RoleID:       "role-accountant",
		IsActive:     true,
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func TestUserRepositoryImpl_Find(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	seeded := seedUser(t, repo, "ada@example.com")

	tests := []struct {
		name          string
		find          func() (*domain.User, error)
		expectedEmail string
		expectedError error
	}{
		{
			name:          "find by email",
			find:          func() (*domain.User, error) { return repo.FindByEmail(context.Background(), "ada@example.com") },
			expectedEmail: "ada@example.com",
		},
		{
			name:          "find by id",
			find:          func() (*domain.User, error) { return repo.FindByID(context.Background(), seeded.ID) },
			expectedEmail: "ada@example.com",
		},
		{
			name:          "unknown email",
			find:          func() (*domain.User, error) { return repo.FindByEmail(context.Background(), "ghost@example.com") },
			expectedError: domain.ErrUserNotFound,
		},
		{
			name:          "unknown id",
			find:          func() (*domain.User, error) { return repo.FindByID(context.Background(), "missing") },
			expectedError: domain.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := tt.find()

			if tt.expectedError != nil {
				if !errors.Is(err, tt.expectedError) {
					t.Errorf("expected error %v, got %v", tt.expectedError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if user.Email != tt.expectedEmail {
				t.Errorf("expected email %s, got %s", tt.expectedEmail, user.Email)
			}
			if user.RoleID != "role-accountant" {
				t.Errorf("expected role id role-accountant, got %s", user.RoleID)
			}
			if user.FullName() != "Ada Lovelace" {
				t.Errorf("unexpected full name %q", user.FullName())
			}
		})
	}
}

func TestUserRepositoryImpl_RecordFailedLogin(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	user := seedUser(t, repo, "locks@example.com")
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	lockUntil := now.Add(15 * time.Minute)

	for attempt := 1; attempt <= 4; attempt++ {
		got, err := repo.RecordFailedLogin(ctx, user.ID, 5, now, lockUntil)
		if err != nil {
			t.Fatalf("attempt %d: unexpected error: %v", attempt, err)
		}
		if got.FailedLoginAttempts != attempt {
			t.Errorf("attempt %d: expected counter %d, got %d", attempt, attempt, got.FailedLoginAttempts)
		}
		if got.AccountLockedUntil != nil {
			t.Errorf("attempt %d: account locked before threshold", attempt)
		}
	}

	got, err := repo.RecordFailedLogin(ctx, user.ID, 5, now, lockUntil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.FailedLoginAttempts != 5 {
		t.Errorf("expected counter 5, got %d", got.FailedLoginAttempts)
	}
	if got.AccountLockedUntil == nil {
		t.Fatal("expected account to be locked at threshold")
	}
	if !got.AccountLockedUntil.Equal(lockUntil) {
		t.Errorf("expected lock until %v, got %v", lockUntil, *got.AccountLockedUntil)
	}

	if _, err := repo.RecordFailedLogin(ctx, "missing", 5, now, lockUntil); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepositoryImpl_RecordFailedLogin_Concurrent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	user := seedUser(t, repo, "race@example.com")
	now := time.Now().UTC()
	lockUntil := now.Add(time.Hour)

	const workers = 12
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.RecordFailedLogin(context.Background(), user.ID, 5, now, lockUntil); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := repo.FindByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.FailedLoginAttempts != workers {
		t.Errorf("expected %d recorded failures, got %d", workers, got.FailedLoginAttempts)
	}
	if got.AccountLockedUntil == nil {
		t.Error("expected account to be locked")
	}
}

func TestUserRepositoryImpl_RecordFailedLogin_AfterElapsedLock(t *testing.T) {
	tests := []struct {
		name           string
		threshold      int
		expectedLocked bool
	}{
		{name: "counting restarts without a lock", threshold: 5},
		{name: "threshold of one locks again", threshold: 1, expectedLocked: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			repo := NewUserRepository(db)
			user := seedUser(t, repo, "elapsed@example.com")
			ctx := context.Background()
			lockedAt := time.Now().UTC().Truncate(time.Second)
			lockUntil := lockedAt.Add(15 * time.Minute)

			for i := 0; i < tt.threshold; i++ {
				if _, err := repo.RecordFailedLogin(ctx, user.ID, tt.threshold, lockedAt, lockUntil); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}

			later := lockUntil.Add(time.Minute)
			got, err := repo.RecordFailedLogin(ctx, user.ID, tt.threshold, later, later.Add(15*time.Minute))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.FailedLoginAttempts != 1 {
				t.Errorf("expected the counter to restart at 1, got %d", got.FailedLoginAttempts)
			}
			if tt.expectedLocked {
				if got.AccountLockedUntil == nil || !got.AccountLockedUntil.Equal(later.Add(15*time.Minute)) {
					t.Errorf("expected a fresh lock, got %v", got.AccountLockedUntil)
				}
			} else if got.AccountLockedUntil != nil {
				t.Errorf("expected the elapsed lock to be cleared, got %v", *got.AccountLockedUntil)
			}
		})
	}
}

func TestUserRepositoryImpl_RecordFailedLogin_ConcurrentAfterElapsedLock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	user := seedUser(t, repo, "elapsed-race@example.com")
	ctx := context.Background()
	lockedAt := time.Now().UTC().Truncate(time.Second)

	for i := 0; i < 5; i++ {
		if _, err := repo.RecordFailedLogin(ctx, user.ID, 5, lockedAt, lockedAt.Add(15*time.Minute)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	later := lockedAt.Add(time.Hour)
	const workers = 4
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.RecordFailedLogin(ctx, user.ID, 5, later, later.Add(15*time.Minute)); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.FailedLoginAttempts != workers {
		t.Errorf("expected %d failures in the new window, got %d", workers, got.FailedLoginAttempts)
	}
	if got.AccountLockedUntil != nil {
		t.Errorf("expected no lock below the threshold, got %v", *got.AccountLockedUntil)
	}
}

func TestUserRepositoryImpl_ResetAndPassword(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	user := seedUser(t, repo, "reset@example.com")
	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		if _, err := repo.RecordFailedLogin(ctx, user.ID, 5, now, now.Add(time.Hour)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	tests := []struct {
		name   string
		action func() error
		check  func(t *testing.T, u *domain.User)
	}{
		{
			name:   "reset lockout clears counters",
			action: func() error { return repo.ResetLockout(ctx, user.ID) },
			check: func(t *testing.T, u *domain.User) {
				if u.FailedLoginAttempts != 0 || u.AccountLockedUntil != nil {
					t.Errorf("expected cleared lockout, got %d / %v", u.FailedLoginAttempts, u.AccountLockedUntil)
				}
			},
		},
		{
			name:   "record login stamps last login",
			action: func() error { return repo.RecordLogin(ctx, user.ID, now) },
			check: func(t *testing.T, u *domain.User) {
				if u.LastLoginAt == nil {
					t.Error("expected last login to be set")
				}
			},
		},
		{
			name: "update password replaces hash and clears lockout",
			action: func() error {
				if _, err := repo.RecordFailedLogin(ctx, user.ID, 1, now, now.Add(time.Hour)); err != nil {
					return err
				}
				return repo.UpdatePassword(ctx, user.ID, "new_hash", now)
			},
			check: func(t *testing.T, u *domain.User) {
				if u.PasswordHash != "new_hash" {
					t.Errorf("expected new hash, got %s", u.PasswordHash)
				}
				if u.PasswordChangedAt == nil {
					t.Error("expected password changed timestamp")
				}
				if u.FailedLoginAttempts != 0 || u.AccountLockedUntil != nil {
					t.Error("expected lockout to be cleared")
				}
			},
		},
		{
			name:   "mark email verified",
			action: func() error { return repo.MarkEmailVerified(ctx, user.ID) },
			check: func(t *testing.T, u *domain.User) {
				if !u.EmailVerified {
					t.Error("expected email to be verified")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.action(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			u, err := repo.FindByID(ctx, user.ID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, u)
		})
	}

	if err := repo.UpdatePassword(ctx, "missing", "x", now); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
