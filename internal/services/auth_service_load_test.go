package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/you/erpauth/domain"
)

// TestSignInConcurrentFailures checks that parallel failed sign-ins never lose
// a counter increment.
func TestSignInConcurrentFailures(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping load test in short mode")
	}

	env := setupIntegration(t)
	user := env.seedUser(t, "burst@example.com")

	const concurrency = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	locked := 0

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.auth.SignIn(context.Background(), user.Email, "Wrong!Pass1", nil)
			if errors.Is(err, domain.ErrAccountLocked) {
				mu.Lock()
				locked++
				mu.Unlock()
			} else if !errors.Is(err, domain.ErrInvalidCredentials) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	stored, err := env.users.FindByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.AccountLockedUntil == nil {
		t.Error("expected the account to end up locked")
	}
	if stored.FailedLoginAttempts < 5 {
		t.Errorf("expected at least 5 counted failures, got %d", stored.FailedLoginAttempts)
	}
	if locked == 0 {
		t.Error("expected at least one caller to observe the lock")
	}
}

// TestRefreshRacingLogout checks that once logout returns no refresh succeeds.
func TestRefreshRacingLogout(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping load test in short mode")
	}

	env := setupIntegration(t)
	user := env.seedUser(t, "race@example.com")
	signedIn, err := env.auth.SignIn(context.Background(), user.Email, testPassword, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.auth.RefreshAccessToken(context.Background(), signedIn.RefreshToken)
			if err != nil && !errors.Is(err, domain.ErrSessionExpiredOrInvalid) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	env.auth.Logout(context.Background(), signedIn.SessionID, "")
	wg.Wait()

	if _, err := env.auth.RefreshAccessToken(context.Background(), signedIn.RefreshToken); !errors.Is(err, domain.ErrSessionExpiredOrInvalid) {
		t.Errorf("expected ErrSessionExpiredOrInvalid after logout, got %v", err)
	}
}
