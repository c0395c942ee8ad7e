package domain

import (
	"testing"
	"time"
)

func TestSession_Usable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		session  Session
		expected bool
	}{
		{
			name:     "active and unexpired",
			session:  Session{IsActive: true, ExpiresAt: now.Add(time.Hour)},
			expected: true,
		},
		{
			name:     "revoked",
			session:  Session{IsActive: false, ExpiresAt: now.Add(time.Hour)},
			expected: false,
		},
		{
			name:     "expired",
			session:  Session{IsActive: true, ExpiresAt: now.Add(-time.Second)},
			expected: false,
		},
		{
			name:     "expires exactly now",
			session:  Session{IsActive: true, ExpiresAt: now},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.Usable(now); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestVerificationCode_Expired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	code := VerificationCode{ExpiresAt: now.Add(10 * time.Minute)}

	if code.Expired(now) {
		t.Error("fresh code should not be expired")
	}
	if !code.Expired(now.Add(10 * time.Minute)) {
		t.Error("code should be expired at its expiry instant")
	}
}

func TestUser_FullName(t *testing.T) {
	tests := []struct {
		user     User
		expected string
	}{
		{User{FirstName: "Linh", LastName: "Tran"}, "Linh Tran"},
		{User{FirstName: "Linh"}, "Linh"},
		{User{LastName: "Tran"}, "Tran"},
		{User{}, ""},
	}

	for _, tt := range tests {
		if got := tt.user.FullName(); got != tt.expected {
			t.Errorf("expected %q, got %q", tt.expected, got)
		}
	}
}
