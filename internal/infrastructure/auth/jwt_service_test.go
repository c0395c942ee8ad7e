package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/you/erpauth/domain"
)

func newTestJWTService(t *testing.T) *JWTServiceImpl {
	t.Helper()
	return NewJWTService(JWTSettings{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		Issuer:        "erpauth-test",
		AccessTTL:     "30m",
		RefreshTTL:    "7d",
	})
}

func testUser() *domain.User {
	return &domain.User{ID: "4b1f2c9e-0000-4000-8000-000000000001", Email: "user@example.com", RoleID: "hr-manager"}
}

func TestJWTService_AccessTokenRoundTrip(t *testing.T) {
	svc := newTestJWTService(t)
	before := time.Now()

	token, expiresAt, err := svc.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if d := expiresAt.Sub(before); d < 29*time.Minute || d > 31*time.Minute {
		t.Errorf("expected expiry about 30 minutes out, got %v", d)
	}

	claims, err := svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != testUser().ID {
		t.Errorf("expected user id %s, got %s", testUser().ID, claims.UserID)
	}
	if claims.RoleID != "hr-manager" {
		t.Errorf("expected role id hr-manager, got %s", claims.RoleID)
	}
	if claims.Email != "user@example.com" {
		t.Errorf("expected email user@example.com, got %s", claims.Email)
	}
	if claims.Type != domain.TokenTypeAccess {
		t.Errorf("expected type access, got %s", claims.Type)
	}
}

func TestJWTService_RefreshTokenRoundTrip(t *testing.T) {
	svc := newTestJWTService(t)

	first, err := svc.GenerateRefreshToken("user-1", "session-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.GenerateRefreshToken("user-1", "session-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == second {
		t.Error("refresh tokens for the same session should carry distinct ids")
	}

	claims, err := svc.ValidateRefreshToken(first)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.SessionID != "session-1" || claims.Type != domain.TokenTypeRefresh || claims.ID == "" {
		t.Errorf("unexpected claims %+v", claims)
	}
	if svc.RefreshTTL() != 7*24*time.Hour {
		t.Errorf("expected 7 day refresh TTL, got %v", svc.RefreshTTL())
	}
}

func TestJWTService_RejectsWrongSecret(t *testing.T) {
	svc := newTestJWTService(t)

	refresh, err := svc.GenerateRefreshToken("user-1", "session-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.ValidateAccessToken(refresh)
	if !errors.Is(err, domain.ErrTokenSignature) {
		t.Errorf("expected signature error, got %v", err)
	}
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected error to collapse to ErrTokenInvalid, got %v", err)
	}
}

func TestJWTService_RejectsTamperedPayload(t *testing.T) {
	svc := newTestJWTService(t)

	token, _, err := svc.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	other, _, err := svc.GenerateAccessToken(&domain.User{ID: "someone-else", RoleID: "admin"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parts := strings.Split(token, ".")
	otherParts := strings.Split(other, ".")
	forged := parts[0] + "." + otherParts[1] + "." + parts[2]

	_, err = svc.ValidateAccessToken(forged)
	if !errors.Is(err, domain.ErrTokenSignature) {
		t.Errorf("expected signature error, got %v", err)
	}
}

func TestJWTService_RejectsExpiredToken(t *testing.T) {
	svc := newTestJWTService(t)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := svc.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	svc.now = time.Now
	_, err = svc.ValidateAccessToken(token)
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Errorf("expected expired error, got %v", err)
	}
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected error to collapse to ErrTokenInvalid, got %v", err)
	}
}

func TestJWTService_RejectsGarbage(t *testing.T) {
	svc := newTestJWTService(t)

	_, err := svc.ValidateRefreshToken("not-a-jwt")
	if !errors.Is(err, domain.ErrTokenMalformed) {
		t.Errorf("expected malformed error, got %v", err)
	}
}

func TestJWTService_MissingSecret(t *testing.T) {
	svc := NewJWTService(JWTSettings{AccessTTL: "30m"})

	if _, _, err := svc.GenerateAccessToken(testUser()); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
	if _, err := svc.GenerateRefreshToken("u", "s"); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestParseLifetime(t *testing.T) {
	tests := []struct {
		in       string
		expected time.Duration
	}{
		{"30m", 30 * time.Minute},
		{"7d", 7 * 24 * time.Hour},
		{"12h", 12 * time.Hour},
		{"45s", 45 * time.Second},
		{"", 24 * time.Hour},
		{"30", 24 * time.Hour},
		{"m30", 24 * time.Hour},
		{"1w", 24 * time.Hour},
		{"1.5h", 24 * time.Hour},
		{"0d", 24 * time.Hour},
		{"106751d", 106751 * 24 * time.Hour},
		{"106752d", 24 * time.Hour},
		{"9223372036854775807s", 24 * time.Hour},
		{"99999999999999999999m", 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLifetime(tt.in); got != tt.expected {
				t.Errorf("ParseLifetime(%q) = %v, want %v", tt.in, got, tt.expected)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in          string
		expected    time.Duration
		expectedErr error
	}{
		{in: "15m", expected: 15 * time.Minute},
		{in: "1d", expected: 24 * time.Hour},
		{in: "90s", expected: 90 * time.Second},
		{in: "1h30m", expectedErr: ErrMalformedDuration},
		{in: "ten minutes", expectedErr: ErrMalformedDuration},
		{in: "-5m", expectedErr: ErrMalformedDuration},
		{in: "0h", expectedErr: ErrDurationRange},
		{in: "2562048h", expectedErr: ErrDurationRange},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Errorf("ParseDuration(%q) error = %v, want %v", tt.in, err, tt.expectedErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got, tt.expected)
			}
		})
	}
}

func TestPasswordService(t *testing.T) {
	svc := NewPasswordService(4)

	hash, err := svc.Hash("Ab1!aaaa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !svc.Verify(hash, "Ab1!aaaa") {
		t.Error("expected password to verify")
	}
	if svc.Verify(hash, "Ab1!aaab") {
		t.Error("expected wrong password to fail")
	}
	if svc.Verify("not-a-hash", "Ab1!aaaa") {
		t.Error("expected malformed hash to fail")
	}
}

func TestPasswordService_LongAndMultibytePasswords(t *testing.T) {
	svc := NewPasswordService(4)

	long := "Ab1!" + strings.Repeat("x", 96)
	multibyte := "Ab1!" + strings.Repeat("密码", 40)

	tests := []struct {
		name     string
		password string
		near     string
	}{
		{name: "100 characters", password: long, near: long[:99] + "y"},
		{name: "multibyte", password: multibyte, near: multibyte + "!"},
		{name: "differs after byte 72", password: strings.Repeat("a", 72) + "Ab1!", near: strings.Repeat("a", 72) + "Ab1?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := svc.Hash(tt.password)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !svc.Verify(hash, tt.password) {
				t.Error("expected password to verify")
			}
			if svc.Verify(hash, tt.near) {
				t.Error("expected a near miss to fail")
			}
		})
	}
}
