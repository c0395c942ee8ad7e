package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/you/erpauth/domain"
)

// JWTSettings holds signing secrets and lifetimes. Lifetimes use the
// "<number><d|h|m|s>" format understood by ParseLifetime.
type JWTSettings struct {
	AccessSecret  string
	RefreshSecret string
	Issuer        string
	AccessTTL     string
	RefreshTTL    string
}

// JWTServiceImpl implements domain.TokenService
type JWTServiceImpl struct {
	accessSecret    []byte
	refreshSecret   []byte
	issuer          string
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	now             func() time.Time
}

type jwtClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email,omitempty"`
	RoleID    string `json:"role_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Type      string `json:"type"`
	jwt.RegisteredClaims
}

// NewJWTService creates a new JWT service
func NewJWTService(settings JWTSettings) *JWTServiceImpl {
	refreshTTL := DefaultRefreshTTL
	if settings.RefreshTTL != "" {
		refreshTTL = ParseLifetime(settings.RefreshTTL)
	}
	return &JWTServiceImpl{
		accessSecret:    []byte(settings.AccessSecret),
		refreshSecret:   []byte(settings.RefreshSecret),
		issuer:          settings.Issuer,
		accessTokenTTL:  ParseLifetime(settings.AccessTTL),
		refreshTokenTTL: refreshTTL,
		now:             time.Now,
	}
}

// DefaultRefreshTTL applies when no refresh lifetime is configured
const DefaultRefreshTTL = 7 * 24 * time.Hour

// GenerateAccessToken implements domain.TokenService
func (j *JWTServiceImpl) GenerateAccessToken(user *domain.User) (string, time.Time, error) {
	if len(j.accessSecret) == 0 {
		return "", time.Time{}, fmt.Errorf("%w: access token secret is not set", domain.ErrConfiguration)
	}

	now := j.now()
	expiresAt := now.Add(j.accessTokenTTL)
	claims := jwtClaims{
		UserID: user.ID,
		Email:  user.Email,
		RoleID: user.RoleID,
		Type:   domain.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    j.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.accessSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// GenerateRefreshToken implements domain.TokenService
func (j *JWTServiceImpl) GenerateRefreshToken(userID, sessionID string) (string, error) {
	if len(j.refreshSecret) == 0 {
		return "", fmt.Errorf("%w: refresh token secret is not set", domain.ErrConfiguration)
	}

	now := j.now()
	claims := jwtClaims{
		UserID:    userID,
		SessionID: sessionID,
		Type:      domain.TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			// jti lets a single refresh token be revoked by id later
			ID:        uuid.NewString(),
			Issuer:    j.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.refreshTokenTTL)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.refreshSecret)
}

// ValidateAccessToken implements domain.TokenService
func (j *JWTServiceImpl) ValidateAccessToken(tokenString string) (*domain.TokenClaims, error) {
	return j.validateToken(tokenString, j.accessSecret)
}

// ValidateRefreshToken implements domain.TokenService
func (j *JWTServiceImpl) ValidateRefreshToken(tokenString string) (*domain.TokenClaims, error) {
	return j.validateToken(tokenString, j.refreshSecret)
}

// RefreshTTL implements domain.TokenService
func (j *JWTServiceImpl) RefreshTTL() time.Duration {
	return j.refreshTokenTTL
}

// validateToken checks signature and expiry. The returned error always matches
// domain.ErrTokenInvalid; the concrete cause stays visible for logging.
func (j *JWTServiceImpl) validateToken(tokenString string, secret []byte) (*domain.TokenClaims, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: signing secret is not set", domain.ErrConfiguration)
	}

	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(j.now), jwt.WithExpirationRequired())

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, domain.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, domain.ErrTokenSignature
	case err != nil:
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
	case !token.Valid:
		return nil, domain.ErrTokenInvalid
	}

	if claims.UserID == "" || claims.Type == "" {
		return nil, domain.ErrTokenMalformed
	}

	out := &domain.TokenClaims{
		ID:        claims.ID,
		UserID:    claims.UserID,
		Email:     claims.Email,
		RoleID:    claims.RoleID,
		SessionID: claims.SessionID,
		Type:      claims.Type,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Unix()
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return out, nil
}

var _ domain.TokenService = (*JWTServiceImpl)(nil)
