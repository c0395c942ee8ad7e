package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/you/erpauth/domain"
	"github.com/you/erpauth/internal/services"
	"go.uber.org/zap"
)

// AuthHandlers handles authentication endpoints
type AuthHandlers struct {
	authSvc         domain.AuthService
	verificationSvc domain.VerificationService
	cookies         CookiePolicy
	logger          *zap.Logger
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authSvc domain.AuthService, verificationSvc domain.VerificationService, cookies CookiePolicy, logger *zap.Logger) *AuthHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandlers{
		authSvc:         authSvc,
		verificationSvc: verificationSvc,
		cookies:         cookies,
		logger:          logger,
	}
}

// Request/Response DTOs
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	SessionID    string `json:"session_id"`
	RefreshToken string `json:"refresh_token"`
}

type ResetPasswordRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Code            string `json:"code" binding:"required,len=6,numeric"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type SessionResponse struct {
	ID             string    `json:"id"`
	IPAddress      string    `json:"ip_address"`
	UserAgent      string    `json:"user_agent"`
	LastActivityAt time.Time `json:"last_activity_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	CreatedAt      time.Time `json:"created_at"`
	Current        bool      `json:"current"`
}

func clientContext(c *gin.Context) *domain.ClientContext {
	return &domain.ClientContext{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

func authPayload(result *domain.AuthResult) gin.H {
	return gin.H{
		"user":               result.User,
		"access_token":       result.AccessToken,
		"refresh_token":      result.RefreshToken,
		"session_id":         result.SessionID,
		"token_type":         "Bearer",
		"expires_at":         result.AccessExpiresAt,
		"session_expires_at": result.SessionExpires,
	}
}

// Login handles email/password sign-in
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authSvc.SignIn(c.Request.Context(), req.Email, req.Password, clientContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	h.cookies.writeSession(c, result)
	c.JSON(http.StatusOK, gin.H{"data": authPayload(result)})
}

// Refresh mints a new access token from the refresh token in the body or cookie
func (h *AuthHandlers) Refresh(c *gin.Context) {
	var req RefreshRequest
	// the body is optional, the cookie is the fallback
	_ = c.ShouldBindJSON(&req)
	if req.RefreshToken == "" {
		req.RefreshToken, _ = c.Cookie(RefreshTokenCookie)
	}
	if req.RefreshToken == "" {
		respondError(c, domain.ErrInvalidRefreshToken)
		return
	}

	result, err := h.authSvc.RefreshAccessToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	h.cookies.set(c, AccessTokenCookie, result.AccessToken, h.cookies.AccessTTL)
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"user":         result.User,
			"access_token": result.AccessToken,
			"token_type":   "Bearer",
			"expires_at":   result.AccessExpiresAt,
		},
	})
}

// Logout ends the current session. It always succeeds and always clears cookies.
func (h *AuthHandlers) Logout(c *gin.Context) {
	var req LogoutRequest
	_ = c.ShouldBindJSON(&req)
	if req.SessionID == "" {
		req.SessionID, _ = c.Cookie(SessionIDCookie)
	}
	if req.RefreshToken == "" {
		req.RefreshToken, _ = c.Cookie(RefreshTokenCookie)
	}

	h.authSvc.Logout(c.Request.Context(), req.SessionID, req.RefreshToken)

	h.cookies.clearSession(c)
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"message": "Logged out successfully",
		},
	})
}

// ResetPassword consumes a password reset code and sets the new password.
// The password rules are checked first so a weak password does not burn the code.
func (h *AuthHandlers) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var violations []string
	if req.NewPassword != req.ConfirmPassword {
		violations = append(violations, services.RuleMismatch)
	}
	violations = append(violations, services.ValidatePassword(req.NewPassword)...)
	if len(violations) > 0 {
		respondError(c, &domain.PasswordPolicyError{Violations: violations})
		return
	}

	ctx := c.Request.Context()
	if err := h.verificationSvc.VerifyPasswordResetCode(ctx, req.Email, req.Code); err != nil {
		respondError(c, err)
		return
	}

	result, err := h.authSvc.SetNewPassword(ctx, req.Email, req.NewPassword, req.ConfirmPassword, clientContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	h.cookies.writeSession(c, result)
	c.JSON(http.StatusOK, gin.H{"data": authPayload(result)})
}

// Sessions lists the caller's live sessions (requires authentication)
func (h *AuthHandlers) Sessions(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in context"})
		return
	}

	sessions, err := h.authSvc.GetActiveSessions(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	current, _ := c.Cookie(SessionIDCookie)
	out := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, SessionResponse{
			ID:             s.ID,
			IPAddress:      s.IPAddress,
			UserAgent:      s.UserAgent,
			LastActivityAt: s.LastActivityAt,
			ExpiresAt:      s.ExpiresAt,
			CreatedAt:      s.CreatedAt,
			Current:        s.ID == current,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"sessions": out,
		},
	})
}

// LogoutAll deactivates every session of the caller (requires authentication)
func (h *AuthHandlers) LogoutAll(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in context"})
		return
	}

	count, err := h.authSvc.LogoutFromAllDevices(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.cookies.clearSession(c)
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"message":  "Logged out from all devices",
			"sessions": count,
		},
	})
}
