package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/you/erpauth/domain"
	"go.uber.org/zap"
)

type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type CodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

type sendFunc func(ctx context.Context, email string, client *domain.ClientContext) (*domain.CodeDispatch, error)

type verifyFunc func(ctx context.Context, email, code string) error

// SendVerification issues an email verification code
func (h *AuthHandlers) SendVerification(c *gin.Context) {
	h.sendCode(c, h.verificationSvc.SendVerificationCode, "Verification code sent")
}

// VerifyCode checks an email verification code and marks the address verified
func (h *AuthHandlers) VerifyCode(c *gin.Context) {
	h.verifyCode(c, h.verificationSvc.VerifyCode, "Email verified successfully")
}

// SendPasswordResetCode issues a password reset code
func (h *AuthHandlers) SendPasswordResetCode(c *gin.Context) {
	h.sendCode(c, h.verificationSvc.SendPasswordResetCode, "Password reset code sent")
}

// SendTwoFactor issues a sign-in code by SMS or mail
func (h *AuthHandlers) SendTwoFactor(c *gin.Context) {
	h.sendCode(c, h.verificationSvc.SendTwoFactorCode, "Sign-in code sent")
}

// VerifyTwoFactor checks a sign-in code
func (h *AuthHandlers) VerifyTwoFactor(c *gin.Context) {
	h.verifyCode(c, h.verificationSvc.VerifyTwoFactorCode, "Code verified successfully")
}

func (h *AuthHandlers) sendCode(c *gin.Context, send sendFunc, message string) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dispatch, err := send(c.Request.Context(), req.Email, clientContext(c))
	if err != nil {
		h.logger.Debug("code not sent", zap.String("path", c.FullPath()), zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"message":            message,
			"purpose":            dispatch.Purpose,
			"expires_in_minutes": dispatch.ExpiresInMinutes,
		},
	})
}

func (h *AuthHandlers) verifyCode(c *gin.Context, verify verifyFunc, message string) {
	var req CodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := verify(c.Request.Context(), req.Email, req.Code); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"message": message,
		},
	})
}
