package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/you/erpauth/domain"
)

// respondError maps service errors onto status codes. Anything unrecognised
// becomes a 500 with the generic internal message.
func respondError(c *gin.Context, err error) {
	var (
		locked      *domain.LockedError
		credentials *domain.CredentialsError
		badCode     *domain.InvalidCodeError
		policy      *domain.PasswordPolicyError
	)

	switch {
	case errors.As(err, &locked):
		c.Header("Retry-After", strconv.Itoa(locked.Minutes()*60))
		c.JSON(http.StatusLocked, gin.H{
			"error":               locked.Error(),
			"retry_after_minutes": locked.Minutes(),
		})
	case errors.As(err, &credentials):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":              credentials.Error(),
			"remaining_attempts": credentials.RemainingAttempts,
		})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": domain.ErrInvalidCredentials.Error()})
	case errors.Is(err, domain.ErrAccountDeactivated):
		c.JSON(http.StatusForbidden, gin.H{"error": domain.ErrAccountDeactivated.Error()})
	case errors.As(err, &policy):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      domain.ErrPasswordValidationFailed.Error(),
			"violations": policy.Violations,
		})
	case errors.Is(err, domain.ErrPasswordValidationFailed):
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrPasswordValidationFailed.Error()})
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrEmailNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &badCode):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":              domain.ErrInvalidCode.Error(),
			"remaining_attempts": badCode.RemainingAttempts,
		})
	case errors.Is(err, domain.ErrNoCodeFound), errors.Is(err, domain.ErrCodeExpired), errors.Is(err, domain.ErrInvalidCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrTooManyAttempts):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": domain.ErrTooManyAttempts.Error()})
	case errors.Is(err, domain.ErrInvalidRefreshToken),
		errors.Is(err, domain.ErrInvalidTokenType),
		errors.Is(err, domain.ErrSessionExpiredOrInvalid),
		errors.Is(err, domain.ErrTokenInvalid):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrDeliveryFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": domain.ErrDeliveryFailed.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": domain.ErrInternal.Error()})
	}
}
