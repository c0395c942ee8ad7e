package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/you/erpauth/domain"
)

// Cookie names written by the auth handlers
const (
	accessTokenCookie = "access_token"
	sessionIDCookie   = "session_id"
)

// AuthMiddleware answers "is this token valid". The access token comes from the
// Authorization header or, failing that, the access cookie. When a session
// cookie accompanies the request the session must still be usable.
func AuthMiddleware(tokenSvc domain.TokenService, sessionRepo domain.SessionRepository) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		claims, err := tokenSvc.ValidateAccessToken(token)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrTokenExpired):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
			default:
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			}
			c.Abort()
			return
		}
		if claims.Type != domain.TokenTypeAccess {
			c.JSON(http.StatusUnauthorized, gin.H{"error": domain.ErrInvalidTokenType.Error()})
			c.Abort()
			return
		}

		sessionID, _ := c.Cookie(sessionIDCookie)
		if sessionID != "" && sessionRepo != nil {
			session, err := sessionRepo.FindByID(c.Request.Context(), sessionID)
			if err != nil || session == nil || !session.Usable(time.Now().UTC()) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Session invalid or expired"})
				c.Abort()
				return
			}
			if session.UserID != claims.UserID {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Session user mismatch"})
				c.Abort()
				return
			}
			c.Set("session_id", session.ID)
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role_id", claims.RoleID)

		c.Next()
	})
}

// bearerToken returns the token and false when an Authorization header is
// present but not in Bearer form.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		token, _ := c.Cookie(accessTokenCookie)
		return token, true
	}

	tokenParts := strings.SplitN(authHeader, " ", 2)
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		return "", false
	}
	return strings.TrimSpace(tokenParts[1]), true
}
