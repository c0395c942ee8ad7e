package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/you/erpauth/domain"
)

// Cookie names shared with the auth middleware
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	SessionIDCookie    = "session_id"
)

// CookiePolicy holds the attributes applied to every auth cookie
type CookiePolicy struct {
	Secure     bool
	SameSite   http.SameSite
	Domain     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	SessionTTL time.Duration
}

// NewCookiePolicy returns strict secure cookies in production and lax ones elsewhere
func NewCookiePolicy(production bool) CookiePolicy {
	p := CookiePolicy{
		SameSite:   http.SameSiteLaxMode,
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
		SessionTTL: 24 * time.Hour,
	}
	if production {
		p.Secure = true
		p.SameSite = http.SameSiteStrictMode
	}
	return p
}

func (p CookiePolicy) set(c *gin.Context, name, value string, ttl time.Duration) {
	c.SetSameSite(p.SameSite)
	c.SetCookie(name, value, int(ttl.Seconds()), "/", p.Domain, p.Secure, true)
}

func (p CookiePolicy) clear(c *gin.Context, name string) {
	c.SetSameSite(p.SameSite)
	c.SetCookie(name, "", -1, "/", p.Domain, p.Secure, true)
}

// writeSession sets all three cookies after a sign-in
func (p CookiePolicy) writeSession(c *gin.Context, result *domain.AuthResult) {
	p.set(c, AccessTokenCookie, result.AccessToken, p.AccessTTL)
	if result.RefreshToken != "" {
		p.set(c, RefreshTokenCookie, result.RefreshToken, p.RefreshTTL)
	}
	if result.SessionID != "" {
		p.set(c, SessionIDCookie, result.SessionID, p.SessionTTL)
	}
}

func (p CookiePolicy) clearSession(c *gin.Context) {
	p.clear(c, AccessTokenCookie)
	p.clear(c, RefreshTokenCookie)
	p.clear(c, SessionIDCookie)
}
