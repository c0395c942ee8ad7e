package httpx

import (
	"github.com/gin-gonic/gin"
	"github.com/you/erpauth/internal/http/handlers"
	"github.com/you/erpauth/internal/http/middleware"
	"go.uber.org/zap"
)

func BuildRouter(ah *handlers.AuthHandlers, hh *handlers.HealthHandler, jwtmw *middleware.AuthMW, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))

	r.GET("/health", hh.Health)

	auth := r.Group("/auth")
	auth.POST("/login", ah.Login)
	auth.POST("/refresh", ah.Refresh)
	auth.POST("/logout", ah.Logout)
	auth.POST("/password/code", ah.SendPasswordResetCode)
	auth.POST("/password/reset", ah.ResetPassword)
	auth.POST("/verification/send", ah.SendVerification)
	auth.POST("/verification/verify", ah.VerifyCode)
	auth.POST("/2fa/send", ah.SendTwoFactor)
	auth.POST("/2fa/verify", ah.VerifyTwoFactor)

	v := r.Group("/auth").Use(jwtmw.WithJWT())
	v.GET("/sessions", ah.Sessions)
	v.POST("/logout-all", ah.LogoutAll)

	return r
}
