package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/you/erpauth/domain"
	"github.com/you/erpauth/internal/config"
	httpx "github.com/you/erpauth/internal/http"
	"github.com/you/erpauth/internal/http/handlers"
	"github.com/you/erpauth/internal/http/middleware"
	"github.com/you/erpauth/internal/infrastructure/audit"
	"github.com/you/erpauth/internal/infrastructure/auth"
	"github.com/you/erpauth/internal/infrastructure/database"
	"github.com/you/erpauth/internal/infrastructure/notifications"
	"github.com/you/erpauth/internal/infrastructure/repositories"
	"github.com/you/erpauth/internal/services"
)

// Container holds all dependencies
type Container struct {
	// Config
	Config *config.Config
	Logger *zap.Logger

	// Infrastructure
	DB    *gorm.DB
	Redis *database.RedisClient

	// Repositories
	UserRepo         domain.UserRepository
	SessionRepo      domain.SessionRepository
	VerificationRepo domain.VerificationRepository
	NotificationRepo *repositories.NotificationRepositoryImpl

	// Services
	PasswordSvc     domain.PasswordService
	TokenSvc        domain.TokenService
	Dispatcher      *notifications.Dispatcher
	Mailer          domain.MailSender
	SMS             domain.SMSSender
	AuditLogger     domain.AuditLogger
	AuthSvc         domain.AuthService
	VerificationSvc domain.VerificationService
	Sweeper         *services.SessionSweeper

	// Transport
	Router *gin.Engine
}

// NewContainer opens the database and cache and wires every dependency
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	db, err := database.Open(cfg.DSN, cfg.GinMode == gin.DebugMode)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	var rdb *database.RedisClient
	if cfg.RedisAddr != "" {
		rdb = database.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rdb.Ping(context.Background()); err != nil {
			// the sweeper falls back to unlocked ticks
			logger.Warn("redis unreachable at start-up", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
	}

	return Build(cfg, logger, db, rdb), nil
}

// Build wires the container over an already opened database. rdb may be nil.
func Build(cfg *config.Config, logger *zap.Logger, db *gorm.DB, rdb *database.RedisClient) *Container {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Container{Config: cfg, Logger: logger, DB: db, Redis: rdb}

	c.initRepositories()
	c.initInfrastructure()
	c.initServices()
	c.initRouter()

	return c
}

func (c *Container) initRepositories() {
	c.UserRepo = repositories.NewUserRepository(c.DB)
	c.SessionRepo = repositories.NewSessionRepository(c.DB)
	c.VerificationRepo = repositories.NewVerificationRepository(c.DB)
	c.NotificationRepo = repositories.NewNotificationRepository(c.DB)
}

func (c *Container) initInfrastructure() {
	cfg := c.Config

	c.PasswordSvc = auth.NewPasswordService(0)
	c.TokenSvc = auth.NewJWTService(auth.JWTSettings{
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		Issuer:        cfg.JWTIssuer,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	})
	c.Dispatcher = notifications.NewDispatcher(c.NotificationRepo, cfg.NotificationBuffer, c.Logger)
	c.Mailer = notifications.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, c.Logger)
	if cfg.TwilioSID != "" {
		c.SMS = notifications.NewTwilioService(cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioFrom, c.Logger)
	}
	c.AuditLogger = audit.NewZapAuditLogger(c.Logger)
}

func (c *Container) initServices() {
	cfg := c.Config

	c.AuthSvc = services.NewAuthService(
		c.UserRepo,
		c.SessionRepo,
		c.PasswordSvc,
		c.TokenSvc,
		c.NotificationRepo,
		c.Dispatcher,
		c.AuditLogger,
		services.AuthSettings{
			LockoutThreshold: cfg.LockoutThreshold,
			LockoutDuration:  cfg.LockoutDuration,
		},
		c.Logger.Named("auth"),
	)

	c.VerificationSvc = services.NewVerificationService(
		c.UserRepo,
		c.VerificationRepo,
		c.Mailer,
		c.SMS,
		c.Dispatcher,
		c.AuditLogger,
		services.VerificationSettings{
			CodeTTL:     cfg.CodeTTL,
			MaxAttempts: cfg.CodeMaxAttempts,
		},
		c.Logger.Named("verification"),
	)

	c.Sweeper = services.NewSessionSweeper(c.AuthSvc, c.VerificationSvc, c.Redis, cfg.CleanupInterval, c.Logger.Named("sweeper"))
}

func (c *Container) initRouter() {
	checks := map[string]handlers.Check{
		"database": func(ctx context.Context) error {
			sqlDB, err := c.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if c.Redis != nil {
		checks["redis"] = c.Redis.Ping
	}

	authH := handlers.NewAuthHandlers(c.AuthSvc, c.VerificationSvc, handlers.NewCookiePolicy(c.Config.IsProduction()), c.Logger)
	healthH := handlers.NewHealthHandler(checks, c.Logger)
	jwtMW := middleware.NewAuthMW(c.TokenSvc, c.SessionRepo)

	c.Router = httpx.BuildRouter(authH, healthH, jwtMW, c.Logger)
}

// Close stops background work and closes all connections
func (c *Container) Close() error {
	if c.Sweeper != nil {
		c.Sweeper.Stop()
	}
	if c.Dispatcher != nil {
		c.Dispatcher.Close()
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warn("close redis", zap.Error(err))
		}
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return nil
}
