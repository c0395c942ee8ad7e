package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	caarlosenv "github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/you/erpauth/domain"
	"github.com/you/erpauth/internal/infrastructure/auth"
)

const defaultConfigPath = "config/config.yml"

type AppConfig struct {
	Port    int    `yaml:"port" env:"ERPAUTH_PORT"`
	Env     string `yaml:"env" env:"ERPAUTH_ENV"`
	GinMode string `yaml:"gin_mode" env:"GIN_MODE"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"DATABASE_DSN" validate:"required"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

type JWTConfig struct {
	AccessSecret  string `yaml:"access_secret" env:"JWT_ACCESS_SECRET" validate:"required"`
	RefreshSecret string `yaml:"refresh_secret" env:"JWT_REFRESH_SECRET" validate:"required"`
	Issuer        string `yaml:"issuer" env:"JWT_ISSUER"`
	AccessTTL     string `yaml:"access_ttl" env:"JWT_ACCESS_TTL"`
	RefreshTTL    string `yaml:"refresh_ttl" env:"JWT_REFRESH_TTL"`
}

type LockoutConfig struct {
	Threshold int    `yaml:"threshold" env:"LOCKOUT_THRESHOLD" validate:"gte=0"`
	Duration  string `yaml:"duration" env:"LOCKOUT_DURATION"`
}

type VerificationConfig struct {
	CodeTTL     string `yaml:"code_ttl" env:"VERIFICATION_CODE_TTL"`
	MaxAttempts int    `yaml:"max_attempts" env:"VERIFICATION_MAX_ATTEMPTS" validate:"gte=0"`
}

type SessionConfig struct {
	CleanupInterval string `yaml:"cleanup_interval" env:"SESSION_CLEANUP_INTERVAL"`
}

type MailConfig struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" env:"SMTP_PORT"`
	Username string `yaml:"username" env:"SMTP_USERNAME"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
	From     string `yaml:"from" env:"SMTP_FROM"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid" env:"TWILIO_ACCOUNT_SID"`
	AuthToken  string `yaml:"auth_token" env:"TWILIO_AUTH_TOKEN"`
	FromNumber string `yaml:"from_number" env:"TWILIO_FROM_NUMBER"`
}

type NotificationConfig struct {
	BufferSize int `yaml:"buffer_size" env:"NOTIFICATION_BUFFER_SIZE" validate:"gte=0"`
}

type ConfigFile struct {
	App           AppConfig          `yaml:"app"`
	Database      DatabaseConfig     `yaml:"database"`
	Redis         RedisConfig        `yaml:"redis"`
	JWT           JWTConfig          `yaml:"jwt"`
	Lockout       LockoutConfig      `yaml:"lockout"`
	Verification  VerificationConfig `yaml:"verification"`
	Session       SessionConfig      `yaml:"session"`
	Mail          MailConfig         `yaml:"mail"`
	Twilio        TwilioConfig       `yaml:"twilio"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// Config is the immutable settings object handed to constructors
type Config struct {
	Env                string
	Port               string
	GinMode            string
	DSN                string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	JWTAccessSecret    string
	JWTRefreshSecret   string
	JWTIssuer          string
	AccessTTL          string
	RefreshTTL         string
	LockoutThreshold   int
	LockoutDuration    time.Duration
	CodeTTL            time.Duration
	CodeMaxAttempts    int
	CleanupInterval    time.Duration
	SMTPHost           string
	SMTPPort           int
	SMTPUsername       string
	SMTPPassword       string
	SMTPFrom           string
	TwilioSID          string
	TwilioToken        string
	TwilioFrom         string
	NotificationBuffer int
}

// IsProduction reports whether cookies and logging should use production settings
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads .env, the YAML config file and environment overrides, in that order
func Load() (*Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()
	return LoadFile(env("ERPAUTH_CONFIG", defaultConfigPath))
}

// LoadFile builds a Config from the given YAML file plus environment overrides
func LoadFile(path string) (*Config, error) {
	configFile, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	if err := caarlosenv.Parse(configFile); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	return FromFile(configFile)
}

// FromFile validates a parsed config file and applies defaults
func FromFile(configFile *ConfigFile) (*Config, error) {
	if err := validateFile(configFile); err != nil {
		return nil, err
	}

	lockoutDuration, err := durationOr(configFile.Lockout.Duration, 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid lockout duration: %w", err)
	}

	codeTTL, err := durationOr(configFile.Verification.CodeTTL, 10*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid verification code TTL: %w", err)
	}

	cleanup, err := durationOr(configFile.Session.CleanupInterval, time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid session cleanup interval: %w", err)
	}

	accessTTL := stringOr(configFile.JWT.AccessTTL, "30m")
	if _, err := auth.ParseDuration(accessTTL); err != nil {
		return nil, fmt.Errorf("invalid access token TTL: %w", err)
	}
	refreshTTL := stringOr(configFile.JWT.RefreshTTL, "7d")
	if _, err := auth.ParseDuration(refreshTTL); err != nil {
		return nil, fmt.Errorf("invalid refresh token TTL: %w", err)
	}

	return &Config{
		Env:                stringOr(configFile.App.Env, "development"),
		Port:               fmt.Sprintf("%d", intOr(configFile.App.Port, 8080)),
		GinMode:            stringOr(configFile.App.GinMode, "release"),
		DSN:                configFile.Database.DSN,
		RedisAddr:          configFile.Redis.Addr,
		RedisPassword:      configFile.Redis.Password,
		RedisDB:            configFile.Redis.DB,
		JWTAccessSecret:    configFile.JWT.AccessSecret,
		JWTRefreshSecret:   configFile.JWT.RefreshSecret,
		JWTIssuer:          stringOr(configFile.JWT.Issuer, "erpauth"),
		AccessTTL:          accessTTL,
		RefreshTTL:         refreshTTL,
		LockoutThreshold:   intOr(configFile.Lockout.Threshold, 5),
		LockoutDuration:    lockoutDuration,
		CodeTTL:            codeTTL,
		CodeMaxAttempts:    intOr(configFile.Verification.MaxAttempts, 5),
		CleanupInterval:    cleanup,
		SMTPHost:           configFile.Mail.Host,
		SMTPPort:           intOr(configFile.Mail.Port, 587),
		SMTPUsername:       configFile.Mail.Username,
		SMTPPassword:       configFile.Mail.Password,
		SMTPFrom:           stringOr(configFile.Mail.From, "no-reply@erp.local"),
		TwilioSID:          configFile.Twilio.AccountSID,
		TwilioToken:        configFile.Twilio.AuthToken,
		TwilioFrom:         configFile.Twilio.FromNumber,
		NotificationBuffer: intOr(configFile.Notifications.BufferSize, 256),
	}, nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}

// validateFile reports missing signing secrets as domain.ErrConfiguration so
// start-up aborts instead of failing every request later.
func validateFile(configFile *ConfigFile) error {
	err := validator.New().Struct(configFile)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}

	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: invalid fields %s", domain.ErrConfiguration, strings.Join(fields, ", "))
}

// durationOr parses s with the token lifetime grammar, so "1d" works everywhere.
func durationOr(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return auth.ParseDuration(s)
}

func stringOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func intOr(i, def int) int {
	if i == 0 {
		return def
	}
	return i
}
