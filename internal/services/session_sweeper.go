package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/you/erpauth/domain"
	"github.com/you/erpauth/internal/infrastructure/database"
	"go.uber.org/zap"
)

const (
	DefaultSweepInterval = time.Hour
	sweepLockKey         = "erpauth:sweeper:lock"
)

// SessionSweeper periodically deactivates expired sessions and deletes
// expired verification codes.
type SessionSweeper struct {
	auth         domain.AuthService
	verification domain.VerificationService
	redis        *database.RedisClient
	interval     time.Duration
	logger       *zap.Logger

	stop     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewSessionSweeper creates a sweeper. redis may be nil, ticks then run without
// the cross-process lock.
func NewSessionSweeper(auth domain.AuthService, verification domain.VerificationService, redis *database.RedisClient, interval time.Duration, logger *zap.Logger) *SessionSweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionSweeper{
		auth:         auth,
		verification: verification,
		redis:        redis,
		interval:     interval,
		logger:       logger,
		stop:         make(chan struct{}),
	}
}

// Start runs the ticker loop until Stop is called or ctx is done
func (s *SessionSweeper) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Sweep(ctx)
			case <-s.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the loop and waits for an in-flight sweep
func (s *SessionSweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
}

// Sweep runs one cleanup pass. It returns false when another process held the lock.
func (s *SessionSweeper) Sweep(ctx context.Context) bool {
	release, ok := s.acquire(ctx)
	if !ok {
		s.logger.Debug("sweep skipped, lock held elsewhere")
		return false
	}
	defer release()

	sessions, err := s.auth.CleanupExpiredSessions(ctx)
	if err != nil {
		s.logger.Error("session sweep failed", zap.Error(err))
	}
	codes, err := s.verification.CleanupExpiredVerifications(ctx)
	if err != nil {
		s.logger.Error("verification code sweep failed", zap.Error(err))
	}

	s.logger.Info("sweep finished",
		zap.Int64("sessions_deactivated", sessions),
		zap.Int64("codes_deleted", codes))
	return true
}

// acquire takes the redis lock when redis is configured. A redis failure does
// not block the sweep since every write in it is conditional.
func (s *SessionSweeper) acquire(ctx context.Context) (func(), bool) {
	if s.redis == nil {
		return func() {}, true
	}

	token := uuid.NewString()
	ok, err := database.SetNX(ctx, s.redis, sweepLockKey, token, s.interval)
	if err != nil {
		s.logger.Warn("sweep lock unavailable, sweeping anyway", zap.Error(err))
		return func() {}, true
	}
	if !ok {
		return nil, false
	}

	return func() {
		if _, err := database.Release(context.Background(), s.redis, sweepLockKey, token); err != nil {
			s.logger.Warn("sweep lock release failed", zap.Error(err))
		}
	}, true
}
