package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/you/erpauth/domain"
	"gorm.io/gorm"
)

// SessionRepositoryImpl implements domain.SessionRepository using GORM.
// Rows are only ever deactivated, never deleted, to keep session history.
type SessionRepositoryImpl struct {
	db *gorm.DB
}

// DBSession represents the database model for Session
type DBSession struct {
	ID             string    `gorm:"primaryKey;size:36"`
	UserID         string    `gorm:"index;size:36"`
	RefreshToken   string    `gorm:"uniqueIndex;size:512"`
	IPAddress      string    `gorm:"size:64"`
	UserAgent      string    `gorm:"size:512"`
	IsActive       bool      `gorm:"index"`
	ExpiresAt      time.Time `gorm:"index"`
	LastActivityAt time.Time
	CreatedAt      time.Time
}

// TableName returns the table name for GORM
func (DBSession) TableName() string {
	return "user_sessions"
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *gorm.DB) *SessionRepositoryImpl {
	return &SessionRepositoryImpl{db: db}
}

// Create implements domain.SessionRepository
func (r *SessionRepositoryImpl) Create(ctx context.Context, session *domain.Session) error {
	return r.db.WithContext(ctx).Create(sessionToDB(session)).Error
}

// FindByID implements domain.SessionRepository
func (r *SessionRepositoryImpl) FindByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	return r.findOne(r.db.WithContext(ctx).Where("id = ?", sessionID))
}

// FindActiveByRefreshToken implements domain.SessionRepository. All three
// predicates go into one statement so a concurrent logout cannot slip between
// separate checks.
func (r *SessionRepositoryImpl) FindActiveByRefreshToken(ctx context.Context, sessionID, refreshToken string) (*domain.Session, error) {
	return r.findOne(r.db.WithContext(ctx).
		Where("id = ? AND refresh_token = ? AND is_active = ?", sessionID, refreshToken, true))
}

// FindActiveByUser implements domain.SessionRepository
func (r *SessionRepositoryImpl) FindActiveByUser(ctx context.Context, userID string, now time.Time) ([]domain.Session, error) {
	var rows []DBSession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ? AND expires_at > ?", userID, true, now).
		Order("last_activity_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	sessions := make([]domain.Session, 0, len(rows))
	for i := range rows {
		sessions = append(sessions, *sessionToDomain(&rows[i]))
	}
	return sessions, nil
}

// Touch implements domain.SessionRepository. Last write wins.
func (r *SessionRepositoryImpl) Touch(ctx context.Context, sessionID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&DBSession{}).Where("id = ?", sessionID).Update("last_activity_at", at).Error
}

// Deactivate implements domain.SessionRepository. Deactivating an unknown or
// already inactive session is not an error.
func (r *SessionRepositoryImpl) Deactivate(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).Model(&DBSession{}).
		Where("id = ? AND is_active = ?", sessionID, true).
		Update("is_active", false).Error
}

// DeactivateAllForUser implements domain.SessionRepository
func (r *SessionRepositoryImpl) DeactivateAllForUser(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&DBSession{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

// DeactivateExpired implements domain.SessionRepository
func (r *SessionRepositoryImpl) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&DBSession{}).
		Where("is_active = ? AND expires_at < ?", true, now).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

func (r *SessionRepositoryImpl) findOne(q *gorm.DB) (*domain.Session, error) {
	var row DBSession
	if err := q.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return sessionToDomain(&row), nil
}

func sessionToDB(s *domain.Session) *DBSession {
	return &DBSession{
		ID:             s.ID,
		UserID:         s.UserID,
		RefreshToken:   s.RefreshToken,
		IPAddress:      s.IPAddress,
		UserAgent:      s.UserAgent,
		IsActive:       s.IsActive,
		ExpiresAt:      s.ExpiresAt,
		LastActivityAt: s.LastActivityAt,
		CreatedAt:      s.CreatedAt,
	}
}

func sessionToDomain(row *DBSession) *domain.Session {
	return &domain.Session{
		ID:             row.ID,
		UserID:         row.UserID,
		RefreshToken:   row.RefreshToken,
		IPAddress:      row.IPAddress,
		UserAgent:      row.UserAgent,
		IsActive:       row.IsActive,
		ExpiresAt:      row.ExpiresAt,
		LastActivityAt: row.LastActivityAt,
		CreatedAt:      row.CreatedAt,
	}
}

var _ domain.SessionRepository = (*SessionRepositoryImpl)(nil)
