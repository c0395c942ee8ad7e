package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/you/erpauth/domain"
	"gorm.io/gorm"
)

// VerificationRepositoryImpl implements domain.VerificationRepository using GORM
type VerificationRepositoryImpl struct {
	db *gorm.DB
}

// DBVerificationCode represents the database model for VerificationCode
type DBVerificationCode struct {
	ID           string    `gorm:"primaryKey;size:36"`
	UserID       string    `gorm:"index:idx_verification_lookup,priority:1;size:36"`
	Email        string    `gorm:"size:255"`
	Code         string    `gorm:"size:6"`
	Purpose      string    `gorm:"index:idx_verification_lookup,priority:2;size:32"`
	ExpiresAt    time.Time `gorm:"index"`
	IsUsed       bool      `gorm:"index:idx_verification_lookup,priority:3"`
	AttemptCount int       `gorm:"not null"`
	IPAddress    string    `gorm:"size:64"`
	UserAgent    string    `gorm:"size:512"`
	CreatedAt    time.Time
	UsedAt       *time.Time
}

// TableName returns the table name for GORM
func (DBVerificationCode) TableName() string {
	return "verification_codes"
}

// NewVerificationRepository creates a new verification code repository
func NewVerificationRepository(db *gorm.DB) *VerificationRepositoryImpl {
	return &VerificationRepositoryImpl{db: db}
}

// Create implements domain.VerificationRepository
func (r *VerificationRepositoryImpl) Create(ctx context.Context, code *domain.VerificationCode) error {
	if code.ID == "" {
		code.ID = uuid.NewString()
	}
	row := &DBVerificationCode{
		ID:           code.ID,
		UserID:       code.UserID,
		Email:        code.Email,
		Code:         code.Code,
		Purpose:      string(code.Purpose),
		ExpiresAt:    code.ExpiresAt,
		IsUsed:       code.IsUsed,
		AttemptCount: code.AttemptCount,
		IPAddress:    code.IPAddress,
		UserAgent:    code.UserAgent,
		CreatedAt:    code.CreatedAt,
		UsedAt:       code.UsedAt,
	}
	return r.db.WithContext(ctx).Create(row).Error
}

// FindLatestUnused implements domain.VerificationRepository. Expired codes are
// returned too; the caller decides what expiry means.
func (r *VerificationRepositoryImpl) FindLatestUnused(ctx context.Context, userID string, purpose domain.CodePurpose) (*domain.VerificationCode, error) {
	var row DBVerificationCode
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND purpose = ? AND is_used = ?", userID, string(purpose), false).
		Order("created_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNoCodeFound
		}
		return nil, err
	}

	return &domain.VerificationCode{
		ID:           row.ID,
		UserID:       row.UserID,
		Email:        row.Email,
		Code:         row.Code,
		Purpose:      domain.CodePurpose(row.Purpose),
		ExpiresAt:    row.ExpiresAt,
		IsUsed:       row.IsUsed,
		AttemptCount: row.AttemptCount,
		IPAddress:    row.IPAddress,
		UserAgent:    row.UserAgent,
		CreatedAt:    row.CreatedAt,
		UsedAt:       row.UsedAt,
	}, nil
}

// IncrementAttempts implements domain.VerificationRepository. The counter only
// moves while the code is unused and below maxAttempts; ok is false otherwise.
func (r *VerificationRepositoryImpl) IncrementAttempts(ctx context.Context, codeID string, maxAttempts int) (attempts int, ok bool, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&DBVerificationCode{}).
			Where("id = ? AND is_used = ? AND attempt_count < ?", codeID, false, maxAttempts).
			UpdateColumn("attempt_count", gorm.Expr("attempt_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return nil
		}
		ok = true
		var row DBVerificationCode
		if err := tx.Select("attempt_count").Where("id = ?", codeID).Take(&row).Error; err != nil {
			return err
		}
		attempts = row.AttemptCount
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return attempts, ok, nil
}

// MarkUsed implements domain.VerificationRepository. It reports false when the
// code was already consumed by a concurrent call.
func (r *VerificationRepositoryImpl) MarkUsed(ctx context.Context, codeID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&DBVerificationCode{}).
		Where("id = ? AND is_used = ?", codeID, false).
		Updates(map[string]interface{}{"is_used": true, "used_at": at})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ExpireOutstanding implements domain.VerificationRepository
func (r *VerificationRepositoryImpl) ExpireOutstanding(ctx context.Context, userID string, purpose domain.CodePurpose, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&DBVerificationCode{}).
		Where("user_id = ? AND purpose = ? AND is_used = ? AND expires_at > ?", userID, string(purpose), false, now).
		Update("expires_at", now)
	return res.RowsAffected, res.Error
}

// DeleteExpired implements domain.VerificationRepository
func (r *VerificationRepositoryImpl) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("is_used = ? AND expires_at < ?", false, now).
		Delete(&DBVerificationCode{})
	return res.RowsAffected, res.Error
}

var _ domain.VerificationRepository = (*VerificationRepositoryImpl)(nil)
