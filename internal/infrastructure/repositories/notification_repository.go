package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/you/erpauth/domain"
	"gorm.io/gorm"
)

// NotificationRepositoryImpl persists in-app notifications
type NotificationRepositoryImpl struct {
	db *gorm.DB
}

// DBNotification represents the database model for a notification
type DBNotification struct {
	ID        string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"index;size:36"`
	Title     string `gorm:"size:255"`
	Message   string
	Type      string `gorm:"size:32"`
	IsRead    bool   `gorm:"index"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (DBNotification) TableName() string {
	return "notifications"
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) *NotificationRepositoryImpl {
	return &NotificationRepositoryImpl{db: db}
}

// Notify implements domain.NotificationService
func (r *NotificationRepositoryImpl) Notify(ctx context.Context, n domain.Notification) error {
	return r.db.WithContext(ctx).Create(&DBNotification{
		ID:      uuid.NewString(),
		UserID:  n.UserID,
		Title:   n.Title,
		Message: n.Message,
		Type:    n.Type,
	}).Error
}

// CountUnread implements domain.NotificationService
func (r *NotificationRepositoryImpl) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&DBNotification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

var _ domain.NotificationService = (*NotificationRepositoryImpl)(nil)
