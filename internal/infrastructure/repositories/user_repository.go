package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/you/erpauth/domain"
	"gorm.io/gorm"
)

// UserRepositoryImpl implements domain.UserRepository using GORM
type UserRepositoryImpl struct {
	db *gorm.DB
}

// DBUser represents the database model for User (with GORM tags)
type DBUser struct {
	ID                  string `gorm:"primaryKey;size:36"`
	Email               string `gorm:"uniqueIndex;size:255"`
	FirstName           string `gorm:"size:128"`
	LastName            string `gorm:"size:128"`
	Phone               string `gorm:"size:32"`
	PasswordHash        string `gorm:"column:password"`
	RoleID              string `gorm:"index;size:64"`
	IsActive            bool   `gorm:"index"`
	EmailVerified       bool
	FailedLoginAttempts int `gorm:"not null"`
	AccountLockedUntil  *time.Time
	PasswordChangedAt   *time.Time
	LastLoginAt         *time.Time
	CreatedAt           time.Time `gorm:"index"`
	UpdatedAt           time.Time
	DeletedAt           gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (DBUser) TableName() string {
	return "users"
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepositoryImpl {
	return &UserRepositoryImpl{db: db}
}

// Create implements domain.UserRepository
func (r *UserRepositoryImpl) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	dbUser := r.domainToDB(user)
	if err := r.db.WithContext(ctx).Create(dbUser).Error; err != nil {
		return err
	}
	user.CreatedAt = dbUser.CreatedAt
	user.UpdatedAt = dbUser.UpdatedAt
	return nil
}

// FindByEmail implements domain.UserRepository. Emails are stored lowercase.
func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

// FindByID implements domain.UserRepository
func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// RecordFailedLogin implements domain.UserRepository. Both columns are computed
// from the pre-update row inside one UPDATE so concurrent failures never lose
// an increment. A lock that ended at or before now restarts the count at one.
func (r *UserRepositoryImpl) RecordFailedLogin(ctx context.Context, userID string, threshold int, now, lockUntil time.Time) (*domain.User, error) {
	res := r.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"failed_login_attempts": gorm.Expr(
			"CASE WHEN account_locked_until <= ? THEN 1 ELSE failed_login_attempts + 1 END",
			now,
		),
		"account_locked_until": gorm.Expr(
			"CASE WHEN account_locked_until <= ? THEN (CASE WHEN ? <= 1 THEN ? END) "+
				"WHEN failed_login_attempts + 1 >= ? THEN ? ELSE account_locked_until END",
			now, threshold, lockUntil, threshold, lockUntil,
		),
	})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrUserNotFound
	}
	return r.FindByID(ctx, userID)
}

// ResetLockout implements domain.UserRepository
func (r *UserRepositoryImpl) ResetLockout(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"failed_login_attempts": 0,
		"account_locked_until":  nil,
	}).Error
}

// RecordLogin implements domain.UserRepository
func (r *UserRepositoryImpl) RecordLogin(ctx context.Context, userID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", userID).Update("last_login_at", at).Error
}

// UpdatePassword implements domain.UserRepository. Lockout counters are cleared
// together with the new hash.
func (r *UserRepositoryImpl) UpdatePassword(ctx context.Context, userID, passwordHash string, changedAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"password":              passwordHash,
		"password_changed_at":   changedAt,
		"failed_login_attempts": 0,
		"account_locked_until":  nil,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// MarkEmailVerified implements domain.UserRepository
func (r *UserRepositoryImpl) MarkEmailVerified(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", userID).Update("email_verified", true).Error
}

func (r *UserRepositoryImpl) findOne(ctx context.Context, query string, arg interface{}) (*domain.User, error) {
	var dbUser DBUser
	err := r.db.WithContext(ctx).Where(query, arg).First(&dbUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbUser), nil
}

// domainToDB converts domain user to database user
func (r *UserRepositoryImpl) domainToDB(user *domain.User) *DBUser {
	return &DBUser{
		ID:                  user.ID,
		Email:               user.Email,
		FirstName:           user.FirstName,
		LastName:            user.LastName,
		Phone:               user.Phone,
		PasswordHash:        user.PasswordHash,
		RoleID:              user.RoleID,
		IsActive:            user.IsActive,
		EmailVerified:       user.EmailVerified,
		FailedLoginAttempts: user.FailedLoginAttempts,
		AccountLockedUntil:  user.AccountLockedUntil,
		PasswordChangedAt:   user.PasswordChangedAt,
		LastLoginAt:         user.LastLoginAt,
	}
}

// dbToDomain converts database user to domain user
func (r *UserRepositoryImpl) dbToDomain(dbUser *DBUser) *domain.User {
	return &domain.User{
		ID:                  dbUser.ID,
		Email:               dbUser.Email,
		FirstName:           dbUser.FirstName,
		LastName:            dbUser.LastName,
		Phone:               dbUser.Phone,
		PasswordHash:        dbUser.PasswordHash,
		RoleID:              dbUser.RoleID,
		IsActive:            dbUser.IsActive,
		EmailVerified:       dbUser.EmailVerified,
		FailedLoginAttempts: dbUser.FailedLoginAttempts,
		AccountLockedUntil:  dbUser.AccountLockedUntil,
		PasswordChangedAt:   dbUser.PasswordChangedAt,
		LastLoginAt:         dbUser.LastLoginAt,
		CreatedAt:           dbUser.CreatedAt,
		UpdatedAt:           dbUser.UpdatedAt,
	}
}

var _ domain.UserRepository = (*UserRepositoryImpl)(nil)
