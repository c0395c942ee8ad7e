package domain

import "time"

// User represents the credential record of an employee account
type User struct {
	ID                  string
	Email               string
	FirstName           string
	LastName            string
	Phone               string
	PasswordHash        string
	RoleID              string
	IsActive            bool
	EmailVerified       bool
	FailedLoginAttempts int
	AccountLockedUntil  *time.Time
	PasswordChangedAt   *time.Time
	LastLoginAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// FullName joins first and last name
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Session represents a persisted login session. The ID doubles as the session token.
type Session struct {
	ID             string
	UserID         string
	RefreshToken   string
	IPAddress      string
	UserAgent      string
	IsActive       bool
	ExpiresAt      time.Time
	LastActivityAt time.Time
	CreatedAt      time.Time
}

// Usable reports whether the session can still authenticate requests
func (s *Session) Usable(now time.Time) bool {
	return s.IsActive && now.Before(s.ExpiresAt)
}

// CodePurpose tells what a verification code unlocks
type CodePurpose string

const (
	PurposeEmailVerification CodePurpose = "email_verification"
	PurposePasswordReset     CodePurpose = "password_reset"
	PurposeTwoFactor         CodePurpose = "two_factor"
)

// VerificationCode represents a short-lived numeric code sent to a user
type VerificationCode struct {
	ID           string
	UserID       string
	Email        string
	Code         string
	Purpose      CodePurpose
	ExpiresAt    time.Time
	IsUsed       bool
	AttemptCount int
	IPAddress    string
	UserAgent    string
	CreatedAt    time.Time
	UsedAt       *time.Time
}

// Expired reports whether the code window has passed
func (v *VerificationCode) Expired(now time.Time) bool {
	return !now.Before(v.ExpiresAt)
}

// UserSummary is the profile slice returned to clients after authentication
type UserSummary struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Email               string `json:"email"`
	RoleID              string `json:"role_id"`
	EmailVerified       bool   `json:"email_verified"`
	UnreadNotifications int64  `json:"unread_notifications"`
}

// AuthResult represents authentication outcome
type AuthResult struct {
	User            UserSummary
	AccessToken     string
	AccessExpiresAt time.Time
	RefreshToken    string
	SessionID       string
	SessionExpires  time.Time
}

// NewSession is what createSession hands back to its callers
type NewSession struct {
	SessionID    string
	RefreshToken string
	ExpiresAt    time.Time
}

// CodeDispatch describes a code that was just issued
type CodeDispatch struct {
	Purpose          CodePurpose
	ExpiresInMinutes int
}

// Notification is a best-effort message for the notification collaborator
type Notification struct {
	UserID  string
	Title   string
	Message string
	Type    string
}

// Notification types emitted by this service
const (
	NotificationSecurity = "security"
	NotificationAccount  = "account"
)
