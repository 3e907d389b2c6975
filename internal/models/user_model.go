package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is the closed set of roles a user can hold. Stored as plain text;
// authorization decisions always match against the constants below.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	}
	return false
}

type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"size:100" json:"username"`
	Email    string `gorm:"uniqueIndex;size:100" json:"email"`
	Password string `gorm:"size:255" json:"-"`
	Role     Role   `gorm:"size:20;default:'user'" json:"role"`
	Avatar   string `gorm:"size:255" json:"avatar"`

	// Confirmed flips to true exactly once, by email confirmation or by an
	// OAuth provider that has already verified the address.
	Confirmed bool `gorm:"default:false" json:"confirmed"`

	// At most one live refresh token and one live reset token per user.
	// Invalidation is overwrite-to-new or overwrite-to-null; there is no
	// revocation list.
	RefreshToken       *string `gorm:"size:512" json:"-"`
	PasswordResetToken *string `gorm:"size:512" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
