package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Contact struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index" json:"user_id"`
	FirstName string         `gorm:"size:50" json:"first_name"`
	LastName  string         `gorm:"size:50" json:"last_name"`
	Email     string         `gorm:"size:100" json:"email"`
	Phone     string         `gorm:"size:25" json:"phone"`
	Birthday  time.Time      `gorm:"type:date" json:"birthday"`
	Favorite  bool           `gorm:"default:false" json:"favorite"`
	Notes     string         `json:"notes,omitempty"`
	Extra     datatypes.JSON `json:"extra,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
