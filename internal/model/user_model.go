package model

import (
	"time"

	"gorm.io/gorm"
)

type UserModel struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"type:varchar(64);not null;uniqueIndex" json:"username"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	PasswordHash string         `gorm:"type:varchar(255)" json:"-"`
	Role         string         `gorm:"type:varchar(32);default:'editor'" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (UserModel) TableName() string { return "users" }
