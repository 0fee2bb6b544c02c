package model

import (
	"time"

	"gorm.io/gorm"
)

type AssetModel struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	PostID       uint           `gorm:"not null;index" json:"post_id"`
	Name         string         `gorm:"type:varchar(1024);not null;index" json:"name"`
	Type         string         `gorm:"type:varchar(10);not null" json:"type"`
	IsCoverImage bool           `gorm:"default:false" json:"is_cover_image"`
	Hash         *string        `gorm:"type:varchar(64);index" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (AssetModel) TableName() string { return "assets" }
