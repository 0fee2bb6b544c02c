package model

import (
	"time"

	"gorm.io/gorm"
)

type PostModel struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CategoryID  uint           `gorm:"not null;index" json:"category_id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	Title       string         `gorm:"type:varchar(120);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Summary     string         `gorm:"type:varchar(90)" json:"summary"`
	PublishDate *time.Time     `json:"publish_date"`
	EventDate   *time.Time     `json:"event_date"`
	Status      string         `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	Type        string         `gorm:"type:varchar(30);not null;index" json:"type"`
	IsPinned    bool           `gorm:"default:false" json:"is_pinned"`
	Tags        string         `gorm:"type:text" json:"tags"`
	Comments    string         `gorm:"type:varchar(255)" json:"comments"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Category *CategoryModel `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	User     *UserModel     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Assets   []AssetModel   `gorm:"foreignKey:PostID" json:"assets,omitempty"`
}

func (PostModel) TableName() string { return "posts" }
