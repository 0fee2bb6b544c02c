package entity

import "time"

type PostType string

const (
	TypeEvent               PostType = "event"
	TypeExternalConvocatory PostType = "external_convocatory"
	TypeInternalConvocatory PostType = "internal_convocatory"
	TypeProject             PostType = "project"
	TypeResearch            PostType = "research"
)

// IsConvocatory reports whether the post type is eligible for the pinned
// spotlight slot.
func (t PostType) IsConvocatory() bool {
	return t == TypeInternalConvocatory || t == TypeExternalConvocatory
}

func (t PostType) Valid() bool {
	switch t {
	case TypeEvent, TypeExternalConvocatory, TypeInternalConvocatory, TypeProject, TypeResearch:
		return true
	}
	return false
}

type PostStatus string

const (
	StatusPending  PostStatus = "pending"
	StatusApproved PostStatus = "approved"
	StatusRejected PostStatus = "rejected"
)

func (s PostStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// ProtectedUserID is the bootstrap administrator account. It is excluded
// from user listings and can never be removed.
const ProtectedUserID uint = 1

type Post struct {
	ID          uint       `json:"id"`
	CategoryID  uint       `json:"category_id"`
	UserID      uint       `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Summary     string     `json:"summary"`
	PublishDate *time.Time `json:"publish_date"`
	EventDate   *time.Time `json:"event_date,omitempty"`
	Status      PostStatus `json:"status"`
	Type        PostType   `json:"type"`
	IsPinned    bool       `json:"is_pinned"`
	Tags        string     `json:"tags"`
	Comments    string     `json:"comments,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Category    *Category  `json:"category,omitempty"`
	User        *User      `json:"user,omitempty"`
	Assets      []Asset    `json:"assets,omitempty"`
}

type Category struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// User is the authoring identity attached to a post. Credentials never
// leave the persistence layer.
type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}
