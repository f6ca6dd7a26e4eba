package models

import (
	"time"
)

// Post statuses. Posts are never hard-deleted by regular users, only
// status-flagged; hard delete is an admin cascade (see ForumService).
const (
	PostStatusActive  = "active"
	PostStatusDeleted = "deleted"
	PostStatusSpam    = "spam"
)

// Post represents a forum topic in the Wayfarer community.
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Title    string `gorm:"not null" json:"title"`
	Slug     string `gorm:"uniqueIndex;not null" json:"slug"`
	Category string `gorm:"not null;index" json:"category"`
	Content  string `gorm:"type:text;not null" json:"content"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	User     User   `gorm:"foreignKey:UserID" json:"user"`

	Status string `gorm:"not null;default:active;index" json:"status"`
	// Pinned and Locked are flags, not states: they gate other operations
	// (locked blocks new replies, pinned affects sort order) and can be
	// toggled regardless of Status.
	Pinned bool `gorm:"not null;default:false" json:"pinned"`
	Locked bool `gorm:"not null;default:false" json:"locked"`

	ViewsCount   int `gorm:"not null;default:0" json:"views_count"`
	RepliesCount int `gorm:"not null;default:0" json:"replies_count"`
	UpvotesCount int `gorm:"not null;default:0" json:"upvotes_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Visible reports whether the post should appear in public listings.
func (p *Post) Visible() bool {
	return p.Status == PostStatusActive
}
