// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles, ordered roughly by privilege.
const (
	RoleAdmin       = "admin"
	RoleEditor      = "editor"
	RoleContributor = "contributor"
	RoleUser        = "user"
)

// User represents a member of the Wayfarer platform.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"unique;not null" json:"username"`
	Email    string `gorm:"unique;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Role     string `gorm:"not null;default:user;index" json:"role"`
	Bio      string `json:"bio"`
	Avatar   string `json:"avatar"`

	// Activity counters feeding the reputation tiers. Maintained with
	// atomic store-side increments, never read-modify-write.
	PostsCount   int `gorm:"not null;default:0" json:"posts_count"`
	RepliesCount int `gorm:"not null;default:0" json:"replies_count"`
	HelpfulCount int `gorm:"not null;default:0" json:"helpful_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsModerator reports whether the user may perform status transitions on
// other people's content. Ownership checks are separate from this.
func (u *User) IsModerator() bool {
	return u.Role == RoleAdmin || u.Role == RoleEditor
}

// Actor is the explicit identity every moderation and vote operation takes.
// Passing it as an argument keeps authorization a pure function of inputs
// instead of ambient session state.
type Actor struct {
	ID   uint
	Role string
}

// IsModerator reports whether the actor holds a moderator role.
func (a Actor) IsModerator() bool {
	return a.Role == RoleAdmin || a.Role == RoleEditor
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Anonymous reports whether the actor is unauthenticated.
func (a Actor) Anonymous() bool {
	return a.ID == 0
}
