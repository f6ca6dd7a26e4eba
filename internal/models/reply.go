package models

import (
	"time"
)

// MaxReplyDepth bounds threading: replies at this depth cannot be replied
// to further. Depths 0 through MaxReplyDepth exist.
const MaxReplyDepth = 3

// Reply represents a threaded reply on a forum post. ParentReplyID is nil
// for top-level replies; Depth is parent.Depth+1, bounded at MaxReplyDepth.
type Reply struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	PostID        uint   `gorm:"not null;index" json:"post_id"`
	ParentReplyID *uint  `gorm:"index" json:"parent_reply_id,omitempty"`
	UserID        uint   `gorm:"not null;index" json:"user_id"`
	User          User   `gorm:"foreignKey:UserID" json:"user"`
	Content       string `gorm:"type:text;not null" json:"content"`
	Depth         int    `gorm:"not null;default:0" json:"depth"`

	Upvotes   int `gorm:"not null;default:0" json:"upvotes"`
	Downvotes int `gorm:"not null;default:0" json:"downvotes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Vote types for replies.
const (
	VoteUpvote   = "upvote"
	VoteDownvote = "downvote"
)

// ReplyVote records a user's single active vote on a reply. The
// (reply, user) pair is unique; toggling removes the row, switching
// rewrites VoteType.
type ReplyVote struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	ReplyID  uint   `gorm:"not null;uniqueIndex:idx_reply_voter" json:"reply_id"`
	UserID   uint   `gorm:"not null;uniqueIndex:idx_reply_voter" json:"user_id"`
	VoteType string `gorm:"not null" json:"vote_type"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
