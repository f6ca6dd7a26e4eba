package models

import "time"

// Contest submission statuses.
const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusApproved = "approved"
	SubmissionStatusRejected = "rejected"
	SubmissionStatusRemoved  = "removed"
)

// Contest is a photo contest with a submission window.
type Contest struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`

	StartsAt time.Time `gorm:"not null" json:"starts_at"`
	EndsAt   time.Time `gorm:"not null" json:"ends_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContestSubmission is a contestant's photo entry. Status is transitioned
// by admins only; rejection requires a reason, removal requires a reason
// plus an explicit fraud confirmation and invalidates the entry's votes.
type ContestSubmission struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	ContestID uint    `gorm:"not null;index" json:"contest_id"`
	Contest   Contest `gorm:"foreignKey:ContestID" json:"contest"`
	UserID    uint    `gorm:"not null;index" json:"user_id"`
	User      User    `gorm:"foreignKey:UserID" json:"user"`

	Title    string `json:"title"`
	ImageKey string `gorm:"not null" json:"image_key"`

	Status       string `gorm:"not null;default:pending;index" json:"status"`
	StatusReason string `gorm:"type:text" json:"status_reason"`
	VotesCount   int    `gorm:"not null;default:0" json:"votes_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContestVote records one user's vote for a submission.
type ContestVote struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	SubmissionID uint `gorm:"not null;uniqueIndex:idx_submission_voter" json:"submission_id"`
	UserID       uint `gorm:"not null;uniqueIndex:idx_submission_voter" json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
}
