package models

import "time"

// Review subjects.
const (
	ReviewSubjectObjective = "objective"
	ReviewSubjectGuide     = "guide"
)

// Review is a rated write-up of a tourist objective or guide. Publicly
// visible only once Approved is true.
type Review struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	SubjectType string `gorm:"not null;index:idx_review_subject" json:"subject_type"`
	SubjectID   uint   `gorm:"not null;index:idx_review_subject" json:"subject_id"`
	UserID      uint   `gorm:"not null;index" json:"user_id"`
	User        User   `gorm:"foreignKey:UserID" json:"user"`

	Rating  int    `gorm:"not null" json:"rating"` // 1..5
	Title   string `gorm:"not null" json:"title"`
	Comment string `gorm:"type:text" json:"comment"`

	Approved     bool `gorm:"not null;default:false;index" json:"approved"`
	HelpfulCount int  `gorm:"not null;default:0" json:"helpful_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
