package models

import "time"

// Inbox statuses shared by contact messages and objective inquiries.
const (
	InboxStatusNew      = "new"
	InboxStatusRead     = "read"
	InboxStatusReplied  = "replied"
	InboxStatusArchived = "archived"
)

// Guide booking statuses.
const (
	BookingStatusPending   = "pending"
	BookingStatusContacted = "contacted"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

// ContactMessage is a public contact-form submission. Created without
// authentication; mutated only by admin status transitions.
type ContactMessage struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"not null" json:"name"`
	Email   string `gorm:"not null" json:"email"`
	Subject string `json:"subject"`
	Message string `gorm:"type:text;not null" json:"message"`

	Status     string     `gorm:"not null;default:new;index" json:"status"`
	AdminNotes string     `gorm:"type:text" json:"admin_notes"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	RepliedAt  *time.Time `json:"replied_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ObjectiveInquiry is a public question about a specific tourist objective.
type ObjectiveInquiry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ObjectiveID uint      `gorm:"not null;index" json:"objective_id"`
	Objective   Objective `gorm:"foreignKey:ObjectiveID" json:"objective"`
	Name        string    `gorm:"not null" json:"name"`
	Email       string    `gorm:"not null" json:"email"`
	Message     string    `gorm:"type:text;not null" json:"message"`

	Status     string     `gorm:"not null;default:new;index" json:"status"`
	AdminNotes string     `gorm:"type:text" json:"admin_notes"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	RepliedAt  *time.Time `json:"replied_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GuideBooking is a public request to book a guide, worked through the
// pending→contacted→confirmed→completed pipeline by admins.
type GuideBooking struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	GuideID uint   `gorm:"not null;index" json:"guide_id"`
	Guide   Guide  `gorm:"foreignKey:GuideID" json:"guide"`
	Name    string `gorm:"not null" json:"name"`
	Email   string `gorm:"not null" json:"email"`
	Phone   string `json:"phone"`
	Message string `gorm:"type:text" json:"message"`

	Status     string `gorm:"not null;default:pending;index" json:"status"`
	AdminNotes string `gorm:"type:text" json:"admin_notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
