package models

import "time"

// Report targets. A report references exactly one of post or reply.
const (
	ReportTargetPost  = "post"
	ReportTargetReply = "reply"
)

// Report statuses.
const (
	ReportStatusPending   = "pending"
	ReportStatusResolved  = "resolved"
	ReportStatusDismissed = "dismissed"
)

// Report is a user-filed flag against a post or reply. Immutable once
// created except for the status/resolution fields, which only moderators
// transition.
type Report struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	TargetType  string `gorm:"not null;index:idx_report_target" json:"target_type"`
	TargetID    uint   `gorm:"not null;index:idx_report_target" json:"target_id"`
	ReporterID  uint   `gorm:"not null;index" json:"reporter_id"`
	Reporter    User   `gorm:"foreignKey:ReporterID" json:"reporter"`
	Reason      string `gorm:"not null" json:"reason"`
	Description string `gorm:"type:text" json:"description"`

	Status     string     `gorm:"not null;default:pending;index" json:"status"`
	ResolverID *uint      `json:"resolver_id,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
