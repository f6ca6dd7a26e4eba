package models

import "time"

// Ban types.
const (
	BanTypePermanent = "ban"
	BanTypeSuspend   = "suspend"
)

// Effective access statuses derived from ban history.
const (
	AccessActive    = "active"
	AccessSuspended = "suspended"
	AccessBanned    = "banned"
)

// UserBan is one row of a user's ban history. Rows are never deleted:
// lifting a ban flips IsActive off and the history stays. The current
// effective status is computed lazily from the most recent active row.
type UserBan struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	User     User   `gorm:"foreignKey:UserID" json:"user"`
	BannedBy uint   `gorm:"not null" json:"banned_by"`
	BanType  string `gorm:"not null" json:"ban_type"`
	Reason   string `gorm:"not null" json:"reason"`
	Notes    string `gorm:"type:text" json:"notes"`

	BannedAt time.Time `gorm:"not null" json:"banned_at"`
	// ExpiresAt is required for suspensions and nil for permanent bans.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	IsActive  bool       `gorm:"not null;default:true;index" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveStatus computes the access state this row implies at the given
// instant. A suspension past its expiry counts as active access; no sweeper
// flips expired rows.
func (b *UserBan) EffectiveStatus(now time.Time) string {
	if !b.IsActive {
		return AccessActive
	}
	switch b.BanType {
	case BanTypePermanent:
		return AccessBanned
	case BanTypeSuspend:
		if b.ExpiresAt != nil && b.ExpiresAt.After(now) {
			return AccessSuspended
		}
	}
	return AccessActive
}
