package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the platform-side account row. Identity (login, passwords, OTP)
// lives in the profile service; we key everything off ExternalUserID which
// the gateway forwards as X-User-ID.
type User struct {
	ID             string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"`
	Username       string `gorm:"index;not null" json:"username"`

	// Referral graph: ReferralCode is what this user hands out,
	// ReferredByID points at the User.ID whose code they signed up with.
	// ReferredByID must never form a cycle — enforced at assignment time,
	// never re-checked during commission propagation.
	ReferralCode string  `gorm:"uniqueIndex;not null" json:"referral_code"`
	ReferredByID *string `gorm:"index" json:"referred_by_id,omitempty"`

	// Progression
	XP    int64 `json:"xp" gorm:"default:0"`
	Level int   `json:"level" gorm:"default:1"`

	// Daily check-in streak
	Streak        int        `json:"streak" gorm:"default:0"`
	LastCheckInAt *time.Time `json:"last_check_in_at,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// RemoteUser mirrors the schema exposed by the profile sync service (read-only).
// Used by the account sync worker to keep local User rows fresh.
type RemoteUser struct {
	ID         string     `json:"id"`
	ExternalID string     `json:"external_id"`
	Username   string     `json:"username"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}
