package models

import "time"

// MiningSessionStatus — a session is either running or claimed. There is no
// "expired" state: an overdue active session just becomes claimable.
type MiningSessionStatus string

const (
	MiningActive    MiningSessionStatus = "active"
	MiningCompleted MiningSessionStatus = "completed"
)

// MiningSession is one timed mining cycle. At most one active session per
// user; a new one cannot start before NextAvailable of the previous cycle.
// FinalReward is computed exactly once, at claim time.
type MiningSession struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID string `gorm:"index;not null;uniqueIndex:idx_mining_one_active,where:status = 'active'" json:"user_id"`

	StartTime     time.Time `gorm:"not null" json:"start_time"`
	EndTime       time.Time `gorm:"not null" json:"end_time"`
	NextAvailable time.Time `gorm:"not null" json:"next_available"`

	BaseReward      float64 `gorm:"not null" json:"base_reward"`
	BoostPercentage int     `json:"boost_percentage" gorm:"default:0"`
	AdBoostCount    int     `json:"ad_boost_count" gorm:"default:0"`
	FinalReward     float64 `json:"final_reward" gorm:"default:0"`

	Status MiningSessionStatus `gorm:"type:varchar(16);not null;index" json:"status"`

	Timestamps
}
