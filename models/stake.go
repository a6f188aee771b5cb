package models

import "time"

type StakeStatus string

const (
	StakeActive    StakeStatus = "active"
	StakeCompleted StakeStatus = "completed" // matured, principal + reward paid out
	StakeWithdrawn StakeStatus = "withdrawn" // exited early, principal only
)

// Stake is a fixed-term, fixed-rate position. Reward accrues linearly:
// amount × dailyRate% × min(elapsedDays, duration). Accrual is display-only
// until realization, which happens exactly once at maturity or withdrawal.
type Stake struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID string `gorm:"index;not null" json:"user_id"`

	Amount       float64 `gorm:"not null" json:"amount"`
	Tier         string  `gorm:"type:varchar(32);not null" json:"tier"`
	DailyRate    float64 `gorm:"not null" json:"daily_rate"` // percent per day
	DurationDays int     `gorm:"not null" json:"duration_days"`

	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"` // StartDate + DurationDays

	RealizedReward float64     `json:"realized_reward" gorm:"default:0"`
	Status         StakeStatus `gorm:"type:varchar(16);not null;index" json:"status"`

	Timestamps
}

// StakeTier is static plan config, matched by name at stake creation.
type StakeTier struct {
	Name         string  `json:"name"`
	MinAmount    float64 `json:"min_amount"`
	DailyRate    float64 `json:"daily_rate"`
	DurationDays int     `json:"duration_days"`
}

// StakeTiers are the offered plans. Order matters for display only.
var StakeTiers = []StakeTier{
	{Name: "starter", MinAmount: 100, DailyRate: 0.5, DurationDays: 30},
	{Name: "silver", MinAmount: 5000, DailyRate: 1.2, DurationDays: 45},
	{Name: "gold", MinAmount: 20000, DailyRate: 8.0, DurationDays: 60},
}
