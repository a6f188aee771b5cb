package models

// Balance holds a user's XNRT split into sub-accounts, plus the cumulative
// total-earned counter. One row per user, created lazily on first touch.
// Sub-balances never go negative; TotalEarned only ever grows.
type Balance struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID string `gorm:"uniqueIndex;not null" json:"user_id"`

	XNRTBalance     float64 `json:"xnrt_balance" gorm:"default:0"`
	StakingBalance  float64 `json:"staking_balance" gorm:"default:0"`
	MiningBalance   float64 `json:"mining_balance" gorm:"default:0"`
	ReferralBalance float64 `json:"referral_balance" gorm:"default:0"`

	// TotalEarned accumulates every reward credit (mining, staking, tasks,
	// achievements, referral commission). Deposits are not earnings.
	TotalEarned float64 `json:"total_earned" gorm:"default:0"`

	Timestamps
}

// SubAccount names one of the Balance columns a credit can land in.
type SubAccount string

const (
	AccountMain     SubAccount = "xnrt_balance"
	AccountStaking  SubAccount = "staking_balance"
	AccountMining   SubAccount = "mining_balance"
	AccountReferral SubAccount = "referral_balance"
)
