package models

// Referral links an ancestor (ReferrerID) to a descendant (ReferredID) at a
// fixed graph distance. Rows for levels 1-3 are materialized when the
// descendant's referrer is assigned, so team views and commission totals are
// a plain indexed lookup instead of a graph walk.
type Referral struct {
	ID         string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ReferrerID string `gorm:"index:idx_referral_pair,unique;not null" json:"referrer_id"`
	ReferredID string `gorm:"index:idx_referral_pair,unique;not null" json:"referred_id"`
	Level      int    `gorm:"not null" json:"level"` // 1..3

	// Accumulated commission this referrer earned from this descendant.
	TotalCommission float64 `json:"total_commission" gorm:"default:0"`

	Timestamps
}

// CommissionLog records one propagated hop: which earning event produced it,
// the gross amount at the leaf and what the ancestor received. Audit trail
// for statements and support tickets.
type CommissionLog struct {
	ID         string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ReferrerID string `gorm:"index;not null" json:"referrer_id"`
	ReferredID string `gorm:"index;not null" json:"referred_id"`
	Level      int    `gorm:"not null" json:"level"`

	Source      string  `gorm:"type:varchar(32);not null" json:"source"` // mining, staking, task, achievement
	GrossAmount float64 `gorm:"not null" json:"gross_amount"`
	Rate        float64 `gorm:"not null" json:"rate"`
	Commission  float64 `gorm:"not null" json:"commission"`

	Timestamps
}
