package models

import "time"

// Achievement is a one-shot milestone on a running metric. Unlike tasks,
// achievements carry XP only and never deactivate.
type Achievement struct {
	ID       string         `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Code     string         `gorm:"uniqueIndex;not null" json:"code"`
	Title    string         `gorm:"not null" json:"title"`
	Category MetricCategory `gorm:"type:varchar(16);not null;index" json:"category"`

	Requirement int64 `gorm:"not null" json:"requirement"` // >= 1
	XPReward    int64 `json:"xp_reward" gorm:"default:0"`

	Timestamps
}

// UserAchievement is the per-user unlock row. Unlocked transitions
// false→true exactly once when the metric reaches the requirement.
type UserAchievement struct {
	ID            string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID        string `gorm:"index:idx_user_achievement,unique;not null" json:"user_id"`
	AchievementID string `gorm:"index:idx_user_achievement,unique;not null" json:"achievement_id"`

	Unlocked   bool       `json:"unlocked" gorm:"default:false"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`

	Timestamps

	Achievement Achievement `gorm:"foreignKey:AchievementID" json:"achievement,omitempty"`
}

// AchievementSeeds are the built-in milestones, inserted at boot if missing.
var AchievementSeeds = []Achievement{
	{Code: "FIRST_DEPOSIT", Title: "First Deposit", Category: MetricDeposit, Requirement: 1, XPReward: 500},
	{Code: "RECRUITER", Title: "Recruiter", Category: MetricReferral, Requirement: 5, XPReward: 750},
	{Code: "NETWORKER", Title: "Networker", Category: MetricReferral, Requirement: 25, XPReward: 2500},
	{Code: "MINER", Title: "Miner", Category: MetricMining, Requirement: 10, XPReward: 400},
	{Code: "MINING_RIG", Title: "Mining Rig", Category: MetricMining, Requirement: 100, XPReward: 2000},
	{Code: "WEEK_STREAK", Title: "Seven in a Row", Category: MetricStreak, Requirement: 7, XPReward: 300},
	{Code: "MONTH_STREAK", Title: "Iron Discipline", Category: MetricStreak, Requirement: 30, XPReward: 1500},
	{Code: "FIRST_STAKE", Title: "First Stake", Category: MetricStaking, Requirement: 1, XPReward: 500},
	{Code: "EARNER_10K", Title: "Ten Thousand Club", Category: MetricEarning, Requirement: 10000, XPReward: 3000},
}

// TaskSeeds are the built-in recurring-progress tasks.
var TaskSeeds = []Task{
	{Title: "Make your first deposit", Category: MetricDeposit, MaxProgress: 1, XPReward: 200, XNRTReward: 50},
	{Title: "Invite 3 friends", Category: MetricReferral, MaxProgress: 3, XPReward: 300, XNRTReward: 150},
	{Title: "Complete 5 mining sessions", Category: MetricMining, MaxProgress: 5, XPReward: 250, XNRTReward: 100},
	{Title: "Check in 3 days in a row", Category: MetricStreak, MaxProgress: 3, XPReward: 100, XNRTReward: 30},
	{Title: "Earn 1000 XNRT", Category: MetricEarning, MaxProgress: 1000, XPReward: 500, XNRTReward: 200},
}
