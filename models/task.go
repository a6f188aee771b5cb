package models

// MetricCategory is the closed set of running metrics tasks and achievements
// can track. Progress is always recomputed from the metric's source-of-truth
// state, never incremented ad hoc, so replaying an event can't drift counters.
type MetricCategory string

const (
	MetricDeposit  MetricCategory = "deposit"  // approved deposits credited
	MetricReferral MetricCategory = "referral" // direct (level-1) referrals
	MetricMining   MetricCategory = "mining"   // completed mining sessions
	MetricStreak   MetricCategory = "streak"   // current check-in streak
	MetricEarning  MetricCategory = "earning"  // whole XNRT of TotalEarned
	MetricStaking  MetricCategory = "staking"  // stakes ever opened
)

// MetricCategories lists every valid category; evaluation and seeds range
// over this so an unknown category can't slip in from request data.
var MetricCategories = []MetricCategory{
	MetricDeposit, MetricReferral, MetricMining,
	MetricStreak, MetricEarning, MetricStaking,
}

// Task is a static, admin-managed earning opportunity. Slug is derived from
// the title and used as the stable lookup key in API paths.
type Task struct {
	ID       string         `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Slug     string         `gorm:"uniqueIndex;not null" json:"slug"`
	Title    string         `gorm:"not null" json:"title"`
	Category MetricCategory `gorm:"type:varchar(16);not null;index" json:"category"`

	XPReward    int64   `json:"xp_reward" gorm:"default:0"`
	XNRTReward  float64 `json:"xnrt_reward" gorm:"default:0"`
	MaxProgress int64   `gorm:"not null" json:"max_progress"` // >= 1
	IsActive    bool    `gorm:"default:true;index" json:"is_active"`

	Timestamps
}

// UserTask is the per-user progress row for a task. Created (or backfilled)
// on first evaluation and updated in place, never deleted. Completed flips
// exactly once; the reward payout is guarded by that transition.
type UserTask struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID string `gorm:"index:idx_user_task,unique;not null" json:"user_id"`
	TaskID string `gorm:"index:idx_user_task,unique;not null" json:"task_id"`

	Progress    int64 `json:"progress" gorm:"default:0"`
	MaxProgress int64 `json:"max_progress" gorm:"not null"`
	Completed   bool  `json:"completed" gorm:"default:false"`

	Timestamps

	Task Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}
