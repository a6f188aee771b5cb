package services

import (
	"errors"
	"log"
	"math"
	"time"

	"xnrt-rewards-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Level curve: XP to go from level n to n+1 grows polynomially.
const baseXPPerLevel = 100

func xpForNextLevel(level int) int64 {
	if level < 1 {
		level = 1
	}
	return int64(float64(baseXPPerLevel) * math.Pow(float64(level), 1.2))
}

// levelForXP maps a total-XP value onto the curve. Pure, so the level a
// user displays can always be recomputed from XP alone.
func levelForXP(totalXP int64) int {
	level := 1
	var cumulative int64
	for {
		cumulative += xpForNextLevel(level)
		if totalXP < cumulative {
			return level
		}
		level++
	}
}

// MetricSnapshot is the source-of-truth state progress is recomputed from.
// Tasks and achievements never increment counters ad hoc; they read the
// metric fresh on every evaluation, so replays and races can't drift them.
type MetricSnapshot struct {
	TotalEarned    float64
	DepositCount   int64
	ReferralCount  int64
	MiningSessions int64
	Streak         int
	StakesOpened   int64
}

// metricValue picks the running metric for a category. The switch is
// exhaustive over models.MetricCategories.
func metricValue(snap MetricSnapshot, cat models.MetricCategory) int64 {
	switch cat {
	case models.MetricDeposit:
		return snap.DepositCount
	case models.MetricReferral:
		return snap.ReferralCount
	case models.MetricMining:
		return snap.MiningSessions
	case models.MetricStreak:
		return int64(snap.Streak)
	case models.MetricEarning:
		return int64(math.Floor(snap.TotalEarned))
	case models.MetricStaking:
		return snap.StakesOpened
	default:
		return 0
	}
}

// ProgressService re-evaluates task and achievement progress after domain
// events and pays unlock rewards exactly once.
type ProgressService struct {
	DB *gorm.DB
}

func NewProgressService(db *gorm.DB) *ProgressService {
	return &ProgressService{DB: db}
}

func (s *ProgressService) metricSnapshot(userID string) (MetricSnapshot, error) {
	var snap MetricSnapshot

	var bal models.Balance
	if err := s.DB.Where("user_id = ?", userID).First(&bal).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return snap, err
	}
	snap.TotalEarned = bal.TotalEarned

	var user models.User
	if err := s.DB.Select("streak").Where("id = ?", userID).First(&user).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return snap, err
	}
	snap.Streak = user.Streak

	if err := s.DB.Model(&models.Transaction{}).
		Where("user_id = ? AND type = ? AND status = ? AND credited = ?",
			userID, models.TransactionDeposit, models.TransactionApproved, true).
		Count(&snap.DepositCount).Error; err != nil {
		return snap, err
	}
	if err := s.DB.Model(&models.Referral{}).
		Where("referrer_id = ? AND level = 1", userID).
		Count(&snap.ReferralCount).Error; err != nil {
		return snap, err
	}
	if err := s.DB.Model(&models.MiningSession{}).
		Where("user_id = ? AND status = ?", userID, models.MiningCompleted).
		Count(&snap.MiningSessions).Error; err != nil {
		return snap, err
	}
	if err := s.DB.Model(&models.Stake{}).
		Where("user_id = ?", userID).
		Count(&snap.StakesOpened).Error; err != nil {
		return snap, err
	}
	return snap, nil
}

// AwardXP adds XP and recomputes the level inside one transaction.
func (s *ProgressService) AwardXP(userID string, xp int64, reason string) error {
	if xp <= 0 {
		return nil
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("user", userID)
			}
			return err
		}
		user.XP += xp
		user.Level = levelForXP(user.XP)
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		log.Printf("🎮 XP Awarded: %s → XP=%d, Lvl=%d (reason: %s)", userID, user.XP, user.Level, reason)
		return nil
	})
}

// Evaluate recomputes progress for every active task and achievement in one
// category. Re-running against unchanged state is a no-op: progress only
// moves forward and payouts are guarded by the completed/unlocked flip.
func (s *ProgressService) Evaluate(userID string, cat models.MetricCategory) error {
	snap, err := s.metricSnapshot(userID)
	if err != nil {
		return err
	}
	metric := metricValue(snap, cat)

	if err := s.evaluateTasks(userID, cat, metric); err != nil {
		return err
	}
	return s.evaluateAchievements(userID, cat, metric)
}

// EvaluateAll runs every category off a single snapshot. Used by read paths
// so displayed progress is always current.
func (s *ProgressService) EvaluateAll(userID string) error {
	snap, err := s.metricSnapshot(userID)
	if err != nil {
		return err
	}
	for _, cat := range models.MetricCategories {
		metric := metricValue(snap, cat)
		if err := s.evaluateTasks(userID, cat, metric); err != nil {
			return err
		}
		if err := s.evaluateAchievements(userID, cat, metric); err != nil {
			return err
		}
	}
	return nil
}

func (s *ProgressService) evaluateTasks(userID string, cat models.MetricCategory, metric int64) error {
	var tasks []models.Task
	if err := s.DB.Where("category = ? AND is_active = ?", cat, true).Find(&tasks).Error; err != nil {
		return err
	}

	for _, task := range tasks {
		var ut models.UserTask
		err := s.DB.Where("user_id = ? AND task_id = ?", userID, task.ID).First(&ut).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ut = models.UserTask{UserID: userID, TaskID: task.ID, MaxProgress: task.MaxProgress}
			if err := s.DB.Create(&ut).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		progress := metric
		if progress > task.MaxProgress {
			progress = task.MaxProgress
		}
		if progress > ut.Progress {
			if err := s.DB.Model(&models.UserTask{}).
				Where("id = ? AND progress < ?", ut.ID, progress).
				Update("progress", progress).Error; err != nil {
				return err
			}
			ut.Progress = progress
		}

		if ut.Progress >= task.MaxProgress && !ut.Completed {
			if err := s.completeTask(userID, task, ut.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// completeTask flips the flag and pays out. The conditional UPDATE is the
// idempotence guard: only the request that wins the flip pays.
func (s *ProgressService) completeTask(userID string, task models.Task, userTaskID string) error {
	won := false
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.UserTask{}).
			Where("id = ? AND completed = ?", userTaskID, false).
			Update("completed", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil // someone else won the flip
		}
		won = true
		if task.XNRTReward > 0 {
			return NewLedgerService(tx).Credit(userID, models.AccountMain, task.XNRTReward, true)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !won {
		return nil
	}

	if task.XNRTReward > 0 {
		if err := NewReferralService(s.DB).PropagateCommission(userID, task.XNRTReward, "task"); err != nil {
			log.Printf("⚠️ [PROGRESS] commission propagation failed for task %s: %v", task.Slug, err)
		}
	}
	if err := s.AwardXP(userID, task.XPReward, "task_"+task.Slug); err != nil {
		return err
	}

	log.Printf("✅ Task completed: %s → %s (+%.2f XNRT, +%d XP)", task.Slug, userID, task.XNRTReward, task.XPReward)
	return nil
}

func (s *ProgressService) evaluateAchievements(userID string, cat models.MetricCategory, metric int64) error {
	var achievements []models.Achievement
	if err := s.DB.Where("category = ?", cat).Find(&achievements).Error; err != nil {
		return err
	}

	for _, ach := range achievements {
		var ua models.UserAchievement
		err := s.DB.Where("user_id = ? AND achievement_id = ?", userID, ach.ID).First(&ua).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ua = models.UserAchievement{UserID: userID, AchievementID: ach.ID}
			if err := s.DB.Create(&ua).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if ua.Unlocked || metric < ach.Requirement {
			continue
		}

		now := time.Now()
		res := s.DB.Model(&models.UserAchievement{}).
			Where("id = ? AND unlocked = ?", ua.ID, false).
			Updates(map[string]interface{}{"unlocked": true, "unlocked_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			continue
		}

		if err := s.AwardXP(userID, ach.XPReward, "achievement_"+ach.Code); err != nil {
			return err
		}
		log.Printf("🏆 Achievement unlocked: %s → %s (+%d XP)", ach.Code, userID, ach.XPReward)
	}
	return nil
}

// --- Handlers ---

// GetMyTasks evaluates and returns the caller's task progress.
func (s *ProgressService) GetMyTasks(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	user, err := resolveUser(s.DB, userID)
	if err != nil {
		return fail(c, err)
	}
	if err := s.EvaluateAll(user.ID); err != nil {
		log.Printf("DB Error evaluating tasks for %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to evaluate tasks"})
	}

	var rows []models.UserTask
	if err := s.DB.Preload("Task").Where("user_id = ?", user.ID).
		Order("created_at ASC").Find(&rows).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch tasks"})
	}
	return c.JSON(rows)
}

// GetMyAchievements evaluates and returns the caller's achievements.
func (s *ProgressService) GetMyAchievements(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	user, err := resolveUser(s.DB, userID)
	if err != nil {
		return fail(c, err)
	}
	if err := s.EvaluateAll(user.ID); err != nil {
		log.Printf("DB Error evaluating achievements for %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to evaluate achievements"})
	}

	var rows []models.UserAchievement
	if err := s.DB.Preload("Achievement").Where("user_id = ?", user.ID).
		Order("created_at ASC").Find(&rows).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch achievements"})
	}
	return c.JSON(rows)
}
