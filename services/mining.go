package services

import (
	"errors"
	"log"
	"time"

	"xnrt-rewards-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Mining cycle parameters. Completion and cooldown are enforced lazily by
// wall-clock comparison at request time; nothing runs on a timer.
const (
	miningSessionDuration = 24 * time.Hour
	miningCooldown        = 6 * time.Hour
	miningBaseReward      = 100.0
	adBoostIncrement      = 10.0 // flat XNRT per watched ad
	maxAdBoosts           = 5
)

// miningFinalReward applies the percentage boost to the base, then the flat
// ad-boost increments on top. Computed once, at claim.
func miningFinalReward(base float64, boostPct, adBoosts int) float64 {
	return base*(1+float64(boostPct)/100) + float64(adBoosts)*adBoostIncrement
}

// sessionInsertErr maps a violation of the one-active-session unique index
// to the same conflict a lost validation race would report. Two concurrent
// starts can both pass validateSessionStart; the index decides the winner.
func sessionInsertErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return stateConflict("a mining session is already active")
	}
	return err
}

// validateSessionStart rejects a start while a session runs or before the
// previous cycle's cooldown has passed. last is the user's most recent
// session, nil for first-time miners.
func validateSessionStart(last *models.MiningSession, now time.Time) error {
	if last == nil {
		return nil
	}
	if last.Status == models.MiningActive {
		return stateConflict("a mining session is already active")
	}
	if now.Before(last.NextAvailable) {
		return stateConflict("mining available again at %s", last.NextAvailable.Format(time.RFC3339))
	}
	return nil
}

// validateSessionClaim rejects claiming before the session's end time.
func validateSessionClaim(sess *models.MiningSession, now time.Time) error {
	if sess.Status != models.MiningActive {
		return stateConflict("no active mining session to claim")
	}
	if now.Before(sess.EndTime) {
		return stateConflict("session not finished, ends at %s", sess.EndTime.Format(time.RFC3339))
	}
	return nil
}

type MiningService struct {
	DB *gorm.DB
}

func NewMiningService(db *gorm.DB) *MiningService {
	return &MiningService{DB: db}
}

func (s *MiningService) latestSession(userID string) (*models.MiningSession, error) {
	var sess models.MiningSession
	err := s.DB.Where("user_id = ?", userID).Order("start_time DESC").First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// StartSession opens a new cycle for the user.
func (s *MiningService) StartSession(userID string, boostPct int) (*models.MiningSession, error) {
	last, err := s.latestSession(userID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if err := validateSessionStart(last, now); err != nil {
		return nil, err
	}

	sess := models.MiningSession{
		UserID:          userID,
		StartTime:       now,
		EndTime:         now.Add(miningSessionDuration),
		NextAvailable:   now, // set properly at claim
		BaseReward:      miningBaseReward,
		BoostPercentage: boostPct,
		Status:          models.MiningActive,
	}
	if err := s.DB.Create(&sess).Error; err != nil {
		return nil, sessionInsertErr(err)
	}
	log.Printf("⛏️ Mining session started: %s (ends %s)", userID, sess.EndTime.Format(time.RFC3339))
	return &sess, nil
}

// ClaimSession settles a finished cycle: computes the final reward once,
// credits it, and opens the cooldown window. The guarded status flip makes
// a double claim lose without paying twice.
func (s *MiningService) ClaimSession(userID string) (*models.MiningSession, error) {
	var sess models.MiningSession
	err := s.DB.Where("user_id = ? AND status = ?", userID, models.MiningActive).First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, stateConflict("no active mining session to claim")
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := validateSessionClaim(&sess, now); err != nil {
		return nil, err
	}

	final := miningFinalReward(sess.BaseReward, sess.BoostPercentage, sess.AdBoostCount)
	nextAvailable := now.Add(miningCooldown)

	// The flip and the payout commit together; a crash between them can't
	// mark the session claimed without paying.
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.MiningSession{}).
			Where("id = ? AND status = ?", sess.ID, models.MiningActive).
			Updates(map[string]interface{}{
				"status":         models.MiningCompleted,
				"final_reward":   final,
				"next_available": nextAvailable,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return stateConflict("session already claimed")
		}
		return NewLedgerService(tx).Credit(userID, models.AccountMining, final, true)
	})
	if err != nil {
		return nil, err
	}
	if err := NewReferralService(s.DB).PropagateCommission(userID, final, "mining"); err != nil {
		log.Printf("⚠️ [MINING] commission propagation failed for %s: %v", userID, err)
	}
	if err := NewProgressService(s.DB).Evaluate(userID, models.MetricMining); err != nil {
		log.Printf("⚠️ [MINING] progress evaluation failed for %s: %v", userID, err)
	}

	sess.Status = models.MiningCompleted
	sess.FinalReward = final
	sess.NextAvailable = nextAvailable
	log.Printf("⛏️ Mining session claimed: %s → %.2f XNRT (boost %d%%, ads %d)",
		userID, final, sess.BoostPercentage, sess.AdBoostCount)
	return &sess, nil
}

// WatchAd bumps the ad-boost counter of the active session, up to the cap.
func (s *MiningService) WatchAd(userID string) (*models.MiningSession, error) {
	var sess models.MiningSession
	err := s.DB.Where("user_id = ? AND status = ?", userID, models.MiningActive).First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, stateConflict("no active mining session")
	}
	if err != nil {
		return nil, err
	}

	res := s.DB.Model(&models.MiningSession{}).
		Where("id = ? AND status = ? AND ad_boost_count < ?", sess.ID, models.MiningActive, maxAdBoosts).
		Update("ad_boost_count", gorm.Expr("ad_boost_count + 1"))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, stateConflict("ad boost limit reached")
	}
	sess.AdBoostCount++
	return &sess, nil
}

// --- Handlers ---

func (s *MiningService) GetMySession(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	user, err := resolveUser(s.DB, userID)
	if err != nil {
		return fail(c, err)
	}
	sess, err := s.latestSession(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch session"})
	}
	now := time.Now()
	resp := fiber.Map{"session": sess, "can_start": validateSessionStart(sess, now) == nil}
	if sess != nil && sess.Status == models.MiningActive {
		resp["claimable"] = !now.Before(sess.EndTime)
	}
	return c.JSON(resp)
}

func (s *MiningService) StartMining(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	user, err := resolveUser(s.DB, userID)
	if err != nil {
		return fail(c, err)
	}

	// Boost grows with level: +2% per level above 1, capped at 50%.
	boost := (user.Level - 1) * 2
	if boost > 50 {
		boost = 50
	}

	sess, err := s.StartSession(user.ID, boost)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sess)
}

func (s *MiningService) ClaimMining(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	user, err := resolveUser(s.DB, userID)
	if err != nil {
		return fail(c, err)
	}
	sess, err := s.ClaimSession(user.ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Mining reward claimed", "session": sess})
}

func (s *MiningService) AdBoost(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	user, err := resolveUser(s.DB, userID)
	if err != nil {
		return fail(c, err)
	}
	sess, err := s.WatchAd(user.ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Ad boost applied", "ad_boost_count": sess.AdBoostCount})
}
