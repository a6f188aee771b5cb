package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"xnrt-rewards-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// A check-in later than this after the previous one breaks the streak.
const streakGrace = 48 * time.Hour

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

func newReferralCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// EnsureUser creates the local User + Balance rows for a gateway identity
// (idempotent). Called on first authenticated request and by the account
// sync worker.
func (s *UserService) EnsureUser(externalUserID, username string) (*models.User, error) {
	if externalUserID == "" {
		return nil, validationf("missing user identity")
	}

	var user models.User
	err := s.DB.Where("external_user_id = ?", externalUserID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			ExternalUserID: externalUserID,
			Username:       username,
			ReferralCode:   newReferralCode(),
			Level:          1,
		}
		if err := s.DB.Create(&user).Error; err != nil {
			return nil, err
		}
		if _, err := NewLedgerService(s.DB).EnsureBalance(user.ID); err != nil {
			return nil, err
		}
		log.Printf("👤 New user bootstrapped: %s (code %s)", externalUserID, user.ReferralCode)
		return &user, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// applyCheckIn is the streak rule: same-day repeats conflict, a gap within
// streakGrace extends the run, anything longer restarts at 1.
func applyCheckIn(last *time.Time, streak int, now time.Time) (int, error) {
	if last != nil {
		ly, lm, ld := last.Date()
		ny, nm, nd := now.Date()
		if ly == ny && lm == nm && ld == nd {
			return streak, stateConflict("already checked in today")
		}
		if now.Sub(*last) <= streakGrace {
			return streak + 1, nil
		}
	}
	return 1, nil
}

// --- Handlers ---

// GetMe bootstraps (if needed) and returns the caller's profile snapshot.
func (s *UserService) GetMe(c *fiber.Ctx) error {
	externalID := c.Locals("user_id").(string)
	username, _ := c.Locals("username").(string)

	user, err := s.EnsureUser(externalID, username)
	if err != nil {
		return fail(c, err)
	}
	bal, err := NewLedgerService(s.DB).EnsureBalance(user.ID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"id":                user.ID,
		"external_user_id":  user.ExternalUserID,
		"username":          user.Username,
		"referral_code":     user.ReferralCode,
		"referred":          user.ReferredByID != nil,
		"xp":                user.XP,
		"level":             user.Level,
		"xp_for_next_level": xpForNextLevel(user.Level),
		"streak":            user.Streak,
		"last_check_in_at":  user.LastCheckInAt,
		"balance":           bal,
	})
}

// CheckIn records the daily check-in and advances the streak.
func (s *UserService) CheckIn(c *fiber.Ctx) error {
	externalID := c.Locals("user_id").(string)

	user, err := resolveUser(s.DB, externalID)
	if err != nil {
		return fail(c, err)
	}

	now := time.Now()
	streak, err := applyCheckIn(user.LastCheckInAt, user.Streak, now)
	if err != nil {
		return fail(c, err)
	}

	if err := s.DB.Model(&models.User{}).Where("id = ?", user.ID).
		Updates(map[string]interface{}{"streak": streak, "last_check_in_at": now}).Error; err != nil {
		log.Printf("DB Error updating streak for %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check in"})
	}

	if err := NewProgressService(s.DB).Evaluate(user.ID, models.MetricStreak); err != nil {
		log.Printf("⚠️ [CHECKIN] progress evaluation failed for %s: %v", user.ID, err)
	}

	return c.JSON(fiber.Map{"message": "Checked in", "streak": streak})
}
