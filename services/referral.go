package services

import (
	"errors"
	"log"

	"xnrt-rewards-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Commission rates per referral level. Level 1 is the direct referrer.
// Commission is always computed on the gross amount earned at the leaf,
// never on another ancestor's commission.
const maxReferralDepth = 3

var commissionRates = [maxReferralDepth + 1]float64{0, 0.06, 0.03, 0.01}

func commissionRateForLevel(level int) float64 {
	if level < 1 || level > maxReferralDepth {
		return 0
	}
	return commissionRates[level]
}

// commissionCredit is one planned hop of an upward walk.
type commissionCredit struct {
	ReferrerID string
	Level      int
	Rate       float64
	Amount     float64
}

// commissionPlan computes the credits for an ancestor chain ordered from the
// direct referrer upward. Chains shorter than three levels just produce
// fewer credits; longer chains are cut at three.
func commissionPlan(ancestors []string, gross float64) []commissionCredit {
	if gross <= 0 {
		return nil
	}
	if len(ancestors) > maxReferralDepth {
		ancestors = ancestors[:maxReferralDepth]
	}
	credits := make([]commissionCredit, 0, len(ancestors))
	for i, id := range ancestors {
		level := i + 1
		rate := commissionRateForLevel(level)
		credits = append(credits, commissionCredit{
			ReferrerID: id,
			Level:      level,
			Rate:       rate,
			Amount:     gross * rate,
		})
	}
	return credits
}

type ReferralService struct {
	DB *gorm.DB
}

func NewReferralService(db *gorm.DB) *ReferralService {
	return &ReferralService{DB: db}
}

// ancestorChain walks ReferredByID upward from the user, at most
// maxReferralDepth hops. Reaching a user without a referrer is normal
// termination. Assignment-time cycle checks guarantee the walk halts.
func (s *ReferralService) ancestorChain(userID string) ([]string, error) {
	chain := make([]string, 0, maxReferralDepth)
	currentID := userID
	for len(chain) < maxReferralDepth {
		var u models.User
		if err := s.DB.Select("id", "referred_by_id").Where("id = ?", currentID).First(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				break // dangling reference, stop the walk
			}
			return nil, err
		}
		if u.ReferredByID == nil {
			break
		}
		chain = append(chain, *u.ReferredByID)
		currentID = *u.ReferredByID
	}
	return chain, nil
}

// PropagateCommission distributes commission for an earning event of `gross`
// XNRT at user `userID`. Each ancestor's credit is its own atomic row
// update; cross-row atomicity is not required — a crash mid-walk leaves
// earlier hops applied, which is acceptable (eventual application).
func (s *ReferralService) PropagateCommission(userID string, gross float64, source string) error {
	chain, err := s.ancestorChain(userID)
	if err != nil {
		return err
	}

	ledger := NewLedgerService(s.DB)
	for _, credit := range commissionPlan(chain, gross) {
		if err := ledger.Credit(credit.ReferrerID, models.AccountReferral, credit.Amount, true); err != nil {
			log.Printf("❌ [REFERRAL] L%d commission credit failed for %s: %v", credit.Level, credit.ReferrerID, err)
			return err
		}

		logRow := models.CommissionLog{
			ReferrerID:  credit.ReferrerID,
			ReferredID:  userID,
			Level:       credit.Level,
			Source:      source,
			GrossAmount: gross,
			Rate:        credit.Rate,
			Commission:  credit.Amount,
		}
		if err := s.DB.Create(&logRow).Error; err != nil {
			return err
		}

		// Keep the per-pair running total in step with the log.
		if err := s.DB.Model(&models.Referral{}).
			Where("referrer_id = ? AND referred_id = ?", credit.ReferrerID, userID).
			Update("total_commission", gorm.Expr("total_commission + ?", credit.Amount)).Error; err != nil {
			return err
		}

		log.Printf("💸 [REFERRAL] %s ← L%d %.4f XNRT (%.0f%% of %.4f, source=%s)",
			credit.ReferrerID, credit.Level, credit.Amount, credit.Rate*100, gross, source)
	}
	return nil
}

// AssignReferrer binds a referral code to the user. Allowed once, must not
// point at the user itself and must not close a cycle. On success the
// Referral rows for levels 1-3 are materialized and the referrer's
// referral-category tasks/achievements are re-evaluated.
func (s *ReferralService) AssignReferrer(userID, code string) error {
	if code == "" {
		return validationf("referral code is required")
	}

	var user models.User
	if err := s.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("user", userID)
		}
		return err
	}
	if user.ReferredByID != nil {
		return stateConflict("referrer already assigned")
	}

	var referrer models.User
	if err := s.DB.Where("referral_code = ?", code).First(&referrer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("referral code", code)
		}
		return err
	}
	if referrer.ID == user.ID {
		return validationf("cannot use your own referral code")
	}

	// Cycle check: the referrer's entire upward chain must not contain the
	// user. Checked here once, so propagation can trust the graph is
	// acyclic and cap its walk at three hops.
	seen := map[string]bool{referrer.ID: true}
	currentID := referrer.ID
	for {
		var u models.User
		if err := s.DB.Select("id", "referred_by_id").Where("id = ?", currentID).First(&u).Error; err != nil {
			break
		}
		if u.ReferredByID == nil {
			break
		}
		if *u.ReferredByID == user.ID {
			return validationf("referral would create a cycle")
		}
		if seen[*u.ReferredByID] {
			break // pre-existing corruption; don't loop forever
		}
		seen[*u.ReferredByID] = true
		currentID = *u.ReferredByID
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("id = ? AND referred_by_id IS NULL", user.ID).
			Update("referred_by_id", referrer.ID).Error; err != nil {
			return err
		}

		// Materialize ancestor rows so team views are an indexed lookup.
		ancestorID := referrer.ID
		for level := 1; level <= maxReferralDepth; level++ {
			row := models.Referral{
				ReferrerID: ancestorID,
				ReferredID: user.ID,
				Level:      level,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}

			var ancestor models.User
			if err := tx.Select("id", "referred_by_id").Where("id = ?", ancestorID).First(&ancestor).Error; err != nil {
				break
			}
			if ancestor.ReferredByID == nil {
				break
			}
			ancestorID = *ancestor.ReferredByID
		}
		return nil
	})
}

// --- Handlers ---

// ApplyReferralCode lets the authenticated user attach a referrer.
func (s *ReferralService) ApplyReferralCode(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	user, err := resolveUser(s.DB, userID)
	if err != nil {
		return fail(c, err)
	}
	if err := s.AssignReferrer(user.ID, req.Code); err != nil {
		return fail(c, err)
	}

	// The new signup moves the referrer's referral metric.
	if user.ReferredByID == nil {
		var updated models.User
		if err := s.DB.Select("referred_by_id").Where("id = ?", user.ID).First(&updated).Error; err == nil && updated.ReferredByID != nil {
			if err := NewProgressService(s.DB).Evaluate(*updated.ReferredByID, models.MetricReferral); err != nil {
				log.Printf("⚠️ [REFERRAL] progress evaluation failed for referrer: %v", err)
			}
		}
	}

	return c.JSON(fiber.Map{"message": "Referral code applied"})
}

// GetMyTeam returns the caller's referral tree grouped by level, with
// per-descendant commission totals.
func (s *ReferralService) GetMyTeam(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	user, err := resolveUser(s.DB, userID)
	if err != nil {
		return fail(c, err)
	}

	type teamMember struct {
		ReferredID      string  `json:"referred_id"`
		Username        string  `json:"username"`
		Level           int     `json:"level"`
		TotalCommission float64 `json:"total_commission"`
	}
	var members []teamMember
	if err := s.DB.Model(&models.Referral{}).
		Select("referrals.referred_id, users.username, referrals.level, referrals.total_commission").
		Joins("JOIN users ON users.id = referrals.referred_id").
		Where("referrals.referrer_id = ?", user.ID).
		Order("referrals.level ASC, referrals.created_at ASC").
		Scan(&members).Error; err != nil {
		log.Printf("DB Error fetching team for %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch team"})
	}

	levels := fiber.Map{"1": []teamMember{}, "2": []teamMember{}, "3": []teamMember{}}
	totals := map[int]float64{}
	for _, m := range members {
		key := map[int]string{1: "1", 2: "2", 3: "3"}[m.Level]
		levels[key] = append(levels[key].([]teamMember), m)
		totals[m.Level] += m.TotalCommission
	}

	return c.JSON(fiber.Map{
		"referral_code": user.ReferralCode,
		"levels":        levels,
		"commission_totals": fiber.Map{
			"1": totals[1], "2": totals[2], "3": totals[3],
		},
	})
}
