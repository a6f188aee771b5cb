package services

import (
	"errors"
	"log"
	"time"

	"xnrt-rewards-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// stakeAccruedReward is the linear accrual formula:
// amount × dailyRate% × min(elapsedDays, duration). Display-only until
// realization; the stored RealizedReward is what actually got credited.
func stakeAccruedReward(amount, dailyRate float64, start time.Time, durationDays int, now time.Time) float64 {
	if now.Before(start) {
		return 0
	}
	elapsedDays := now.Sub(start).Hours() / 24
	if elapsedDays > float64(durationDays) {
		elapsedDays = float64(durationDays)
	}
	return amount * dailyRate / 100 * elapsedDays
}

func tierByName(name string) (models.StakeTier, bool) {
	for _, t := range models.StakeTiers {
		if t.Name == name {
			return t, true
		}
	}
	return models.StakeTier{}, false
}

type StakingService struct {
	DB *gorm.DB
}

func NewStakingService(db *gorm.DB) *StakingService {
	return &StakingService{DB: db}
}

// OpenStake debits the principal from the main balance and creates the
// position. The debit is the atomic guard: no funds, no stake.
func (s *StakingService) OpenStake(userID, tierName string, amount float64) (*models.Stake, error) {
	tier, ok := tierByName(tierName)
	if !ok {
		return nil, validationf("unknown stake tier %q", tierName)
	}
	if amount < tier.MinAmount {
		return nil, validationf("tier %s requires at least %.2f XNRT", tier.Name, tier.MinAmount)
	}

	if err := NewLedgerService(s.DB).DebitMain(userID, amount); err != nil {
		return nil, err
	}

	now := time.Now()
	stake := models.Stake{
		UserID:       userID,
		Amount:       amount,
		Tier:         tier.Name,
		DailyRate:    tier.DailyRate,
		DurationDays: tier.DurationDays,
		StartDate:    now,
		EndDate:      now.AddDate(0, 0, tier.DurationDays),
		Status:       models.StakeActive,
	}
	if err := s.DB.Create(&stake).Error; err != nil {
		// Stake row failed after the debit; put the principal back.
		if refundErr := NewLedgerService(s.DB).Credit(userID, models.AccountMain, amount, false); refundErr != nil {
			log.Printf("❌ [STAKING] refund after failed create also failed for %s: %v", userID, refundErr)
		}
		return nil, err
	}

	if err := NewProgressService(s.DB).Evaluate(userID, models.MetricStaking); err != nil {
		log.Printf("⚠️ [STAKING] progress evaluation failed for %s: %v", userID, err)
	}

	log.Printf("🔒 Stake opened: %s → %.2f XNRT @ %s (%d days)", userID, amount, tier.Name, tier.DurationDays)
	return &stake, nil
}

// settle realizes a position exactly once: principal back to main, and —
// only at maturity — the full-term reward into the staking balance.
// Realization is deferred by policy: nothing is credited before this point.
func (s *StakingService) settle(stake *models.Stake, matured bool) error {
	target := models.StakeWithdrawn
	reward := 0.0
	if matured {
		target = models.StakeCompleted
		reward = stakeAccruedReward(stake.Amount, stake.DailyRate, stake.StartDate, stake.DurationDays, stake.EndDate)
	}

	// Status flip is the idempotence guard against concurrent settles.
	res := s.DB.Model(&models.Stake{}).
		Where("id = ? AND status = ?", stake.ID, models.StakeActive).
		Updates(map[string]interface{}{"status": target, "realized_reward": reward})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return stateConflict("stake already settled")
	}

	ledger := NewLedgerService(s.DB)
	if err := ledger.Credit(stake.UserID, models.AccountMain, stake.Amount, false); err != nil {
		return err
	}
	if reward > 0 {
		if err := ledger.Credit(stake.UserID, models.AccountStaking, reward, true); err != nil {
			return err
		}
		if err := NewReferralService(s.DB).PropagateCommission(stake.UserID, reward, "staking"); err != nil {
			log.Printf("⚠️ [STAKING] commission propagation failed for %s: %v", stake.UserID, err)
		}
		if err := NewProgressService(s.DB).Evaluate(stake.UserID, models.MetricEarning); err != nil {
			log.Printf("⚠️ [STAKING] progress evaluation failed for %s: %v", stake.UserID, err)
		}
	}

	stake.Status = target
	stake.RealizedReward = reward
	log.Printf("🔓 Stake settled: %s → %s, principal %.2f, reward %.2f", stake.UserID, target, stake.Amount, reward)
	return nil
}

// WithdrawStake settles a position on user request. At or past maturity the
// full reward pays out; an early exit forfeits the reward and only returns
// the principal.
func (s *StakingService) WithdrawStake(userID, stakeID string) (*models.Stake, error) {
	var stake models.Stake
	err := s.DB.Where("id = ? AND user_id = ?", stakeID, userID).First(&stake).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("stake", stakeID)
	}
	if err != nil {
		return nil, err
	}
	if stake.Status != models.StakeActive {
		return nil, stateConflict("stake is not active")
	}

	matured := !time.Now().Before(stake.EndDate)
	if err := s.settle(&stake, matured); err != nil {
		return nil, err
	}
	return &stake, nil
}

// SweepMatured settles every active stake past its end date. Run by the
// scheduler; safe to re-run since settle is guarded by the status flip.
func (s *StakingService) SweepMatured() {
	var matured []models.Stake
	if err := s.DB.Where("status = ? AND end_date <= ?", models.StakeActive, time.Now()).
		Find(&matured).Error; err != nil {
		log.Printf("[Scheduler] DB error sweeping stakes: %v", err)
		return
	}
	for i := range matured {
		if err := s.settle(&matured[i], true); err != nil {
			var sc *StateConflictError
			if errors.As(err, &sc) {
				continue // lost the flip to a concurrent withdraw, fine
			}
			log.Printf("[Scheduler] Failed to settle stake %s: %v", matured[i].ID, err)
		}
	}
}

// --- Handlers ---

func (s *StakingService) GetTiers(c *fiber.Ctx) error {
	return c.JSON(models.StakeTiers)
}

func (s *StakingService) GetMyStakes(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	user, err := resolveUser(s.DB, userID)
	if err != nil {
		return fail(c, err)
	}

	var stakes []models.Stake
	if err := s.DB.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&stakes).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch stakes"})
	}

	now := time.Now()
	type stakeView struct {
		models.Stake
		AccruedReward float64 `json:"accrued_reward"`
	}
	views := make([]stakeView, len(stakes))
	for i, st := range stakes {
		accrued := st.RealizedReward
		if st.Status == models.StakeActive {
			accrued = stakeAccruedReward(st.Amount, st.DailyRate, st.StartDate, st.DurationDays, now)
		}
		views[i] = stakeView{Stake: st, AccruedReward: accrued}
	}
	return c.JSON(views)
}

func (s *StakingService) CreateStake(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req struct {
		Tier   string  `json:"tier"`
		Amount float64 `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Amount <= 0 {
		return fail(c, validationf("stake amount must be positive"))
	}

	user, err := resolveUser(s.DB, userID)
	if err != nil {
		return fail(c, err)
	}
	stake, err := s.OpenStake(user.ID, req.Tier, req.Amount)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(stake)
}

func (s *StakingService) Withdraw(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	stakeID := c.Params("id")

	user, err := resolveUser(s.DB, userID)
	if err != nil {
		return fail(c, err)
	}
	stake, err := s.WithdrawStake(user.ID, stakeID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Stake settled", "stake": stake})
}
