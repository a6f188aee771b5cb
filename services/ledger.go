package services

import (
	"errors"
	"log"

	"xnrt-rewards-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// LedgerService owns the Balance rows. Every credit and debit is a single
// atomic read-modify-write on one row (gorm.Expr additions), so concurrent
// requests for the same user can't lose updates.
type LedgerService struct {
	DB *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

// EnsureBalance makes sure a Balance row exists for the user (idempotent).
func (s *LedgerService) EnsureBalance(userID string) (*models.Balance, error) {
	var bal models.Balance
	err := s.DB.Where("user_id = ?", userID).First(&bal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		bal = models.Balance{UserID: userID}
		if err := s.DB.Create(&bal).Error; err != nil {
			return nil, err
		}
		return &bal, nil
	}
	if err != nil {
		return nil, err
	}
	return &bal, nil
}

// Credit adds amount to one sub-account. When earning is true the credit
// also counts toward TotalEarned (mining, staking, task, achievement and
// referral payouts do; deposits don't).
func (s *LedgerService) Credit(userID string, account models.SubAccount, amount float64, earning bool) error {
	if amount <= 0 {
		return validationf("credit amount must be positive, got %.4f", amount)
	}
	if _, err := s.EnsureBalance(userID); err != nil {
		return err
	}

	col := string(account)
	updates := map[string]interface{}{
		col: gorm.Expr(col+" + ?", amount),
	}
	if earning {
		updates["total_earned"] = gorm.Expr("total_earned + ?", amount)
	}

	res := s.DB.Model(&models.Balance{}).Where("user_id = ?", userID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound("balance", userID)
	}
	return nil
}

// DebitMain subtracts from the main XNRT balance. The sufficiency check is
// part of the UPDATE's WHERE clause, so an overdraw race loses cleanly
// instead of going negative.
func (s *LedgerService) DebitMain(userID string, amount float64) error {
	if amount <= 0 {
		return validationf("debit amount must be positive, got %.4f", amount)
	}
	res := s.DB.Model(&models.Balance{}).
		Where("user_id = ? AND xnrt_balance >= ?", userID, amount).
		Update("xnrt_balance", gorm.Expr("xnrt_balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return validationf("insufficient XNRT balance for debit of %.4f", amount)
	}
	return nil
}

// Transfer moves value between two sub-accounts of the same user, e.g.
// collecting mining/referral balances into main before withdrawal.
func (s *LedgerService) Transfer(userID string, from, to models.SubAccount, amount float64) error {
	if amount <= 0 {
		return validationf("transfer amount must be positive, got %.4f", amount)
	}
	if from == to {
		return validationf("transfer source and destination are the same")
	}
	fromCol, toCol := string(from), string(to)
	res := s.DB.Model(&models.Balance{}).
		Where("user_id = ? AND "+fromCol+" >= ?", userID, amount).
		Updates(map[string]interface{}{
			fromCol: gorm.Expr(fromCol+" - ?", amount),
			toCol:   gorm.Expr(toCol+" + ?", amount),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return validationf("insufficient %s balance for transfer of %.4f", from, amount)
	}
	return nil
}

// --- Handlers ---

// GetMyBalance returns the caller's balance snapshot.
func (s *LedgerService) GetMyBalance(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	user, err := resolveUser(s.DB, userID)
	if err != nil {
		return fail(c, err)
	}
	bal, err := s.EnsureBalance(user.ID)
	if err != nil {
		log.Printf("DB Error fetching balance for %s: %v", user.ID, err)
		return fail(c, err)
	}
	return c.JSON(bal)
}

// CollectEarnings moves a sub-account balance into main so it can be staked
// or withdrawn.
func (s *LedgerService) CollectEarnings(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req struct {
		Account models.SubAccount `json:"account"`
		Amount  float64           `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	switch req.Account {
	case models.AccountStaking, models.AccountMining, models.AccountReferral:
	default:
		return fail(c, validationf("cannot collect from account %q", req.Account))
	}

	user, err := resolveUser(s.DB, userID)
	if err != nil {
		return fail(c, err)
	}
	if err := s.Transfer(user.ID, req.Account, models.AccountMain, req.Amount); err != nil {
		return fail(c, err)
	}

	bal, err := s.EnsureBalance(user.ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Earnings collected", "balance": bal})
}

// resolveUser maps the gateway identity (X-User-ID) to the local User row.
func resolveUser(db *gorm.DB, externalUserID string) (*models.User, error) {
	if externalUserID == "" {
		return nil, validationf("missing user identity")
	}
	var user models.User
	if err := db.Where("external_user_id = ?", externalUserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user", externalUserID)
		}
		return nil, err
	}
	return &user, nil
}
