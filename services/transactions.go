package services

import (
	"errors"
	"log"

	"xnrt-rewards-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Withdrawals pay a flat percentage fee, deducted before the net payout.
const withdrawalFeePercent = 5.0

type TransactionService struct {
	DB *gorm.DB
}

func NewTransactionService(db *gorm.DB) *TransactionService {
	return &TransactionService{DB: db}
}

// --- User Handlers ---

// RequestDeposit records a pending deposit. Credit happens only after admin
// approval, applied asynchronously by the deposit worker.
func (s *TransactionService) RequestDeposit(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req struct {
		Amount        float64 `json:"amount"`
		USDTAmount    float64 `json:"usdt_amount"`
		WalletAddress string  `json:"wallet_address"`
		Source        string  `json:"source"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Amount <= 0 {
		return fail(c, validationf("deposit amount must be positive"))
	}

	user, err := resolveUser(s.DB, userID)
	if err != nil {
		return fail(c, err)
	}

	tx := models.Transaction{
		UserID:        user.ID,
		Type:          models.TransactionDeposit,
		Status:        models.TransactionPending,
		Amount:        req.Amount,
		USDTAmount:    req.USDTAmount,
		WalletAddress: req.WalletAddress,
		Source:        req.Source,
	}
	if err := s.DB.Create(&tx).Error; err != nil {
		log.Printf("DB Error creating deposit: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create deposit"})
	}
	return c.Status(fiber.StatusCreated).JSON(tx)
}

// RequestWithdrawal debits the gross amount up front (so pending
// withdrawals can't be double-spent) and records the fee. A rejection
// refunds the debit.
func (s *TransactionService) RequestWithdrawal(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req struct {
		Amount        float64 `json:"amount"`
		WalletAddress string  `json:"wallet_address"`
		Source        string  `json:"source"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Amount <= 0 {
		return fail(c, validationf("withdrawal amount must be positive"))
	}
	if req.WalletAddress == "" {
		return fail(c, validationf("wallet address is required"))
	}

	user, err := resolveUser(s.DB, userID)
	if err != nil {
		return fail(c, err)
	}

	if err := NewLedgerService(s.DB).DebitMain(user.ID, req.Amount); err != nil {
		return fail(c, err)
	}

	fee := req.Amount * withdrawalFeePercent / 100
	tx := models.Transaction{
		UserID:        user.ID,
		Type:          models.TransactionWithdrawal,
		Status:        models.TransactionPending,
		Amount:        req.Amount,
		Fee:           fee,
		WalletAddress: req.WalletAddress,
		Source:        req.Source,
	}
	if err := s.DB.Create(&tx).Error; err != nil {
		log.Printf("DB Error creating withdrawal: %v", err)
		if refundErr := NewLedgerService(s.DB).Credit(user.ID, models.AccountMain, req.Amount, false); refundErr != nil {
			log.Printf("❌ [WALLET] refund after failed withdrawal create failed for %s: %v", user.ID, refundErr)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create withdrawal"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"transaction": tx,
		"net_payout":  req.Amount - fee,
	})
}

// GetMyTransactions returns the caller's deposit/withdrawal history.
func (s *TransactionService) GetMyTransactions(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	user, err := resolveUser(s.DB, userID)
	if err != nil {
		return fail(c, err)
	}

	query := s.DB.Where("user_id = ?", user.ID)
	if t := c.Query("type"); t != "" {
		query = query.Where("type = ?", t)
	}

	var txs []models.Transaction
	if err := query.Order("created_at DESC").Limit(100).Find(&txs).Error; err != nil {
		log.Printf("DB Error fetching transactions: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch transactions"})
	}
	return c.JSON(txs)
}

// --- Admin Handlers ---

// ListPending returns all pending transactions for review.
func (s *TransactionService) ListPending(c *fiber.Ctx) error {
	var txs []models.Transaction
	if err := s.DB.Where("status = ?", models.TransactionPending).
		Order("created_at ASC").Find(&txs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch transactions"})
	}
	return c.JSON(txs)
}

// Approve moves a pending transaction to approved. Deposits stay uncredited
// until the worker applies them; approved withdrawals are paid out
// externally (the debit already happened at request time).
func (s *TransactionService) Approve(c *fiber.Ctx) error {
	return s.decide(c, models.TransactionApproved)
}

// Reject moves a pending transaction to rejected, refunding withdrawals.
func (s *TransactionService) Reject(c *fiber.Ctx) error {
	return s.decide(c, models.TransactionRejected)
}

func (s *TransactionService) decide(c *fiber.Ctx, decision models.TransactionStatus) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	var tx models.Transaction
	if err := s.DB.First(&tx, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, notFound("transaction", id))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	// Status flip guards a concurrent double decision.
	res := s.DB.Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, models.TransactionPending).
		Update("status", decision)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update transaction"})
	}
	if res.RowsAffected == 0 {
		return fail(c, stateConflict("transaction already decided"))
	}

	if decision == models.TransactionRejected && tx.Type == models.TransactionWithdrawal {
		if err := NewLedgerService(s.DB).Credit(tx.UserID, models.AccountMain, tx.Amount, false); err != nil {
			log.Printf("❌ [WALLET] refund for rejected withdrawal %s failed: %v", tx.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Refund failed"})
		}
	}

	log.Printf("🏦 Transaction %s %s (%s %.2f XNRT, user %s)", tx.ID, decision, tx.Type, tx.Amount, tx.UserID)
	return c.JSON(fiber.Map{"message": "Transaction " + string(decision), "transaction_id": tx.ID})
}
