package workers

import (
	"context"
	"log"
	"time"

	"xnrt-rewards-system/models"
	"xnrt-rewards-system/services"

	"gorm.io/gorm"
)

// DepositCreditWorker applies approved deposits to the ledger. Approval and
// credit are deliberately decoupled: the admin decision flips the status,
// this worker does the balance mutation. The Credited flag makes each row
// apply exactly once, so re-running a batch after a crash is safe.
type DepositCreditWorker struct {
	db       *gorm.DB
	interval time.Duration
}

func NewDepositCreditWorker(db *gorm.DB) *DepositCreditWorker {
	return &DepositCreditWorker{
		db:       db,
		interval: 10 * time.Second,
	}
}

func (w *DepositCreditWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Deposit Credit Worker (approved deposits → ledger)…")

	// Catch up anything left over from a previous run before ticking.
	if err := w.creditBatch(); err != nil {
		log.Printf("⚠️ Initial deposit credit pass failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.creditBatch(); err != nil {
				log.Printf("❌ Deposit credit batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Deposit Credit Worker stopped")
			return
		}
	}
}

func (w *DepositCreditWorker) creditBatch() error {
	var deposits []models.Transaction
	if err := w.db.Where("type = ? AND status = ? AND credited = ?",
		models.TransactionDeposit, models.TransactionApproved, false).
		Order("created_at ASC").Limit(100).
		Find(&deposits).Error; err != nil {
		return err
	}
	if len(deposits) == 0 {
		return nil
	}

	progress := services.NewProgressService(w.db)

	var applied int
	for _, dep := range deposits {
		// The claim flip and the credit commit together; a concurrent
		// worker instance loses the flip and skips, a failed credit rolls
		// the claim back so the next batch retries this row.
		won := false
		err := w.db.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Transaction{}).
				Where("id = ? AND credited = ?", dep.ID, false).
				Update("credited", true)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return nil
			}
			won = true
			return services.NewLedgerService(tx).Credit(dep.UserID, models.AccountMain, dep.Amount, false)
		})
		if err != nil {
			log.Printf("❌ Failed to credit deposit %s for %s: %v", dep.ID, dep.UserID, err)
			continue
		}
		if !won {
			continue
		}

		if err := progress.Evaluate(dep.UserID, models.MetricDeposit); err != nil {
			log.Printf("⚠️ Progress evaluation after deposit %s failed: %v", dep.ID, err)
		}
		applied++
	}

	if applied > 0 {
		log.Printf("💰 Credited %d approved deposit(s)", applied)
	}
	return nil
}
