package services

import (
	"bytes"
	"fmt"
	"log"
	"time"

	"xnrt-rewards-system/models"
	"xnrt-rewards-system/utils"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gorm.io/gorm"
)

// StatementService renders monthly per-user ledger statements (transactions
// plus referral commission lines) as CSV and ships them to object storage.
type StatementService struct {
	DB *gorm.DB
}

func NewStatementService(db *gorm.DB) *StatementService {
	return &StatementService{DB: db}
}

var amountPrinter = message.NewPrinter(language.English)

// amountField renders a locale-grouped amount as a quoted CSV field. The
// English locale groups thousands with commas, so the value must never be
// written bare into a comma-delimited row.
func amountField(format string, v float64) string {
	return `"` + amountPrinter.Sprintf(format, v) + `"`
}

// BuildStatement renders one user's statement for the month containing `at`.
func (s *StatementService) BuildStatement(userID string, at time.Time) ([]byte, error) {
	from := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	var txs []models.Transaction
	if err := s.DB.Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from, to).
		Order("created_at ASC").Find(&txs).Error; err != nil {
		return nil, err
	}
	var commissions []models.CommissionLog
	if err := s.DB.Where("referrer_id = ? AND created_at >= ? AND created_at < ?", userID, from, to).
		Order("created_at ASC").Find(&commissions).Error; err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "statement,%s,%s\n", userID, from.Format("2006-01"))
	buf.WriteString("date,kind,detail,amount_xnrt\n")
	for _, tx := range txs {
		fmt.Fprintf(&buf, "%s,%s,%s,%s\n",
			tx.CreatedAt.Format("2006-01-02"), tx.Type, tx.Status,
			amountField("%.2f", tx.Amount))
	}
	for _, cl := range commissions {
		fmt.Fprintf(&buf, "%s,commission,L%d %s,%s\n",
			cl.CreatedAt.Format("2006-01-02"), cl.Level, cl.Source,
			amountField("%.4f", cl.Commission))
	}
	return buf.Bytes(), nil
}

// ExportMonthly builds and uploads a statement for every user with activity
// in the previous month. Re-running overwrites the same object keys.
func (s *StatementService) ExportMonthly() {
	month := time.Now().UTC().AddDate(0, -1, 0)

	var userIDs []string
	if err := s.DB.Model(&models.Balance{}).Distinct("user_id").Pluck("user_id", &userIDs).Error; err != nil {
		log.Printf("[Scheduler] DB error listing users for statements: %v", err)
		return
	}

	var exported int
	for _, userID := range userIDs {
		body, err := s.BuildStatement(userID, month)
		if err != nil {
			log.Printf("[Scheduler] Failed to build statement for %s: %v", userID, err)
			continue
		}
		key := fmt.Sprintf("statements/%s/%s.csv", month.Format("2006-01"), userID)
		if _, err := utils.UploadStatement(key, body); err != nil {
			log.Printf("[Scheduler] Failed to upload statement %s: %v", key, err)
			continue
		}
		exported++
	}
	log.Printf("📄 Statement export done: %d/%d users for %s", exported, len(userIDs), month.Format("2006-01"))
}
