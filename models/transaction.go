package models

type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
)

type TransactionStatus string

const (
	TransactionPending  TransactionStatus = "pending"
	TransactionApproved TransactionStatus = "approved"
	TransactionRejected TransactionStatus = "rejected"
)

// Transaction is a deposit or withdrawal request moving value between XNRT
// and the outside world. Both kinds start pending and are settled by an
// admin decision. Approved deposits are credited asynchronously by the
// deposit worker; Credited guards against double application.
type Transaction struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID string `gorm:"index;not null" json:"user_id"`

	Type   TransactionType   `gorm:"type:varchar(16);not null;index" json:"type"`
	Status TransactionStatus `gorm:"type:varchar(16);not null;index" json:"status"`

	Amount     float64 `gorm:"not null" json:"amount"` // gross XNRT
	USDTAmount float64 `json:"usdt_amount" gorm:"default:0"`
	Fee        float64 `json:"fee" gorm:"default:0"` // withdrawals only

	WalletAddress string `gorm:"type:varchar(128)" json:"wallet_address"`
	Source        string `gorm:"type:varchar(32)" json:"source"` // e.g. bep20, trc20

	Credited bool `gorm:"default:false;index" json:"credited"`

	Timestamps
}
