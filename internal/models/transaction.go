package models

import "time"

// Transaction is an append-only ledger entry for a property
type Transaction struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID        uint      `gorm:"not null;index:idx_transactions_property_date,priority:1" json:"property_id"`
	TransactionAmount float64   `gorm:"type:decimal(12,2);not null" json:"transaction_amount"`
	TransactionDate   time.Time `gorm:"not null;index:idx_transactions_property_date,priority:2,sort:desc" json:"transaction_date"`
	TransactionType   string    `gorm:"type:varchar(50);not null" json:"transaction_type"`
	Notes             string    `gorm:"type:text" json:"notes"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name
func (Transaction) TableName() string {
	return "transactions"
}

// Common transaction types offered by the entry form; others are accepted as typed.
const (
	TransactionTypeRepairs     = "Repairs"
	TransactionTypeUtilities   = "Utilities"
	TransactionTypeTaxes       = "Taxes"
	TransactionTypeInsurance   = "Insurance"
	TransactionTypeManagement  = "Management"
	TransactionTypeImprovement = "Improvement"
)
