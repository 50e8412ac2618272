package models

import "time"

// PurchaseDetails holds the purchase economics of a property (one per property)
type PurchaseDetails struct {
	ID            uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID    uint       `gorm:"not null;uniqueIndex" json:"property_id"`
	PurchasePrice *float64   `gorm:"type:decimal(14,2)" json:"purchase_price"`
	FinancingType string     `gorm:"type:varchar(50)" json:"financing_type"`
	Buyer         string     `gorm:"type:varchar(255)" json:"buyer"`  // free-text contact name
	Seller        string     `gorm:"type:varchar(255)" json:"seller"` // free-text contact name
	ClosingDate   *time.Time `json:"closing_date"`
	ClosingCosts  *float64   `gorm:"type:decimal(14,2)" json:"closing_costs"`
	DownPayment   *float64   `gorm:"type:decimal(14,2)" json:"down_payment"`
	Notes         string     `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (PurchaseDetails) TableName() string {
	return "purchase_details"
}

// Financing types offered by the purchase form
const (
	FinancingCash         = "cash"
	FinancingConventional = "conventional"
	FinancingSellerCarry  = "seller_financed"
	FinancingHardMoney    = "hard_money"
)
