package models

import "time"

// LoanDetails holds financing terms. A row only exists once a loan number has been entered.
type LoanDetails struct {
	ID             uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID     uint       `gorm:"not null;index" json:"property_id"`
	PurchaseID     *uint      `gorm:"index" json:"purchase_id"`
	LoanNumber     string     `gorm:"type:varchar(100);not null" json:"loan_number"`
	Lender         string     `gorm:"type:varchar(255)" json:"lender"` // free-text contact name
	LoanAmount     *float64   `gorm:"type:decimal(14,2)" json:"loan_amount"`
	InterestRate   *float64   `gorm:"type:decimal(6,3)" json:"interest_rate"`
	LoanTermMonths *int       `json:"loan_term_months"`
	StartDate      *time.Time `json:"start_date"`
	MaturityDate   *time.Time `json:"maturity_date"`
	LoanStatus     string     `gorm:"type:varchar(30);default:'active'" json:"loan_status"`
	CreatedAt      time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (LoanDetails) TableName() string {
	return "loan_details"
}

const (
	LoanStatusActive     = "active"
	LoanStatusPaidOff    = "paid_off"
	LoanStatusRefinanced = "refinanced"
)
