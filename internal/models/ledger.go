package models

import "time"

// RentLog is one month of rent collected for a property.
// (property_id, month, year) is unique; writes are upserts on that key.
type RentLog struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID  uint       `gorm:"not null;uniqueIndex:idx_rent_logs_key,priority:1" json:"property_id"`
	Month       int        `gorm:"not null;uniqueIndex:idx_rent_logs_key,priority:2" json:"month"`
	Year        int        `gorm:"not null;uniqueIndex:idx_rent_logs_key,priority:3" json:"year"`
	RentAmount  *float64   `gorm:"type:decimal(12,2)" json:"rent_amount"`
	CheckNumber string     `gorm:"type:varchar(50)" json:"check_number"`
	Notes       string     `gorm:"type:text" json:"notes"`
	DepositDate *time.Time `json:"deposit_date"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (RentLog) TableName() string {
	return "rent_logs"
}

// PaymentLog is one month of loan payments made for a property.
// Same natural key as RentLog.
type PaymentLog struct {
	ID            uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID    uint       `gorm:"not null;uniqueIndex:idx_payment_logs_key,priority:1" json:"property_id"`
	Month         int        `gorm:"not null;uniqueIndex:idx_payment_logs_key,priority:2" json:"month"`
	Year          int        `gorm:"not null;uniqueIndex:idx_payment_logs_key,priority:3" json:"year"`
	PaymentAmount *float64   `gorm:"type:decimal(12,2)" json:"payment_amount"`
	CheckNumber   string     `gorm:"type:varchar(50)" json:"check_number"`
	Notes         string     `gorm:"type:text" json:"notes"`
	PaymentDate   *time.Time `json:"payment_date"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (PaymentLog) TableName() string {
	return "payment_logs"
}
