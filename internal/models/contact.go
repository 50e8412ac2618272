package models

import "time"

// Contact is a directory entry. Owner/buyer/seller/lender fields elsewhere match
// contacts by name only; there is no foreign key.
type Contact struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null;index" json:"name"`
	Phone       string    `gorm:"type:char(10);not null" json:"phone"` // always 10 digits
	Email       string    `gorm:"type:varchar(255)" json:"email"`
	ContactType string    `gorm:"type:varchar(50);index" json:"contact_type"`
	Notes       string    `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (Contact) TableName() string {
	return "contacts"
}
