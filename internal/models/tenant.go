package models

import "time"

// Tenant is a lease occupant of a property
type Tenant struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID  uint       `gorm:"not null;uniqueIndex:idx_tenants_lease,priority:1" json:"property_id"`
	TenantName  string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_tenants_lease,priority:2" json:"tenant_name"`
	LeaseStart  *time.Time `gorm:"uniqueIndex:idx_tenants_lease,priority:3" json:"lease_start"`
	LeaseEnd    *time.Time `json:"lease_end"`
	MonthlyRent *float64   `gorm:"type:decimal(12,2)" json:"monthly_rent"`
	Phone       string     `gorm:"type:varchar(20)" json:"phone"`
	Email       string     `gorm:"type:varchar(255)" json:"email"`
	Notes       string     `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (Tenant) TableName() string {
	return "tenants"
}
