package models

import "time"

// DeleteLog records a property removed by the cascade delete
type DeleteLog struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID   uint      `gorm:"not null;index" json:"property_id"`
	PropertyName string    `gorm:"type:varchar(255)" json:"property_name"`
	Address      string    `gorm:"type:text" json:"address"`
	RowsRemoved  int64     `gorm:"not null;default:0" json:"rows_removed"`
	Reason       string    `gorm:"type:varchar(50);not null" json:"reason"`
	DeletedAt    time.Time `gorm:"not null;autoCreateTime;index" json:"deleted_at"`
}

// TableName specifies the table name
func (DeleteLog) TableName() string {
	return "delete_logs"
}

// DeleteReason constants
const (
	DeleteReasonManual = "manual_deletion"
)
