package database

import (
	"context"
	"fmt"
	"property-backoffice/internal/models"
	"strings"

	"gorm.io/gorm"
)

// ListTransactions returns a property's transactions, most recent first
func (gdb *GormDB) ListTransactions(ctx context.Context, propertyID uint) ([]models.Transaction, error) {
	transactions := make([]models.Transaction, 0)
	err := gdb.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("transaction_date DESC").
		Order("id DESC").
		Find(&transactions).Error
	return transactions, err
}

// CreateTransaction appends a transaction to a property's ledger
func (gdb *GormDB) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	t.TransactionType = strings.TrimSpace(t.TransactionType)
	if t.TransactionType == "" {
		return invalid("transaction_type", "is required")
	}
	if t.TransactionDate.IsZero() {
		return invalid("transaction_date", "is required")
	}

	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireProperty(tx, t.PropertyID); err != nil {
			return err
		}
		return tx.Create(t).Error
	})
}

// DeleteTransaction removes a single transaction
func (gdb *GormDB) DeleteTransaction(ctx context.Context, id uint) error {
	res := gdb.db.WithContext(ctx).Delete(&models.Transaction{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	return nil
}
