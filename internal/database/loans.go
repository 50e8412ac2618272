package database

import (
	"context"
	"property-backoffice/internal/models"
	"strings"

	"gorm.io/gorm"
)

// GetEarliestLoan returns the first loan recorded for a property
func (gdb *GormDB) GetEarliestLoan(ctx context.Context, propertyID uint) (*models.LoanDetails, error) {
	var loan models.LoanDetails
	err := gdb.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("created_at ASC").
		Order("id ASC").
		First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// ListLoans returns every loan of a property, earliest first
func (gdb *GormDB) ListLoans(ctx context.Context, propertyID uint) ([]models.LoanDetails, error) {
	loans := make([]models.LoanDetails, 0)
	err := gdb.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&loans).Error
	return loans, err
}

// CreateLoan inserts a loan. Loans are only created once a loan number exists.
func (gdb *GormDB) CreateLoan(ctx context.Context, loan *models.LoanDetails) error {
	loan.LoanNumber = strings.TrimSpace(loan.LoanNumber)
	if loan.LoanNumber == "" {
		return invalid("loan_number", "is required")
	}
	if loan.LoanStatus == "" {
		loan.LoanStatus = models.LoanStatusActive
	}

	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireProperty(tx, loan.PropertyID); err != nil {
			return err
		}
		// link the purchase record when the caller did not
		if loan.PurchaseID == nil {
			var purchase models.PurchaseDetails
			err := tx.Where("property_id = ?", loan.PropertyID).First(&purchase).Error
			if err == nil {
				loan.PurchaseID = &purchase.ID
			} else if err != gorm.ErrRecordNotFound {
				return err
			}
		}
		return translateError(tx.Create(loan).Error)
	})
}

// UpdateLoan merges the given columns into an existing loan
func (gdb *GormDB) UpdateLoan(ctx context.Context, id uint, fields map[string]interface{}) (*models.LoanDetails, error) {
	if number, ok := fields["loan_number"].(string); ok && strings.TrimSpace(number) == "" {
		return nil, invalid("loan_number", "cannot be empty")
	}
	var loan models.LoanDetails
	if err := gdb.updateByID(ctx, &loan, id, fields); err != nil {
		return nil, err
	}
	return &loan, nil
}
