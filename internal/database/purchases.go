package database

import (
	"context"
	"property-backoffice/internal/models"

	"gorm.io/gorm"
)

// GetPurchaseByProperty returns the purchase record of a property
func (gdb *GormDB) GetPurchaseByProperty(ctx context.Context, propertyID uint) (*models.PurchaseDetails, error) {
	var purchase models.PurchaseDetails
	err := gdb.db.WithContext(ctx).Where("property_id = ?", propertyID).First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// CreatePurchase inserts the purchase record. A property has at most one;
// a second insert returns ErrConflict.
func (gdb *GormDB) CreatePurchase(ctx context.Context, p *models.PurchaseDetails) error {
	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireProperty(tx, p.PropertyID); err != nil {
			return err
		}
		return translateError(tx.Create(p).Error)
	})
}

// UpdatePurchase merges the given columns into an existing purchase record
func (gdb *GormDB) UpdatePurchase(ctx context.Context, id uint, fields map[string]interface{}) (*models.PurchaseDetails, error) {
	var purchase models.PurchaseDetails
	if err := gdb.updateByID(ctx, &purchase, id, fields); err != nil {
		return nil, err
	}
	return &purchase, nil
}

// updateByID loads dest by primary key, applies fields and reloads it
func (gdb *GormDB) updateByID(ctx context.Context, dest interface{}, id uint, fields map[string]interface{}) error {
	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(dest, id).Error; err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}
		if err := tx.Model(dest).Updates(fields).Error; err != nil {
			return translateError(err)
		}
		return tx.First(dest, id).Error
	})
}
