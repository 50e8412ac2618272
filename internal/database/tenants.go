package database

import (
	"context"
	"fmt"
	"property-backoffice/internal/models"
	"strings"

	"gorm.io/gorm"
)

// ListTenants returns the tenants of a property, newest lease first
func (gdb *GormDB) ListTenants(ctx context.Context, propertyID uint) ([]models.Tenant, error) {
	tenants := make([]models.Tenant, 0)
	err := gdb.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("lease_start DESC").
		Order("id DESC").
		Find(&tenants).Error
	return tenants, err
}

// GetTenant retrieves a tenant by ID
func (gdb *GormDB) GetTenant(ctx context.Context, id uint) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := gdb.db.WithContext(ctx).First(&tenant, id).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// CreateTenant inserts a tenant. The same name and lease start on one property
// is rejected with ErrConflict, including two entries without a lease start.
func (gdb *GormDB) CreateTenant(ctx context.Context, t *models.Tenant) error {
	t.TenantName = strings.TrimSpace(t.TenantName)
	if t.TenantName == "" {
		return invalid("tenant_name", "is required")
	}
	if t.LeaseStart != nil && t.LeaseEnd != nil && t.LeaseEnd.Before(*t.LeaseStart) {
		return invalid("lease_end", "must not be before lease_start")
	}

	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireProperty(tx, t.PropertyID); err != nil {
			return err
		}
		// the unique index treats NULL lease starts as distinct
		if t.LeaseStart == nil {
			var count int64
			if err := tx.Model(&models.Tenant{}).
				Where("property_id = ? AND tenant_name = ? AND lease_start IS NULL", t.PropertyID, t.TenantName).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return fmt.Errorf("tenant %q without lease start: %w", t.TenantName, ErrConflict)
			}
		}
		return translateError(tx.Create(t).Error)
	})
}

// UpdateTenant merges fields into a tenant
func (gdb *GormDB) UpdateTenant(ctx context.Context, id uint, fields map[string]interface{}) (*models.Tenant, error) {
	if name, ok := fields["tenant_name"].(string); ok && strings.TrimSpace(name) == "" {
		return nil, invalid("tenant_name", "cannot be empty")
	}

	var tenant models.Tenant
	if err := gdb.updateByID(ctx, &tenant, id, fields); err != nil {
		return nil, err
	}
	return &tenant, nil
}

// DeleteTenant removes a tenant
func (gdb *GormDB) DeleteTenant(ctx context.Context, id uint) error {
	res := gdb.db.WithContext(ctx).Delete(&models.Tenant{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("tenant %d: %w", id, ErrNotFound)
	}
	return nil
}
