package database

import (
	"context"
	"fmt"
	"property-backoffice/internal/models"
	"strings"
	"time"

	"gorm.io/gorm"
)

// PropertyFilter narrows ListProperties
type PropertyFilter struct {
	Query  string
	Status string
	SortBy string
}

// ListProperties retrieves properties matching the filter
func (gdb *GormDB) ListProperties(ctx context.Context, filter PropertyFilter) ([]models.Property, error) {
	query := gdb.db.WithContext(ctx).Model(&models.Property{})

	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(property_name) LIKE ? OR LOWER(address) LIKE ? OR LOWER(city) LIKE ? OR LOWER(owner) LIKE ?",
			like, like, like, like)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var orderClause string
	switch filter.SortBy {
	case "name", "name_asc":
		orderClause = "property_name ASC"
	case "name_desc":
		orderClause = "property_name DESC"
	case "city":
		orderClause = "city ASC, property_name ASC"
	case "status":
		orderClause = "status ASC, property_name ASC"
	case "created_at_asc":
		orderClause = "created_at ASC"
	default:
		orderClause = "created_at DESC"
	}

	properties := make([]models.Property, 0)
	err := query.Order(orderClause).Order("id ASC").Find(&properties).Error
	return properties, err
}

// GetProperty retrieves a property by ID
func (gdb *GormDB) GetProperty(ctx context.Context, id uint) (*models.Property, error) {
	var property models.Property
	if err := gdb.db.WithContext(ctx).First(&property, id).Error; err != nil {
		return nil, err
	}
	return &property, nil
}

// CreateProperty inserts a new property
func (gdb *GormDB) CreateProperty(ctx context.Context, p *models.Property) error {
	p.PropertyName = strings.TrimSpace(p.PropertyName)
	if p.PropertyName == "" {
		return invalid("property_name", "is required")
	}
	if p.Status == "" {
		p.Status = models.PropertyStatusActive
	}
	return translateError(gdb.db.WithContext(ctx).Create(p).Error)
}

// UpdateProperty merges the given columns into an existing property.
// Columns not present in fields are left untouched.
func (gdb *GormDB) UpdateProperty(ctx context.Context, id uint, fields map[string]interface{}) (*models.Property, error) {
	if name, ok := fields["property_name"].(string); ok && strings.TrimSpace(name) == "" {
		return nil, invalid("property_name", "cannot be empty")
	}
	if status, ok := fields["status"]; ok {
		s, _ := status.(string)
		if strings.TrimSpace(s) == "" {
			return nil, invalid("status", "cannot be empty")
		}
	}

	var property models.Property
	if err := gdb.updateByID(ctx, &property, id, fields); err != nil {
		return nil, err
	}
	return &property, nil
}

// DeleteResult reports what the cascade delete removed
type DeleteResult struct {
	PropertyID uint             `json:"property_id"`
	Removed    map[string]int64 `json:"removed"`
}

// propertyChildren lists every table keyed by property_id. Children share no
// keys with each other, so only "children before parent" matters.
var propertyChildren = []struct {
	table string
	model interface{}
}{
	{"loan_details", &models.LoanDetails{}},
	{"purchase_details", &models.PurchaseDetails{}},
	{"rent_logs", &models.RentLog{}},
	{"payment_logs", &models.PaymentLog{}},
	{"transactions", &models.Transaction{}},
	{"tenants", &models.Tenant{}},
}

// DeleteProperty removes a property and every dependent row in one transaction.
// A missing property yields ErrNotFound and no changes; any failed step rolls
// back the whole operation.
func (gdb *GormDB) DeleteProperty(ctx context.Context, id uint) (*DeleteResult, error) {
	result := &DeleteResult{
		PropertyID: id,
		Removed:    make(map[string]int64, len(propertyChildren)),
	}

	err := gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var property models.Property
		if err := tx.First(&property, id).Error; err != nil {
			return err
		}

		var total int64
		for _, child := range propertyChildren {
			res := tx.Where("property_id = ?", id).Delete(child.model)
			if res.Error != nil {
				return fmt.Errorf("delete %s for property %d: %w", child.table, id, res.Error)
			}
			result.Removed[child.table] = res.RowsAffected
			total += res.RowsAffected
		}

		deleteLog := models.DeleteLog{
			PropertyID:   property.ID,
			PropertyName: property.PropertyName,
			Address:      property.FullAddress(),
			RowsRemoved:  total,
			Reason:       models.DeleteReasonManual,
		}
		if err := tx.Create(&deleteLog).Error; err != nil {
			return fmt.Errorf("write delete log for property %d: %w", id, err)
		}

		res := tx.Delete(&models.Property{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete property %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return propertyNotFound(id)
		}
		result.Removed["properties"] = res.RowsAffected
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetRecentDeleteLogs returns recent delete log entries
func (gdb *GormDB) GetRecentDeleteLogs(ctx context.Context, limit int) ([]models.DeleteLog, error) {
	logs := make([]models.DeleteLog, 0)
	err := gdb.db.WithContext(ctx).Order("deleted_at DESC").Order("id DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

// PropertiesMissingCoordinates returns properties without lat/lng, oldest first
func (gdb *GormDB) PropertiesMissingCoordinates(ctx context.Context, limit int) ([]models.Property, error) {
	properties := make([]models.Property, 0)
	query := gdb.db.WithContext(ctx).Where("lat IS NULL OR lng IS NULL").Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&properties).Error
	return properties, err
}

// SetCoordinates stores geocoded coordinates for a property
func (gdb *GormDB) SetCoordinates(ctx context.Context, id uint, lat, lng float64, at time.Time) error {
	res := gdb.db.WithContext(ctx).Model(&models.Property{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"lat":         lat,
			"lng":         lng,
			"geocoded_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return propertyNotFound(id)
	}
	return nil
}

// PropertyMarkers returns the map summary of every property
func (gdb *GormDB) PropertyMarkers(ctx context.Context) ([]models.PropertyMarker, error) {
	var properties []models.Property
	if err := gdb.db.WithContext(ctx).
		Select("id", "property_name", "address", "city", "state", "zip_code", "status", "lat", "lng").
		Order("id ASC").
		Find(&properties).Error; err != nil {
		return nil, err
	}

	markers := make([]models.PropertyMarker, 0, len(properties))
	for i := range properties {
		markers = append(markers, properties[i].Marker())
	}
	return markers, nil
}

// requireProperty returns ErrNotFound unless the property exists
func requireProperty(tx *gorm.DB, id uint) error {
	if id == 0 {
		return invalid("property_id", "is required")
	}
	var count int64
	if err := tx.Model(&models.Property{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return propertyNotFound(id)
	}
	return nil
}
