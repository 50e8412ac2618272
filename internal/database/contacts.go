package database

import (
	"context"
	"fmt"
	"property-backoffice/internal/models"
	"property-backoffice/internal/phone"
	"strings"
)

// ListContacts returns contacts ordered by name. query matches name, email or
// phone digits; contactType filters exactly.
func (gdb *GormDB) ListContacts(ctx context.Context, query, contactType string) ([]models.Contact, error) {
	db := gdb.db.WithContext(ctx).Model(&models.Contact{})

	if q := strings.TrimSpace(query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		cond := "LOWER(name) LIKE ? OR LOWER(email) LIKE ?"
		args := []interface{}{like, like}
		if digits := phone.Normalize(q); digits != "" {
			cond += " OR phone LIKE ?"
			args = append(args, "%"+digits+"%")
		}
		db = db.Where(cond, args...)
	}
	if contactType != "" {
		db = db.Where("contact_type = ?", contactType)
	}

	contacts := make([]models.Contact, 0)
	err := db.Order("name ASC").Order("id ASC").Find(&contacts).Error
	return contacts, err
}

// GetContact retrieves a contact by ID
func (gdb *GormDB) GetContact(ctx context.Context, id uint) (*models.Contact, error) {
	var contact models.Contact
	if err := gdb.db.WithContext(ctx).First(&contact, id).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

// CreateContact normalizes the phone number and inserts the contact.
// Nothing is written unless the phone normalizes to exactly 10 digits.
func (gdb *GormDB) CreateContact(ctx context.Context, c *models.Contact) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return invalid("name", "is required")
	}
	c.Phone = phone.Normalize(c.Phone)
	if !phone.Valid(c.Phone) {
		return invalid("phone", "must contain exactly 10 digits")
	}
	return translateError(gdb.db.WithContext(ctx).Create(c).Error)
}

// UpdateContact merges fields into a contact; a supplied phone is normalized
// and validated before anything is written.
func (gdb *GormDB) UpdateContact(ctx context.Context, id uint, fields map[string]interface{}) (*models.Contact, error) {
	if raw, ok := fields["phone"]; ok {
		s, _ := raw.(string)
		normalized := phone.Normalize(s)
		if !phone.Valid(normalized) {
			return nil, invalid("phone", "must contain exactly 10 digits")
		}
		fields["phone"] = normalized
	}
	if name, ok := fields["name"].(string); ok && strings.TrimSpace(name) == "" {
		return nil, invalid("name", "cannot be empty")
	}

	var contact models.Contact
	if err := gdb.updateByID(ctx, &contact, id, fields); err != nil {
		return nil, err
	}
	return &contact, nil
}

// DeleteContact removes a contact. Names referencing it elsewhere are left as text.
func (gdb *GormDB) DeleteContact(ctx context.Context, id uint) error {
	res := gdb.db.WithContext(ctx).Delete(&models.Contact{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("contact %d: %w", id, ErrNotFound)
	}
	return nil
}
