package models

import (
	"strings"
	"time"
)

// Property is a managed real-estate asset. It is the root of the cascade delete:
// every child table references it through property_id.
type Property struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyName string         `gorm:"type:varchar(255);not null;index" json:"property_name"`
	Address      string         `gorm:"type:varchar(255)" json:"address"`
	City         string         `gorm:"type:varchar(100)" json:"city"`
	State        string         `gorm:"type:varchar(50)" json:"state"`
	ZipCode      string         `gorm:"type:varchar(20)" json:"zip_code"`
	Owner        string         `gorm:"type:varchar(255)" json:"owner"` // free-text contact name
	PropertyType string         `gorm:"type:varchar(50)" json:"property_type"`
	Status       PropertyStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`

	// Map coordinates, filled by the geocoder when missing
	Latitude   *float64   `gorm:"column:lat" json:"lat"`
	Longitude  *float64   `gorm:"column:lng" json:"lng"`
	GeocodedAt *time.Time `json:"geocoded_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// PropertyStatus is the lifecycle state of a property
type PropertyStatus string

const (
	PropertyStatusActive   PropertyStatus = "active"
	PropertyStatusVacant   PropertyStatus = "vacant"
	PropertyStatusSold     PropertyStatus = "sold"
	PropertyStatusInactive PropertyStatus = "inactive"
)

// TableName specifies the table name
func (Property) TableName() string {
	return "properties"
}

// HasCoordinates reports whether both lat and lng are stored
func (p *Property) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// FullAddress joins the address parts into the single line sent to the geocoder,
// e.g. "12 Oak St, Springfield, IL 62701". Empty parts are skipped.
func (p *Property) FullAddress() string {
	var parts []string
	if s := strings.TrimSpace(p.Address); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(p.City); s != "" {
		parts = append(parts, s)
	}
	stateZip := strings.TrimSpace(strings.TrimSpace(p.State) + " " + strings.TrimSpace(p.ZipCode))
	if stateZip != "" {
		parts = append(parts, stateZip)
	}
	return strings.Join(parts, ", ")
}

// PropertyMarker is the map summary of a property
type PropertyMarker struct {
	ID           uint     `json:"id"`
	PropertyName string   `json:"property_name"`
	Address      string   `json:"address"`
	Status       string   `json:"status"`
	Latitude     *float64 `json:"lat"`
	Longitude    *float64 `json:"lng"`
}

// Marker converts the property into its map summary
func (p *Property) Marker() PropertyMarker {
	return PropertyMarker{
		ID:           p.ID,
		PropertyName: p.PropertyName,
		Address:      p.FullAddress(),
		Status:       string(p.Status),
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
	}
}
