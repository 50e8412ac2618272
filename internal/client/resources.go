package client

import (
	"context"
	"net/http"
	"net/url"
	"property-backoffice/internal/cleanup"
	"property-backoffice/internal/geocode"
	"property-backoffice/internal/models"
	"property-backoffice/internal/search"
	"strconv"
	"time"
)

// PropertyQuery filters ListProperties
type PropertyQuery struct {
	Query  string
	Status string
	Sort   string
}

func (c *Client) ListProperties(ctx context.Context, q PropertyQuery) ([]models.Property, error) {
	query := url.Values{}
	if q.Query != "" {
		query.Set("q", q.Query)
	}
	if q.Status != "" {
		query.Set("status", q.Status)
	}
	if q.Sort != "" {
		query.Set("sort", q.Sort)
	}
	var properties []models.Property
	_, err := c.do(ctx, http.MethodGet, "/api/properties", query, nil, &properties)
	return properties, err
}

func (c *Client) GetProperty(ctx context.Context, id uint) (*models.Property, error) {
	var property models.Property
	if _, err := c.do(ctx, http.MethodGet, idPath("/api/properties", id), nil, nil, &property); err != nil {
		return nil, err
	}
	return &property, nil
}

func (c *Client) CreateProperty(ctx context.Context, p *models.Property) (*models.Property, error) {
	var created models.Property
	if _, err := c.do(ctx, http.MethodPost, "/api/properties", nil, p, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateProperty sends a partial update; only the keys in fields change
func (c *Client) UpdateProperty(ctx context.Context, id uint, fields map[string]interface{}) (*models.Property, error) {
	var updated models.Property
	if _, err := c.do(ctx, http.MethodPatch, idPath("/api/properties", id), nil, fields, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteProperty removes the property and everything attached to it
func (c *Client) DeleteProperty(ctx context.Context, id uint) error {
	_, err := c.do(ctx, http.MethodDelete, idPath("/api/properties", id), nil, nil, nil)
	return err
}

func (c *Client) PropertyMarkers(ctx context.Context) ([]models.PropertyMarker, error) {
	var markers []models.PropertyMarker
	_, err := c.do(ctx, http.MethodGet, "/api/property_markers", nil, nil, &markers)
	return markers, err
}

func (c *Client) GetPurchase(ctx context.Context, propertyID uint) (*models.PurchaseDetails, error) {
	var purchase models.PurchaseDetails
	if _, err := c.do(ctx, http.MethodGet, "/api/purchase_details", propertyQuery(propertyID), nil, &purchase); err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (c *Client) CreatePurchase(ctx context.Context, p *models.PurchaseDetails) (*models.PurchaseDetails, error) {
	var created models.PurchaseDetails
	if _, err := c.do(ctx, http.MethodPost, "/api/purchase_details", nil, p, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdatePurchase(ctx context.Context, id uint, fields map[string]interface{}) (*models.PurchaseDetails, error) {
	var updated models.PurchaseDetails
	if _, err := c.do(ctx, http.MethodPatch, idPath("/api/purchase_details", id), nil, fields, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// GetLoan returns the earliest loan of a property
func (c *Client) GetLoan(ctx context.Context, propertyID uint) (*models.LoanDetails, error) {
	var loan models.LoanDetails
	if _, err := c.do(ctx, http.MethodGet, "/api/loan_details", propertyQuery(propertyID), nil, &loan); err != nil {
		return nil, err
	}
	return &loan, nil
}

func (c *Client) CreateLoan(ctx context.Context, l *models.LoanDetails) (*models.LoanDetails, error) {
	var created models.LoanDetails
	if _, err := c.do(ctx, http.MethodPost, "/api/loan_details", nil, l, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateLoan(ctx context.Context, id uint, fields map[string]interface{}) (*models.LoanDetails, error) {
	var updated models.LoanDetails
	if _, err := c.do(ctx, http.MethodPatch, idPath("/api/loan_details", id), nil, fields, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// RentLogInput is a rent log write; nil fields are left untouched on the server
type RentLogInput struct {
	PropertyID  uint       `json:"property_id"`
	Month       int        `json:"month"`
	Year        int        `json:"year"`
	RentAmount  *float64   `json:"rent_amount,omitempty"`
	CheckNumber *string    `json:"check_number,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	DepositDate *time.Time `json:"deposit_date,omitempty"`
}

// PaymentLogInput is a payment log write; nil fields are left untouched on the server
type PaymentLogInput struct {
	PropertyID    uint       `json:"property_id"`
	Month         int        `json:"month"`
	Year          int        `json:"year"`
	PaymentAmount *float64   `json:"payment_amount,omitempty"`
	CheckNumber   *string    `json:"check_number,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	PaymentDate   *time.Time `json:"payment_date,omitempty"`
}

func yearQuery(propertyID uint, year *int) url.Values {
	query := propertyQuery(propertyID)
	if year != nil {
		query.Set("year", strconv.Itoa(*year))
	}
	return query
}

func (c *Client) ListRentLogs(ctx context.Context, propertyID uint, year *int) ([]models.RentLog, error) {
	var logs []models.RentLog
	_, err := c.do(ctx, http.MethodGet, "/api/rentlog", yearQuery(propertyID, year), nil, &logs)
	return logs, err
}

// UpsertRentLog writes the month's rent log; created is false when an existing
// row was merged.
func (c *Client) UpsertRentLog(ctx context.Context, in RentLogInput) (log *models.RentLog, created bool, err error) {
	var stored models.RentLog
	status, err := c.do(ctx, http.MethodPost, "/api/rentlog", nil, in, &stored)
	if err != nil {
		return nil, false, err
	}
	return &stored, status == http.StatusCreated, nil
}

func (c *Client) ListPaymentLogs(ctx context.Context, propertyID uint, year *int) ([]models.PaymentLog, error) {
	var logs []models.PaymentLog
	_, err := c.do(ctx, http.MethodGet, "/api/paymentlog", yearQuery(propertyID, year), nil, &logs)
	return logs, err
}

func (c *Client) UpsertPaymentLog(ctx context.Context, in PaymentLogInput) (log *models.PaymentLog, created bool, err error) {
	var stored models.PaymentLog
	status, err := c.do(ctx, http.MethodPost, "/api/paymentlog", nil, in, &stored)
	if err != nil {
		return nil, false, err
	}
	return &stored, status == http.StatusCreated, nil
}

// ListTransactions returns a property's transactions, newest first
func (c *Client) ListTransactions(ctx context.Context, propertyID uint) ([]models.Transaction, error) {
	var transactions []models.Transaction
	_, err := c.do(ctx, http.MethodGet, "/api/transactions", propertyQuery(propertyID), nil, &transactions)
	return transactions, err
}

func (c *Client) CreateTransaction(ctx context.Context, t *models.Transaction) (*models.Transaction, error) {
	var created models.Transaction
	if _, err := c.do(ctx, http.MethodPost, "/api/transactions", nil, t, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id uint) error {
	_, err := c.do(ctx, http.MethodDelete, idPath("/api/transactions", id), nil, nil, nil)
	return err
}

func (c *Client) ListContacts(ctx context.Context, q, contactType string) ([]models.Contact, error) {
	query := url.Values{}
	if q != "" {
		query.Set("q", q)
	}
	if contactType != "" {
		query.Set("type", contactType)
	}
	var contacts []models.Contact
	_, err := c.do(ctx, http.MethodGet, "/api/contacts", query, nil, &contacts)
	return contacts, err
}

func (c *Client) GetContact(ctx context.Context, id uint) (*models.Contact, error) {
	var contact models.Contact
	if _, err := c.do(ctx, http.MethodGet, idPath("/api/contacts", id), nil, nil, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

// CreateContact stores a contact; the server normalizes the phone number
func (c *Client) CreateContact(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	var created models.Contact
	if _, err := c.do(ctx, http.MethodPost, "/api/contacts", nil, contact, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateContact(ctx context.Context, id uint, fields map[string]interface{}) (*models.Contact, error) {
	var updated models.Contact
	if _, err := c.do(ctx, http.MethodPatch, idPath("/api/contacts", id), nil, fields, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteContact(ctx context.Context, id uint) error {
	_, err := c.do(ctx, http.MethodDelete, idPath("/api/contacts", id), nil, nil, nil)
	return err
}

func (c *Client) ListTenants(ctx context.Context, propertyID uint) ([]models.Tenant, error) {
	var tenants []models.Tenant
	_, err := c.do(ctx, http.MethodGet, "/api/tenant", propertyQuery(propertyID), nil, &tenants)
	return tenants, err
}

func (c *Client) CreateTenant(ctx context.Context, t *models.Tenant) (*models.Tenant, error) {
	var created models.Tenant
	if _, err := c.do(ctx, http.MethodPost, "/api/tenant", nil, t, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateTenant(ctx context.Context, id uint, fields map[string]interface{}) (*models.Tenant, error) {
	var updated models.Tenant
	if _, err := c.do(ctx, http.MethodPatch, idPath("/api/tenant", id), nil, fields, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteTenant(ctx context.Context, id uint) error {
	_, err := c.do(ctx, http.MethodDelete, idPath("/api/tenant", id), nil, nil, nil)
	return err
}

// Search queries the server's search index
func (c *Client) Search(ctx context.Context, req search.Request) (*search.Result, error) {
	query := url.Values{"q": {req.Query}}
	if req.Index != "" {
		query.Set("index", req.Index)
	}
	if req.Status != "" {
		query.Set("status", req.Status)
	}
	if req.State != "" {
		query.Set("state", req.State)
	}
	if req.ContactType != "" {
		query.Set("type", req.ContactType)
	}
	if req.Limit > 0 {
		query.Set("limit", strconv.FormatInt(req.Limit, 10))
	}
	if req.Offset > 0 {
		query.Set("offset", strconv.FormatInt(req.Offset, 10))
	}
	var result search.Result
	if _, err := c.do(ctx, http.MethodGet, "/api/search", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GeocodeMissing asks the server to geocode up to limit properties (0 = configured batch size)
func (c *Client) GeocodeMissing(ctx context.Context, limit int) (*geocode.BatchResult, error) {
	var body interface{}
	if limit > 0 {
		body = map[string]int{"limit": limit}
	}
	var result geocode.BatchResult
	if _, err := c.do(ctx, http.MethodPost, "/api/admin/geocode-missing", nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Stats returns table row counts and geocoder quota usage
func (c *Client) Stats(ctx context.Context) (map[string]interface{}, error) {
	var stats map[string]interface{}
	_, err := c.do(ctx, http.MethodGet, "/api/admin/stats", nil, nil, &stats)
	return stats, err
}

func (c *Client) DeleteLogs(ctx context.Context, limit int) ([]models.DeleteLog, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var body struct {
		Logs []models.DeleteLog `json:"logs"`
	}
	_, err := c.do(ctx, http.MethodGet, "/api/admin/delete-logs", query, nil, &body)
	return body.Logs, err
}

// CleanupDeleteLogs prunes old delete log entries. retentionDays <= 0 uses
// the server's configured retention.
func (c *Client) CleanupDeleteLogs(ctx context.Context, retentionDays int, dryRun bool) (*cleanup.Result, error) {
	body := map[string]interface{}{"dry_run": dryRun}
	if retentionDays > 0 {
		body["retention_days"] = retentionDays
	}
	var result cleanup.Result
	if _, err := c.do(ctx, http.MethodPost, "/api/admin/delete-logs/cleanup", nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Reindex rebuilds the server's search indexes
func (c *Client) Reindex(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/admin/reindex", nil, nil, nil)
	return err
}
