package handlers

import (
	"log"
	"net/http"
	"property-backoffice/internal/database"
	"property-backoffice/internal/models"
	"property-backoffice/internal/search"

	"github.com/gin-gonic/gin"
)

// DirectoryHandler serves contacts and tenants
type DirectoryHandler struct {
	db     *database.GormDB
	search search.Engine
}

// NewDirectoryHandler creates a directory handler
func NewDirectoryHandler(db *database.GormDB, engine search.Engine) *DirectoryHandler {
	return &DirectoryHandler{db: db, search: engine}
}

var contactColumns = map[string]fieldKind{
	"name":         textField,
	"phone":        textField,
	"email":        textField,
	"contact_type": textField,
	"notes":        textField,
}

var tenantColumns = map[string]fieldKind{
	"tenant_name":  textField,
	"lease_start":  dateField,
	"lease_end":    dateField,
	"monthly_rent": numberField,
	"phone":        textField,
	"email":        textField,
	"notes":        textField,
}

type contactRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	ContactType string `json:"contact_type"`
	Notes       string `json:"notes"`
}

type tenantRequest struct {
	PropertyID  uint     `json:"property_id"`
	TenantName  string   `json:"tenant_name"`
	LeaseStart  *Date    `json:"lease_start"`
	LeaseEnd    *Date    `json:"lease_end"`
	MonthlyRent *float64 `json:"monthly_rent"`
	Phone       string   `json:"phone"`
	Email       string   `json:"email"`
	Notes       string   `json:"notes"`
}

// ListContacts returns contacts matching ?q and ?type
func (h *DirectoryHandler) ListContacts(c *gin.Context) {
	contacts, err := h.db.ListContacts(c.Request.Context(), c.Query("q"), c.Query("type"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contacts)
}

func (h *DirectoryHandler) GetContact(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	contact, err := h.db.GetContact(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

// CreateContact stores a contact with its phone reduced to 10 digits
func (h *DirectoryHandler) CreateContact(c *gin.Context) {
	var req contactRequest
	if !bindJSON(c, &req) {
		return
	}
	contact := &models.Contact{
		Name:        req.Name,
		Phone:       req.Phone,
		Email:       req.Email,
		ContactType: req.ContactType,
		Notes:       req.Notes,
	}
	if err := h.db.CreateContact(c.Request.Context(), contact); err != nil {
		respondError(c, err)
		return
	}
	h.indexContact(contact)
	c.JSON(http.StatusCreated, contact)
}

func (h *DirectoryHandler) UpdateContact(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	fields, err := decodePatch(c, contactColumns)
	if err != nil {
		respondError(c, err)
		return
	}
	contact, err := h.db.UpdateContact(c.Request.Context(), id, fields)
	if err != nil {
		respondError(c, err)
		return
	}
	h.indexContact(contact)
	c.JSON(http.StatusOK, contact)
}

func (h *DirectoryHandler) DeleteContact(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.db.DeleteContact(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	if err := h.search.DeleteContact(id); err != nil {
		log.Printf("[Contacts] Failed to remove contact %d from search: %v", id, err)
	}
	c.Status(http.StatusNoContent)
}

func (h *DirectoryHandler) indexContact(contact *models.Contact) {
	if err := h.search.IndexContact(contact); err != nil {
		log.Printf("[Contacts] Failed to index contact %d: %v", contact.ID, err)
	}
}

// ListTenants returns the tenants of ?property_id
func (h *DirectoryHandler) ListTenants(c *gin.Context) {
	propertyID, ok := requirePropertyID(c)
	if !ok {
		return
	}
	tenants, err := h.db.ListTenants(c.Request.Context(), propertyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tenants)
}

func (h *DirectoryHandler) GetTenant(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	tenant, err := h.db.GetTenant(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tenant)
}

func (h *DirectoryHandler) CreateTenant(c *gin.Context) {
	var req tenantRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.PropertyID == 0 {
		badRequest(c, "property_id is required")
		return
	}
	tenant := &models.Tenant{
		PropertyID:  req.PropertyID,
		TenantName:  req.TenantName,
		LeaseStart:  req.LeaseStart.Ptr(),
		LeaseEnd:    req.LeaseEnd.Ptr(),
		MonthlyRent: req.MonthlyRent,
		Phone:       req.Phone,
		Email:       req.Email,
		Notes:       req.Notes,
	}
	if err := h.db.CreateTenant(c.Request.Context(), tenant); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tenant)
}

func (h *DirectoryHandler) UpdateTenant(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	fields, err := decodePatch(c, tenantColumns)
	if err != nil {
		respondError(c, err)
		return
	}
	tenant, err := h.db.UpdateTenant(c.Request.Context(), id, fields)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tenant)
}

func (h *DirectoryHandler) DeleteTenant(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.db.DeleteTenant(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
