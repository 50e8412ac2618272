package handlers

import (
	"context"
	"log"
	"net/http"
	"property-backoffice/internal/cache"
	"property-backoffice/internal/database"
	"property-backoffice/internal/models"
	"property-backoffice/internal/search"

	"github.com/gin-gonic/gin"
)

// PropertyHandler serves properties and their map markers
type PropertyHandler struct {
	db     *database.GormDB
	search search.Engine
	cache  cache.Cache
}

// NewPropertyHandler creates a property handler
func NewPropertyHandler(db *database.GormDB, engine search.Engine, c cache.Cache) *PropertyHandler {
	return &PropertyHandler{db: db, search: engine, cache: c}
}

var propertyColumns = map[string]fieldKind{
	"property_name": textField,
	"address":       textField,
	"city":          textField,
	"state":         textField,
	"zip_code":      textField,
	"owner":         textField,
	"property_type": textField,
	"status":        textField,
	"lat":           numberField,
	"lng":           numberField,
}

type propertyRequest struct {
	PropertyName string   `json:"property_name"`
	Address      string   `json:"address"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	ZipCode      string   `json:"zip_code"`
	Owner        string   `json:"owner"`
	PropertyType string   `json:"property_type"`
	Status       string   `json:"status"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
}

// List returns properties filtered by q and status, ordered by sort
func (h *PropertyHandler) List(c *gin.Context) {
	properties, err := h.db.ListProperties(c.Request.Context(), database.PropertyFilter{
		Query:  c.Query("q"),
		Status: c.Query("status"),
		SortBy: c.Query("sort"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, properties)
}

func (h *PropertyHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	property, err := h.db.GetProperty(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, property)
}

func (h *PropertyHandler) Create(c *gin.Context) {
	var req propertyRequest
	if !bindJSON(c, &req) {
		return
	}

	property := &models.Property{
		PropertyName: req.PropertyName,
		Address:      req.Address,
		City:         req.City,
		State:        req.State,
		ZipCode:      req.ZipCode,
		Owner:        req.Owner,
		PropertyType: req.PropertyType,
		Status:       models.PropertyStatus(req.Status),
		Latitude:     req.Lat,
		Longitude:    req.Lng,
	}
	if err := h.db.CreateProperty(c.Request.Context(), property); err != nil {
		respondError(c, err)
		return
	}

	h.propertyChanged(c.Request.Context(), property)
	c.JSON(http.StatusCreated, property)
}

// Update applies a partial update; omitted fields keep their values
func (h *PropertyHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	fields, err := decodePatch(c, propertyColumns)
	if err != nil {
		respondError(c, err)
		return
	}

	property, err := h.db.UpdateProperty(c.Request.Context(), id, fields)
	if err != nil {
		respondError(c, err)
		return
	}

	h.propertyChanged(c.Request.Context(), property)
	c.JSON(http.StatusOK, property)
}

// Delete removes the property and all of its dependent records
func (h *PropertyHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	result, err := h.db.DeleteProperty(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Printf("[Properties] Deleted property %d with dependents %v", id, result.Removed)

	if err := h.search.DeleteProperty(id); err != nil {
		log.Printf("[Properties] Failed to remove property %d from search: %v", id, err)
	}
	h.invalidateMarkers(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// Markers returns the map summary of every property
func (h *PropertyHandler) Markers(c *gin.Context) {
	ctx := c.Request.Context()

	var markers []models.PropertyMarker
	found, err := h.cache.Get(ctx, cache.KeyPropertyMarkers, &markers)
	if err != nil {
		log.Printf("[Properties] Marker cache read failed: %v", err)
	}
	if found {
		c.Header("X-Cache", "hit")
		c.JSON(http.StatusOK, markers)
		return
	}

	markers, err = h.db.PropertyMarkers(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.cache.Set(ctx, cache.KeyPropertyMarkers, markers); err != nil {
		log.Printf("[Properties] Marker cache write failed: %v", err)
	}
	c.Header("X-Cache", "miss")
	c.JSON(http.StatusOK, markers)
}

func (h *PropertyHandler) propertyChanged(ctx context.Context, p *models.Property) {
	if err := h.search.IndexProperty(p); err != nil {
		log.Printf("[Properties] Failed to index property %d: %v", p.ID, err)
	}
	h.invalidateMarkers(ctx)
}

func (h *PropertyHandler) invalidateMarkers(ctx context.Context) {
	if err := h.cache.Delete(ctx, cache.KeyPropertyMarkers); err != nil {
		log.Printf("[Properties] Marker cache invalidation failed: %v", err)
	}
}

// InvalidateMarkers drops the cached markers; the geocoder calls it after a batch
func (h *PropertyHandler) InvalidateMarkers(ctx context.Context) {
	h.invalidateMarkers(ctx)
}
