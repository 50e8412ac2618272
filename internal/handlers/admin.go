package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"property-backoffice/internal/cleanup"
	"property-backoffice/internal/config"
	"property-backoffice/internal/database"
	"property-backoffice/internal/geocode"
	"property-backoffice/internal/search"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles admin-related requests
type AdminHandler struct {
	db         *database.GormDB
	geocoder   *geocode.Service
	search     search.Engine
	cleaner    *cleanup.Service
	cleanupCfg config.CleanupConfig
}

// NewAdminHandler creates a new admin handler. geocoder may be nil when
// geocoding is disabled.
func NewAdminHandler(db *database.GormDB, geocoder *geocode.Service, engine search.Engine) *AdminHandler {
	return &AdminHandler{
		db:       db,
		geocoder: geocoder,
		search:   engine,
	}
}

// WithCleanup enables the delete log pruning endpoint
func (h *AdminHandler) WithCleanup(svc *cleanup.Service, cfg config.CleanupConfig) *AdminHandler {
	h.cleaner = svc
	h.cleanupCfg = cfg
	return h
}

// GeocodeMissing runs a geocoding batch and waits for it to finish.
// Per-property failures are reported in the body, never as a failed request.
func (h *AdminHandler) GeocodeMissing(c *gin.Context) {
	if h.geocoder == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "geocoding is disabled"})
		return
	}

	var req struct {
		Limit int `json:"limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if req.Limit < 0 {
		badRequest(c, "limit must not be negative")
		return
	}

	log.Printf("[Admin] Geocode batch requested (limit %d)", req.Limit)
	result, err := h.geocoder.GeocodeMissing(c.Request.Context(), req.Limit)
	switch {
	case errors.Is(err, geocode.ErrBatchRunning):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case result == nil && err != nil:
		respondError(c, err)
		return
	case err != nil:
		// cancelled part way; report what was done
		log.Printf("[Admin] Geocode batch interrupted: %v", err)
	}
	c.JSON(http.StatusOK, result)
}

// GetStats returns row counts and geocoder quota usage
func (h *AdminHandler) GetStats(c *gin.Context) {
	counts, err := h.db.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	stats := gin.H{"tables": counts}
	if h.geocoder != nil {
		stats["geocoding"] = h.geocoder.QuotaStats()
		if breaker := h.geocoder.BreakerStatus(); breaker != nil {
			stats["geocoding_breaker"] = breaker
		}
	}
	if h.cleaner != nil {
		deleteStats, err := h.cleaner.Stats(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		stats["delete_logs"] = deleteStats
	}
	c.JSON(http.StatusOK, stats)
}

// GetDeleteLogs returns recent cascade deletions
func (h *AdminHandler) GetDeleteLogs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 500 {
		limit = 50
	}

	logs, err := h.db.GetRecentDeleteLogs(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"count": len(logs),
	})
}

// CleanupDeleteLogs prunes old delete log entries. The body may override the
// configured retention and ask for a dry run.
func (h *AdminHandler) CleanupDeleteLogs(c *gin.Context) {
	if h.cleaner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cleanup is disabled"})
		return
	}

	var req struct {
		RetentionDays *int `json:"retention_days"`
		DryRun        bool `json:"dry_run"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	opts := cleanup.OptionsFromConfig(h.cleanupCfg)
	opts.DryRun = req.DryRun
	if req.RetentionDays != nil {
		if *req.RetentionDays <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "retention_days must be positive", "field": "retention_days"})
			return
		}
		opts.RetentionDays = *req.RetentionDays
	}

	result, err := h.cleaner.PruneDeleteLogs(c.Request.Context(), opts)
	var tooMany *cleanup.LimitError
	if errors.As(err, &tooMany) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Reindex rebuilds the search indexes from the database
func (h *AdminHandler) Reindex(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Minute)
	defer cancel()

	properties, err := h.db.ListProperties(ctx, database.PropertyFilter{})
	if err != nil {
		respondError(c, err)
		return
	}
	contacts, err := h.db.ListContacts(ctx, "", "")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.search.ReindexAll(properties, contacts); err != nil {
		if errors.Is(err, search.ErrDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"properties": len(properties),
		"contacts":   len(contacts),
	})
}
