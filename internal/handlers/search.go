package handlers

import (
	"errors"
	"net/http"
	"property-backoffice/internal/search"
	"strconv"

	"github.com/gin-gonic/gin"
)

// SearchHandler serves full-text search
type SearchHandler struct {
	engine search.Engine
}

func NewSearchHandler(engine search.Engine) *SearchHandler {
	return &SearchHandler{engine: engine}
}

// Search queries ?index (properties or contacts) for ?q
func (h *SearchHandler) Search(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
	offset, _ := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 64)

	result, err := h.engine.Search(search.Request{
		Index:       c.DefaultQuery("index", search.IndexProperties),
		Query:       c.Query("q"),
		Status:      c.Query("status"),
		State:       c.Query("state"),
		ContactType: c.Query("type"),
		Limit:       limit,
		Offset:      offset,
	})
	switch {
	case errors.Is(err, search.ErrDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	case errors.Is(err, search.ErrUnknownIndex):
		badRequest(c, err.Error())
		return
	case err != nil:
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
