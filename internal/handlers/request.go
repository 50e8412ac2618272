package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"property-backoffice/internal/database"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// respondError maps store errors onto the API's status codes
func respondError(c *gin.Context, err error) {
	var verr *database.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case errors.Is(err, database.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict", "details": err.Error()})
	default:
		log.Printf("[API] %s %s (request %s): %v", c.Request.Method, c.FullPath(), c.GetString(requestIDKey), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "details": err.Error()})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// parseID reads a positive integer path parameter
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, fmt.Sprintf("invalid %s", name))
		return 0, false
	}
	return uint(id), true
}

// requirePropertyID reads the mandatory property_id query parameter
func requirePropertyID(c *gin.Context) (uint, bool) {
	raw := c.Query("property_id")
	if raw == "" {
		badRequest(c, "property_id is required")
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid property_id")
		return 0, false
	}
	return uint(id), true
}

// optionalYear reads the year query parameter when present
func optionalYear(c *gin.Context) (*int, bool) {
	raw := c.Query("year")
	if raw == "" {
		return nil, true
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, "invalid year")
		return nil, false
	}
	return &year, true
}

// bindJSON decodes the request body, answering 400 itself on failure
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// Date accepts "2006-01-02" or RFC 3339 and is stored at midnight UTC for the former
type Date time.Time

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string")
	}
	t, err := parseDate(s)
	if err != nil {
		return err
	}
	*d = Date(t)
	return nil
}

// Ptr returns the date as a *time.Time, nil for a nil receiver
func (d *Date) Ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := time.Time(*d)
	return &t
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
}

type fieldKind int

const (
	textField fieldKind = iota
	numberField
	intField
	dateField
)

// decodePatch reads a partial update body and keeps only the allowed columns,
// converted to their storage types. Unknown keys such as id or created_at are
// ignored so clients may send back whole rows.
func decodePatch(c *gin.Context, allowed map[string]fieldKind) (map[string]interface{}, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}
	var raw map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, &database.ValidationError{Field: "body", Message: "must be a JSON object"}
	}

	fields := make(map[string]interface{}, len(raw))
	for key, value := range raw {
		kind, ok := allowed[key]
		if !ok {
			continue
		}
		converted, err := convertField(kind, value)
		if err != nil {
			return nil, &database.ValidationError{Field: key, Message: err.Error()}
		}
		fields[key] = converted
	}
	return fields, nil
}

func convertField(kind fieldKind, value interface{}) (interface{}, error) {
	if value == nil {
		if kind == textField {
			return "", nil
		}
		return nil, nil
	}

	switch kind {
	case textField:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("must be a string")
		}
		return strings.TrimSpace(s), nil
	case numberField, intField:
		var f float64
		switch v := value.(type) {
		case json.Number:
			parsed, err := v.Float64()
			if err != nil {
				return nil, fmt.Errorf("must be a number")
			}
			f = parsed
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, fmt.Errorf("must be a number")
			}
			f = parsed
		default:
			return nil, fmt.Errorf("must be a number")
		}
		if kind == intField {
			if f != math.Trunc(f) {
				return nil, fmt.Errorf("must be a whole number")
			}
			return int(f), nil
		}
		return f, nil
	case dateField:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("must be a date string")
		}
		if strings.TrimSpace(s) == "" {
			return nil, nil
		}
		return parseDate(s)
	}
	return nil, fmt.Errorf("unsupported field")
}
