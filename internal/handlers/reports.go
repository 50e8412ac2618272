package handlers

import (
	"fmt"
	"net/http"
	"property-backoffice/internal/database"
	"property-backoffice/internal/reports"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler serves the yearly rent and expense report
type ReportHandler struct {
	source reports.Source
}

func NewReportHandler(db *database.GormDB) *ReportHandler {
	return &ReportHandler{source: reports.DBSource{DB: db}}
}

// Get builds the report for ?start_year..?end_year as JSON or, with
// ?format=xlsx, as a workbook download.
func (h *ReportHandler) Get(c *gin.Context) {
	thisYear := time.Now().Year()
	startYear, err1 := strconv.Atoi(c.DefaultQuery("start_year", strconv.Itoa(thisYear)))
	endYear, err2 := strconv.Atoi(c.DefaultQuery("end_year", strconv.Itoa(startYear)))
	if err1 != nil || err2 != nil {
		badRequest(c, "start_year and end_year must be numbers")
		return
	}
	if err := reports.ValidateRange(startYear, endYear); err != nil {
		badRequest(c, err.Error())
		return
	}

	report, err := reports.Build(c.Request.Context(), h.source, startYear, endYear)
	if err != nil {
		respondError(c, err)
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "json":
		c.JSON(http.StatusOK, gin.H{
			"report": report,
			"totals": report.Totals(),
		})
	case "xlsx":
		fileName := fmt.Sprintf("property_report_%d_%d.xlsx", startYear, endYear)
		c.Header("Content-Type", xlsxContentType)
		c.Header("Content-Disposition", "attachment; filename="+fileName)
		if err := report.WriteXLSX(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write workbook", "details": err.Error()})
		}
	default:
		badRequest(c, "format must be json or xlsx")
	}
}
