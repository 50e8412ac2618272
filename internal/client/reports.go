package client

import (
	"context"
	"net/http"
	"net/url"
	"property-backoffice/internal/models"
	"property-backoffice/internal/reports"
	"strconv"
)

// ReportSource lets reports.Build aggregate over the REST API, the way the
// front end totals a portfolio without a server-side report.
type ReportSource struct {
	Client *Client
}

var _ reports.Source = ReportSource{}

func (s ReportSource) ListAllProperties(ctx context.Context) ([]models.Property, error) {
	return s.Client.ListProperties(ctx, PropertyQuery{})
}

func (s ReportSource) RentLogsForYear(ctx context.Context, propertyID uint, year int) ([]models.RentLog, error) {
	return s.Client.ListRentLogs(ctx, propertyID, &year)
}

func (s ReportSource) PaymentLogsForYear(ctx context.Context, propertyID uint, year int) ([]models.PaymentLog, error) {
	return s.Client.ListPaymentLogs(ctx, propertyID, &year)
}

func (s ReportSource) TransactionsFor(ctx context.Context, propertyID uint) ([]models.Transaction, error) {
	return s.Client.ListTransactions(ctx, propertyID)
}

func reportQuery(startYear, endYear int, format string) url.Values {
	return url.Values{
		"start_year": {strconv.Itoa(startYear)},
		"end_year":   {strconv.Itoa(endYear)},
		"format":     {format},
	}
}

// Report fetches the server-built report
func (c *Client) Report(ctx context.Context, startYear, endYear int) (*reports.Report, error) {
	var body struct {
		Report reports.Report `json:"report"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/api/reports", reportQuery(startYear, endYear, "json"), nil, &body); err != nil {
		return nil, err
	}
	return &body.Report, nil
}

// DownloadReport fetches the report as an xlsx workbook
func (c *Client) DownloadReport(ctx context.Context, startYear, endYear int) ([]byte, error) {
	raw, _, err := c.send(ctx, http.MethodGet, "/api/reports", reportQuery(startYear, endYear, "xlsx"), nil)
	if err != nil {
		return nil, err
	}
	return raw, nil
}
