package handlers

import (
	"net/http"
	"property-backoffice/internal/database"
	"property-backoffice/internal/models"
	"strings"

	"github.com/gin-gonic/gin"
)

// LedgerHandler serves rent logs, payment logs and transactions
type LedgerHandler struct {
	db *database.GormDB
}

// NewLedgerHandler creates a ledger handler
func NewLedgerHandler(db *database.GormDB) *LedgerHandler {
	return &LedgerHandler{db: db}
}

type rentLogRequest struct {
	PropertyID  uint     `json:"property_id"`
	Month       int      `json:"month"`
	Year        int      `json:"year"`
	RentAmount  *float64 `json:"rent_amount"`
	CheckNumber *string  `json:"check_number"`
	Notes       *string  `json:"notes"`
	DepositDate *Date    `json:"deposit_date"`
}

type paymentLogRequest struct {
	PropertyID    uint     `json:"property_id"`
	Month         int      `json:"month"`
	Year          int      `json:"year"`
	PaymentAmount *float64 `json:"payment_amount"`
	CheckNumber   *string  `json:"check_number"`
	Notes         *string  `json:"notes"`
	PaymentDate   *Date    `json:"payment_date"`
}

type transactionRequest struct {
	PropertyID        uint     `json:"property_id"`
	TransactionAmount *float64 `json:"transaction_amount"`
	TransactionDate   *Date    `json:"transaction_date"`
	TransactionType   string   `json:"transaction_type"`
	Notes             string   `json:"notes"`

	// short names accepted when the long ones are absent
	Amount *float64 `json:"amount"`
	Date   *Date    `json:"date"`
}

func upsertStatus(created bool) int {
	if created {
		return http.StatusCreated
	}
	return http.StatusOK
}

func (h *LedgerHandler) ListRentLogs(c *gin.Context) {
	propertyID, ok := requirePropertyID(c)
	if !ok {
		return
	}
	year, ok := optionalYear(c)
	if !ok {
		return
	}
	logs, err := h.db.ListRentLogs(c.Request.Context(), propertyID, year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// UpsertRentLog creates or merges the rent log for (property_id, month, year).
// 201 means a row was created, 200 that an existing one was updated.
func (h *LedgerHandler) UpsertRentLog(c *gin.Context) {
	var req rentLogRequest
	if !bindJSON(c, &req) {
		return
	}
	log, created, err := h.db.UpsertRentLog(c.Request.Context(), database.RentLogInput{
		LedgerKey:   database.LedgerKey{PropertyID: req.PropertyID, Month: req.Month, Year: req.Year},
		RentAmount:  req.RentAmount,
		CheckNumber: trimmed(req.CheckNumber),
		Notes:       req.Notes,
		DepositDate: req.DepositDate.Ptr(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(upsertStatus(created), log)
}

func (h *LedgerHandler) ListPaymentLogs(c *gin.Context) {
	propertyID, ok := requirePropertyID(c)
	if !ok {
		return
	}
	year, ok := optionalYear(c)
	if !ok {
		return
	}
	logs, err := h.db.ListPaymentLogs(c.Request.Context(), propertyID, year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (h *LedgerHandler) UpsertPaymentLog(c *gin.Context) {
	var req paymentLogRequest
	if !bindJSON(c, &req) {
		return
	}
	log, created, err := h.db.UpsertPaymentLog(c.Request.Context(), database.PaymentLogInput{
		LedgerKey:     database.LedgerKey{PropertyID: req.PropertyID, Month: req.Month, Year: req.Year},
		PaymentAmount: req.PaymentAmount,
		CheckNumber:   trimmed(req.CheckNumber),
		Notes:         req.Notes,
		PaymentDate:   req.PaymentDate.Ptr(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(upsertStatus(created), log)
}

// ListTransactions returns ?property_id's transactions, most recent first
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	propertyID, ok := requirePropertyID(c)
	if !ok {
		return
	}
	transactions, err := h.db.ListTransactions(c.Request.Context(), propertyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactions)
}

func (h *LedgerHandler) CreateTransaction(c *gin.Context) {
	var req transactionRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.PropertyID == 0 {
		badRequest(c, "property_id is required")
		return
	}
	if req.TransactionAmount == nil {
		req.TransactionAmount = req.Amount
	}
	if req.TransactionDate == nil {
		req.TransactionDate = req.Date
	}
	if req.TransactionAmount == nil {
		badRequest(c, "transaction_amount is required")
		return
	}
	if req.TransactionDate == nil {
		badRequest(c, "transaction_date is required")
		return
	}

	transaction := &models.Transaction{
		PropertyID:        req.PropertyID,
		TransactionAmount: *req.TransactionAmount,
		TransactionDate:   *req.TransactionDate.Ptr(),
		TransactionType:   req.TransactionType,
		Notes:             req.Notes,
	}
	if err := h.db.CreateTransaction(c.Request.Context(), transaction); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, transaction)
}

func (h *LedgerHandler) DeleteTransaction(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.db.DeleteTransaction(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
