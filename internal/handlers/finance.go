package handlers

import (
	"net/http"
	"property-backoffice/internal/database"
	"property-backoffice/internal/models"

	"github.com/gin-gonic/gin"
)

// FinanceHandler serves purchase and loan records
type FinanceHandler struct {
	db *database.GormDB
}

// NewFinanceHandler creates a finance handler
func NewFinanceHandler(db *database.GormDB) *FinanceHandler {
	return &FinanceHandler{db: db}
}

var purchaseColumns = map[string]fieldKind{
	"purchase_price": numberField,
	"financing_type": textField,
	"buyer":          textField,
	"seller":         textField,
	"closing_date":   dateField,
	"closing_costs":  numberField,
	"down_payment":   numberField,
	"notes":          textField,
}

var loanColumns = map[string]fieldKind{
	"loan_number":      textField,
	"lender":           textField,
	"loan_amount":      numberField,
	"interest_rate":    numberField,
	"loan_term_months": intField,
	"start_date":       dateField,
	"maturity_date":    dateField,
	"loan_status":      textField,
}

type purchaseRequest struct {
	PropertyID    uint     `json:"property_id"`
	PurchasePrice *float64 `json:"purchase_price"`
	FinancingType string   `json:"financing_type"`
	Buyer         string   `json:"buyer"`
	Seller        string   `json:"seller"`
	ClosingDate   *Date    `json:"closing_date"`
	ClosingCosts  *float64 `json:"closing_costs"`
	DownPayment   *float64 `json:"down_payment"`
	Notes         string   `json:"notes"`
}

type loanRequest struct {
	PropertyID     uint     `json:"property_id"`
	PurchaseID     *uint    `json:"purchase_id"`
	LoanNumber     string   `json:"loan_number"`
	Lender         string   `json:"lender"`
	LoanAmount     *float64 `json:"loan_amount"`
	InterestRate   *float64 `json:"interest_rate"`
	LoanTermMonths *int     `json:"loan_term_months"`
	StartDate      *Date    `json:"start_date"`
	MaturityDate   *Date    `json:"maturity_date"`
	LoanStatus     string   `json:"loan_status"`
}

// GetPurchase returns the purchase record of ?property_id
func (h *FinanceHandler) GetPurchase(c *gin.Context) {
	propertyID, ok := requirePropertyID(c)
	if !ok {
		return
	}
	purchase, err := h.db.GetPurchaseByProperty(c.Request.Context(), propertyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchase)
}

func (h *FinanceHandler) CreatePurchase(c *gin.Context) {
	var req purchaseRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.PropertyID == 0 {
		badRequest(c, "property_id is required")
		return
	}

	purchase := &models.PurchaseDetails{
		PropertyID:    req.PropertyID,
		PurchasePrice: req.PurchasePrice,
		FinancingType: req.FinancingType,
		Buyer:         req.Buyer,
		Seller:        req.Seller,
		ClosingDate:   req.ClosingDate.Ptr(),
		ClosingCosts:  req.ClosingCosts,
		DownPayment:   req.DownPayment,
		Notes:         req.Notes,
	}
	if err := h.db.CreatePurchase(c.Request.Context(), purchase); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

func (h *FinanceHandler) UpdatePurchase(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	fields, err := decodePatch(c, purchaseColumns)
	if err != nil {
		respondError(c, err)
		return
	}
	purchase, err := h.db.UpdatePurchase(c.Request.Context(), id, fields)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchase)
}

// GetLoan returns the earliest loan of ?property_id, 404 when there is none
func (h *FinanceHandler) GetLoan(c *gin.Context) {
	propertyID, ok := requirePropertyID(c)
	if !ok {
		return
	}
	loan, err := h.db.GetEarliestLoan(c.Request.Context(), propertyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, loan)
}

func (h *FinanceHandler) CreateLoan(c *gin.Context) {
	var req loanRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.PropertyID == 0 {
		badRequest(c, "property_id is required")
		return
	}

	loan := &models.LoanDetails{
		PropertyID:     req.PropertyID,
		PurchaseID:     req.PurchaseID,
		LoanNumber:     req.LoanNumber,
		Lender:         req.Lender,
		LoanAmount:     req.LoanAmount,
		InterestRate:   req.InterestRate,
		LoanTermMonths: req.LoanTermMonths,
		StartDate:      req.StartDate.Ptr(),
		MaturityDate:   req.MaturityDate.Ptr(),
		LoanStatus:     req.LoanStatus,
	}
	if err := h.db.CreateLoan(c.Request.Context(), loan); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, loan)
}

func (h *FinanceHandler) UpdateLoan(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	fields, err := decodePatch(c, loanColumns)
	if err != nil {
		respondError(c, err)
		return
	}
	loan, err := h.db.UpdateLoan(c.Request.Context(), id, fields)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, loan)
}
