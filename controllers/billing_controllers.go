package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"resto-pos/kds"
	"resto-pos/services"
	"resto-pos/utils"
)

type BillingController struct {
	DB      *gorm.DB
	Billing *services.BillingService
}

func NewBillingController(db *gorm.DB) *BillingController {
	return &BillingController{
		DB:      db,
		Billing: services.NewBillingService(db),
	}
}

// PendingBills -> the cashier work queue: active sessions that asked
// for their bill and are not settled yet.
func (bc *BillingController) PendingBills(c *gin.Context) {
	bills, err := bc.Billing.PendingBills()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Pending bills", bills)
}

// CreateInvoice freezes the session totals into an immutable invoice.
// Fails when one already exists for the session.
func (bc *BillingController) CreateInvoice(c *gin.Context) {
	var req struct {
		SessionID uint `json:"session_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == 0 {
		utils.RespondError(c, http.StatusBadRequest, services.ErrMissingSession)
		return
	}

	invoice, err := bc.Billing.CreateInvoice(req.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvoiceExists):
			utils.RespondError(c, http.StatusConflict, err)
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.RespondError(c, http.StatusNotFound, err)
		default:
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return
	}

	kds.BroadcastInvoiceEvent(kds.EventInvoiceCreate, invoice)
	utils.InfoLogger.Printf("Invoice %s created for session %d (total %s)", invoice.Number, invoice.SessionID, invoice.Total)
	utils.RespondJSON(c, http.StatusCreated, "Invoice created", invoice)
}

// MarkPaid -> one-way paid transition, rejected when already paid.
func (bc *BillingController) MarkPaid(c *gin.Context) {
	id, err := parseUintParam(c, "invoice_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	invoice, err := bc.Billing.MarkPaid(id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadyPaid):
			utils.RespondError(c, http.StatusConflict, err)
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.RespondError(c, http.StatusNotFound, err)
		default:
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return
	}

	kds.BroadcastInvoiceEvent(kds.EventInvoicePaid, invoice)
	utils.InfoLogger.Printf("Invoice %s marked paid", invoice.Number)
	utils.RespondJSON(c, http.StatusOK, "Invoice marked as paid", invoice)
}

// InvoiceDetail -> invoice plus all session line items and the distinct
// set of staff who created orders, sorted.
func (bc *BillingController) InvoiceDetail(c *gin.Context) {
	id, err := parseUintParam(c, "invoice_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	detail, err := bc.Billing.InvoiceDetailByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, err)
		} else {
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Invoice detail", detail)
}
