package handlers

import (
	"net/http"

	"library-system/internal/services"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

type PaymentHandler struct {
	app            *pocketbase.PocketBase
	paymentService *services.PaymentService
}

func NewPaymentHandler(app *pocketbase.PocketBase, paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		app:            app,
		paymentService: paymentService,
	}
}

// PayLateFees - Charge a patron's outstanding late fees for one book
func (h *PaymentHandler) PayLateFees(e *core.RequestEvent) error {
	var req struct {
		PatronID string `json:"patron_id"`
		BookID   string `json:"book_id"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	result := h.paymentService.PayLateFees(e.Request.Context(), req.PatronID, req.BookID)

	code := http.StatusOK
	if !result.Success {
		code = http.StatusUnprocessableEntity
	}
	return e.JSON(code, result)
}

// RefundLateFeePayment - Refund a prior late-fee payment
func (h *PaymentHandler) RefundLateFeePayment(e *core.RequestEvent) error {
	var req struct {
		TransactionID string `json:"transaction_id"`
		Amount        string `json:"amount"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return apis.NewBadRequestError("Invalid refund amount", err)
	}

	result := h.paymentService.RefundLateFeePayment(e.Request.Context(), req.TransactionID, amount)

	code := http.StatusOK
	if !result.Success {
		code = http.StatusUnprocessableEntity
	}
	return e.JSON(code, result)
}

// GetPaymentDetails - Get the recorded payment for a transaction
func (h *PaymentHandler) GetPaymentDetails(e *core.RequestEvent) error {
	transactionID := e.Request.PathValue("transactionId")
	if transactionID == "" {
		return apis.NewBadRequestError("Transaction ID is required", nil)
	}

	payment, err := h.paymentService.GetPayment(e.Request.Context(), transactionID)
	if err != nil {
		return apis.NewBadRequestError("Failed to fetch payment", err)
	}
	if payment == nil {
		return apis.NewNotFoundError("Payment not found", nil)
	}

	return e.JSON(http.StatusOK, payment)
}

// SimulatePayment - Drive the gateway directly (for testing)
func (h *PaymentHandler) SimulatePayment(e *core.RequestEvent) error {
	var req struct {
		PatronID    string `json:"patron_id"`
		Amount      string `json:"amount"`
		Description string `json:"description"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return apis.NewBadRequestError("Invalid amount", err)
	}

	result, err := h.paymentService.SimulateGatewayPayment(e.Request.Context(), req.PatronID, amount, req.Description)
	if err != nil {
		return apis.NewBadRequestError("Gateway call failed", err)
	}

	return e.JSON(http.StatusOK, result)
}

// VerifyPaymentStatus - Ask the gateway for a transaction's status
func (h *PaymentHandler) VerifyPaymentStatus(e *core.RequestEvent) error {
	transactionID := e.Request.PathValue("transactionId")
	if transactionID == "" {
		return apis.NewBadRequestError("Transaction ID is required", nil)
	}

	paymentStatus, err := h.paymentService.VerifyPaymentStatus(e.Request.Context(), transactionID)
	if err != nil {
		return apis.NewBadRequestError("Failed to verify payment", err)
	}

	return e.JSON(http.StatusOK, paymentStatus)
}
