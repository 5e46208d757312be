package handlers

import (
	"errors"
	"net/http"

	"library-system/internal/services"
	"library-system/internal/status"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type CirculationHandler struct {
	app                *pocketbase.PocketBase
	circulationService *services.CirculationService
}

func NewCirculationHandler(app *pocketbase.PocketBase, circulationService *services.CirculationService) *CirculationHandler {
	return &CirculationHandler{
		app:                app,
		circulationService: circulationService,
	}
}

// BorrowBook - Lend a book to a patron
func (h *CirculationHandler) BorrowBook(e *core.RequestEvent) error {
	var req struct {
		PatronID string `json:"patron_id"`
		BookID   string `json:"book_id"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	record, err := h.circulationService.BorrowBook(e.Request.Context(), req.PatronID, req.BookID)
	if err != nil {
		switch {
		case errors.Is(err, status.ErrBookNotFound):
			return apis.NewNotFoundError("Book not found", nil)
		case errors.Is(err, status.ErrInvalidPatronID),
			errors.Is(err, status.ErrNoCopies),
			errors.Is(err, status.ErrBorrowLimit):
			return apis.NewBadRequestError(err.Error(), nil)
		default:
			return apis.NewBadRequestError("Failed to borrow book", err)
		}
	}

	return e.JSON(http.StatusCreated, record)
}

// ReturnBook - Accept a returned book and quote any late fee
func (h *CirculationHandler) ReturnBook(e *core.RequestEvent) error {
	var req struct {
		PatronID string `json:"patron_id"`
		BookID   string `json:"book_id"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	quote, err := h.circulationService.ReturnBook(e.Request.Context(), req.PatronID, req.BookID)
	if err != nil {
		switch {
		case errors.Is(err, status.ErrInvalidPatronID), errors.Is(err, status.ErrNotBorrowed):
			return apis.NewBadRequestError(err.Error(), nil)
		default:
			return apis.NewBadRequestError("Failed to return book", err)
		}
	}

	return e.JSON(http.StatusOK, map[string]any{
		"message":      "Book returned",
		"late_fee":     quote.FeeAmount.StringFixed(2),
		"days_overdue": quote.DaysOverdue,
		"fee_status":   quote.Status,
	})
}

// GetLateFee - Quote the late fee owed for a patron/book pair
func (h *CirculationHandler) GetLateFee(e *core.RequestEvent) error {
	patronID := e.Request.PathValue("patronId")
	bookID := e.Request.PathValue("bookId")

	quote, err := h.circulationService.CalculateLateFee(e.Request.Context(), patronID, bookID)
	if err != nil {
		return apis.NewBadRequestError("Failed to calculate late fee", err)
	}

	return e.JSON(http.StatusOK, quote)
}

// GetPatronStatus - Report a patron's open borrows, owed fees and history
func (h *CirculationHandler) GetPatronStatus(e *core.RequestEvent) error {
	patronID := e.Request.PathValue("patronId")

	report, err := h.circulationService.PatronStatusReport(e.Request.Context(), patronID)
	if err != nil {
		if errors.Is(err, status.ErrInvalidPatronID) {
			return apis.NewBadRequestError(err.Error(), nil)
		}
		return apis.NewBadRequestError("Failed to build patron report", err)
	}

	return e.JSON(http.StatusOK, report)
}
