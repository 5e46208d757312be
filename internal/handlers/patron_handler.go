package handlers

import (
	"net/http"
	"strings"

	"library-system/internal/store"
	"library-system/models"
	"library-system/utils"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type PatronHandler struct {
	app         *pocketbase.PocketBase
	patronStore *store.PatronStore
	cardNoLen   int
}

func NewPatronHandler(app *pocketbase.PocketBase, patronStore *store.PatronStore, cardNoLen int) *PatronHandler {
	return &PatronHandler{
		app:         app,
		patronStore: patronStore,
		cardNoLen:   cardNoLen,
	}
}

// RegisterPatron - Register a patron and issue a library card number
func (h *PatronHandler) RegisterPatron(e *core.RequestEvent) error {
	var req struct {
		Name string `json:"name"`
		PIN  string `json:"pin"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return apis.NewBadRequestError("Name is required", nil)
	}
	if len(req.PIN) < 4 {
		return apis.NewBadRequestError("PIN must be at least 4 characters", nil)
	}

	pinHash, err := utils.HashPIN(req.PIN)
	if err != nil {
		return apis.NewBadRequestError("Failed to process PIN", err)
	}

	ctx := e.Request.Context()

	// Card numbers are random; retry on the rare collision.
	var cardNo string
	for attempt := 0; attempt < 5; attempt++ {
		candidate, err := utils.GenerateDigits(h.cardNoLen)
		if err != nil {
			return apis.NewBadRequestError("Failed to issue card number", err)
		}
		existing, err := h.patronStore.GetPatronByCardNo(ctx, candidate)
		if err != nil {
			return apis.NewBadRequestError("Failed to issue card number", err)
		}
		if existing == nil {
			cardNo = candidate
			break
		}
	}
	if cardNo == "" {
		return apis.NewBadRequestError("Failed to issue card number", nil)
	}

	patron, err := h.patronStore.InsertPatron(ctx, &models.Patron{
		CardNo:  cardNo,
		Name:    req.Name,
		PINHash: pinHash,
	})
	if err != nil {
		return apis.NewBadRequestError("Failed to register patron", err)
	}

	return e.JSON(http.StatusCreated, map[string]any{
		"id":      patron.ID,
		"card_no": patron.CardNo,
		"name":    patron.Name,
	})
}

// GetPatron - Look up a patron by card number
func (h *PatronHandler) GetPatron(e *core.RequestEvent) error {
	cardNo := e.Request.PathValue("cardNo")
	if cardNo == "" {
		return apis.NewBadRequestError("Card number is required", nil)
	}

	patron, err := h.patronStore.GetPatronByCardNo(e.Request.Context(), cardNo)
	if err != nil {
		return apis.NewBadRequestError("Failed to fetch patron", err)
	}
	if patron == nil {
		return apis.NewNotFoundError("Patron not found", nil)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"id":      patron.ID,
		"card_no": patron.CardNo,
		"name":    patron.Name,
	})
}
