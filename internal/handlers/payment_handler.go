package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"fleet-billing-service/internal/models"
	"fleet-billing-service/internal/services"
)

type PaymentHandler struct {
	ledgerService *services.LedgerService
	logger        *zap.Logger
}

func NewPaymentHandler(ledgerService *services.LedgerService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{ledgerService: ledgerService, logger: logger}
}

// ApplyPayment applies an incoming payment against the ledger. Failures are
// surfaced synchronously: a non-2xx response means the ledger was not (or
// only partially) updated and the caller must not silently assume success.
func (h *PaymentHandler) ApplyPayment(w http.ResponseWriter, r *http.Request) {
	var input services.PaymentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if input.PaymentDate != "" {
		if _, err := time.Parse(models.DateLayout, input.PaymentDate); err != nil {
			h.logger.Warn("payment date unparseable, due date will not roll",
				zap.String("payment_id", input.PaymentID),
				zap.String("payment_date", input.PaymentDate))
		}
	}

	result, err := h.ledgerService.ApplyPayment(input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPaymentIDRequired), errors.Is(err, services.ErrInvalidAmount):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrDuplicatePayment):
			respondWithError(w, http.StatusConflict, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
