package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"fleet-billing-service/internal/repositories"
)

type LedgerHandler struct {
	invoiceRepo  repositories.InvoiceRepository
	contractRepo repositories.ContractRepository
	clientRepo   repositories.ClientRepository
	logger       *zap.Logger
}

func NewLedgerHandler(invoiceRepo repositories.InvoiceRepository, contractRepo repositories.ContractRepository, clientRepo repositories.ClientRepository, logger *zap.Logger) *LedgerHandler {
	return &LedgerHandler{invoiceRepo: invoiceRepo, contractRepo: contractRepo, clientRepo: clientRepo, logger: logger}
}

func (h *LedgerHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	docID := vars["doc_id"]

	if docID == "" {
		respondWithError(w, http.StatusBadRequest, "Invoice doc_id is required")
		return
	}

	invoice, err := h.invoiceRepo.GetByDocID(docID)
	if err == repositories.ErrInvoiceNotFound {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, invoice)
}

func (h *LedgerHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	var err error
	var invoices interface{}
	if status != "" {
		invoices, err = h.invoiceRepo.ListByStatus(status)
	} else {
		invoices, err = h.invoiceRepo.ListOpen()
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, invoices)
}

func (h *LedgerHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	clientID := vars["client_id"]

	if clientID == "" {
		respondWithError(w, http.StatusBadRequest, "Client client_id is required")
		return
	}

	client, err := h.clientRepo.GetByClientID(clientID)
	if err == repositories.ErrClientNotFound {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, client)
}

func (h *LedgerHandler) ListContracts(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.contractRepo.ListAll()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, contracts)
}
