package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"fleet-billing-service/internal/config"
	"fleet-billing-service/internal/dispatch"
	"fleet-billing-service/internal/repositories"
	"fleet-billing-service/internal/services"
)

func SetupRouter(db *sql.DB, cfg *config.Config, logger *zap.Logger, mailer dispatch.Mailer) *mux.Router {
	clientRepo := repositories.NewClientRepository(db)
	contractRepo := repositories.NewContractRepository(db)
	invoiceRepo := repositories.NewInvoiceRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)

	emailBuilder := dispatch.EmailBuilder{
		OpsMailbox:  cfg.Mail.OpsMailbox,
		CompanyName: cfg.Mail.CompanyName,
	}

	ledgerService := services.NewLedgerService(logger, invoiceRepo, paymentRepo, contractRepo, notificationRepo)
	watchdogService := services.NewWatchdogService(logger, invoiceRepo, contractRepo, clientRepo, notificationRepo, mailer, emailBuilder)

	paymentHandler := NewPaymentHandler(ledgerService, logger)
	watchdogHandler := NewWatchdogHandler(watchdogService, logger)
	ledgerHandler := NewLedgerHandler(invoiceRepo, contractRepo, clientRepo, logger)

	router := mux.NewRouter()

	api := router.PathPrefix("/api/v1").Subrouter()

	api.Use(requestLoggingMiddleware(logger))
	api.Use(jsonContentTypeMiddleware)

	api.HandleFunc("/payments", paymentHandler.ApplyPayment).Methods(http.MethodPost)
	api.HandleFunc("/watchdog/run", watchdogHandler.RunPass).Methods(http.MethodPost)
	api.HandleFunc("/invoices", ledgerHandler.ListInvoices).Methods(http.MethodGet)
	api.HandleFunc("/invoices/{doc_id}", ledgerHandler.GetInvoice).Methods(http.MethodGet)
	api.HandleFunc("/contracts", ledgerHandler.ListContracts).Methods(http.MethodGet)
	api.HandleFunc("/clients/{client_id}", ledgerHandler.GetClient).Methods(http.MethodGet)

	router.HandleFunc("/health", healthCheckHandler).Methods(http.MethodGet)

	return router
}

func requestLoggingMiddleware(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.NewString()
			w.Header().Set("X-Request-ID", requestID)
			logger.Info("request",
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote", r.RemoteAddr),
			)
			next.ServeHTTP(w, r)
		})
	}
}

func jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Error marshaling JSON response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
