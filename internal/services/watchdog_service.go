package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fleet-billing-service/internal/dispatch"
	"fleet-billing-service/internal/identity"
	"fleet-billing-service/internal/models"
	"fleet-billing-service/internal/repositories"
)

// WatchdogSummary aggregates one complete pass. Partial success is the
// expected common case: per-entity failures are collected here rather than
// aborting the scan.
type WatchdogSummary struct {
	RunID                string   `json:"run_id"`
	InvoicesFlagged      int      `json:"invoices_flagged"`
	ContractsExpired     int      `json:"contracts_expired"`
	NotificationsEmitted int      `json:"notifications_emitted"`
	Failures             []string `json:"failures"`
	InvoicesScanned      int      `json:"invoices_scanned"`
	ContractsScanned     int      `json:"contracts_scanned"`
	SkippedUnparseable   int      `json:"skipped_unparseable"`
	SuppressedDuplicates int      `json:"suppressed_duplicates"`
}

type WatchdogService struct {
	logger           *zap.Logger
	invoiceRepo      repositories.InvoiceRepository
	contractRepo     repositories.ContractRepository
	clientRepo       repositories.ClientRepository
	notificationRepo repositories.NotificationRepository
	mailer           dispatch.Mailer
	emailBuilder     dispatch.EmailBuilder
}

func NewWatchdogService(
	logger *zap.Logger,
	invoiceRepo repositories.InvoiceRepository,
	contractRepo repositories.ContractRepository,
	clientRepo repositories.ClientRepository,
	notificationRepo repositories.NotificationRepository,
	mailer dispatch.Mailer,
	emailBuilder dispatch.EmailBuilder,
) *WatchdogService {
	return &WatchdogService{
		logger:           logger,
		invoiceRepo:      invoiceRepo,
		contractRepo:     contractRepo,
		clientRepo:       clientRepo,
		notificationRepo: notificationRepo,
		mailer:           mailer,
		emailBuilder:     emailBuilder,
	}
}

// RunPass executes one stateless sweep over open invoices and active
// contracts. Correctness across repeated runs rests entirely on the
// deterministic trigger ids in the dedup ledger; there is no scan cursor.
func (s *WatchdogService) RunPass(ctx context.Context, now time.Time) (*WatchdogSummary, error) {
	summary := &WatchdogSummary{
		RunID:    uuid.NewString(),
		Failures: []string{},
	}

	invoices, err := s.invoiceRepo.ListOpen()
	if err != nil {
		return nil, fmt.Errorf("failed to load open invoices: %w", err)
	}
	contracts, err := s.contractRepo.ListActive()
	if err != nil {
		return nil, fmt.Errorf("failed to load active contracts: %w", err)
	}
	clients, err := s.clientRepo.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load clients: %w", err)
	}
	triggers, err := s.notificationRepo.ListTriggerIDs()
	if err != nil {
		return nil, fmt.Errorf("failed to load dedup ledger: %w", err)
	}

	clientIndex := make(map[string]*models.Client, len(clients))
	for _, client := range clients {
		clientIndex[identity.Normalize(client.ClientID)] = client
	}

	s.scanInvoices(ctx, invoices, clientIndex, triggers, now, summary)
	s.scanContracts(ctx, contracts, clientIndex, triggers, now, summary)

	s.logger.Info("watchdog pass complete",
		zap.String("run_id", summary.RunID),
		zap.Int("invoices_flagged", summary.InvoicesFlagged),
		zap.Int("contracts_expired", summary.ContractsExpired),
		zap.Int("notifications_emitted", summary.NotificationsEmitted),
		zap.Int("failures", len(summary.Failures)),
	)

	return summary, nil
}

func (s *WatchdogService) scanInvoices(
	ctx context.Context,
	invoices []*models.Invoice,
	clientIndex map[string]*models.Client,
	triggers map[string]bool,
	now time.Time,
	summary *WatchdogSummary,
) {
	for _, invoice := range invoices {
		if invoice.DocType != models.DocTypeInvoice || invoice.Status == models.InvoiceStatusPaid {
			continue
		}
		summary.InvoicesScanned++

		due, ok := parseDate(invoice.DueDate)
		if !ok {
			summary.SkippedUnparseable++
			continue
		}
		diffDays := daysUntil(due, now)
		if diffDays >= 0 {
			continue
		}

		summary.InvoicesFlagged++

		triggerID := models.TriggerOverduePrefix + invoice.DocID
		if triggers[triggerID] {
			// Already alerted; overdue alerts are one-shot signals,
			// not recurring reminders.
			summary.SuppressedDuplicates++
			continue
		}

		client := clientIndex[identity.Normalize(invoice.ClientID)]
		assignee := ""
		if client != nil {
			assignee = client.AgentEmail
		}

		notification := &models.Notification{
			TriggerID: triggerID,
			Priority:  models.PriorityCritical,
			Message: fmt.Sprintf("Invoice %s is overdue by %d day(s); balance due %s",
				invoice.DocID, -diffDays, invoice.BalanceDue.StringFixed(2)),
			EntityID: invoice.DocID,
			Assignee: assignee,
		}
		if err := s.notificationRepo.Create(notification); err != nil {
			summary.Failures = append(summary.Failures,
				fmt.Sprintf("invoice %s: failed to record overdue notification: %v", invoice.DocID, err))
			continue
		}
		triggers[triggerID] = true
		summary.NotificationsEmitted++

		// Persist first, dispatch second. A missing client or blank email
		// resolves to "no email sent" rather than an error.
		if client == nil || client.Email == "" {
			s.logger.Warn("overdue alert recorded without email, client unresolvable",
				zap.String("invoice_id", invoice.DocID),
				zap.String("client_id", invoice.ClientID))
			continue
		}
		email := s.emailBuilder.OverdueNotice(client, invoice, -diffDays)
		if err := s.mailer.Send(ctx, email); err != nil {
			summary.Failures = append(summary.Failures,
				fmt.Sprintf("invoice %s: failed to dispatch overdue email: %v", invoice.DocID, err))
		}
	}
}

func (s *WatchdogService) scanContracts(
	ctx context.Context,
	contracts []*models.Contract,
	clientIndex map[string]*models.Client,
	triggers map[string]bool,
	now time.Time,
	summary *WatchdogSummary,
) {
	for _, contract := range contracts {
		if contract.Status != models.ContractStatusActive {
			continue
		}
		summary.ContractsScanned++

		expiry, ok := parseDate(contract.ExpiryDate)
		if !ok {
			summary.SkippedUnparseable++
			continue
		}
		if daysUntil(expiry, now) > 0 {
			continue
		}

		// The status flip is idempotent (Expired stays Expired), so it is
		// not gated by the dedup ledger and happens whether or not the
		// client can be emailed.
		if err := s.contractRepo.UpdateStatus(contract.ContractID, models.ContractStatusExpired); err != nil {
			summary.Failures = append(summary.Failures,
				fmt.Sprintf("contract %s: failed to mark expired: %v", contract.ContractID, err))
		} else {
			summary.ContractsExpired++
		}

		// The notification/email is a distinct event per expiry date: a
		// renewal with a new expiry date must alert again.
		triggerID := models.TriggerExpiryMailPrefix + contract.ContractID + "-" + contract.ExpiryDate
		if triggers[triggerID] {
			summary.SuppressedDuplicates++
			continue
		}

		client := clientIndex[identity.Normalize(contract.ClientID)]
		if client == nil || client.Email == "" {
			s.logger.Warn("contract expired without notification, client email unresolvable",
				zap.String("contract_id", contract.ContractID),
				zap.String("client_id", contract.ClientID))
			continue
		}

		notification := &models.Notification{
			TriggerID: triggerID,
			Priority:  models.PriorityHigh,
			Message: fmt.Sprintf("Contract %s for %s expired on %s",
				contract.ContractID, client.Name, contract.ExpiryDate),
			EntityID: contract.ContractID,
			Assignee: client.AgentEmail,
		}
		if err := s.notificationRepo.Create(notification); err != nil {
			summary.Failures = append(summary.Failures,
				fmt.Sprintf("contract %s: failed to record expiry notification: %v", contract.ContractID, err))
			continue
		}
		triggers[triggerID] = true
		summary.NotificationsEmitted++

		email := s.emailBuilder.ExpiryNotice(client, contract)
		if err := s.mailer.Send(ctx, email); err != nil {
			summary.Failures = append(summary.Failures,
				fmt.Sprintf("contract %s: failed to dispatch expiry email: %v", contract.ContractID, err))
		}
	}
}
