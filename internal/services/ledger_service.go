package services

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fleet-billing-service/internal/identity"
	"fleet-billing-service/internal/models"
	"fleet-billing-service/internal/repositories"
)

var (
	ErrPaymentIDRequired  = errors.New("payment id is required")
	ErrInvalidAmount      = errors.New("payment amount must be positive")
	ErrDuplicatePayment   = errors.New("payment has already been applied")
	ErrInvoiceWriteFailed = errors.New("invoice write failed")
)

var trailingDigits = regexp.MustCompile(`(\d+)$`)

// PaymentInput is the caller-supplied payment to apply against the ledger.
type PaymentInput struct {
	PaymentID     string          `json:"payment_id"`
	ClientID      string          `json:"client_id"`
	ContractID    string          `json:"contract_id"`
	InvoiceID     string          `json:"invoice_id"`
	PaymentDate   string          `json:"payment_date"`
	Amount        decimal.Decimal `json:"amount"`
	MonthsCovered int             `json:"months_covered"`
	UnitCount     int             `json:"unit_count"`
	NextDueDate   string          `json:"next_due_date"`
	Reference     string          `json:"reference"`
	Remarks       string          `json:"remarks"`
}

// PaymentApplication is the ledger state produced by applying one payment.
type PaymentApplication struct {
	Invoice        *models.Invoice      `json:"invoice"`
	Payment        *models.Payment      `json:"payment"`
	Notification   *models.Notification `json:"notification"`
	InvoiceCreated bool                 `json:"invoice_created"`
}

type LedgerService struct {
	logger           *zap.Logger
	invoiceRepo      repositories.InvoiceRepository
	paymentRepo      repositories.PaymentRepository
	contractRepo     repositories.ContractRepository
	notificationRepo repositories.NotificationRepository
	locks            *keyedMutex
	now              func() time.Time
}

func NewLedgerService(
	logger *zap.Logger,
	invoiceRepo repositories.InvoiceRepository,
	paymentRepo repositories.PaymentRepository,
	contractRepo repositories.ContractRepository,
	notificationRepo repositories.NotificationRepository,
) *LedgerService {
	return &LedgerService{
		logger:           logger,
		invoiceRepo:      invoiceRepo,
		paymentRepo:      paymentRepo,
		contractRepo:     contractRepo,
		notificationRepo: notificationRepo,
		locks:            newKeyedMutex(),
		now:              time.Now,
	}
}

// ApplyPayment applies one payment to the ledger: it backfills the payment
// reference and rolling due date, resolves or synthesizes the target
// invoice, recomputes balances, and persists invoice before payment so a
// failed invoice write leaves no orphaned payment behind.
//
// Re-applying the same payment id is rejected; a second application would
// double-count the invoice's paid amount.
func (s *LedgerService) ApplyPayment(input PaymentInput) (*PaymentApplication, error) {
	if identity.Normalize(input.PaymentID) == "" {
		return nil, ErrPaymentIDRequired
	}
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	months := input.MonthsCovered
	if months < 1 {
		months = 1
	}
	unitCount := input.UnitCount
	if unitCount < 1 {
		unitCount = 1
	}

	payment := &models.Payment{
		PaymentID:     input.PaymentID,
		ClientID:      input.ClientID,
		ContractID:    input.ContractID,
		InvoiceID:     input.InvoiceID,
		PaymentDate:   input.PaymentDate,
		Amount:        input.Amount,
		MonthsCovered: months,
		NextDueDate:   input.NextDueDate,
		Reference:     input.Reference,
		Remarks:       input.Remarks,
	}

	if payment.Reference == "" {
		payment.Reference = s.buildReference(payment.PaymentID)
	}

	// Rolling due date: payment date + covered months, unless the caller
	// supplied one explicitly or the payment date is unparseable.
	if payment.NextDueDate == "" {
		if paid, ok := parseDate(payment.PaymentDate); ok {
			payment.NextDueDate = addMonths(paid, months).Format(models.DateLayout)
		}
	}

	// Serialize on the payment id before anything else so two concurrent
	// applications of the same payment cannot both pass the existence
	// check, regardless of which invoice id (if any) each names.
	paymentKey := identity.Normalize(payment.PaymentID)
	releasePayment := s.locks.Lock(paymentKey)
	defer releasePayment()

	if existing, err := s.paymentRepo.GetByPaymentID(payment.PaymentID); err == nil && existing != nil {
		return nil, ErrDuplicatePayment
	} else if err != nil && err != repositories.ErrPaymentNotFound {
		return nil, fmt.Errorf("failed to check for existing payment: %w", err)
	}

	// Lock order is always payment id then invoice id, so holders of an
	// invoice lock never wait on a payment lock.
	if invoiceKey := identity.Normalize(payment.InvoiceID); invoiceKey != "" && invoiceKey != paymentKey {
		releaseInvoice := s.locks.Lock(invoiceKey)
		defer releaseInvoice()
	}

	var (
		invoice *models.Invoice
		created bool
		err     error
	)
	if identity.Normalize(payment.InvoiceID) != "" {
		invoice, err = s.invoiceRepo.GetByDocID(payment.InvoiceID)
		if err != nil && err != repositories.ErrInvoiceNotFound {
			return nil, fmt.Errorf("failed to look up invoice: %w", err)
		}
	}

	if invoice == nil {
		invoice, err = s.createAdhocInvoice(payment, unitCount)
		created = true
	} else {
		err = s.settleAgainstInvoice(invoice, payment)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvoiceWriteFailed, err)
	}

	if err := s.paymentRepo.Create(payment); err != nil {
		// The invoice write already landed. Surfacing the error without
		// rolling back is deliberate: retrying the whole operation would
		// double-count, so the caller must check for the payment record
		// before re-applying.
		return nil, fmt.Errorf("failed to persist payment %s after invoice update: %w", payment.PaymentID, err)
	}

	notification := s.emitPaymentReceived(payment, invoice)

	s.logger.Info("payment applied",
		zap.String("payment_id", payment.PaymentID),
		zap.String("invoice_id", invoice.DocID),
		zap.String("amount", payment.Amount.StringFixed(2)),
		zap.String("next_due_date", payment.NextDueDate),
		zap.Bool("invoice_created", created),
	)

	return &PaymentApplication{
		Invoice:        invoice,
		Payment:        payment,
		Notification:   notification,
		InvoiceCreated: created,
	}, nil
}

// buildReference synthesizes a human-traceable reference from the payment
// id's numeric suffix, falling back to the last 6 digits of the current
// unix timestamp when the id carries no digits.
func (s *LedgerService) buildReference(paymentID string) string {
	if match := trailingDigits.FindString(paymentID); match != "" {
		return "AUTO-REF-" + match
	}
	stamp := fmt.Sprintf("%d", s.now().Unix())
	if len(stamp) > 6 {
		stamp = stamp[len(stamp)-6:]
	}
	return "AUTO-REF-" + stamp
}

// createAdhocInvoice synthesizes a fully-paid invoice for a payment that
// arrived without an invoice link, and points the payment at it.
func (s *LedgerService) createAdhocInvoice(payment *models.Payment, unitCount int) (*models.Invoice, error) {
	serviceType := models.DefaultServiceType
	contractID := payment.ContractID
	if contract, err := s.contractRepo.GetActiveByClientID(payment.ClientID); err == nil {
		serviceType = contract.ServiceType
		if contractID == "" {
			contractID = contract.ContractID
		}
	}
	if contractID == "" {
		contractID = models.ContractAdhoc
	}

	dueDate := payment.NextDueDate
	if dueDate == "" {
		dueDate = payment.PaymentDate
	}
	issueDate := payment.PaymentDate
	if _, ok := parseDate(issueDate); !ok {
		issueDate = s.now().Format(models.DateLayout)
	}

	description := payment.Remarks
	if description == "" {
		description = fmt.Sprintf("%s - %d month(s)", serviceType, payment.MonthsCovered)
	}

	// Back-derived, see the division guard: months and units are both
	// floored at 1 before reaching this point.
	divisor := decimal.NewFromInt(int64(payment.MonthsCovered * unitCount))

	invoice := &models.Invoice{
		DocID:        models.AdhocInvoicePrefix + payment.PaymentID,
		DocType:      models.DocTypeInvoice,
		ClientID:     payment.ClientID,
		ContractID:   contractID,
		IssueDate:    issueDate,
		DueDate:      dueDate,
		Description:  description,
		PeriodMonths: payment.MonthsCovered,
		UnitPrice:    payment.Amount.DivRound(divisor, 2),
		UnitCount:    unitCount,
		TotalAmount:  payment.Amount,
		AmountPaid:   payment.Amount,
		BalanceDue:   decimal.Zero,
		Status:       models.InvoiceStatusPaid,
	}

	if err := s.invoiceRepo.Create(invoice); err != nil {
		return nil, err
	}
	payment.InvoiceID = invoice.DocID
	return invoice, nil
}

// settleAgainstInvoice applies the payment amount to a matched invoice and
// rolls the due date forward when one was computed.
func (s *LedgerService) settleAgainstInvoice(invoice *models.Invoice, payment *models.Payment) error {
	invoice.AmountPaid = invoice.AmountPaid.Add(payment.Amount)
	balance := invoice.TotalAmount.Sub(invoice.AmountPaid)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	invoice.BalanceDue = balance

	if balance.IsZero() {
		invoice.Status = models.InvoiceStatusPaid
	} else {
		invoice.Status = models.InvoiceStatusPartial
	}

	if payment.NextDueDate != "" {
		invoice.DueDate = payment.NextDueDate
	}

	return s.invoiceRepo.UpdateOnPayment(invoice)
}

// emitPaymentReceived records the informational payment event. Payment ids
// are unique, so the trigger id is minted fresh per payment and never needs
// the dedup check. A failed write here is logged, not surfaced: the ledger
// itself is already consistent.
func (s *LedgerService) emitPaymentReceived(payment *models.Payment, invoice *models.Invoice) *models.Notification {
	notification := &models.Notification{
		TriggerID: models.TriggerPaymentPrefix + payment.PaymentID,
		Priority:  models.PriorityNormal,
		Message: fmt.Sprintf("Payment %s of %s received against %s; next due %s",
			payment.Reference, payment.Amount.StringFixed(2), invoice.DocID, payment.NextDueDate),
		EntityID: invoice.DocID,
		Assignee: payment.ClientID,
	}
	if err := s.notificationRepo.Create(notification); err != nil {
		s.logger.Warn("failed to record payment-received notification",
			zap.String("payment_id", payment.PaymentID),
			zap.Error(err))
		return nil
	}
	return notification
}
