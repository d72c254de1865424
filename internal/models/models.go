package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for all business dates. Dates travel as
// strings because the upstream store holds free-text date cells; parsing
// happens at the point of use and unparseable dates skip the entity.
const DateLayout = "2006-01-02"

// Client represents a fleet client account.
type Client struct {
	ID         int64     `db:"id" json:"id"`
	ClientID   string    `db:"client_id" json:"client_id"`
	Name       string    `db:"name" json:"name"`
	Email      string    `db:"email" json:"email"`
	Phone      string    `db:"phone" json:"phone"`
	AgentEmail string    `db:"agent_email" json:"agent_email"`
	CreatedAt  time.Time `db:"created_at" json:"-"`
	UpdatedAt  time.Time `db:"updated_at" json:"-"`
}

// Contract represents a service contract between a client and the fleet.
type Contract struct {
	ID          int64     `db:"id" json:"id"`
	ContractID  string    `db:"contract_id" json:"contract_id"`
	ClientID    string    `db:"client_id" json:"client_id"`
	ServiceType string    `db:"service_type" json:"service_type"`
	Status      string    `db:"status" json:"status"`
	StartDate   string    `db:"start_date" json:"start_date"`
	ExpiryDate  string    `db:"expiry_date" json:"expiry_date"`
	CreatedAt   time.Time `db:"created_at" json:"-"`
	UpdatedAt   time.Time `db:"updated_at" json:"-"`
}

// Invoice represents a billing document in the ledger.
type Invoice struct {
	ID           int64           `db:"id" json:"id"`
	DocID        string          `db:"doc_id" json:"doc_id"`
	DocType      string          `db:"doc_type" json:"doc_type"`
	ClientID     string          `db:"client_id" json:"client_id"`
	ContractID   string          `db:"contract_id" json:"contract_id"`
	IssueDate    string          `db:"issue_date" json:"issue_date"`
	DueDate      string          `db:"due_date" json:"due_date"`
	Description  string          `db:"description" json:"description"`
	PeriodMonths int             `db:"period_months" json:"period_months"`
	UnitPrice    decimal.Decimal `db:"unit_price" json:"unit_price"`
	UnitCount    int             `db:"unit_count" json:"unit_count"`
	TotalAmount  decimal.Decimal `db:"total_amount" json:"total_amount"`
	AmountPaid   decimal.Decimal `db:"amount_paid" json:"amount_paid"`
	BalanceDue   decimal.Decimal `db:"balance_due" json:"balance_due"`
	Status       string          `db:"status" json:"status"`
	CreatedAt    time.Time       `db:"created_at" json:"-"`
	UpdatedAt    time.Time       `db:"updated_at" json:"-"`
}

// Payment represents a received payment. Immutable once persisted, other
// than the reference / next-due-date backfill applied at creation time.
type Payment struct {
	ID            int64           `db:"id" json:"id"`
	PaymentID     string          `db:"payment_id" json:"payment_id"`
	ClientID      string          `db:"client_id" json:"client_id"`
	ContractID    string          `db:"contract_id" json:"contract_id"`
	InvoiceID     string          `db:"invoice_id" json:"invoice_id"`
	PaymentDate   string          `db:"payment_date" json:"payment_date"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	MonthsCovered int             `db:"months_covered" json:"months_covered"`
	NextDueDate   string          `db:"next_due_date" json:"next_due_date"`
	Reference     string          `db:"reference" json:"reference"`
	Remarks       string          `db:"remarks" json:"remarks"`
	CreatedAt     time.Time       `db:"created_at" json:"-"`
}

// Notification is an append-only dedup record. TriggerID deterministically
// encodes the (event kind, entity, occurrence) tuple; re-running a watchdog
// pass against unchanged state must never mint the same id twice.
type Notification struct {
	ID        int64     `db:"id" json:"id"`
	TriggerID string    `db:"trigger_id" json:"trigger_id"`
	Priority  string    `db:"priority" json:"priority"`
	Message   string    `db:"message" json:"message"`
	EntityID  string    `db:"entity_id" json:"entity_id"`
	Assignee  string    `db:"assignee" json:"assignee"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}

// Invoice status constants
const (
	InvoiceStatusPending = "Pending"
	InvoiceStatusPartial = "Partial"
	InvoiceStatusPaid    = "Paid"
	InvoiceStatusOverdue = "Overdue"
)

// Invoice document types
const (
	DocTypeInvoice = "Invoice"
)

// Contract status constants
const (
	ContractStatusActive  = "Active"
	ContractStatusExpired = "Expired"
)

// ContractAdhoc is the sentinel contract id for invoices synthesized
// without a contract link.
const ContractAdhoc = "ADHOC"

// Notification priority constants
const (
	PriorityNormal   = "Normal"
	PriorityHigh     = "High"
	PriorityCritical = "Critical"
)

// Trigger id prefixes. These formats are externally observable: a ledger
// that already holds ids in these shapes must keep suppressing after an
// upgrade, so they must not change.
const (
	TriggerOverduePrefix    = "OVERDUE-"
	TriggerExpiryMailPrefix = "EXP-MAIL-"
	TriggerPaymentPrefix    = "PAYRCV-"
	AdhocInvoicePrefix      = "INV-AUTO-"
)

// DefaultServiceType labels ad-hoc invoices when no active contract is
// found for the paying client.
const DefaultServiceType = "Fleet Services"
