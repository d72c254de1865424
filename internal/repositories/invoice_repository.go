package repositories

import (
	"database/sql"
	"errors"
	"time"

	"fleet-billing-service/internal/identity"
	"fleet-billing-service/internal/models"
)

var ErrInvoiceNotFound = errors.New("invoice not found")

type InvoiceRepository interface {
	GetByDocID(docID string) (*models.Invoice, error)
	Create(invoice *models.Invoice) error
	UpdateOnPayment(invoice *models.Invoice) error
	ListOpen() ([]*models.Invoice, error)
	ListByStatus(status string) ([]*models.Invoice, error)
}

type invoiceRepository struct {
	db *sql.DB
}

func NewInvoiceRepository(db *sql.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

const invoiceColumns = `id, doc_id, doc_type, client_id, contract_id, issue_date, due_date,
	       description, period_months, unit_price, unit_count, total_amount,
	       amount_paid, balance_due, status, created_at, updated_at`

func (r *invoiceRepository) scanInvoice(row *sql.Row) (*models.Invoice, error) {
	invoice := &models.Invoice{}
	err := row.Scan(
		&invoice.ID,
		&invoice.DocID,
		&invoice.DocType,
		&invoice.ClientID,
		&invoice.ContractID,
		&invoice.IssueDate,
		&invoice.DueDate,
		&invoice.Description,
		&invoice.PeriodMonths,
		&invoice.UnitPrice,
		&invoice.UnitCount,
		&invoice.TotalAmount,
		&invoice.AmountPaid,
		&invoice.BalanceDue,
		&invoice.Status,
		&invoice.CreatedAt,
		&invoice.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (r *invoiceRepository) GetByDocID(docID string) (*models.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE LOWER(TRIM(doc_id)) = ?
	`
	return r.scanInvoice(r.db.QueryRow(query, identity.Normalize(docID)))
}

func (r *invoiceRepository) Create(invoice *models.Invoice) error {
	query := `
		INSERT INTO invoices (
			doc_id, doc_type, client_id, contract_id, issue_date, due_date,
			description, period_months, unit_price, unit_count, total_amount,
			amount_paid, balance_due, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query,
		invoice.DocID,
		invoice.DocType,
		invoice.ClientID,
		invoice.ContractID,
		invoice.IssueDate,
		invoice.DueDate,
		invoice.Description,
		invoice.PeriodMonths,
		invoice.UnitPrice,
		invoice.UnitCount,
		invoice.TotalAmount,
		invoice.AmountPaid,
		invoice.BalanceDue,
		invoice.Status,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	invoice.ID = id
	return nil
}

// UpdateOnPayment persists the fields the reconciler recomputes when a
// payment lands: paid amount, balance, status and the rolled due date.
func (r *invoiceRepository) UpdateOnPayment(invoice *models.Invoice) error {
	query := `
		UPDATE invoices
		SET amount_paid = ?,
		    balance_due = ?,
		    status = ?,
		    due_date = ?,
		    updated_at = ?
		WHERE LOWER(TRIM(doc_id)) = ?
	`
	result, err := r.db.Exec(query,
		invoice.AmountPaid,
		invoice.BalanceDue,
		invoice.Status,
		invoice.DueDate,
		time.Now(),
		identity.Normalize(invoice.DocID),
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

// ListOpen returns invoice-type documents that are not fully paid; the
// watchdog evaluates overdue state live from these.
func (r *invoiceRepository) ListOpen() ([]*models.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE doc_type = ? AND status != ?
	`
	return r.list(query, models.DocTypeInvoice, models.InvoiceStatusPaid)
}

func (r *invoiceRepository) ListByStatus(status string) ([]*models.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE status = ?
	`
	return r.list(query, status)
}

func (r *invoiceRepository) list(query string, args ...interface{}) ([]*models.Invoice, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		invoice := &models.Invoice{}
		err := rows.Scan(
			&invoice.ID,
			&invoice.DocID,
			&invoice.DocType,
			&invoice.ClientID,
			&invoice.ContractID,
			&invoice.IssueDate,
			&invoice.DueDate,
			&invoice.Description,
			&invoice.PeriodMonths,
			&invoice.UnitPrice,
			&invoice.UnitCount,
			&invoice.TotalAmount,
			&invoice.AmountPaid,
			&invoice.BalanceDue,
			&invoice.Status,
			&invoice.CreatedAt,
			&invoice.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}
	return invoices, rows.Err()
}
