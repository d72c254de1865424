package repositories

import (
	"database/sql"
	"errors"

	"fleet-billing-service/internal/identity"
	"fleet-billing-service/internal/models"
)

var ErrPaymentNotFound = errors.New("payment not found")

type PaymentRepository interface {
	GetByPaymentID(paymentID string) (*models.Payment, error)
	Create(payment *models.Payment) error
}

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) GetByPaymentID(paymentID string) (*models.Payment, error) {
	payment := &models.Payment{}
	query := `
		SELECT id, payment_id, client_id, contract_id, invoice_id, payment_date,
		       amount, months_covered, next_due_date, reference, remarks, created_at
		FROM payments
		WHERE LOWER(TRIM(payment_id)) = ?
	`
	err := r.db.QueryRow(query, identity.Normalize(paymentID)).Scan(
		&payment.ID,
		&payment.PaymentID,
		&payment.ClientID,
		&payment.ContractID,
		&payment.InvoiceID,
		&payment.PaymentDate,
		&payment.Amount,
		&payment.MonthsCovered,
		&payment.NextDueDate,
		&payment.Reference,
		&payment.Remarks,
		&payment.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *paymentRepository) Create(payment *models.Payment) error {
	query := `
		INSERT INTO payments (
			payment_id, client_id, contract_id, invoice_id, payment_date,
			amount, months_covered, next_due_date, reference, remarks
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query,
		payment.PaymentID,
		payment.ClientID,
		payment.ContractID,
		payment.InvoiceID,
		payment.PaymentDate,
		payment.Amount,
		payment.MonthsCovered,
		payment.NextDueDate,
		payment.Reference,
		payment.Remarks,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	payment.ID = id
	return nil
}
