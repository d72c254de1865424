package repositories

import (
	"database/sql"
	"errors"
	"time"

	"fleet-billing-service/internal/identity"
	"fleet-billing-service/internal/models"
)

var ErrContractNotFound = errors.New("contract not found")

type ContractRepository interface {
	GetActiveByClientID(clientID string) (*models.Contract, error)
	ListActive() ([]*models.Contract, error)
	ListAll() ([]*models.Contract, error)
	UpdateStatus(contractID, status string) error
}

type contractRepository struct {
	db *sql.DB
}

func NewContractRepository(db *sql.DB) ContractRepository {
	return &contractRepository{db: db}
}

const contractColumns = `id, contract_id, client_id, service_type, status, start_date, expiry_date, created_at, updated_at`

func (r *contractRepository) GetActiveByClientID(clientID string) (*models.Contract, error) {
	query := `
		SELECT ` + contractColumns + `
		FROM contracts
		WHERE LOWER(TRIM(client_id)) = ? AND status = ?
		ORDER BY id DESC
		LIMIT 1
	`
	contract := &models.Contract{}
	err := r.db.QueryRow(query, identity.Normalize(clientID), models.ContractStatusActive).Scan(
		&contract.ID,
		&contract.ContractID,
		&contract.ClientID,
		&contract.ServiceType,
		&contract.Status,
		&contract.StartDate,
		&contract.ExpiryDate,
		&contract.CreatedAt,
		&contract.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrContractNotFound
	}
	if err != nil {
		return nil, err
	}
	return contract, nil
}

func (r *contractRepository) ListActive() ([]*models.Contract, error) {
	query := `
		SELECT ` + contractColumns + `
		FROM contracts
		WHERE status = ?
	`
	return r.list(query, models.ContractStatusActive)
}

func (r *contractRepository) ListAll() ([]*models.Contract, error) {
	query := `
		SELECT ` + contractColumns + `
		FROM contracts
	`
	return r.list(query)
}

func (r *contractRepository) list(query string, args ...interface{}) ([]*models.Contract, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contracts []*models.Contract
	for rows.Next() {
		contract := &models.Contract{}
		err := rows.Scan(
			&contract.ID,
			&contract.ContractID,
			&contract.ClientID,
			&contract.ServiceType,
			&contract.Status,
			&contract.StartDate,
			&contract.ExpiryDate,
			&contract.CreatedAt,
			&contract.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, contract)
	}
	return contracts, rows.Err()
}

func (r *contractRepository) UpdateStatus(contractID, status string) error {
	query := `
		UPDATE contracts
		SET status = ?,
		    updated_at = ?
		WHERE LOWER(TRIM(contract_id)) = ?
	`
	result, err := r.db.Exec(query, status, time.Now(), identity.Normalize(contractID))
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrContractNotFound
	}
	return nil
}
