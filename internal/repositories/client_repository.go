package repositories

import (
	"database/sql"
	"errors"

	"fleet-billing-service/internal/identity"
	"fleet-billing-service/internal/models"
)

var ErrClientNotFound = errors.New("client not found")

type ClientRepository interface {
	GetByClientID(clientID string) (*models.Client, error)
	ListAll() ([]*models.Client, error)
}

type clientRepository struct {
	db *sql.DB
}

func NewClientRepository(db *sql.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) GetByClientID(clientID string) (*models.Client, error) {
	client := &models.Client{}
	query := `
		SELECT id, client_id, name, email, phone, agent_email, created_at, updated_at
		FROM clients
		WHERE LOWER(TRIM(client_id)) = ?
	`
	err := r.db.QueryRow(query, identity.Normalize(clientID)).Scan(
		&client.ID,
		&client.ClientID,
		&client.Name,
		&client.Email,
		&client.Phone,
		&client.AgentEmail,
		&client.CreatedAt,
		&client.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (r *clientRepository) ListAll() ([]*models.Client, error) {
	query := `
		SELECT id, client_id, name, email, phone, agent_email, created_at, updated_at
		FROM clients
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		client := &models.Client{}
		err := rows.Scan(
			&client.ID,
			&client.ClientID,
			&client.Name,
			&client.Email,
			&client.Phone,
			&client.AgentEmail,
			&client.CreatedAt,
			&client.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}
