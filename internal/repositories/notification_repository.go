package repositories

import (
	"database/sql"

	"fleet-billing-service/internal/models"
)

// NotificationRepository is the dedup ledger: an append-only set keyed by
// deterministic trigger id. Rows are never updated or deleted, and there is
// no retention cap — evicting old ids would re-arm their events.
type NotificationRepository interface {
	Create(notification *models.Notification) error
	ListTriggerIDs() (map[string]bool, error)
}

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(notification *models.Notification) error {
	query := `
		INSERT INTO notifications (
			trigger_id, priority, message, entity_id, assignee
		) VALUES (?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query,
		notification.TriggerID,
		notification.Priority,
		notification.Message,
		notification.EntityID,
		notification.Assignee,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	notification.ID = id
	return nil
}

// ListTriggerIDs loads the full dedup set for a watchdog pass. The set only
// grows, so one read per pass is enough; a concurrent pass racing this read
// can at worst duplicate an email, never corrupt the ledger.
func (r *notificationRepository) ListTriggerIDs() (map[string]bool, error) {
	rows, err := r.db.Query(`SELECT trigger_id FROM notifications`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}
