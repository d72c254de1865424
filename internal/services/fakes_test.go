package services

import (
	"context"
	"errors"
	"sync"

	"fleet-billing-service/internal/dispatch"
	"fleet-billing-service/internal/identity"
	"fleet-billing-service/internal/models"
	"fleet-billing-service/internal/repositories"
)

// In-memory repository fakes keyed by normalized ids, mirroring how the
// MySQL implementations canonicalize lookups.

type fakeInvoiceRepo struct {
	mu        sync.Mutex
	invoices  map[string]*models.Invoice
	createErr error
	updateErr error
	listErr   error
}

func newFakeInvoiceRepo(invoices ...*models.Invoice) *fakeInvoiceRepo {
	repo := &fakeInvoiceRepo{invoices: make(map[string]*models.Invoice)}
	for _, inv := range invoices {
		repo.invoices[identity.Normalize(inv.DocID)] = inv
	}
	return repo
}

func (r *fakeInvoiceRepo) GetByDocID(docID string) (*models.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	invoice, ok := r.invoices[identity.Normalize(docID)]
	if !ok {
		return nil, repositories.ErrInvoiceNotFound
	}
	copied := *invoice
	return &copied, nil
}

func (r *fakeInvoiceRepo) Create(invoice *models.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	copied := *invoice
	r.invoices[identity.Normalize(invoice.DocID)] = &copied
	return nil
}

func (r *fakeInvoiceRepo) UpdateOnPayment(invoice *models.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.invoices[identity.Normalize(invoice.DocID)]; !ok {
		return repositories.ErrInvoiceNotFound
	}
	copied := *invoice
	r.invoices[identity.Normalize(invoice.DocID)] = &copied
	return nil
}

func (r *fakeInvoiceRepo) ListOpen() ([]*models.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var open []*models.Invoice
	for _, invoice := range r.invoices {
		if invoice.DocType == models.DocTypeInvoice && invoice.Status != models.InvoiceStatusPaid {
			copied := *invoice
			open = append(open, &copied)
		}
	}
	return open, nil
}

func (r *fakeInvoiceRepo) ListByStatus(status string) ([]*models.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*models.Invoice
	for _, invoice := range r.invoices {
		if invoice.Status == status {
			copied := *invoice
			matched = append(matched, &copied)
		}
	}
	return matched, nil
}

type fakeContractRepo struct {
	mu              sync.Mutex
	contracts       map[string]*models.Contract
	updateStatusErr map[string]error
}

func newFakeContractRepo(contracts ...*models.Contract) *fakeContractRepo {
	repo := &fakeContractRepo{
		contracts:       make(map[string]*models.Contract),
		updateStatusErr: make(map[string]error),
	}
	for _, contract := range contracts {
		repo.contracts[identity.Normalize(contract.ContractID)] = contract
	}
	return repo
}

func (r *fakeContractRepo) GetActiveByClientID(clientID string) (*models.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, contract := range r.contracts {
		if identity.Normalize(contract.ClientID) == identity.Normalize(clientID) && contract.Status == models.ContractStatusActive {
			copied := *contract
			return &copied, nil
		}
	}
	return nil, repositories.ErrContractNotFound
}

func (r *fakeContractRepo) ListActive() ([]*models.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var active []*models.Contract
	for _, contract := range r.contracts {
		if contract.Status == models.ContractStatusActive {
			copied := *contract
			active = append(active, &copied)
		}
	}
	return active, nil
}

func (r *fakeContractRepo) ListAll() ([]*models.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*models.Contract
	for _, contract := range r.contracts {
		copied := *contract
		all = append(all, &copied)
	}
	return all, nil
}

func (r *fakeContractRepo) UpdateStatus(contractID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.updateStatusErr[identity.Normalize(contractID)]; ok {
		return err
	}
	contract, ok := r.contracts[identity.Normalize(contractID)]
	if !ok {
		return repositories.ErrContractNotFound
	}
	contract.Status = status
	return nil
}

type fakeClientRepo struct {
	clients []*models.Client
}

func newFakeClientRepo(clients ...*models.Client) *fakeClientRepo {
	return &fakeClientRepo{clients: clients}
}

func (r *fakeClientRepo) GetByClientID(clientID string) (*models.Client, error) {
	for _, client := range r.clients {
		if identity.Normalize(client.ClientID) == identity.Normalize(clientID) {
			return client, nil
		}
	}
	return nil, repositories.ErrClientNotFound
}

func (r *fakeClientRepo) ListAll() ([]*models.Client, error) {
	return r.clients, nil
}

type fakePaymentRepo struct {
	mu        sync.Mutex
	payments  map[string]*models.Payment
	createErr error
	onLookup  func()
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[string]*models.Payment)}
}

func (r *fakePaymentRepo) GetByPaymentID(paymentID string) (*models.Payment, error) {
	if r.onLookup != nil {
		r.onLookup()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.payments[identity.Normalize(paymentID)]
	if !ok {
		return nil, repositories.ErrPaymentNotFound
	}
	return payment, nil
}

func (r *fakePaymentRepo) Create(payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	copied := *payment
	r.payments[identity.Normalize(payment.PaymentID)] = &copied
	return nil
}

type fakeNotificationRepo struct {
	mu        sync.Mutex
	rows      []*models.Notification
	createErr error
}

func newFakeNotificationRepo(existingTriggerIDs ...string) *fakeNotificationRepo {
	repo := &fakeNotificationRepo{}
	for _, id := range existingTriggerIDs {
		repo.rows = append(repo.rows, &models.Notification{TriggerID: id})
	}
	return repo
}

func (r *fakeNotificationRepo) Create(notification *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, row := range r.rows {
		if row.TriggerID == notification.TriggerID {
			return errors.New("duplicate trigger id")
		}
	}
	copied := *notification
	r.rows = append(r.rows, &copied)
	return nil
}

func (r *fakeNotificationRepo) ListTriggerIDs() (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make(map[string]bool, len(r.rows))
	for _, row := range r.rows {
		ids[row.TriggerID] = true
	}
	return ids, nil
}

func (r *fakeNotificationRepo) byTrigger(triggerID string) *models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.TriggerID == triggerID {
			return row
		}
	}
	return nil
}

type fakeMailer struct {
	mu      sync.Mutex
	sent    []dispatch.Email
	sendErr error
}

func (m *fakeMailer) Send(_ context.Context, email dispatch.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, email)
	return nil
}
