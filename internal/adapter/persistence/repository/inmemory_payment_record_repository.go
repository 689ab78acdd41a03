package repository

import (
	"context"
	"sync"

	"xandr_checkout/internal/domain/entities"
	"xandr_checkout/internal/usecase/interfaces"
)

// InMemoryPaymentRecordRepository is a process-local
// IPaymentRecordRepository for tests and single-node runs.
type InMemoryPaymentRecordRepository struct {
	mu          sync.Mutex
	provisioned map[string]bool
	audits      map[string]entities.PaymentAuditRecord
}

var _ interfaces.IPaymentRecordRepository = (*InMemoryPaymentRecordRepository)(nil)

func NewInMemoryPaymentRecordRepository() *InMemoryPaymentRecordRepository {
	return &InMemoryPaymentRecordRepository{
		provisioned: map[string]bool{},
		audits:      map[string]entities.PaymentAuditRecord{},
	}
}

func (r *InMemoryPaymentRecordRepository) MarkProvisioned(_ context.Context, paymentID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.provisioned[paymentID] {
		return false, nil
	}
	r.provisioned[paymentID] = true
	return true, nil
}

func (r *InMemoryPaymentRecordRepository) SaveAudit(_ context.Context, rec entities.PaymentAuditRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.audits[rec.PaymentID] = rec
	return nil
}

// Audit returns the stored audit record for a payment, if any.
func (r *InMemoryPaymentRecordRepository) Audit(paymentID string) (entities.PaymentAuditRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.audits[paymentID]
	return rec, ok
}
