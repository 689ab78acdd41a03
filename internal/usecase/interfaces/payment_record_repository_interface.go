package interfaces

import (
	"context"

	"xandr_checkout/internal/domain/entities"
)

// IPaymentRecordRepository persists per-payment bookkeeping in DynamoDB.
//
// MarkProvisioned is an atomic check-and-set keyed by payment ID; it
// returns false when the marker already existed. The webhook receiver
// relies on it so concurrent gateway redeliveries cannot double-provision.
// SaveAudit stores the raw gateway payload for traceability only; it is
// never read back to decide payment status.
type IPaymentRecordRepository interface {
	MarkProvisioned(ctx context.Context, paymentID string) (bool, error)
	SaveAudit(ctx context.Context, rec entities.PaymentAuditRecord) error
}
