package interfaces

import (
	"context"

	"xandr_checkout/internal/domain/entities"
)

// ICheckoutAPI is the client-side port onto the checkout backend.
type ICheckoutAPI interface {
	CreatePayment(ctx context.Context, order entities.CheckoutOrder) (entities.PaymentCreation, error)
	GetPaymentStatus(ctx context.Context, paymentID string) (entities.PaymentStatusView, error)
}

// IPixelTracker fires browser analytics events. Implementations are
// fire-and-forget; the emitter layer adds presence checks and
// at-most-once guards.
type IPixelTracker interface {
	Track(eventName string, params PixelParams)
}

// PixelParams are the parameters attached to a pixel event. EventID, when
// set, enables platform-side deduplication against the server-fired copy
// of the same conversion.
type PixelParams struct {
	Value    float64
	Currency string
	EventID  string
}
