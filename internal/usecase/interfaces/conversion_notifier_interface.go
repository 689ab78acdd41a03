package interfaces

import (
	"context"

	"xandr_checkout/internal/domain/entities"
)

// IConversionNotifier relays a purchase conversion event to the analytics
// platform's server API. Best-effort advertising telemetry: every call
// site swallows failures.
type IConversionNotifier interface {
	SendPurchase(ctx context.Context, ev entities.ConversionEvent) error
}
