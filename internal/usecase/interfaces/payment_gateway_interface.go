package interfaces

import (
	"context"
	"encoding/json"
)

// IPaymentGateway abstracts the external payment provider (Mercado Pago).
//
// Payloads cross the boundary as raw JSON so provider schema variations
// never leak typed structs into the usecases. GetPaymentByID is the
// authoritative re-fetch used by the webhook receiver and the status
// endpoint; local copies of a payment are never trusted for status.
type IPaymentGateway interface {
	CreatePayment(ctx context.Context, requestPayload json.RawMessage) (providerPaymentID string, providerStatus string, providerResponse json.RawMessage, err error)
	GetPaymentByID(ctx context.Context, paymentID string) (json.RawMessage, error)
}
