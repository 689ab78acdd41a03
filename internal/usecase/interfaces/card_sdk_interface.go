package interfaces

import (
	"context"

	"xandr_checkout/internal/domain/entities"
)

// ICardSDK is the injected capability over the gateway's client-side SDK.
// The checkout engine never reaches into ambient globals; a browser
// binding implements this against the real secure-field widget and tests
// supply fakes.
type ICardSDK interface {
	// CreateFieldSet mounts the four secure card fields and registers the
	// bin-change callback. The fields are opaque: raw card digits never
	// reach the engine, only the derived bin.
	CreateFieldSet(onBinChange func(bin string)) (ICardFieldSet, error)
	GetPaymentMethods(ctx context.Context, bin string) ([]entities.PaymentMethodInfo, error)
	GetIssuers(ctx context.Context, paymentMethodID, bin string) ([]entities.CardIssuer, error)
	GetInstallments(ctx context.Context, q entities.InstallmentQuery) ([]entities.InstallmentPlanGroup, error)
}

// ICardFieldSet is one mounted set of secure card fields.
type ICardFieldSet interface {
	// CreateCardToken exchanges the field contents plus cardholder data for
	// a single-use payment token.
	CreateCardToken(ctx context.Context, cardholderName, documentNumber string) (string, error)
	// Unmount releases the fields. Must be safe to call more than once.
	Unmount()
}
