package request

import (
	"encoding/json"
	"xandr_checkout/internal/domain/entities"
)

// CheckoutPaymentRequest is the create-payment payload sent by the
// checkout client. Field names follow the checkout API contract.
type CheckoutPaymentRequest struct {
	User          entities.Customer         `json:"user"`
	Items         []entities.CheckoutItem   `json:"items"`
	PaymentMethod string                    `json:"paymentMethod"`
	Card          *entities.CardPaymentData `json:"card,omitempty"`
	Meta          entities.Attribution      `json:"meta"`
}

func (r CheckoutPaymentRequest) ToOrder() entities.CheckoutOrder {
	return entities.CheckoutOrder{
		User:          r.User,
		Items:         r.Items,
		PaymentMethod: entities.PaymentMethod(r.PaymentMethod),
		Card:          r.Card,
		Meta:          r.Meta,
	}
}

// WebhookNotificationRequest is the Mercado Pago notification body.
// Only the payment id is read from it; status always comes from a
// fresh API fetch. Mercado Pago sends data.id as a string on webhooks
// and as a number elsewhere, so both shapes decode.
type WebhookNotificationRequest struct {
	Data struct {
		ID        flexibleID `json:"id"`
		PaymentID flexibleID `json:"payment_id"`
	} `json:"data"`
}

// PaymentID returns the id carried in the body, preferring data.id.
func (r WebhookNotificationRequest) PaymentID() string {
	if r.Data.ID != "" {
		return string(r.Data.ID)
	}
	return string(r.Data.PaymentID)
}

type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}
