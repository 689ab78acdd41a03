package entities

import (
	"encoding/json"
	"time"
)

// Customer is the buyer identity embedded in the gateway payment metadata.
// Since there is no local order database, the metadata on the gateway's
// payment record is the only place this data survives between payment
// creation and webhook confirmation.
type Customer struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Document string `json:"document"`
}

func (c Customer) Complete() bool {
	return c.Name != "" && c.Email != "" && c.Phone != "" && c.Document != ""
}

// Attribution carries marketing click identifiers and browser context
// captured at submit time.
type Attribution struct {
	URL       string `json:"url,omitempty"`
	FBClid    string `json:"fbclid,omitempty"`
	FBP       string `json:"fbp,omitempty"`
	FBC       string `json:"fbc,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
}

// CheckoutOrder is the client-to-server create-payment payload.
type CheckoutOrder struct {
	User          Customer         `json:"user"`
	Items         []CheckoutItem   `json:"items"`
	PaymentMethod PaymentMethod    `json:"paymentMethod"`
	Card          *CardPaymentData `json:"card,omitempty"`
	Meta          Attribution      `json:"meta"`
}

// PaymentCreation is the create-payment response relayed to the client.
// For pix it carries the QR payload; for cards the synchronous status.
type PaymentCreation struct {
	Success      bool   `json:"success"`
	PaymentID    string `json:"paymentId,omitempty"`
	Status       string `json:"status,omitempty"`
	StatusDetail string `json:"statusDetail,omitempty"`
	QRCode       string `json:"qrCode,omitempty"`
	QRCodeBase64 string `json:"qrCodeBase64,omitempty"`
	TicketURL    string `json:"ticketUrl,omitempty"`
}

// PixPaymentData is the client-held view of a pending pix payment.
// Advisory only: settlement is confirmed by the poller/webhook against
// the gateway, never by the creation response.
type PixPaymentData struct {
	PaymentID    string `json:"paymentId"`
	QRCode       string `json:"qrCode,omitempty"`
	QRCodeBase64 string `json:"qrCodeBase64,omitempty"`
	TicketURL    string `json:"ticketUrl,omitempty"`
}

// PaymentStatusView is the payment-status endpoint response.
type PaymentStatusView struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	StatusDetail string `json:"status_detail,omitempty"`
}

const PaymentStatusApproved = "approved"

// ConversionEvent is the server-to-server purchase signal sent to the
// analytics platform. PII is hashed before transmission; the payment ID
// doubles as the platform-side deduplication key.
type ConversionEvent struct {
	PaymentID   string
	Value       float64
	Currency    string
	Customer    Customer
	Attribution Attribution
	Items       []CheckoutItem
	SourceURL   string
	ClientIP    string
	UserAgent   string
}

// PaymentAuditRecord is the durable copy of a gateway payment payload,
// keyed by payment ID. Audit only: status decisions always re-query the
// gateway.
type PaymentAuditRecord struct {
	PaymentID string          `json:"payment_id"`
	Status    string          `json:"status"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Date      time.Time       `json:"date"`
}
