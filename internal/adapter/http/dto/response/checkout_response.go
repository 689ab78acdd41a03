package response

import (
	"xandr_checkout/internal/domain/entities"
)

// PaymentCreationResponse is what the checkout client receives after
// creating a payment. For pix it carries the QR payload; for cards the
// synchronous gateway status.
type PaymentCreationResponse struct {
	Success      bool   `json:"success"`
	PaymentID    string `json:"paymentId,omitempty"`
	Status       string `json:"status,omitempty"`
	StatusDetail string `json:"statusDetail,omitempty"`
	QRCode       string `json:"qrCode,omitempty"`
	QRCodeBase64 string `json:"qrCodeBase64,omitempty"`
	TicketURL    string `json:"ticketUrl,omitempty"`
}

func FromPaymentCreation(p entities.PaymentCreation) PaymentCreationResponse {
	return PaymentCreationResponse{
		Success:      p.Success,
		PaymentID:    p.PaymentID,
		Status:       p.Status,
		StatusDetail: p.StatusDetail,
		QRCode:       p.QRCode,
		QRCodeBase64: p.QRCodeBase64,
		TicketURL:    p.TicketURL,
	}
}

// PaymentErrorResponse mirrors the gateway rejection to the client with
// Success always false.
type PaymentErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func NewPaymentError(msg string) PaymentErrorResponse {
	return PaymentErrorResponse{Success: false, Error: msg}
}

// PaymentStatusResponse is the status-polling payload.
type PaymentStatusResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	StatusDetail string `json:"status_detail,omitempty"`
}

func FromPaymentStatus(s entities.PaymentStatusView) PaymentStatusResponse {
	return PaymentStatusResponse{
		ID:           s.ID,
		Status:       s.Status,
		StatusDetail: s.StatusDetail,
	}
}

// AddressResponse is the postal-code autofill payload.
type AddressResponse struct {
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

func FromAddress(a entities.Address) AddressResponse {
	return AddressResponse{
		Street:       a.Street,
		Neighborhood: a.Neighborhood,
		City:         a.City,
		State:        a.State,
	}
}
