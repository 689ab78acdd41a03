package entities

// PaymentMethod selects how the buyer settles the order.
//
// Wire values match the checkout API contract ("pix" | "credit_card").
// Selecting a method resets card-derived state (bin, payment method id,
// issuer, installment options); that state is owned by the card form.

type PaymentMethod string

const (
	PaymentMethodPix        PaymentMethod = "pix"
	PaymentMethodCreditCard PaymentMethod = "credit_card"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodPix || m == PaymentMethodCreditCard
}

// OrderForm holds buyer identity and shipping address as typed by the user.
// Phone, document and zip code are normalized (digits only) before
// transmission; the form keeps the raw input.
type OrderForm struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Document     string `json:"document"`
	ZipCode      string `json:"zipCode"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

// FieldErrors maps a failing form field to a localized message.
// An empty map means the form is valid.
type FieldErrors map[string]string

// PaymentState is the checkout state machine's externally visible state.
// IsProcessing is true exactly while a create-payment round trip is in
// flight; Error is cleared at the start of every submit attempt.
type PaymentState struct {
	Method       PaymentMethod `json:"method"`
	IsProcessing bool          `json:"isProcessing"`
	IsSuccess    bool          `json:"isSuccess"`
	Error        string        `json:"error,omitempty"`
}

// Address is the result of a postal-code lookup. The autofill flow
// overwrites street/neighborhood/city/state on the order form.
type Address struct {
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}
