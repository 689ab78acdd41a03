package entities

import "fmt"

// CardPaymentData is produced once per submit attempt by the card form.
// The token is single-use (gateway enforced); a resubmission always
// re-tokenizes.
type CardPaymentData struct {
	Token           string `json:"token"`
	Bin             string `json:"bin"`
	IssuerID        string `json:"issuerId,omitempty"`
	Installments    int    `json:"installments"`
	PaymentMethodID string `json:"paymentMethodId"`
}

// CardIssuer is one issuing bank option resolved from the card bin.
type CardIssuer struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// PaymentMethodInfo identifies a card brand resolved from the bin.
type PaymentMethodInfo struct {
	ID string `json:"id"`
}

// InstallmentQuery is the input for an installment-plan lookup.
// Amount is pre-formatted with two decimal places.
type InstallmentQuery struct {
	Amount          string
	Bin             string
	PaymentMethodID string
}

// PayerCost is one raw installment plan entry as returned by the SDK.
type PayerCost struct {
	Installments       int     `json:"installments"`
	InstallmentAmount  float64 `json:"installment_amount"`
	TotalAmount        float64 `json:"total_amount"`
	RecommendedMessage string  `json:"recommended_message,omitempty"`
}

// InstallmentPlanGroup groups the payer costs of one payment method.
type InstallmentPlanGroup struct {
	PayerCosts []PayerCost `json:"payer_costs"`
}

// InstallmentOption is a normalized, user-selectable installment plan.
// Ephemeral; recomputed on every bin/payment-method/issuer change.
type InstallmentOption struct {
	Installments      int     `json:"installments"`
	InstallmentAmount float64 `json:"installmentAmount"`
	TotalAmount       float64 `json:"totalAmount"`
	Message           string  `json:"message,omitempty"`
}

// SDKError carries the structured diagnostics a browser-SDK failure may
// expose. Any field may be empty.
type SDKError struct {
	Name    string
	Message string
	Status  int
	Cause   string
}

func (e *SDKError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("sdk error %s status=%d", e.Name, e.Status)
}
