package webclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"xandr_checkout/internal/domain/entities"
	"xandr_checkout/internal/usecase/interfaces"
)

// CheckoutAPIClient is the checkout engine's HTTP binding onto the
// backend: the concrete ICheckoutAPI used outside tests.
type CheckoutAPIClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ interfaces.ICheckoutAPI = (*CheckoutAPIClient)(nil)

func NewCheckoutAPIClient(baseURL string, httpClient *http.Client) *CheckoutAPIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &CheckoutAPIClient{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

type apiErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (c *CheckoutAPIClient) CreatePayment(ctx context.Context, order entities.CheckoutOrder) (entities.PaymentCreation, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return entities.PaymentCreation{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/payments", bytes.NewReader(body))
	if err != nil {
		return entities.PaymentCreation{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return entities.PaymentCreation{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return entities.PaymentCreation{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiErrorBody
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return entities.PaymentCreation{}, errors.New(apiErr.Error)
		}
		return entities.PaymentCreation{}, fmt.Errorf("create payment failed: %d", resp.StatusCode)
	}

	var creation entities.PaymentCreation
	if err := json.Unmarshal(raw, &creation); err != nil {
		return entities.PaymentCreation{}, err
	}
	return creation, nil
}

func (c *CheckoutAPIClient) GetPaymentStatus(ctx context.Context, paymentID string) (entities.PaymentStatusView, error) {
	endpoint := fmt.Sprintf("%s/v1/checkout/payments/status?id=%s", c.baseURL, url.QueryEscape(paymentID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return entities.PaymentStatusView{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return entities.PaymentStatusView{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return entities.PaymentStatusView{}, fmt.Errorf("payment status failed: %d", resp.StatusCode)
	}

	var view entities.PaymentStatusView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		return entities.PaymentStatusView{}, err
	}
	return view, nil
}
