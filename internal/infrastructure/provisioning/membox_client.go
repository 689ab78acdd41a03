package provisioning

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"xandr_checkout/internal/domain/entities"
)

var ErrMemboxNotConfigured = errors.New("missing MEMBOX_WEBHOOK_URL or MEMBOX_WEBHOOK_CREDENTIAL")

// MemboxClient grants course access through the membership platform's
// webhook. One attempt per call; the caller decides what to do with a
// failure.
type MemboxClient struct {
	url        string
	credential string
	httpClient *http.Client
}

func NewMemboxClientFromEnv() *MemboxClient {
	return &MemboxClient{
		url:        os.Getenv("MEMBOX_WEBHOOK_URL"),
		credential: os.Getenv("MEMBOX_WEBHOOK_CREDENTIAL"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func NewMemboxClient(url, credential string, httpClient *http.Client) *MemboxClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &MemboxClient{url: url, credential: credential, httpClient: httpClient}
}

type memboxCustomer struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Document string `json:"document"`
}

type memboxProduct struct {
	Name string `json:"name"`
}

type memboxOrderBump struct {
	ID string `json:"id"`
}

type memboxPayload struct {
	Type       string            `json:"type"`
	Customer   memboxCustomer    `json:"customer"`
	Product    memboxProduct     `json:"product"`
	OrderBumps []memboxOrderBump `json:"order_bumps"`
	Credential string            `json:"credential"`
}

func (c *MemboxClient) Provision(ctx context.Context, customer entities.Customer, productName, orderBumpID string) (string, error) {
	if c.url == "" || c.credential == "" {
		return "", ErrMemboxNotConfigured
	}

	payload := memboxPayload{
		Type: "insert",
		Customer: memboxCustomer{
			Name:     customer.Name,
			Email:    customer.Email,
			Phone:    customer.Phone,
			Document: customer.Document,
		},
		Product:    memboxProduct{Name: productName},
		OrderBumps: []memboxOrderBump{{ID: orderBumpID}},
		Credential: c.credential,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	text, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("membox webhook failed: %d %s", resp.StatusCode, string(text))
	}

	log.Printf("[provisioning][membox] access granted email=%s product=%q", customer.Email, productName)
	return string(text), nil
}
