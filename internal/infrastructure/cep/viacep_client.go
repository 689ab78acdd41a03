package cep

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"xandr_checkout/internal/domain/entities"
	"xandr_checkout/internal/usecase/interfaces"
)

const defaultViaCEPBase = "https://viacep.com.br"

// ViaCEPClient resolves Brazilian postal codes through the public ViaCEP
// service.
type ViaCEPClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewViaCEPClient() *ViaCEPClient {
	return &ViaCEPClient{
		baseURL:    defaultViaCEPBase,
		httpClient: &http.Client{Timeout: 8 * time.Second},
	}
}

// NewViaCEPClientWithBase targets a specific endpoint; used by tests.
func NewViaCEPClientWithBase(baseURL string, httpClient *http.Client) *ViaCEPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 8 * time.Second}
	}
	return &ViaCEPClient{baseURL: baseURL, httpClient: httpClient}
}

type viaCEPResponse struct {
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
	// ViaCEP has returned both a boolean and the string "true" here.
	Erro json.RawMessage `json:"erro"`
}

func (r viaCEPResponse) notFound() bool {
	s := string(r.Erro)
	return s == "true" || s == `"true"`
}

func (c *ViaCEPClient) Lookup(ctx context.Context, cep string) (entities.Address, error) {
	url := fmt.Sprintf("%s/ws/%s/json/", c.baseURL, cep)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return entities.Address{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return entities.Address{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return entities.Address{}, fmt.Errorf("viacep lookup failed: %d", resp.StatusCode)
	}

	var body viaCEPResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return entities.Address{}, err
	}
	if body.notFound() {
		return entities.Address{}, interfaces.ErrAddressNotFound
	}

	log.Printf("[cep][viacep] resolved cep=%s city=%s uf=%s", cep, body.Localidade, body.UF)
	return entities.Address{
		Street:       body.Logradouro,
		Neighborhood: body.Bairro,
		City:         body.Localidade,
		State:        body.UF,
	}, nil
}
