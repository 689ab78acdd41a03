package analytics

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"xandr_checkout/internal/domain/entities"
)

const defaultGraphAPIBase = "https://graph.facebook.com/v20.0"

// MetaConversionsClient sends server-side Purchase events to the Meta
// Conversions API. PII is hashed with SHA-256 before transmission; raw
// values never leave the process. Unconfigured credentials make every
// send a silent skip.
type MetaConversionsClient struct {
	pixelID       string
	accessToken   string
	testEventCode string
	baseURL       string
	httpClient    *http.Client
}

func NewMetaConversionsClientFromEnv() *MetaConversionsClient {
	return &MetaConversionsClient{
		pixelID:       os.Getenv("META_PIXEL_ID"),
		accessToken:   os.Getenv("META_ACCESS_TOKEN"),
		testEventCode: os.Getenv("META_TEST_EVENT_CODE"),
		baseURL:       defaultGraphAPIBase,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
	}
}

// NewMetaConversionsClient builds a client against a specific endpoint;
// used by tests.
func NewMetaConversionsClient(pixelID, accessToken, baseURL string, httpClient *http.Client) *MetaConversionsClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &MetaConversionsClient{
		pixelID:     pixelID,
		accessToken: accessToken,
		baseURL:     baseURL,
		httpClient:  httpClient,
	}
}

type metaUserData struct {
	Em         string `json:"em,omitempty"`
	Ph         string `json:"ph,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
	FBP        string `json:"fbp,omitempty"`
	FBC        string `json:"fbc,omitempty"`
}

type metaContent struct {
	ID        string  `json:"id"`
	Quantity  int     `json:"quantity"`
	ItemPrice float64 `json:"item_price"`
}

type metaCustomData struct {
	Currency string        `json:"currency"`
	Value    float64       `json:"value"`
	Contents []metaContent `json:"contents,omitempty"`
}

type metaEvent struct {
	EventName       string         `json:"event_name"`
	EventTime       int64          `json:"event_time"`
	EventID         string         `json:"event_id,omitempty"`
	ActionSource    string         `json:"action_source"`
	EventSourceURL  string         `json:"event_source_url,omitempty"`
	ClientUserAgent string         `json:"client_user_agent,omitempty"`
	ClientIPAddress string         `json:"client_ip_address,omitempty"`
	UserData        metaUserData   `json:"user_data"`
	CustomData      metaCustomData `json:"custom_data"`
}

type metaPayload struct {
	Data          []metaEvent `json:"data"`
	TestEventCode string      `json:"test_event_code,omitempty"`
}

func (c *MetaConversionsClient) SendPurchase(ctx context.Context, ev entities.ConversionEvent) error {
	if c.pixelID == "" || c.accessToken == "" {
		log.Printf("[analytics][meta] skipped payment_id=%s reason=missing_meta_env", ev.PaymentID)
		return nil
	}

	contents := make([]metaContent, 0, len(ev.Items))
	for _, it := range ev.Items {
		contents = append(contents, metaContent{ID: it.ID, Quantity: 1, ItemPrice: it.Price})
	}

	payload := metaPayload{
		Data: []metaEvent{{
			EventName:       "Purchase",
			EventTime:       time.Now().Unix(),
			EventID:         ev.PaymentID,
			ActionSource:    "website",
			EventSourceURL:  ev.SourceURL,
			ClientUserAgent: ev.UserAgent,
			ClientIPAddress: ev.ClientIP,
			UserData: metaUserData{
				Em:         hashIfPresent(strings.ToLower(strings.TrimSpace(ev.Customer.Email))),
				Ph:         hashIfPresent(digitsOnly(ev.Customer.Phone)),
				ExternalID: hashIfPresent(digitsOnly(ev.Customer.Document)),
				FBP:        ev.Attribution.FBP,
				FBC:        ev.Attribution.FBC,
			},
			CustomData: metaCustomData{
				Currency: ev.Currency,
				Value:    ev.Value,
				Contents: contents,
			},
		}},
		TestEventCode: c.testEventCode,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/%s/events?access_token=%s", c.baseURL, url.PathEscape(c.pixelID), url.QueryEscape(c.accessToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("meta conversions api failed: %d %s", resp.StatusCode, string(respBody))
	}

	log.Printf("[analytics][meta] purchase sent payment_id=%s value=%.2f", ev.PaymentID, ev.Value)
	return nil
}

func hashIfPresent(v string) string {
	if v == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(v))
	return hex.EncodeToString(sum[:])
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
