package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	request "xandr_checkout/internal/adapter/http/dto/request"
	"xandr_checkout/internal/usecase"

	"github.com/gin-gonic/gin"
)

// WebhookHandler receives Mercado Pago payment notifications.
//
// The response is always 200 once the request is authentic, regardless of
// processing outcome, so the gateway does not retry forever. The outcome
// is reported in the body for operators.

type WebhookHandler struct {
	usecase usecase.IWebhookUseCase
}

func NewWebhookHandler(uc usecase.IWebhookUseCase) *WebhookHandler {
	return &WebhookHandler{usecase: uc}
}

// HandleNotification processes a payment notification.
func (h *WebhookHandler) HandleNotification(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		log.Printf("[webhook][handler] body read failed err=%v", err)
		c.JSON(http.StatusOK, usecase.WebhookOutcome{OK: true, Ignored: true})
		return
	}

	paymentID := extractPaymentID(raw, c.Query("id"))

	if secret := os.Getenv("MP_WEBHOOK_SECRET"); secret != "" {
		if !verifySignature(c, paymentID, secret) {
			log.Printf("[webhook][handler] signature mismatch payment_id=%s", paymentID)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
	}

	log.Printf("[webhook][handler] notification received payment_id=%s", paymentID)
	outcome := h.usecase.Process(c.Request.Context(), paymentID)
	c.JSON(http.StatusOK, outcome)
}

// extractPaymentID reads the payment id from the notification body,
// falling back to the id query parameter used by older notification
// formats.
func extractPaymentID(raw []byte, queryID string) string {
	var body request.WebhookNotificationRequest
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err == nil {
			if id := body.PaymentID(); id != "" {
				return id
			}
		}
	}
	return strings.TrimSpace(queryID)
}

// verifySignature checks the x-signature header against the notification
// manifest as documented by Mercado Pago: HMAC-SHA256 over
// "id:{data.id};request-id:{x-request-id};ts:{ts};" with empty parts
// dropped.
func verifySignature(c *gin.Context, paymentID, secret string) bool {
	sig := c.GetHeader("x-signature")
	if sig == "" {
		return false
	}

	var ts, v1 string
	for _, part := range strings.Split(sig, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(k) {
		case "ts":
			ts = strings.TrimSpace(v)
		case "v1":
			v1 = strings.TrimSpace(v)
		}
	}
	if ts == "" || v1 == "" {
		return false
	}

	var manifest strings.Builder
	if paymentID != "" {
		fmt.Fprintf(&manifest, "id:%s;", strings.ToLower(paymentID))
	}
	if reqID := c.GetHeader("x-request-id"); reqID != "" {
		fmt.Fprintf(&manifest, "request-id:%s;", reqID)
	}
	fmt.Fprintf(&manifest, "ts:%s;", ts)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest.String()))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(v1)))
}
