package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"xandr_checkout/internal/domain/entities"
	"xandr_checkout/internal/usecase/interfaces"

	"github.com/google/uuid"
)

var (
	ErrInvalidCheckoutPayload = errors.New("invalid checkout payload")
	ErrInvalidPaymentMethod   = errors.New("invalid payment method")
	ErrMissingCardData        = errors.New("missing card token or payment method")
	ErrInvalidItemsTotal      = errors.New("invalid items total")
	ErrInvalidPaymentID       = errors.New("invalid payment id")
)

const maxDescriptionLen = 240

// GatewayError is a structured rejection relayed from the payment
// provider; HTTPStatus mirrors the provider's response status.
type GatewayError struct {
	HTTPStatus int
	Message    string
}

func (e *GatewayError) Error() string {
	return e.Message
}

// RequestContext carries per-request transport facts the conversion
// event needs.
type RequestContext struct {
	ClientIP  string
	UserAgent string
}

// CheckoutConfig is the static configuration of the payment flow.
type CheckoutConfig struct {
	// PublicSiteURL derives the webhook callback URL and the default
	// conversion event source URL.
	PublicSiteURL string
}

func (c CheckoutConfig) notificationURL() string {
	if c.PublicSiteURL == "" {
		return ""
	}
	return strings.TrimRight(c.PublicSiteURL, "/") + "/v1/webhooks/mercadopago"
}

// ICheckoutPaymentUseCase creates payments on the gateway and reads back
// their authoritative status.
type ICheckoutPaymentUseCase interface {
	CreatePayment(ctx context.Context, order entities.CheckoutOrder, reqCtx RequestContext) (entities.PaymentCreation, error)
	GetStatus(ctx context.Context, paymentID string) (entities.PaymentStatusView, error)
}

// CheckoutPaymentUseCase translates an order into the gateway's
// payment-creation request. Customer identity and attribution ride in the
// gateway metadata: with no local order database, the payment record's
// metadata is the only persistence between creation and webhook
// confirmation.
type CheckoutPaymentUseCase struct {
	gateway  interfaces.IPaymentGateway
	notifier interfaces.IConversionNotifier
	records  interfaces.IPaymentRecordRepository
	cfg      CheckoutConfig
}

var _ ICheckoutPaymentUseCase = (*CheckoutPaymentUseCase)(nil)

func NewCheckoutPaymentUseCase(gateway interfaces.IPaymentGateway, notifier interfaces.IConversionNotifier, records interfaces.IPaymentRecordRepository, cfg CheckoutConfig) *CheckoutPaymentUseCase {
	return &CheckoutPaymentUseCase{gateway: gateway, notifier: notifier, records: records, cfg: cfg}
}

func (u *CheckoutPaymentUseCase) CreatePayment(ctx context.Context, order entities.CheckoutOrder, reqCtx RequestContext) (entities.PaymentCreation, error) {
	log.Printf("[payment][usecase] create start method=%s items=%d", order.PaymentMethod, len(order.Items))

	if u.gateway == nil {
		return entities.PaymentCreation{}, errors.New("payment gateway not configured")
	}
	if order.User.Email == "" || len(order.Items) == 0 {
		log.Printf("[payment][usecase] invalid payload (missing email or items)")
		return entities.PaymentCreation{}, ErrInvalidCheckoutPayload
	}
	if !order.PaymentMethod.Valid() {
		log.Printf("[payment][usecase] invalid payment method method=%q", order.PaymentMethod)
		return entities.PaymentCreation{}, ErrInvalidPaymentMethod
	}
	if order.PaymentMethod == entities.PaymentMethodCreditCard {
		if order.Card == nil || order.Card.Token == "" || order.Card.PaymentMethodID == "" {
			log.Printf("[payment][usecase] missing card data")
			return entities.PaymentCreation{}, ErrMissingCardData
		}
	}

	total := entities.ItemsTotal(order.Items)
	if math.IsNaN(total) || math.IsInf(total, 0) || total <= 0 {
		log.Printf("[payment][usecase] invalid items total total=%v", total)
		return entities.PaymentCreation{}, ErrInvalidItemsTotal
	}

	payload, err := json.Marshal(u.buildGatewayPayload(order, total))
	if err != nil {
		return entities.PaymentCreation{}, err
	}

	log.Printf("[payment][usecase] calling payment gateway method=%s amount=%.2f", order.PaymentMethod, total)
	paymentID, status, providerResp, err := u.gateway.CreatePayment(ctx, payload)
	if err != nil {
		log.Printf("[payment][usecase] payment gateway failed err=%v", err)
		return entities.PaymentCreation{}, relayGatewayError(err)
	}
	log.Printf("[payment][usecase] payment gateway success payment_id=%s status=%s", paymentID, status)

	parsed := parsePaymentRecord(providerResp)
	u.saveAudit(ctx, paymentID, status, providerResp)

	if order.PaymentMethod == entities.PaymentMethodCreditCard && status == entities.PaymentStatusApproved {
		// Covers the case where no webhook arrives promptly. Best-effort:
		// the webhook path fires the same event id and the analytics
		// platform deduplicates.
		u.notifyPurchase(ctx, paymentID, total, order, reqCtx)
	}

	return entities.PaymentCreation{
		Success:      true,
		PaymentID:    paymentID,
		Status:       status,
		StatusDetail: parsed.StatusDetail,
		QRCode:       parsed.QRCode(),
		QRCodeBase64: parsed.QRCodeBase64(),
		TicketURL:    parsed.TicketURL(),
	}, nil
}

func (u *CheckoutPaymentUseCase) GetStatus(ctx context.Context, paymentID string) (entities.PaymentStatusView, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return entities.PaymentStatusView{}, ErrInvalidPaymentID
	}
	if u.gateway == nil {
		return entities.PaymentStatusView{}, errors.New("payment gateway not configured")
	}

	raw, err := u.gateway.GetPaymentByID(ctx, paymentID)
	if err != nil {
		log.Printf("[payment][usecase] status fetch failed payment_id=%s err=%v", paymentID, err)
		return entities.PaymentStatusView{}, relayGatewayError(err)
	}

	rec := parsePaymentRecord(raw)
	return entities.PaymentStatusView{
		ID:           rec.ID.String(),
		Status:       rec.Status,
		StatusDetail: rec.StatusDetail,
	}, nil
}

func (u *CheckoutPaymentUseCase) buildGatewayPayload(order entities.CheckoutOrder, total float64) map[string]any {
	metadata := map[string]any{
		"customer_name":     order.User.Name,
		"customer_email":    order.User.Email,
		"customer_phone":    order.User.Phone,
		"customer_document": order.User.Document,
		"items":             order.Items,
		// The SDK issues the X-Idempotency-Key header per request; the key
		// is echoed into metadata for reconciliation.
		"idempotency_key": uuid.NewString(),
	}
	if order.Meta.FBP != "" {
		metadata["meta_fbp"] = order.Meta.FBP
	}
	if order.Meta.FBC != "" {
		metadata["meta_fbc"] = order.Meta.FBC
	}
	if order.Meta.FBClid != "" {
		metadata["meta_fbclid"] = order.Meta.FBClid
	}
	if order.Meta.URL != "" {
		metadata["meta_url"] = order.Meta.URL
	}
	if order.Meta.UserAgent != "" {
		metadata["meta_ua"] = order.Meta.UserAgent
	}

	payload := map[string]any{
		"transaction_amount": total,
		"description":        describeItems(order.Items),
		"payer":              map[string]any{"email": order.User.Email},
		"metadata":           metadata,
	}
	if url := u.cfg.notificationURL(); url != "" {
		payload["notification_url"] = url
	}

	if order.PaymentMethod == entities.PaymentMethodPix {
		payload["payment_method_id"] = "pix"
		return payload
	}

	payload["token"] = order.Card.Token
	payload["payment_method_id"] = order.Card.PaymentMethodID
	installments := order.Card.Installments
	if installments < 1 {
		installments = 1
	}
	payload["installments"] = installments
	// The SDK's payment.Request declares issuer_id as a string.
	if order.Card.IssuerID != "" {
		payload["issuer_id"] = order.Card.IssuerID
	}
	payload["payer"] = map[string]any{
		"email": order.User.Email,
		"identification": map[string]any{
			"type":   "CPF",
			"number": order.User.Document,
		},
	}
	return payload
}

func (u *CheckoutPaymentUseCase) notifyPurchase(ctx context.Context, paymentID string, total float64, order entities.CheckoutOrder, reqCtx RequestContext) {
	if u.notifier == nil {
		return
	}
	sourceURL := order.Meta.URL
	if sourceURL == "" {
		sourceURL = u.cfg.PublicSiteURL
	}
	userAgent := order.Meta.UserAgent
	if userAgent == "" {
		userAgent = reqCtx.UserAgent
	}
	err := u.notifier.SendPurchase(ctx, entities.ConversionEvent{
		PaymentID:   paymentID,
		Value:       total,
		Currency:    "BRL",
		Customer:    order.User,
		Attribution: order.Meta,
		Items:       order.Items,
		SourceURL:   sourceURL,
		ClientIP:    reqCtx.ClientIP,
		UserAgent:   userAgent,
	})
	if err != nil {
		log.Printf("[payment][usecase] conversion notify failed payment_id=%s err=%v", paymentID, err)
	}
}

func (u *CheckoutPaymentUseCase) saveAudit(ctx context.Context, paymentID, status string, raw json.RawMessage) {
	if u.records == nil || paymentID == "" {
		return
	}
	err := u.records.SaveAudit(ctx, entities.PaymentAuditRecord{
		PaymentID: paymentID,
		Status:    status,
		Payload:   raw,
		Date:      time.Now().UTC(),
	})
	if err != nil {
		log.Printf("[payment][usecase] audit save failed payment_id=%s err=%v", paymentID, err)
	}
}

func describeItems(items []entities.CheckoutItem) string {
	titles := make([]string, 0, len(items))
	for _, it := range items {
		if it.Title != "" {
			titles = append(titles, it.Title)
		}
	}
	desc := strings.Join(titles, " + ")
	if desc == "" {
		return "Compra"
	}
	if len(desc) > maxDescriptionLen {
		desc = desc[:maxDescriptionLen]
	}
	return desc
}

// paymentRecord is the parsed view of a gateway payment payload.
type paymentRecord struct {
	ID                 json.Number    `json:"id"`
	Status             string         `json:"status"`
	StatusDetail       string         `json:"status_detail"`
	TransactionAmount  float64        `json:"transaction_amount"`
	Metadata           map[string]any `json:"metadata"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode       string `json:"qr_code"`
			QRCodeBase64 string `json:"qr_code_base64"`
			TicketURL    string `json:"ticket_url"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

func (r paymentRecord) QRCode() string       { return r.PointOfInteraction.TransactionData.QRCode }
func (r paymentRecord) QRCodeBase64() string { return r.PointOfInteraction.TransactionData.QRCodeBase64 }
func (r paymentRecord) TicketURL() string    { return r.PointOfInteraction.TransactionData.TicketURL }

func parsePaymentRecord(raw json.RawMessage) paymentRecord {
	var rec paymentRecord
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &rec); err != nil {
			log.Printf("[payment][usecase] provider response unmarshal failed err=%v", err)
		}
	}
	return rec
}

// relayGatewayError converts a provider failure into a GatewayError with
// a human-readable message built from the provider's structured cause
// list and the mirrored HTTP status. Provider errors surface as the raw
// response body embedded in the error text.
func relayGatewayError(err error) error {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return err
	}

	msg := err.Error()
	status := 502

	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Status  int    `json:"status"`
		Cause   []struct {
			Code        any    `json:"code"`
			Description string `json:"description"`
			Detail      string `json:"detail"`
		} `json:"cause"`
	}

	start := strings.Index(msg, "{")
	end := strings.LastIndex(msg, "}")
	if start >= 0 && end > start && json.Unmarshal([]byte(msg[start:end+1]), &body) == nil {
		if body.Status != 0 {
			status = body.Status
		}

		causes := make([]string, 0, len(body.Cause))
		for _, c := range body.Cause {
			parts := make([]string, 0, 3)
			if c.Code != nil {
				if s := strings.TrimSpace(fmt.Sprintf("%v", c.Code)); s != "" && s != "<nil>" {
					parts = append(parts, s)
				}
			}
			if c.Description != "" {
				parts = append(parts, c.Description)
			}
			if c.Detail != "" {
				parts = append(parts, c.Detail)
			}
			if len(parts) > 0 {
				causes = append(causes, strings.Join(parts, " - "))
			}
		}

		switch {
		case body.Message != "":
			msg = body.Message
		case body.Error != "":
			msg = body.Error
		case body.Status != 0:
			msg = strconv.Itoa(body.Status)
		case len(causes) > 0:
			msg = "Mercado Pago: " + strings.Join(causes, " | ")
		default:
			msg = "Mercado Pago error"
		}
	}

	return &GatewayError{HTTPStatus: status, Message: msg}
}
