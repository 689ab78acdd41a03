package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"xandr_checkout/internal/domain/entities"
	"xandr_checkout/internal/usecase/interfaces"
)

// WebhookOutcome is the processing result reported in the webhook
// response body. The HTTP status to the gateway is always 200 so it does
// not retry; this body exists for operators.
type WebhookOutcome struct {
	OK            bool   `json:"ok"`
	Ignored       bool   `json:"ignored,omitempty"`
	Status        string `json:"status,omitempty"`
	GatewayError  string `json:"mp_error,omitempty"`
	MemboxSkipped string `json:"membox_skipped,omitempty"`
	Membox        string `json:"membox,omitempty"`
	MemboxResult  string `json:"membox_result,omitempty"`
	Error         string `json:"error,omitempty"`
}

// ProvisioningConfig names the product granted on approval.
type ProvisioningConfig struct {
	ProductName string
	OrderBumpID string
}

// IWebhookUseCase processes asynchronous gateway payment notifications.
type IWebhookUseCase interface {
	Process(ctx context.Context, paymentID string) WebhookOutcome
}

// WebhookUseCase confirms settlement from gateway notifications. The
// notification body is never trusted for status: the payment is
// re-fetched by ID from the gateway's API. On approval it fires the
// conversion event (best-effort) and provisions course access, guarded by
// an atomic per-payment marker so redeliveries cannot double-provision.
type WebhookUseCase struct {
	gateway     interfaces.IPaymentGateway
	notifier    interfaces.IConversionNotifier
	provisioner interfaces.IProvisioner
	records     interfaces.IPaymentRecordRepository
	cfg         ProvisioningConfig
	siteURL     string
}

var _ IWebhookUseCase = (*WebhookUseCase)(nil)

func NewWebhookUseCase(gateway interfaces.IPaymentGateway, notifier interfaces.IConversionNotifier, provisioner interfaces.IProvisioner, records interfaces.IPaymentRecordRepository, cfg ProvisioningConfig, siteURL string) *WebhookUseCase {
	return &WebhookUseCase{
		gateway:     gateway,
		notifier:    notifier,
		provisioner: provisioner,
		records:     records,
		cfg:         cfg,
		siteURL:     siteURL,
	}
}

func (u *WebhookUseCase) Process(ctx context.Context, paymentID string) WebhookOutcome {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return WebhookOutcome{OK: true, Ignored: true}
	}
	log.Printf("[webhook][usecase] process start payment_id=%s", paymentID)

	if u.gateway == nil {
		return WebhookOutcome{OK: true, Error: "payment gateway not configured"}
	}

	raw, err := u.gateway.GetPaymentByID(ctx, paymentID)
	if err != nil {
		log.Printf("[webhook][usecase] payment fetch failed payment_id=%s err=%v", paymentID, err)
		return WebhookOutcome{OK: true, GatewayError: err.Error()}
	}

	rec := parsePaymentRecord(raw)
	if rec.Status != entities.PaymentStatusApproved {
		log.Printf("[webhook][usecase] payment not approved payment_id=%s status=%s", paymentID, rec.Status)
		return WebhookOutcome{OK: true, Status: rec.Status}
	}

	customer, attribution, items := decodePaymentMetadata(rec.Metadata)
	u.saveAudit(ctx, paymentID, rec)
	u.notifyPurchase(ctx, paymentID, rec, customer, attribution, items)

	if !customer.Complete() {
		log.Printf("[webhook][usecase] provisioning skipped payment_id=%s reason=missing_customer_metadata", paymentID)
		return WebhookOutcome{OK: true, Status: entities.PaymentStatusApproved, MemboxSkipped: "missing_customer_metadata"}
	}

	first, err := u.markProvisioned(ctx, paymentID)
	if err != nil {
		log.Printf("[webhook][usecase] provisioning marker failed payment_id=%s err=%v", paymentID, err)
		return WebhookOutcome{OK: true, Status: entities.PaymentStatusApproved, Error: err.Error()}
	}
	if !first {
		log.Printf("[webhook][usecase] provisioning already done payment_id=%s", paymentID)
		return WebhookOutcome{OK: true, Status: entities.PaymentStatusApproved, Membox: "duplicate"}
	}

	result, err := u.provisioner.Provision(ctx, customer, u.cfg.ProductName, u.cfg.OrderBumpID)
	if err != nil {
		// Reported in the body only: a 200 keeps the gateway from
		// redelivering forever on a permanent provisioning failure.
		log.Printf("[webhook][usecase] provisioning failed payment_id=%s err=%v", paymentID, err)
		return WebhookOutcome{OK: true, Status: entities.PaymentStatusApproved, Error: err.Error()}
	}

	log.Printf("[webhook][usecase] provisioning sent payment_id=%s", paymentID)
	return WebhookOutcome{OK: true, Status: entities.PaymentStatusApproved, Membox: "sent", MemboxResult: result}
}

// markProvisioned runs the atomic check-and-set. Without a configured
// repository the guard degrades to a single always-first answer, which
// matches single-delivery behavior but not redelivery; production wiring
// always supplies the DynamoDB-backed repository.
func (u *WebhookUseCase) markProvisioned(ctx context.Context, paymentID string) (bool, error) {
	if u.provisioner == nil {
		return false, errors.New("provisioner not configured")
	}
	if u.records == nil {
		return true, nil
	}
	return u.records.MarkProvisioned(ctx, paymentID)
}

func (u *WebhookUseCase) notifyPurchase(ctx context.Context, paymentID string, rec paymentRecord, customer entities.Customer, attribution entities.Attribution, items []entities.CheckoutItem) {
	if u.notifier == nil {
		return
	}
	value := rec.TransactionAmount
	if value <= 0 {
		return
	}
	sourceURL := u.siteURL
	err := u.notifier.SendPurchase(ctx, entities.ConversionEvent{
		PaymentID:   paymentID,
		Value:       value,
		Currency:    "BRL",
		Customer:    customer,
		Attribution: attribution,
		Items:       items,
		SourceURL:   sourceURL,
		UserAgent:   attribution.UserAgent,
	})
	if err != nil {
		log.Printf("[webhook][usecase] conversion notify failed payment_id=%s err=%v", paymentID, err)
	}
}

func (u *WebhookUseCase) saveAudit(ctx context.Context, paymentID string, rec paymentRecord) {
	if u.records == nil {
		return
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := u.records.SaveAudit(ctx, entities.PaymentAuditRecord{
		PaymentID: paymentID,
		Status:    rec.Status,
		Payload:   b,
	}); err != nil {
		log.Printf("[webhook][usecase] audit save failed payment_id=%s err=%v", paymentID, err)
	}
}

// decodePaymentMetadata recovers customer identity, attribution and the
// item list from the gateway payment metadata, the only place this data
// survives between creation and confirmation.
func decodePaymentMetadata(metadata map[string]any) (entities.Customer, entities.Attribution, []entities.CheckoutItem) {
	customer := entities.Customer{
		Name:     metadataString(metadata, "customer_name"),
		Email:    metadataString(metadata, "customer_email"),
		Phone:    metadataString(metadata, "customer_phone"),
		Document: metadataString(metadata, "customer_document"),
	}
	attribution := entities.Attribution{
		FBP:       metadataString(metadata, "meta_fbp"),
		FBC:       metadataString(metadata, "meta_fbc"),
		FBClid:    metadataString(metadata, "meta_fbclid"),
		URL:       metadataString(metadata, "meta_url"),
		UserAgent: metadataString(metadata, "meta_ua"),
	}

	var items []entities.CheckoutItem
	if rawItems, ok := metadata["items"]; ok {
		if b, err := json.Marshal(rawItems); err == nil {
			_ = json.Unmarshal(b, &items)
		}
	}
	return customer, attribution, items
}

func metadataString(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return strings.TrimSpace(fmt.Sprintf("%v", v))
}
