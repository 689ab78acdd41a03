package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"xandr_checkout/internal/domain/entities"
	mock_interfaces "xandr_checkout/internal/usecase/interfaces/mocks"

	"go.uber.org/mock/gomock"
)

const approvedPaymentJSON = `{
	"id": 123,
	"status": "approved",
	"status_detail": "accredited",
	"transaction_amount": 47.0,
	"metadata": {
		"customer_name": "Maria Silva",
		"customer_email": "maria@example.com",
		"customer_phone": "11987654321",
		"customer_document": "12345678909",
		"meta_fbp": "fb.1.1",
		"items": [{"id":"curso-riqueza-001","title":"Curso A Ciência de Ficar Rico","price":47.0}]
	}
}`

func newWebhookDeps(t *testing.T) (*gomock.Controller, *mock_interfaces.MockIPaymentGateway, *mock_interfaces.MockIConversionNotifier, *mock_interfaces.MockIProvisioner, *mock_interfaces.MockIPaymentRecordRepository) {
	ctrl := gomock.NewController(t)
	return ctrl,
		mock_interfaces.NewMockIPaymentGateway(ctrl),
		mock_interfaces.NewMockIConversionNotifier(ctrl),
		mock_interfaces.NewMockIProvisioner(ctrl),
		mock_interfaces.NewMockIPaymentRecordRepository(ctrl)
}

func TestWebhookUseCase_Process_EmptyID(t *testing.T) {
	uc := NewWebhookUseCase(nil, nil, nil, nil, ProvisioningConfig{}, "")
	outcome := uc.Process(context.Background(), "  ")
	if !outcome.OK || !outcome.Ignored {
		t.Fatalf("expected ignored outcome, got %+v", outcome)
	}
}

func TestWebhookUseCase_Process_FetchFailure(t *testing.T) {
	ctrl, gateway, notifier, provisioner, records := newWebhookDeps(t)
	defer ctrl.Finish()
	uc := NewWebhookUseCase(gateway, notifier, provisioner, records, ProvisioningConfig{}, "")

	gateway.EXPECT().GetPaymentByID(gomock.Any(), "123").Return(nil, errors.New("mp timeout"))

	outcome := uc.Process(context.Background(), "123")
	if !outcome.OK || outcome.GatewayError != "mp timeout" {
		t.Fatalf("expected mp_error outcome, got %+v", outcome)
	}
}

func TestWebhookUseCase_Process_NotApproved(t *testing.T) {
	ctrl, gateway, notifier, provisioner, records := newWebhookDeps(t)
	defer ctrl.Finish()
	uc := NewWebhookUseCase(gateway, notifier, provisioner, records, ProvisioningConfig{}, "")

	gateway.EXPECT().GetPaymentByID(gomock.Any(), "123").Return(json.RawMessage(`{"id":123,"status":"pending"}`), nil)

	outcome := uc.Process(context.Background(), "123")
	if !outcome.OK || outcome.Status != "pending" {
		t.Fatalf("expected pending outcome, got %+v", outcome)
	}
	if outcome.Membox != "" || outcome.Error != "" {
		t.Fatalf("no side effects expected, got %+v", outcome)
	}
}

func TestWebhookUseCase_Process_ApprovedProvisionsOnce(t *testing.T) {
	ctrl, gateway, notifier, provisioner, records := newWebhookDeps(t)
	defer ctrl.Finish()
	cfg := ProvisioningConfig{ProductName: "Mestres do Tráfego", OrderBumpID: "main-prod-001"}
	uc := NewWebhookUseCase(gateway, notifier, provisioner, records, cfg, "https://shop.example.com")

	gateway.EXPECT().GetPaymentByID(gomock.Any(), "123").Return(json.RawMessage(approvedPaymentJSON), nil)
	records.EXPECT().SaveAudit(gomock.Any(), gomock.Any()).Return(nil)

	var sent entities.ConversionEvent
	notifier.EXPECT().SendPurchase(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, ev entities.ConversionEvent) error {
			sent = ev
			return nil
		})

	records.EXPECT().MarkProvisioned(gomock.Any(), "123").Return(true, nil)
	provisioner.EXPECT().Provision(gomock.Any(), gomock.Any(), "Mestres do Tráfego", "main-prod-001").DoAndReturn(
		func(_ context.Context, customer entities.Customer, _, _ string) (string, error) {
			if customer.Email != "maria@example.com" || customer.Document != "12345678909" {
				t.Fatalf("customer not recovered from metadata: %+v", customer)
			}
			return `{"ok":true}`, nil
		})

	outcome := uc.Process(context.Background(), "123")
	if !outcome.OK || outcome.Status != "approved" || outcome.Membox != "sent" {
		t.Fatalf("expected sent outcome, got %+v", outcome)
	}
	if outcome.MemboxResult != `{"ok":true}` {
		t.Fatalf("membox result not relayed: %+v", outcome)
	}

	if sent.PaymentID != "123" || sent.Value != 47.0 || sent.Attribution.FBP != "fb.1.1" {
		t.Fatalf("conversion event wrong: %+v", sent)
	}
	if len(sent.Items) != 1 || sent.Items[0].ID != "curso-riqueza-001" {
		t.Fatalf("items not recovered: %+v", sent.Items)
	}
}

func TestWebhookUseCase_Process_DuplicateDelivery(t *testing.T) {
	ctrl, gateway, notifier, provisioner, records := newWebhookDeps(t)
	defer ctrl.Finish()
	uc := NewWebhookUseCase(gateway, notifier, provisioner, records, ProvisioningConfig{}, "")

	gateway.EXPECT().GetPaymentByID(gomock.Any(), "123").Return(json.RawMessage(approvedPaymentJSON), nil)
	records.EXPECT().SaveAudit(gomock.Any(), gomock.Any()).Return(nil)
	notifier.EXPECT().SendPurchase(gomock.Any(), gomock.Any()).Return(nil)
	records.EXPECT().MarkProvisioned(gomock.Any(), "123").Return(false, nil)
	// Provision must not be called.

	outcome := uc.Process(context.Background(), "123")
	if !outcome.OK || outcome.Membox != "duplicate" {
		t.Fatalf("expected duplicate outcome, got %+v", outcome)
	}
}

func TestWebhookUseCase_Process_MissingCustomerMetadata(t *testing.T) {
	ctrl, gateway, notifier, provisioner, records := newWebhookDeps(t)
	defer ctrl.Finish()
	uc := NewWebhookUseCase(gateway, notifier, provisioner, records, ProvisioningConfig{}, "")

	gateway.EXPECT().GetPaymentByID(gomock.Any(), "123").Return(json.RawMessage(`{"id":123,"status":"approved","transaction_amount":47.0,"metadata":{"customer_email":"maria@example.com"}}`), nil)
	records.EXPECT().SaveAudit(gomock.Any(), gomock.Any()).Return(nil)
	notifier.EXPECT().SendPurchase(gomock.Any(), gomock.Any()).Return(nil)
	// MarkProvisioned and Provision must not be called.

	outcome := uc.Process(context.Background(), "123")
	if !outcome.OK || outcome.MemboxSkipped != "missing_customer_metadata" {
		t.Fatalf("expected membox_skipped outcome, got %+v", outcome)
	}
}

func TestWebhookUseCase_Process_ProvisionFailure(t *testing.T) {
	ctrl, gateway, notifier, provisioner, records := newWebhookDeps(t)
	defer ctrl.Finish()
	uc := NewWebhookUseCase(gateway, notifier, provisioner, records, ProvisioningConfig{}, "")

	gateway.EXPECT().GetPaymentByID(gomock.Any(), "123").Return(json.RawMessage(approvedPaymentJSON), nil)
	records.EXPECT().SaveAudit(gomock.Any(), gomock.Any()).Return(nil)
	notifier.EXPECT().SendPurchase(gomock.Any(), gomock.Any()).Return(nil)
	records.EXPECT().MarkProvisioned(gomock.Any(), "123").Return(true, nil)
	provisioner.EXPECT().Provision(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("membox webhook failed: 500"))

	outcome := uc.Process(context.Background(), "123")
	if !outcome.OK || outcome.Error != "membox webhook failed: 500" {
		t.Fatalf("expected error outcome, got %+v", outcome)
	}
}

func TestWebhookUseCase_Process_ZeroAmountSkipsConversion(t *testing.T) {
	ctrl, gateway, notifier, provisioner, records := newWebhookDeps(t)
	defer ctrl.Finish()
	uc := NewWebhookUseCase(gateway, notifier, provisioner, records, ProvisioningConfig{}, "")

	gateway.EXPECT().GetPaymentByID(gomock.Any(), "123").Return(json.RawMessage(`{"id":123,"status":"approved","transaction_amount":0,"metadata":{"customer_name":"M","customer_email":"m@x.com","customer_phone":"11911112222","customer_document":"12345678909"}}`), nil)
	records.EXPECT().SaveAudit(gomock.Any(), gomock.Any()).Return(nil)
	// SendPurchase must not be called for a zero amount.
	records.EXPECT().MarkProvisioned(gomock.Any(), "123").Return(true, nil)
	provisioner.EXPECT().Provision(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("ok", nil)

	outcome := uc.Process(context.Background(), "123")
	if !outcome.OK || outcome.Membox != "sent" {
		t.Fatalf("expected sent outcome, got %+v", outcome)
	}
}

func TestDecodePaymentMetadata(t *testing.T) {
	metadata := map[string]any{
		"customer_name":  "Maria",
		"customer_phone": 11987654321,
		"meta_fbc":       "fb.1.2",
		"items":          []any{map[string]any{"id": "x", "title": "X", "price": 10.0}},
	}
	customer, attribution, items := decodePaymentMetadata(metadata)
	if customer.Name != "Maria" {
		t.Fatalf("unexpected customer: %+v", customer)
	}
	if customer.Phone != "11987654321" {
		t.Fatalf("numeric metadata must stringify, got %q", customer.Phone)
	}
	if attribution.FBC != "fb.1.2" {
		t.Fatalf("unexpected attribution: %+v", attribution)
	}
	if len(items) != 1 || items[0].Price != 10.0 {
		t.Fatalf("unexpected items: %+v", items)
	}
}
