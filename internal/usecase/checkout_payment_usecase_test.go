package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"xandr_checkout/internal/domain/entities"
	mock_interfaces "xandr_checkout/internal/usecase/interfaces/mocks"

	"github.com/mercadopago/sdk-go/pkg/payment"
	"go.uber.org/mock/gomock"
)

func validOrder() entities.CheckoutOrder {
	return entities.CheckoutOrder{
		User: entities.Customer{
			Name:     "Maria Silva",
			Email:    "maria@example.com",
			Phone:    "11987654321",
			Document: "12345678909",
		},
		Items:         []entities.CheckoutItem{entities.MainProduct},
		PaymentMethod: entities.PaymentMethodPix,
	}
}

func TestCheckoutPaymentUseCase_CreatePayment_Validations(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
	uc := NewCheckoutPaymentUseCase(gateway, nil, nil, CheckoutConfig{})

	t.Run("missing email", func(t *testing.T) {
		order := validOrder()
		order.User.Email = ""
		_, err := uc.CreatePayment(context.Background(), order, RequestContext{})
		if !errors.Is(err, ErrInvalidCheckoutPayload) {
			t.Fatalf("expected ErrInvalidCheckoutPayload, got %v", err)
		}
	})

	t.Run("no items", func(t *testing.T) {
		order := validOrder()
		order.Items = nil
		_, err := uc.CreatePayment(context.Background(), order, RequestContext{})
		if !errors.Is(err, ErrInvalidCheckoutPayload) {
			t.Fatalf("expected ErrInvalidCheckoutPayload, got %v", err)
		}
	})

	t.Run("unknown payment method", func(t *testing.T) {
		order := validOrder()
		order.PaymentMethod = "boleto"
		_, err := uc.CreatePayment(context.Background(), order, RequestContext{})
		if !errors.Is(err, ErrInvalidPaymentMethod) {
			t.Fatalf("expected ErrInvalidPaymentMethod, got %v", err)
		}
	})

	t.Run("card without token", func(t *testing.T) {
		order := validOrder()
		order.PaymentMethod = entities.PaymentMethodCreditCard
		order.Card = &entities.CardPaymentData{PaymentMethodID: "visa"}
		_, err := uc.CreatePayment(context.Background(), order, RequestContext{})
		if !errors.Is(err, ErrMissingCardData) {
			t.Fatalf("expected ErrMissingCardData, got %v", err)
		}
	})

	t.Run("zero total", func(t *testing.T) {
		order := validOrder()
		order.Items = []entities.CheckoutItem{{ID: "x", Title: "X", Price: 0}}
		_, err := uc.CreatePayment(context.Background(), order, RequestContext{})
		if !errors.Is(err, ErrInvalidItemsTotal) {
			t.Fatalf("expected ErrInvalidItemsTotal, got %v", err)
		}
	})

	t.Run("gateway not configured", func(t *testing.T) {
		uc := NewCheckoutPaymentUseCase(nil, nil, nil, CheckoutConfig{})
		_, err := uc.CreatePayment(context.Background(), validOrder(), RequestContext{})
		if err == nil || err.Error() != "payment gateway not configured" {
			t.Fatalf("expected gateway not configured error, got %v", err)
		}
	})
}

func TestCheckoutPaymentUseCase_CreatePayment_PixPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
	uc := NewCheckoutPaymentUseCase(gateway, nil, nil, CheckoutConfig{PublicSiteURL: "https://shop.example.com/"})

	var captured map[string]any
	gateway.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, payload json.RawMessage) (string, string, json.RawMessage, error) {
			if err := json.Unmarshal(payload, &captured); err != nil {
				t.Fatalf("payload is not valid json: %v", err)
			}
			resp := json.RawMessage(`{"id":123,"status":"pending","point_of_interaction":{"transaction_data":{"qr_code":"qr-data","qr_code_base64":"qr-b64","ticket_url":"https://mp/ticket"}}}`)
			return "123", "pending", resp, nil
		})

	order := validOrder()
	order.Meta = entities.Attribution{FBP: "fb.1.1", URL: "https://shop.example.com/checkout"}
	created, err := uc.CreatePayment(context.Background(), order, RequestContext{ClientIP: "1.2.3.4"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !created.Success || created.PaymentID != "123" || created.Status != "pending" {
		t.Fatalf("unexpected creation result: %+v", created)
	}
	if created.QRCode != "qr-data" || created.QRCodeBase64 != "qr-b64" || created.TicketURL != "https://mp/ticket" {
		t.Fatalf("pix data not relayed: %+v", created)
	}

	if captured["payment_method_id"] != "pix" {
		t.Fatalf("expected pix payment_method_id, got %v", captured["payment_method_id"])
	}
	if captured["transaction_amount"].(float64) != 47.00 {
		t.Fatalf("unexpected amount: %v", captured["transaction_amount"])
	}
	if captured["description"] != "Curso A Ciência de Ficar Rico" {
		t.Fatalf("unexpected description: %v", captured["description"])
	}
	if captured["notification_url"] != "https://shop.example.com/v1/webhooks/mercadopago" {
		t.Fatalf("unexpected notification_url: %v", captured["notification_url"])
	}

	metadata := captured["metadata"].(map[string]any)
	if metadata["customer_email"] != "maria@example.com" || metadata["customer_document"] != "12345678909" {
		t.Fatalf("customer metadata missing: %v", metadata)
	}
	if metadata["meta_fbp"] != "fb.1.1" || metadata["meta_url"] != "https://shop.example.com/checkout" {
		t.Fatalf("attribution metadata missing: %v", metadata)
	}
	if metadata["idempotency_key"] == "" || metadata["idempotency_key"] == nil {
		t.Fatal("idempotency_key missing from metadata")
	}
	if _, ok := metadata["meta_fbc"]; ok {
		t.Fatal("empty attribution keys must be omitted")
	}
}

func TestCheckoutPaymentUseCase_CreatePayment_CardPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
	notifier := mock_interfaces.NewMockIConversionNotifier(ctrl)
	uc := NewCheckoutPaymentUseCase(gateway, notifier, nil, CheckoutConfig{PublicSiteURL: "https://shop.example.com"})

	var captured map[string]any
	gateway.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, payload json.RawMessage) (string, string, json.RawMessage, error) {
			_ = json.Unmarshal(payload, &captured)
			return "777", "approved", json.RawMessage(`{"id":777,"status":"approved","status_detail":"accredited"}`), nil
		})

	var sent entities.ConversionEvent
	notifier.EXPECT().SendPurchase(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, ev entities.ConversionEvent) error {
			sent = ev
			return nil
		})

	order := validOrder()
	order.PaymentMethod = entities.PaymentMethodCreditCard
	order.Card = &entities.CardPaymentData{
		Token:           "tok-1",
		Bin:             "503143",
		IssuerID:        "24",
		Installments:    0,
		PaymentMethodID: "master",
	}

	created, err := uc.CreatePayment(context.Background(), order, RequestContext{ClientIP: "9.9.9.9", UserAgent: "UA/1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Status != "approved" || created.StatusDetail != "accredited" {
		t.Fatalf("unexpected result: %+v", created)
	}

	if captured["token"] != "tok-1" || captured["payment_method_id"] != "master" {
		t.Fatalf("card fields missing: %v", captured)
	}
	if captured["installments"].(float64) != 1 {
		t.Fatalf("installments below 1 must be clamped, got %v", captured["installments"])
	}
	if captured["issuer_id"] != "24" {
		t.Fatalf("issuer_id must pass through as a string, got %v", captured["issuer_id"])
	}
	payer := captured["payer"].(map[string]any)
	ident := payer["identification"].(map[string]any)
	if ident["type"] != "CPF" || ident["number"] != "12345678909" {
		t.Fatalf("payer identification missing: %v", payer)
	}

	if sent.PaymentID != "777" || sent.Value != 47.00 || sent.Currency != "BRL" {
		t.Fatalf("conversion event wrong: %+v", sent)
	}
	if sent.ClientIP != "9.9.9.9" || sent.UserAgent != "UA/1" {
		t.Fatalf("request context not propagated: %+v", sent)
	}
}

// The card payload must decode into the SDK's payment.Request, which is
// how the gateway adapter hands it to Mercado Pago. Field type drift
// between the payload builder and the SDK struct fails here.
func TestCheckoutPaymentUseCase_CardPayloadMatchesSDKRequest(t *testing.T) {
	uc := NewCheckoutPaymentUseCase(nil, nil, nil, CheckoutConfig{PublicSiteURL: "https://shop.example.com"})

	order := validOrder()
	order.PaymentMethod = entities.PaymentMethodCreditCard
	order.Card = &entities.CardPaymentData{
		Token:           "tok-1",
		Bin:             "503143",
		IssuerID:        "24",
		Installments:    3,
		PaymentMethodID: "master",
	}

	raw, err := json.Marshal(uc.buildGatewayPayload(order, 47.00))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var req payment.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		t.Fatalf("payload does not decode into payment.Request: %v", err)
	}
	if req.IssuerID != "24" {
		t.Fatalf("expected issuer id %q, got %q", "24", req.IssuerID)
	}
	if req.Token != "tok-1" || req.PaymentMethodID != "master" {
		t.Fatalf("card fields lost in decode: %+v", req)
	}
	if req.Installments != 3 {
		t.Fatalf("expected 3 installments, got %d", req.Installments)
	}
	if req.TransactionAmount != 47.00 {
		t.Fatalf("expected amount 47.00, got %v", req.TransactionAmount)
	}
}

func TestCheckoutPaymentUseCase_CreatePayment_GatewayErrorRelay(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
	uc := NewCheckoutPaymentUseCase(gateway, nil, nil, CheckoutConfig{})

	gateway.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return("", "", nil,
		errors.New(`request failed: {"status":400,"message":"Invalid card token","cause":[{"code":2062,"description":"Invalid card token"}]}`))

	_, err := uc.CreatePayment(context.Background(), validOrder(), RequestContext{})
	var ge *GatewayError
	if !errors.As(err, &ge) {
		t.Fatalf("expected GatewayError, got %v", err)
	}
	if ge.HTTPStatus != 400 {
		t.Fatalf("expected mirrored status 400, got %d", ge.HTTPStatus)
	}
	if ge.Message != "Invalid card token" {
		t.Fatalf("unexpected message: %q", ge.Message)
	}
}

func TestCheckoutPaymentUseCase_CreatePayment_GatewayCauseMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
	uc := NewCheckoutPaymentUseCase(gateway, nil, nil, CheckoutConfig{})

	gateway.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return("", "", nil,
		errors.New(`{"cause":[{"code":"E1","description":"bad bin"},{"description":"bad amount"}]}`))

	_, err := uc.CreatePayment(context.Background(), validOrder(), RequestContext{})
	var ge *GatewayError
	if !errors.As(err, &ge) {
		t.Fatalf("expected GatewayError, got %v", err)
	}
	if !strings.HasPrefix(ge.Message, "Mercado Pago: ") {
		t.Fatalf("expected cause-built message, got %q", ge.Message)
	}
	if !strings.Contains(ge.Message, "bad bin") || !strings.Contains(ge.Message, "bad amount") {
		t.Fatalf("causes missing: %q", ge.Message)
	}
	if ge.HTTPStatus != 502 {
		t.Fatalf("expected default 502, got %d", ge.HTTPStatus)
	}
}

func TestCheckoutPaymentUseCase_CreatePayment_GatewayStatusFallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
	uc := NewCheckoutPaymentUseCase(gateway, nil, nil, CheckoutConfig{})

	// No message, error or causes: the numeric status doubles as the text.
	gateway.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return("", "", nil,
		errors.New(`{"status":503}`))

	_, err := uc.CreatePayment(context.Background(), validOrder(), RequestContext{})
	var ge *GatewayError
	if !errors.As(err, &ge) {
		t.Fatalf("expected GatewayError, got %v", err)
	}
	if ge.HTTPStatus != 503 {
		t.Fatalf("expected mirrored status 503, got %d", ge.HTTPStatus)
	}
	if ge.Message != "503" {
		t.Fatalf("unexpected message: %q", ge.Message)
	}
}

func TestCheckoutPaymentUseCase_CreatePayment_OpaqueGatewayError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
	uc := NewCheckoutPaymentUseCase(gateway, nil, nil, CheckoutConfig{})

	gateway.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return("", "", nil, errors.New("connection refused"))

	_, err := uc.CreatePayment(context.Background(), validOrder(), RequestContext{})
	var ge *GatewayError
	if !errors.As(err, &ge) {
		t.Fatalf("expected GatewayError, got %v", err)
	}
	if ge.HTTPStatus != 502 {
		t.Fatalf("expected default 502, got %d", ge.HTTPStatus)
	}
	if ge.Message != "connection refused" {
		t.Fatalf("unexpected message: %q", ge.Message)
	}
}

func TestCheckoutPaymentUseCase_CreatePayment_SavesAudit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
	records := mock_interfaces.NewMockIPaymentRecordRepository(ctrl)
	uc := NewCheckoutPaymentUseCase(gateway, nil, records, CheckoutConfig{})

	gateway.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return("55", "pending", json.RawMessage(`{"id":55,"status":"pending"}`), nil)

	var saved entities.PaymentAuditRecord
	records.EXPECT().SaveAudit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, rec entities.PaymentAuditRecord) error {
			saved = rec
			return nil
		})

	if _, err := uc.CreatePayment(context.Background(), validOrder(), RequestContext{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.PaymentID != "55" || saved.Status != "pending" {
		t.Fatalf("audit record wrong: %+v", saved)
	}
}

func TestCheckoutPaymentUseCase_CreatePayment_AuditFailureDoesNotBlock(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
	records := mock_interfaces.NewMockIPaymentRecordRepository(ctrl)
	uc := NewCheckoutPaymentUseCase(gateway, nil, records, CheckoutConfig{})

	gateway.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return("55", "pending", json.RawMessage(`{"id":55}`), nil)
	records.EXPECT().SaveAudit(gomock.Any(), gomock.Any()).Return(errors.New("dynamo down"))

	created, err := uc.CreatePayment(context.Background(), validOrder(), RequestContext{})
	if err != nil || !created.Success {
		t.Fatalf("audit failure must not fail the payment, got %v / %+v", err, created)
	}
}

func TestCheckoutPaymentUseCase_GetStatus(t *testing.T) {
	t.Run("empty id", func(t *testing.T) {
		uc := NewCheckoutPaymentUseCase(nil, nil, nil, CheckoutConfig{})
		_, err := uc.GetStatus(context.Background(), "  ")
		if !errors.Is(err, ErrInvalidPaymentID) {
			t.Fatalf("expected ErrInvalidPaymentID, got %v", err)
		}
	})

	t.Run("relays gateway record", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
		uc := NewCheckoutPaymentUseCase(gateway, nil, nil, CheckoutConfig{})

		gateway.EXPECT().GetPaymentByID(gomock.Any(), "123").Return(json.RawMessage(`{"id":123,"status":"approved","status_detail":"accredited"}`), nil)

		view, err := uc.GetStatus(context.Background(), "123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if view.ID != "123" || view.Status != "approved" || view.StatusDetail != "accredited" {
			t.Fatalf("unexpected view: %+v", view)
		}
	})

	t.Run("fetch failure relayed as gateway error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
		uc := NewCheckoutPaymentUseCase(gateway, nil, nil, CheckoutConfig{})

		gateway.EXPECT().GetPaymentByID(gomock.Any(), "123").Return(nil, errors.New(`{"status":404,"message":"Payment not found"}`))

		_, err := uc.GetStatus(context.Background(), "123")
		var ge *GatewayError
		if !errors.As(err, &ge) || ge.HTTPStatus != 404 {
			t.Fatalf("expected 404 GatewayError, got %v", err)
		}
	})
}

func TestDescribeItems(t *testing.T) {
	t.Run("joins titles", func(t *testing.T) {
		items := []entities.CheckoutItem{{Title: "A"}, {Title: "B"}}
		if got := describeItems(items); got != "A + B" {
			t.Fatalf("unexpected description: %q", got)
		}
	})

	t.Run("fallback when no titles", func(t *testing.T) {
		if got := describeItems(nil); got != "Compra" {
			t.Fatalf("unexpected fallback: %q", got)
		}
	})

	t.Run("truncates long descriptions", func(t *testing.T) {
		long := strings.Repeat("x", 300)
		if got := describeItems([]entities.CheckoutItem{{Title: long}}); len(got) != 240 {
			t.Fatalf("expected 240 chars, got %d", len(got))
		}
	})
}
