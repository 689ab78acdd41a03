package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"xandr_checkout/internal/domain/entities"
	"xandr_checkout/internal/usecase/interfaces"
)

// CardForm drives the gateway's secure-field widget lifecycle: mount on
// method selection, bin change -> payment-method/issuer lookup ->
// installment refresh, unmount on method change or teardown, and
// tokenization on submit.
type CardForm struct {
	mu       sync.Mutex
	sdk      interfaces.ICardSDK
	resolver *InstallmentResolver
	amount   float64

	fields          interfaces.ICardFieldSet
	ready           bool
	cardError       string
	bin             string
	paymentMethodID string
	issuerID        string
	issuers         []entities.CardIssuer
}

func NewCardForm(sdk interfaces.ICardSDK, resolver *InstallmentResolver, amount float64) *CardForm {
	return &CardForm{sdk: sdk, resolver: resolver, amount: amount}
}

// Mount creates and mounts the secure card fields. A missing SDK is a
// terminal per-mount error state, not retryable without a page reload.
func (f *CardForm) Mount(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sdk == nil {
		f.cardError = "SDK do Mercado Pago não carregou. Recarregue a página."
		return
	}

	fields, err := f.sdk.CreateFieldSet(func(bin string) {
		f.handleBinChange(ctx, bin)
	})
	if err != nil {
		f.cardError = "Erro ao inicializar pagamento com cartão. Tente recarregar a página."
		f.ready = false
		return
	}

	f.fields = fields
	f.ready = true
	f.cardError = ""
}

func (f *CardForm) handleBinChange(ctx context.Context, bin string) {
	f.mu.Lock()
	f.bin = bin
	if len(bin) < 6 {
		// Reset synchronously so the submit path never sees stale values.
		f.paymentMethodID = ""
		f.issuerID = ""
		f.issuers = nil
		f.mu.Unlock()
		f.resolver.Reset()
		return
	}
	sdk := f.sdk
	amount := f.amount
	f.mu.Unlock()

	methods, err := sdk.GetPaymentMethods(ctx, bin)
	if err != nil || len(methods) == 0 {
		f.clearDerivedState()
		return
	}
	pmID := methods[0].ID

	issuers, err := sdk.GetIssuers(ctx, pmID, bin)
	if err != nil {
		f.clearDerivedState()
		return
	}

	f.mu.Lock()
	f.paymentMethodID = pmID
	if len(issuers) > 0 {
		f.issuers = issuers
		f.issuerID = issuers[0].ID
	} else {
		f.issuers = nil
		f.issuerID = ""
	}
	f.mu.Unlock()

	f.resolver.Resolve(ctx, bin, amount, pmID)
}

func (f *CardForm) clearDerivedState() {
	f.mu.Lock()
	f.paymentMethodID = ""
	f.issuerID = ""
	f.issuers = nil
	f.mu.Unlock()
	f.resolver.Reset()
}

// SelectIssuer picks an issuing bank and refreshes installments.
func (f *CardForm) SelectIssuer(ctx context.Context, issuerID string) {
	f.mu.Lock()
	found := false
	for _, is := range f.issuers {
		if is.ID == issuerID {
			found = true
			break
		}
	}
	if !found {
		f.mu.Unlock()
		return
	}
	f.issuerID = issuerID
	bin := f.bin
	amount := f.amount
	pmID := f.paymentMethodID
	f.mu.Unlock()

	f.resolver.Resolve(ctx, bin, amount, pmID)
}

// Unmount releases the secure fields and clears all derived card state.
// Unconditional on every exit path to avoid duplicate field
// registrations on re-entry; safe when never mounted.
func (f *CardForm) Unmount() {
	f.mu.Lock()
	fields := f.fields
	f.fields = nil
	f.ready = false
	f.bin = ""
	f.paymentMethodID = ""
	f.issuerID = ""
	f.issuers = nil
	f.cardError = ""
	f.mu.Unlock()

	f.resolver.Reset()
	if fields != nil {
		fields.Unmount()
	}
}

// Tokenize exchanges the mounted fields for a single-use payment token.
// Card payments accept individual taxpayer IDs only (11-digit CPF).
func (f *CardForm) Tokenize(ctx context.Context, cardholderName, document string) (entities.CardPaymentData, error) {
	f.mu.Lock()
	ready := f.ready
	fields := f.fields
	bin := f.bin
	pmID := f.paymentMethodID
	issuerID := f.issuerID
	f.mu.Unlock()

	if strings.TrimSpace(cardholderName) == "" {
		return entities.CardPaymentData{}, errors.New("Informe o nome do titular do cartão.")
	}

	doc := digitsOnly(document)
	if len(doc) != 11 {
		return entities.CardPaymentData{}, errors.New("Para cartão, informe um CPF válido.")
	}

	if !ready || fields == nil {
		return entities.CardPaymentData{}, errors.New("Carregando campos do cartão...")
	}

	if pmID == "" {
		return entities.CardPaymentData{}, errors.New("Não foi possível identificar o cartão.")
	}

	token, err := fields.CreateCardToken(ctx, strings.TrimSpace(cardholderName), doc)
	if err != nil {
		return entities.CardPaymentData{}, fmt.Errorf("Erro ao processar cartão: %s", formatSDKError(err))
	}
	if token == "" {
		return entities.CardPaymentData{}, errors.New("Não foi possível tokenizar o cartão.")
	}

	return entities.CardPaymentData{
		Token:           token,
		Bin:             bin,
		IssuerID:        issuerID,
		Installments:    f.resolver.Selected(),
		PaymentMethodID: pmID,
	}, nil
}

// CardError reports the terminal mount error, if any.
func (f *CardForm) CardError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cardError
}

func (f *CardForm) Ready() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ready
}

func (f *CardForm) Bin() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bin
}

func (f *CardForm) PaymentMethodID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paymentMethodID
}

func (f *CardForm) Issuers() []entities.CardIssuer {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entities.CardIssuer, len(f.issuers))
	copy(out, f.issuers)
	return out
}

// formatSDKError renders the diagnostic fields a tokenization failure may
// carry (name/message/status/cause when present).
func formatSDKError(err error) string {
	var sdkErr *entities.SDKError
	if !errors.As(err, &sdkErr) {
		return err.Error()
	}

	parts := make([]string, 0, 4)
	if sdkErr.Name != "" {
		parts = append(parts, "name="+sdkErr.Name)
	}
	if sdkErr.Message != "" {
		parts = append(parts, "message="+sdkErr.Message)
	}
	if sdkErr.Status != 0 {
		parts = append(parts, fmt.Sprintf("status=%d", sdkErr.Status))
	}
	if sdkErr.Cause != "" {
		parts = append(parts, "cause="+sdkErr.Cause)
	}
	if len(parts) == 0 {
		return sdkErr.Error()
	}
	return strings.Join(parts, " ")
}
