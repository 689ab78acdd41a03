package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"xandr_checkout/internal/domain/entities"
	"xandr_checkout/internal/usecase/interfaces"
)

const redirectDelay = 800 * time.Millisecond

const genericPaymentError = "Erro ao processar pagamento."

// CheckoutURLs are the per-method success destinations.
type CheckoutURLs struct {
	CardSuccessURL string
	PixSuccessURL  string
}

// CheckoutOrchestrator owns PaymentState and drives one checkout attempt:
// validate, create the payment, branch on method and gateway status, fire
// tracking and schedule the success redirect.
//
// State transitions happen only here. IsProcessing is true for the whole
// create-payment round trip and reset on every exit path; it gates
// resubmission.
type CheckoutOrchestrator struct {
	mu sync.Mutex

	api      interfaces.ICheckoutAPI
	emitter  *PixelEmitter
	urls     CheckoutURLs
	redirect func(url string)
	scrollUp func()
	// afterFunc schedules the delayed redirect; swappable in tests.
	afterFunc func(d time.Duration, f func()) *time.Timer

	form        entities.OrderForm
	method      entities.PaymentMethod
	items       []entities.CheckoutItem
	meta        entities.Attribution
	state       entities.PaymentState
	fieldErrors entities.FieldErrors
	pixPayment  *entities.PixPaymentData
}

func NewCheckoutOrchestrator(api interfaces.ICheckoutAPI, emitter *PixelEmitter, urls CheckoutURLs, redirect func(url string), scrollUp func()) *CheckoutOrchestrator {
	return &CheckoutOrchestrator{
		api:       api,
		emitter:   emitter,
		urls:      urls,
		redirect:  redirect,
		scrollUp:  scrollUp,
		afterFunc: time.AfterFunc,
		method:    entities.PaymentMethodPix,
		items:     []entities.CheckoutItem{entities.MainProduct},
		state:     entities.PaymentState{Method: entities.PaymentMethodPix},
	}
}

// Begin marks session start and fires the checkout-initiated event (the
// emitter guarantees at most once).
func (o *CheckoutOrchestrator) Begin() {
	o.emitter.TrackInitiateCheckout(o.Total())
}

func (o *CheckoutOrchestrator) Total() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return entities.ItemsTotal(o.items)
}

func (o *CheckoutOrchestrator) SetForm(form entities.OrderForm) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.form = form
}

func (o *CheckoutOrchestrator) SetAttribution(meta entities.Attribution) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.meta = meta
}

// SelectMethod switches the payment method and clears the last error.
// Card-derived sub-state lives in CardForm; the composition layer calls
// its Mount/Unmount alongside this.
func (o *CheckoutOrchestrator) SelectMethod(m entities.PaymentMethod) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.method = m
	o.state.Method = m
	o.state.Error = ""
}

// ApplyAddress overwrites the address portion of the form with a
// postal-code lookup result.
func (o *CheckoutOrchestrator) ApplyAddress(addr entities.Address) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.form.Street = addr.Street
	o.form.Neighborhood = addr.Neighborhood
	o.form.City = addr.City
	o.form.State = addr.State
}

// Submit runs one checkout attempt. For card payments the caller passes
// the freshly tokenized card data; tokens are single-use so every retry
// re-tokenizes first.
func (o *CheckoutOrchestrator) Submit(ctx context.Context, card *entities.CardPaymentData) {
	o.mu.Lock()
	if o.state.IsProcessing {
		o.mu.Unlock()
		return
	}
	o.state.Error = ""

	errs := ValidateOrderForm(o.form)
	o.fieldErrors = errs
	if len(errs) > 0 {
		scrollUp := o.scrollUp
		o.mu.Unlock()
		if scrollUp != nil {
			scrollUp()
		}
		return
	}

	o.state.IsProcessing = true
	order := entities.CheckoutOrder{
		User: entities.Customer{
			Name:     o.form.Name,
			Email:    o.form.Email,
			Phone:    digitsOnly(o.form.Phone),
			Document: digitsOnly(o.form.Document),
		},
		Items:         append([]entities.CheckoutItem(nil), o.items...),
		PaymentMethod: o.method,
		Card:          card,
		Meta:          o.meta,
	}
	method := o.method
	total := entities.ItemsTotal(o.items)
	o.mu.Unlock()

	result, err := o.api.CreatePayment(ctx, order)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.IsProcessing = false

	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = genericPaymentError
		}
		o.state.Error = msg
		return
	}
	if !result.Success {
		o.state.Error = genericPaymentError
		return
	}

	if method == entities.PaymentMethodPix && result.PaymentID != "" {
		o.pixPayment = &entities.PixPaymentData{
			PaymentID:    result.PaymentID,
			QRCode:       result.QRCode,
			QRCodeBase64: result.QRCodeBase64,
			TicketURL:    result.TicketURL,
		}
		// Settlement is asynchronous: the poller and webhook confirm it.
		o.state.IsSuccess = false
		return
	}

	if method == entities.PaymentMethodCreditCard {
		if result.Status == entities.PaymentStatusApproved {
			if o.emitter.TrackPurchase(result.PaymentID, total) {
				url := o.urls.CardSuccessURL
				o.afterFunc(redirectDelay, func() {
					o.redirect(url)
				})
			}
			o.state.IsSuccess = true
			return
		}

		status := result.Status
		if status == "" {
			status = "unknown"
		}
		msg := fmt.Sprintf("Status do pagamento: %s", status)
		if result.StatusDetail != "" {
			msg = fmt.Sprintf("Status do pagamento: %s - %s", status, result.StatusDetail)
		}
		log.Printf("[checkout][orchestrator] card declined payment_id=%s status=%s detail=%s", result.PaymentID, result.Status, result.StatusDetail)
		o.state.IsSuccess = false
		o.state.Error = msg
		return
	}

	o.state.IsSuccess = true
}

// HandlePixApproval is invoked by the status poller when it first
// observes an approved pix payment: fire the purchase conversion and
// schedule the redirect, both guarded by the emitter's per-payment set.
func (o *CheckoutOrchestrator) HandlePixApproval(paymentID string) {
	if !o.emitter.TrackPurchase(paymentID, o.Total()) {
		return
	}
	o.mu.Lock()
	o.state.IsSuccess = true
	url := o.urls.PixSuccessURL
	o.mu.Unlock()
	o.afterFunc(redirectDelay, func() {
		o.redirect(url)
	})
}

func (o *CheckoutOrchestrator) State() entities.PaymentState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *CheckoutOrchestrator) FieldErrors() entities.FieldErrors {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := entities.FieldErrors{}
	for k, v := range o.fieldErrors {
		out[k] = v
	}
	return out
}

func (o *CheckoutOrchestrator) PixPayment() *entities.PixPaymentData {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pixPayment == nil {
		return nil
	}
	cp := *o.pixPayment
	return &cp
}
