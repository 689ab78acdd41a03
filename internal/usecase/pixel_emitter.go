package usecase

import (
	"log"
	"sync"

	"xandr_checkout/internal/usecase/interfaces"
)

// PixelEmitter wraps the browser analytics pixel with a presence check
// and at-most-once guards. InitiateCheckout fires once per session;
// Purchase fires once per payment ID, tracked as an explicit set so the
// guard does not depend on mount lifecycle.
type PixelEmitter struct {
	mu        sync.Mutex
	tracker   interfaces.IPixelTracker
	initiated bool
	purchased map[string]bool
}

func NewPixelEmitter(tracker interfaces.IPixelTracker) *PixelEmitter {
	return &PixelEmitter{
		tracker:   tracker,
		purchased: map[string]bool{},
	}
}

// TrackInitiateCheckout fires the checkout-initiated event. Subsequent
// calls are no-ops.
func (e *PixelEmitter) TrackInitiateCheckout(value float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.initiated {
		return
	}
	e.initiated = true
	if e.tracker == nil {
		return
	}
	e.tracker.Track("InitiateCheckout", interfaces.PixelParams{Value: value, Currency: "BRL"})
}

// TrackPurchase fires the purchase event for paymentID. Returns true on
// the first call for that payment and false when suppressed, so callers
// can gate redirect scheduling on the same guard.
func (e *PixelEmitter) TrackPurchase(paymentID string, value float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if paymentID == "" || e.purchased[paymentID] {
		return false
	}
	e.purchased[paymentID] = true
	log.Printf("[checkout][pixel] purchase tracked payment_id=%s value=%.2f", paymentID, value)
	if e.tracker != nil {
		e.tracker.Track("Purchase", interfaces.PixelParams{Value: value, Currency: "BRL", EventID: paymentID})
	}
	return true
}
