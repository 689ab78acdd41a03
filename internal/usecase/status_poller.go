package usecase

import (
	"context"
	"log"
	"sync"
	"time"

	"xandr_checkout/internal/domain/entities"
	"xandr_checkout/internal/usecase/interfaces"
)

const defaultPollInterval = 4 * time.Second

// StatusPoller repeatedly asks the backend for a pix payment's status
// until it observes terminal success. One poller instance covers one
// payment ID; the owner cancels the context when the payment ID changes,
// the method changes away from pix, or the view is torn down.
type StatusPoller struct {
	api          interfaces.ICheckoutAPI
	orchestrator *CheckoutOrchestrator
	interval     time.Duration

	mu         sync.Mutex
	lastStatus string
}

func NewStatusPoller(api interfaces.ICheckoutAPI, orchestrator *CheckoutOrchestrator) *StatusPoller {
	return &StatusPoller{
		api:          api,
		orchestrator: orchestrator,
		interval:     defaultPollInterval,
	}
}

// Run polls every interval until the payment is approved or ctx is
// cancelled. The ticker is always released on return.
func (p *StatusPoller) Run(ctx context.Context, paymentID string) {
	if paymentID == "" {
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			status, err := p.CheckOnce(ctx, paymentID)
			if err != nil {
				continue
			}
			if status == entities.PaymentStatusApproved {
				return
			}
		}
	}
}

// CheckOnce fetches the current status and, on the first approved
// observation, triggers the purchase conversion and redirect through the
// orchestrator (idempotent per payment ID). Also backs the manual
// "already paid" check.
func (p *StatusPoller) CheckOnce(ctx context.Context, paymentID string) (string, error) {
	view, err := p.api.GetPaymentStatus(ctx, paymentID)
	if err != nil {
		log.Printf("[checkout][poller] status check failed payment_id=%s err=%v", paymentID, err)
		return "", err
	}

	p.mu.Lock()
	p.lastStatus = view.Status
	p.mu.Unlock()

	if view.Status == entities.PaymentStatusApproved {
		p.orchestrator.HandlePixApproval(paymentID)
	}
	return view.Status, nil
}

// LastStatus reports the most recently observed payment status.
func (p *StatusPoller) LastStatus() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastStatus
}
