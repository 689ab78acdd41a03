package usecase

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"

	"xandr_checkout/internal/domain/entities"
	"xandr_checkout/internal/usecase/interfaces"
)

const maxInstallments = 12

// InstallmentResolver queries the gateway SDK for eligible installment
// plans and normalizes the response. Any precondition or SDK failure
// degrades to single-payment mode (unavailable flag) instead of blocking
// checkout.
//
// Every Resolve call takes a new sequence number; responses that resolve
// after a newer call (or after Reset) are discarded, so rapid bin changes
// cannot publish stale plans.
type InstallmentResolver struct {
	mu          sync.Mutex
	sdk         interfaces.ICardSDK
	seq         uint64
	options     []entities.InstallmentOption
	selected    int
	unavailable bool
	loading     bool
	lastReason  string
}

func NewInstallmentResolver(sdk interfaces.ICardSDK) *InstallmentResolver {
	return &InstallmentResolver{sdk: sdk, selected: 1}
}

// Resolve refreshes the installment options for the given bin and amount.
func (r *InstallmentResolver) Resolve(ctx context.Context, bin string, amount float64, paymentMethodID string) {
	r.mu.Lock()
	if r.sdk == nil {
		r.unavailable = true
		r.lastReason = "sdk ausente"
		r.mu.Unlock()
		return
	}
	if len(bin) < 6 {
		r.unavailable = false
		r.lastReason = "bin incompleto"
		r.mu.Unlock()
		return
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		r.unavailable = true
		r.lastReason = fmt.Sprintf("amount inválido (%v)", amount)
		r.mu.Unlock()
		return
	}

	r.seq++
	seq := r.seq
	r.loading = true
	r.unavailable = false
	q := entities.InstallmentQuery{
		Amount:          fmt.Sprintf("%.2f", amount),
		Bin:             bin,
		PaymentMethodID: paymentMethodID,
	}
	sdk := r.sdk
	r.mu.Unlock()

	groups, err := sdk.GetInstallments(ctx, q)

	r.mu.Lock()
	defer r.mu.Unlock()
	if seq != r.seq {
		// A newer resolution was issued while this one was in flight.
		return
	}
	r.loading = false

	if err != nil {
		log.Printf("[checkout][installments] lookup failed bin=%s err=%v", bin, err)
		r.options = nil
		r.selected = 1
		r.unavailable = true
		r.lastReason = err.Error()
		return
	}

	var costs []entities.PayerCost
	if len(groups) > 0 {
		costs = groups[0].PayerCosts
	}

	options := make([]entities.InstallmentOption, 0, len(costs))
	for _, pc := range costs {
		if pc.Installments < 1 || pc.Installments > maxInstallments {
			continue
		}
		options = append(options, entities.InstallmentOption{
			Installments:      pc.Installments,
			InstallmentAmount: pc.InstallmentAmount,
			TotalAmount:       pc.TotalAmount,
			Message:           pc.RecommendedMessage,
		})
	}

	if len(options) == 0 {
		r.options = nil
		r.selected = 1
		r.unavailable = true
		r.lastReason = "sem payer_costs"
		return
	}

	r.options = options
	r.unavailable = false
	if !r.hasSelection(r.selected) {
		r.selected = options[0].Installments
	}
}

// Reset clears all derived installment state and invalidates in-flight
// resolutions. Called synchronously on bin clear so the submit path
// cannot act on stale values.
func (r *InstallmentResolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.options = nil
	r.selected = 1
	r.unavailable = false
	r.loading = false
	r.lastReason = ""
}

// SelectInstallments picks an installment count; counts outside the
// current option list are ignored.
func (r *InstallmentResolver) SelectInstallments(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hasSelection(n) {
		r.selected = n
	}
}

func (r *InstallmentResolver) hasSelection(n int) bool {
	for _, opt := range r.options {
		if opt.Installments == n {
			return true
		}
	}
	return false
}

func (r *InstallmentResolver) Options() []entities.InstallmentOption {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entities.InstallmentOption, len(r.options))
	copy(out, r.options)
	return out
}

func (r *InstallmentResolver) Selected() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selected
}

func (r *InstallmentResolver) Unavailable() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unavailable
}

func (r *InstallmentResolver) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}
