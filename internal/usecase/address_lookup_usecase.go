package usecase

import (
	"context"
	"errors"
	"log"

	"xandr_checkout/internal/domain/entities"
	"xandr_checkout/internal/usecase/interfaces"
)

var ErrInvalidCEP = errors.New("invalid cep")

// AddressLookupUseCase backs the address-autofill convenience: an 8-digit
// postal code resolves to street/neighborhood/city/state.
type AddressLookupUseCase struct {
	lookup interfaces.IAddressLookup
}

func NewAddressLookupUseCase(lookup interfaces.IAddressLookup) *AddressLookupUseCase {
	return &AddressLookupUseCase{lookup: lookup}
}

func (u *AddressLookupUseCase) Lookup(ctx context.Context, cep string) (entities.Address, error) {
	cep = digitsOnly(cep)
	if len(cep) != 8 {
		return entities.Address{}, ErrInvalidCEP
	}
	if u.lookup == nil {
		return entities.Address{}, errors.New("address lookup not configured")
	}

	addr, err := u.lookup.Lookup(ctx, cep)
	if err != nil {
		log.Printf("[address][usecase] lookup failed cep=%s err=%v", cep, err)
		return entities.Address{}, err
	}
	return addr, nil
}
