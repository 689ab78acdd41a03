package interfaces

import (
	"context"
	"errors"

	"xandr_checkout/internal/domain/entities"
)

var ErrAddressNotFound = errors.New("address not found")

// IAddressLookup resolves an 8-digit postal code to an address.
// Returns ErrAddressNotFound for unknown codes.
type IAddressLookup interface {
	Lookup(ctx context.Context, cep string) (entities.Address, error)
}
