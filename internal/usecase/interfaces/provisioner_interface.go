package interfaces

import (
	"context"

	"xandr_checkout/internal/domain/entities"
)

// IProvisioner grants course access on the membership platform.
//
// Single attempt, no retry: the caller surfaces failures for manual
// remediation. The returned string is the remote response body.
type IProvisioner interface {
	Provision(ctx context.Context, customer entities.Customer, productName, orderBumpID string) (string, error)
}
