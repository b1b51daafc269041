package repository

import (
	"context"

	"github.com/chungyifen/tax-refund/internal/model"
)

// RefundRepository provides access to the tax refund ledger.
type RefundRepository interface {
	// List returns refund rows, newest first.
	List(ctx context.Context) ([]model.TaxRefund, error)
	// Create inserts a refund row.
	Create(ctx context.Context, r *model.TaxRefund) error
}
