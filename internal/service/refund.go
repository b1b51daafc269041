package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/chungyifen/tax-refund/internal/errs"
	"github.com/chungyifen/tax-refund/internal/model"
	"github.com/chungyifen/tax-refund/internal/repository"
)

// RefundService defines tax refund ledger operations.
type RefundService interface {
	// List returns refund rows, newest first.
	List(ctx context.Context) ([]model.TaxRefund, error)
	// Create validates and records a new refund row.
	Create(ctx context.Context, in model.NewTaxRefund) (model.TaxRefund, error)
}

type RefundServiceImpl struct {
	refunds repository.RefundRepository
}

// NewRefundService constructs RefundService.
func NewRefundService(refunds repository.RefundRepository) *RefundServiceImpl {
	return &RefundServiceImpl{refunds: refunds}
}

// List returns the refund ledger.
func (s *RefundServiceImpl) List(ctx context.Context) ([]model.TaxRefund, error) {
	return s.refunds.List(ctx)
}

// Create validates the intent and inserts a DRAFT row.
func (s *RefundServiceImpl) Create(ctx context.Context, in model.NewTaxRefund) (model.TaxRefund, error) {
	if in.RefundNo == "" || in.ProductNo == "" {
		return model.TaxRefund{}, fmt.Errorf("%w: refundNo/productNo required", errs.ErrValidation)
	}
	if in.Quantity <= 0 {
		return model.TaxRefund{}, fmt.Errorf("%w: quantity must be positive", errs.ErrValidation)
	}
	amount := in.RefundAmount
	if amount == "" {
		amount = "0"
	}
	id, err := uuid.NewV4()
	if err != nil {
		return model.TaxRefund{}, err
	}
	row := model.TaxRefund{
		ID:           id,
		RefundNo:     in.RefundNo,
		ProductNo:    in.ProductNo,
		Quantity:     in.Quantity,
		RefundAmount: amount,
		Status:       "DRAFT",
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.refunds.Create(ctx, &row); err != nil {
		return model.TaxRefund{}, err
	}
	return row, nil
}
