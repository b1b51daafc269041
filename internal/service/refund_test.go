package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chungyifen/tax-refund/internal/errs"
	"github.com/chungyifen/tax-refund/internal/model"
	"github.com/chungyifen/tax-refund/internal/repository"
)

type fakeRefunds struct {
	rows      []model.TaxRefund
	createErr error
}

var _ repository.RefundRepository = (*fakeRefunds)(nil)

func (f *fakeRefunds) List(context.Context) ([]model.TaxRefund, error) { return f.rows, nil }
func (f *fakeRefunds) Create(_ context.Context, r *model.TaxRefund) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.rows = append(f.rows, *r)
	return nil
}

func TestRefundCreate_AssignsIDAndDraftStatus(t *testing.T) {
	repo := &fakeRefunds{}
	svc := NewRefundService(repo)

	row, err := svc.Create(context.Background(), model.NewTaxRefund{
		RefundNo:     "R-2024-001",
		ProductNo:    "P-42",
		Quantity:     10,
		RefundAmount: "1500.00",
	})
	require.NoError(t, err)
	require.NotEqual(t, "00000000-0000-0000-0000-000000000000", row.ID.String())
	require.Equal(t, "DRAFT", row.Status)
	require.False(t, row.CreatedAt.IsZero())
	require.Len(t, repo.rows, 1)
}

func TestRefundCreate_Validation(t *testing.T) {
	svc := NewRefundService(&fakeRefunds{})

	_, err := svc.Create(context.Background(), model.NewTaxRefund{ProductNo: "P-1", Quantity: 1})
	require.ErrorIs(t, err, errs.ErrValidation)

	_, err = svc.Create(context.Background(), model.NewTaxRefund{RefundNo: "R-1", ProductNo: "P-1"})
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestRefundCreate_EmptyAmountDefaultsToZero(t *testing.T) {
	repo := &fakeRefunds{}
	svc := NewRefundService(repo)

	row, err := svc.Create(context.Background(), model.NewTaxRefund{RefundNo: "R-1", ProductNo: "P-1", Quantity: 1})
	require.NoError(t, err)
	require.Equal(t, "0", row.RefundAmount)
}

func TestRefundList_PassesThrough(t *testing.T) {
	repo := &fakeRefunds{rows: []model.TaxRefund{{RefundNo: "R-1"}}}
	svc := NewRefundService(repo)

	rows, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
