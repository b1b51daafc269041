package postgres

import (
	"context"

	"github.com/chungyifen/tax-refund/internal/errs"
	"github.com/chungyifen/tax-refund/internal/model"
)

// RefundRepo implements RefundRepository using PostgreSQL.
type RefundRepo struct{ db *DB }

// NewRefundRepo constructs a refund repository.
func NewRefundRepo(db *DB) *RefundRepo { return &RefundRepo{db: db} }

// List returns refund rows, newest first.
func (r *RefundRepo) List(ctx context.Context) ([]model.TaxRefund, error) {
	const q = `
SELECT id, refund_no, product_no, quantity, refund_amount::text, status, created_at
FROM tax_refund ORDER BY created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TaxRefund
	for rows.Next() {
		var t model.TaxRefund
		if err := rows.Scan(&t.ID, &t.RefundNo, &t.ProductNo, &t.Quantity, &t.RefundAmount, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Create inserts a refund row. A duplicate refund number maps to
// errs.ErrAlreadyExists.
func (r *RefundRepo) Create(ctx context.Context, t *model.TaxRefund) error {
	const q = `
INSERT INTO tax_refund (id, refund_no, product_no, quantity, refund_amount, status, created_at)
VALUES ($1, $2, $3, $4, $5::numeric, $6, $7)`
	_, err := r.db.Pool.Exec(ctx, q, t.ID, t.RefundNo, t.ProductNo, t.Quantity, t.RefundAmount, t.Status, t.CreatedAt)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}
