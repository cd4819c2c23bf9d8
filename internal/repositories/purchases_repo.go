package repositories

import (
	"context"

	"github.com/google/uuid"
)

// PurchasesRepository consults historical purchase orders. The pricing
// engine only needs it to resolve the legacy payment-method criteria into a
// product id allowlist.
type PurchasesRepository interface {
	FindProductIDsByPaymentMethod(ctx context.Context, tenantID uuid.UUID, paymentMethod string) ([]uuid.UUID, error)
}

type purchasesRepo struct {
	db Database
}

func NewPurchasesRepo(db Database) PurchasesRepository {
	return &purchasesRepo{db: db}
}

func (r *purchasesRepo) FindProductIDsByPaymentMethod(ctx context.Context, tenantID uuid.UUID, paymentMethod string) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT product_id
		FROM purchases
		WHERE tenant_id = $1 AND payment_method = $2
	`
	rows, err := r.db.Query(ctx, query, tenantID, paymentMethod)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
