package repositories

import (
	"context"
	"fmt"

	"bodegamart/internal/models"

	"github.com/google/uuid"
)

// InventoryRepository gives the pricing engine read access to stock signals.
// Inventory-derived criteria are resolved here into product id allowlists
// before the catalog is queried.
type InventoryRepository interface {
	GetByProductID(ctx context.Context, tenantID, productID uuid.UUID) (*models.Inventory, error)
	FindProductIDs(ctx context.Context, tenantID uuid.UUID, filter *models.InventoryIDFilter) ([]uuid.UUID, error)
}

type inventoryRepo struct {
	db Database
}

func NewInventoryRepo(db Database) InventoryRepository {
	return &inventoryRepo{db: db}
}

func (r *inventoryRepo) GetByProductID(ctx context.Context, tenantID, productID uuid.UUID) (*models.Inventory, error) {
	inventory := &models.Inventory{}
	query := `
		SELECT id, tenant_id, product_id, quantity, low_stock_alert, overstock_alert, turnover_rate, last_updated
		FROM inventories
		WHERE tenant_id = $1 AND product_id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, productID).Scan(&inventory.ID, &inventory.TenantID, &inventory.ProductID, &inventory.Quantity, &inventory.LowStockAlert, &inventory.OverstockAlert, &inventory.TurnoverRate, &inventory.LastUpdated)
	if err != nil {
		return nil, err
	}
	return inventory, nil
}

func (r *inventoryRepo) FindProductIDs(ctx context.Context, tenantID uuid.UUID, filter *models.InventoryIDFilter) ([]uuid.UUID, error) {
	query := `SELECT product_id FROM inventories WHERE tenant_id = $1`
	args := []interface{}{tenantID}
	argCount := 1

	if filter != nil {
		if filter.LowStockAlert != nil {
			argCount++
			query += fmt.Sprintf(` AND low_stock_alert = $%d`, argCount)
			args = append(args, *filter.LowStockAlert)
		}
		if filter.OverstockAlert != nil {
			argCount++
			query += fmt.Sprintf(` AND overstock_alert = $%d`, argCount)
			args = append(args, *filter.OverstockAlert)
		}
		if filter.TurnoverRateAtLeast != nil {
			argCount++
			query += fmt.Sprintf(` AND turnover_rate >= $%d`, argCount)
			args = append(args, *filter.TurnoverRateAtLeast)
		}
		if filter.TurnoverRateBelow != nil {
			argCount++
			query += fmt.Sprintf(` AND turnover_rate < $%d`, argCount)
			args = append(args, *filter.TurnoverRateBelow)
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
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
