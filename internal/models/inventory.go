package models

import (
	"time"

	"github.com/google/uuid"
)

// HighVelocityTurnoverRate is the turnover rate at or above which a product
// counts as high velocity for bulk selection purposes.
const HighVelocityTurnoverRate = 2.0

// Inventory carries the stock signals the pricing engine selects on. It is
// read-only from this module's point of view; stock mutation lives elsewhere.
type Inventory struct {
	ID             uuid.UUID `json:"id" db:"id"`
	TenantID       uuid.UUID `json:"tenant_id" db:"tenant_id"`
	ProductID      uuid.UUID `json:"product_id" db:"product_id"`
	Quantity       int       `json:"quantity" db:"quantity"`
	LowStockAlert  bool      `json:"low_stock_alert" db:"low_stock_alert"`
	OverstockAlert bool      `json:"overstock_alert" db:"overstock_alert"`
	TurnoverRate   float64   `json:"turnover_rate" db:"turnover_rate"`
	LastUpdated    time.Time `json:"last_updated" db:"last_updated"`
}

// InventoryIDFilter selects product ids from inventory records. It is the
// pre-resolution step for stock-level and velocity criteria.
type InventoryIDFilter struct {
	LowStockAlert       *bool    `json:"low_stock_alert,omitempty"`
	OverstockAlert      *bool    `json:"overstock_alert,omitempty"`
	TurnoverRateAtLeast *float64 `json:"turnover_rate_at_least,omitempty"`
	TurnoverRateBelow   *float64 `json:"turnover_rate_below,omitempty"`
}

// Empty reports whether the filter carries no conditions at all.
func (f *InventoryIDFilter) Empty() bool {
	return f.LowStockAlert == nil && f.OverstockAlert == nil &&
		f.TurnoverRateAtLeast == nil && f.TurnoverRateBelow == nil
}
