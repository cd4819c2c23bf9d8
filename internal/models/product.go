package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Variant is a priced, orderable unit (one SKU) embedded in a Product.
// Variants are owned values: they are loaded and saved with their product,
// never addressed independently.
type Variant struct {
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	BasePrice decimal.Decimal `json:"base_price"`
	CostPrice decimal.Decimal `json:"cost_price"`
}

// SupplierLink associates a product with a supplier, including the payment
// terms used for rate-based repricing.
type SupplierLink struct {
	SupplierID             uuid.UUID `json:"supplier_id"`
	SupplierName           string    `json:"supplier_name,omitempty"`
	PaymentCurrency        string    `json:"payment_currency,omitempty"` // USD, USD_PARALELO, VES, EUR
	PreferredPaymentMethod string    `json:"preferred_payment_method,omitempty"`
	AcceptedPaymentMethods []string  `json:"accepted_payment_methods,omitempty"`
	UsesParallelRate       bool      `json:"uses_parallel_rate"`
}

// Promotion is created or overwritten whole by a promotion bulk operation.
// It is never partially updated.
type Promotion struct {
	IsActive           bool            `json:"is_active"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	Reason             string          `json:"reason"`
	StartDate          time.Time       `json:"start_date"`
	EndDate            time.Time       `json:"end_date"`
	DurationDays       int             `json:"duration_days"`
	AutoDeactivate     bool            `json:"auto_deactivate"`
}

// Product is the aggregate root of the catalog. Variants, supplier links and
// the promotion are stored as jsonb inside the product row, so a product is
// always read, modified and saved as one document.
type Product struct {
	ID                 uuid.UUID      `json:"id" db:"id"`
	TenantID           uuid.UUID      `json:"tenant_id" db:"tenant_id"`
	Name               string         `json:"name" db:"name"`
	Category           string         `json:"category" db:"category"`
	Subcategory        string         `json:"subcategory,omitempty" db:"subcategory"`
	Brand              string         `json:"brand,omitempty" db:"brand"`
	IsActive           bool           `json:"is_active" db:"is_active"`
	HasActivePromotion bool           `json:"has_active_promotion" db:"has_active_promotion"`
	Promotion          *Promotion     `json:"promotion,omitempty" db:"promotion"`
	Variants           []Variant      `json:"variants" db:"variants"`
	Suppliers          []SupplierLink `json:"suppliers" db:"suppliers"`
	CreatedAt          time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at" db:"updated_at"`
}

// ProductFilter is the resolved, storage-level selection built from a
// BulkUpdateCriteria. All conditions are combined with AND; the tenant scope
// is supplied separately and is never optional.
type ProductFilter struct {
	IsActive                *bool       `json:"is_active,omitempty"`
	IDs                     []uuid.UUID `json:"ids,omitempty"` // id allowlist from explicit selection or inventory/purchases pre-resolution
	Category                string      `json:"category,omitempty"`
	Subcategory             string      `json:"subcategory,omitempty"`
	Brand                   string      `json:"brand,omitempty"`
	SupplierID              *uuid.UUID  `json:"supplier_id,omitempty"`
	SupplierIDs             []uuid.UUID `json:"supplier_ids,omitempty"`
	SupplierPaymentCurrency string      `json:"supplier_payment_currency,omitempty"`
	SupplierPaymentMethod   string      `json:"supplier_payment_method,omitempty"`
	UsesParallelRate        *bool       `json:"uses_parallel_rate,omitempty"`
	Limit                   int         `json:"limit,omitempty"`
}
