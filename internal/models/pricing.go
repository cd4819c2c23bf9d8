package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status values accepted by BulkUpdateCriteria. An empty status selects
// active products only, matching the historical behavior of the engine.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusAll      = "all"
)

// Stock level and velocity classes resolved through inventory records.
const (
	StockLevelLow  = "low"
	StockLevelHigh = "high"

	VelocityHigh = "high"
	VelocityLow  = "low"
)

// BulkUpdateCriteria describes which slice of the tenant catalog a bulk
// price operation applies to. Every field is optional and independent; all
// present fields are combined with AND. The tenant scope is implicit and
// cannot be overridden by criteria.
type BulkUpdateCriteria struct {
	Category    string      `json:"category,omitempty"`
	Subcategory string      `json:"subcategory,omitempty"`
	Brand       string      `json:"brand,omitempty"`
	IDs         []uuid.UUID `json:"ids,omitempty"`
	Status      string      `json:"status,omitempty"` // active (default), inactive, all

	SupplierID              *uuid.UUID  `json:"supplier_id,omitempty"`
	SupplierIDs             []uuid.UUID `json:"supplier_ids,omitempty"`
	SupplierPaymentCurrency string      `json:"supplier_payment_currency,omitempty"`
	SupplierPaymentMethod   string      `json:"supplier_payment_method,omitempty"`
	UsesParallelRate        *bool       `json:"uses_parallel_rate,omitempty"`

	// PaymentMethod is the legacy purchase-history filter: products are
	// matched through past purchase orders instead of their supplier links.
	// Ignored when either supplier payment filter above is present.
	PaymentMethod string `json:"payment_method,omitempty"`

	StockLevel string `json:"stock_level,omitempty"` // low, high
	Velocity   string `json:"velocity,omitempty"`    // high, low
}

// BulkPriceOperation is the sealed set of repricing operations. Dispatch is
// a type switch over the implementations below, so adding an operation is a
// compile-visible change rather than a new string case.
type BulkPriceOperation interface {
	// Type returns the wire name of the operation, used in audit details.
	Type() string
	// Details returns the operation payload for the audit trail.
	Details() JSONB
}

// PercentageIncrease raises (or, with a negative percentage, lowers) the
// base price by a percentage of itself.
type PercentageIncrease struct {
	Percentage decimal.Decimal `json:"percentage"` // 10 means +10%
}

func (PercentageIncrease) Type() string { return "percentage_increase" }
func (op PercentageIncrease) Details() JSONB {
	return JSONB{"percentage": op.Percentage}
}

// MarginUpdate reprices from cost: newPrice = cost × (1 + targetMargin).
type MarginUpdate struct {
	TargetMargin decimal.Decimal `json:"target_margin"` // 0.5 means 50%
}

func (MarginUpdate) Type() string { return "margin_update" }
func (op MarginUpdate) Details() JSONB {
	return JSONB{"target_margin": op.TargetMargin}
}

// SupplierRateAdjustment rebases prices after a supplier changed its selling
// rate. With PreserveMargin the current margin fraction is kept constant
// while the cost moves; otherwise the sale price is rescaled directly by
// newRate/oldRate.
type SupplierRateAdjustment struct {
	OldRate        decimal.Decimal `json:"old_rate"`
	NewRate        decimal.Decimal `json:"new_rate"`
	PreserveMargin bool            `json:"preserve_margin"`
}

func (SupplierRateAdjustment) Type() string { return "supplier_rate_adjustment" }
func (op SupplierRateAdjustment) Details() JSONB {
	return JSONB{
		"old_rate":        op.OldRate,
		"new_rate":        op.NewRate,
		"preserve_margin": op.PreserveMargin,
	}
}

// InflationFormula reprices from cost through the parallel/BCV rate ratio:
// newPrice = ceil(cost × (parallelRate/bcvRate) × (1 + targetMargin) × bcvRate).
type InflationFormula struct {
	ParallelRate decimal.Decimal `json:"parallel_rate"`
	BCVRate      decimal.Decimal `json:"bcv_rate"`
	TargetMargin decimal.Decimal `json:"target_margin"`
}

func (InflationFormula) Type() string { return "inflation_formula" }
func (op InflationFormula) Details() JSONB {
	return JSONB{
		"parallel_rate": op.ParallelRate,
		"bcv_rate":      op.BCVRate,
		"target_margin": op.TargetMargin,
	}
}

// FixedPrice sets every matched variant to the same absolute price.
type FixedPrice struct {
	Price decimal.Decimal `json:"price"`
}

func (FixedPrice) Type() string { return "fixed_price" }
func (op FixedPrice) Details() JSONB {
	return JSONB{"price": op.Price}
}

// PromotionLaunch does not touch base prices. It activates a promotion on
// each matched product; the discounted price is derived at read time.
type PromotionLaunch struct {
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	Reason             string          `json:"reason,omitempty"`
	DurationDays       int             `json:"duration_days,omitempty"`
	StartDate          *time.Time      `json:"start_date,omitempty"`
}

func (PromotionLaunch) Type() string { return "promotion" }
func (op PromotionLaunch) Details() JSONB {
	d := JSONB{"discount_percentage": op.DiscountPercentage}
	if op.Reason != "" {
		d["reason"] = op.Reason
	}
	if op.DurationDays > 0 {
		d["duration_days"] = op.DurationDays
	}
	if op.StartDate != nil {
		d["start_date"] = *op.StartDate
	}
	return d
}

// PricePreviewEntry is one row of a bulk update preview, one per variant.
// Entries are computed fresh on every call and never persisted.
type PricePreviewEntry struct {
	ProductID      uuid.UUID       `json:"product_id"`
	ProductName    string          `json:"product_name"`
	SKU            string          `json:"sku"`
	CostPrice      decimal.Decimal `json:"cost_price"`
	CurrentPrice   decimal.Decimal `json:"current_price"`
	NewPrice       decimal.Decimal `json:"new_price"`
	NewPriceUSD    decimal.Decimal `json:"new_price_usd,omitempty"`
	DiffPercentage decimal.Decimal `json:"diff_percentage"`
	HasError       bool            `json:"has_error,omitempty"`
	ErrorMessage   string          `json:"error_message,omitempty"`
}

// PricingRules are the guardrails applied by ApplyPricingRules.
type PricingRules struct {
	MinimumMargin   *decimal.Decimal `json:"minimum_margin,omitempty"`   // fraction, e.g. 0.3
	MaximumDiscount *decimal.Decimal `json:"maximum_discount,omitempty"` // fraction, e.g. 0.2
}
