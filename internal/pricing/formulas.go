// Package pricing holds the pure price computations of the bulk pricing
// engine. Nothing here touches storage; preview and execute both go through
// ComputeNewPrice so the two paths can never disagree.
package pricing

import (
	"github.com/shopspring/decimal"

	"bodegamart/internal/models"
)

// Per-variant error messages surfaced to callers. These recover locally: a
// variant that cannot be priced is flagged, never aborts the batch.
const (
	ErrMsgInvalidRates    = "Tasas inválidas"
	ErrMsgNoReferenceCost = "Sin Costo de Referencia"
	ErrMsgInvalidPrice    = "Precio inválido"
	ErrMsgInvalidResult   = "Precio resultante inválido"
	ErrMsgUnsupportedOp   = "Operación no soportada"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Result carries either a new price or a flagged error for one variant.
// On error NewPrice holds the current price (or zero when there is no
// meaningful current value), never a half-computed number.
type Result struct {
	NewPrice       decimal.Decimal
	NewPriceUSD    decimal.Decimal // only set by the inflation formula
	DiffPercentage decimal.Decimal
	HasError       bool
	ErrorMessage   string
}

func errResult(price decimal.Decimal, msg string) Result {
	return Result{NewPrice: price, HasError: true, ErrorMessage: msg}
}

// ComputeNewPrice applies one bulk price operation to one variant's current
// state. Final money amounts are rounded up to the next whole unit, the
// system-wide convention for list prices.
func ComputeNewPrice(currentPrice, costPrice decimal.Decimal, op models.BulkPriceOperation) Result {
	var newPrice decimal.Decimal
	var newPriceUSD decimal.Decimal

	switch o := op.(type) {
	case models.PercentageIncrease:
		newPrice = currentPrice.Mul(one.Add(o.Percentage.Div(hundred)))
		if newPrice.Sign() <= 0 {
			return errResult(currentPrice, ErrMsgInvalidResult)
		}

	case models.MarginUpdate:
		// Zero cost yields a zero price here; whether that is acceptable is
		// the caller's product decision, not a formula error.
		newPrice = costPrice.Mul(one.Add(o.TargetMargin))
		if newPrice.Sign() < 0 {
			return errResult(currentPrice, ErrMsgInvalidResult)
		}

	case models.SupplierRateAdjustment:
		if o.OldRate.Sign() <= 0 || o.NewRate.Sign() <= 0 {
			return errResult(currentPrice, ErrMsgInvalidRates)
		}
		factor := o.NewRate.Div(o.OldRate)
		if o.PreserveMargin && costPrice.Sign() > 0 && currentPrice.Sign() > 0 {
			currentMargin := currentPrice.Sub(costPrice).Div(currentPrice)
			denom := one.Sub(currentMargin)
			if denom.Sign() <= 0 {
				// A margin of 100% (or more) leaves nothing to divide by.
				return errResult(currentPrice, ErrMsgInvalidRates)
			}
			newCost := costPrice.Mul(factor)
			newPrice = newCost.Div(denom)
		} else {
			newPrice = currentPrice.Mul(factor)
		}
		if newPrice.Sign() <= 0 {
			return errResult(currentPrice, ErrMsgInvalidResult)
		}

	case models.InflationFormula:
		if o.ParallelRate.Sign() <= 0 || o.BCVRate.Sign() <= 0 {
			return errResult(currentPrice, ErrMsgInvalidRates)
		}
		if costPrice.Sign() <= 0 {
			return errResult(decimal.Zero, ErrMsgNoReferenceCost)
		}
		// The cost is held in USD; rebase it through the parallel/BCV ratio,
		// add the margin, then convert back to VES via the BCV rate. The
		// ratio-then-rate order is deliberate and must not be simplified.
		adjustedCost := costPrice.Mul(o.ParallelRate.Div(o.BCVRate))
		newPriceUSD = adjustedCost.Mul(one.Add(o.TargetMargin))
		newPrice = newPriceUSD.Mul(o.BCVRate)

	case models.FixedPrice:
		if o.Price.Sign() <= 0 {
			return errResult(currentPrice, ErrMsgInvalidPrice)
		}
		newPrice = o.Price

	case models.PromotionLaunch:
		// The promotion itself is applied at the product level; the preview
		// shows the effective discounted price without touching basePrice.
		newPrice = currentPrice.Mul(one.Sub(o.DiscountPercentage.Div(hundred)))
		if newPrice.Sign() < 0 {
			return errResult(currentPrice, ErrMsgInvalidResult)
		}

	default:
		return errResult(currentPrice, ErrMsgUnsupportedOp)
	}

	newPrice = newPrice.Ceil()

	var diff decimal.Decimal
	if currentPrice.Sign() > 0 {
		diff = newPrice.Sub(currentPrice).Div(currentPrice).Mul(hundred)
	}

	return Result{
		NewPrice:       newPrice,
		NewPriceUSD:    newPriceUSD,
		DiffPercentage: diff,
	}
}

// CalculateMargin returns the margin of a sale as a percentage of the
// selling price. A zero cost (no reference cost) yields 0.
func CalculateMargin(costPrice, sellingPrice decimal.Decimal) decimal.Decimal {
	if costPrice.IsZero() || sellingPrice.IsZero() {
		return decimal.Zero
	}
	return sellingPrice.Sub(costPrice).Div(sellingPrice).Mul(hundred)
}

// ApplyPricingRules clamps a price against the tenant's guardrails: a
// minimum margin floor and a maximum discount floor. The highest applicable
// floor wins; with no rules the base price passes through unchanged.
func ApplyPricingRules(basePrice decimal.Decimal, rules models.PricingRules) decimal.Decimal {
	finalPrice := basePrice

	if rules.MinimumMargin != nil && rules.MinimumMargin.Sign() > 0 && rules.MinimumMargin.LessThan(one) {
		minPrice := basePrice.Div(one.Sub(*rules.MinimumMargin))
		if minPrice.GreaterThan(finalPrice) {
			finalPrice = minPrice
		}
	}

	if rules.MaximumDiscount != nil && rules.MaximumDiscount.Sign() > 0 {
		maxDiscountPrice := basePrice.Mul(one.Sub(*rules.MaximumDiscount))
		if maxDiscountPrice.GreaterThan(finalPrice) {
			finalPrice = maxDiscountPrice
		}
	}

	return finalPrice
}
