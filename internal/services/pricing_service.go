package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"bodegamart/internal/caching"
	"bodegamart/internal/models"
	"bodegamart/internal/pricing"
	"bodegamart/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultPreviewMaxProducts bounds how many products one bulk operation may
// touch. The cap keeps preview latency sane and doubles as backpressure on
// execute, which uses the same selection.
const DefaultPreviewMaxProducts = 500

// Promotion defaults when the operation payload leaves them out.
const (
	defaultPromotionReason       = "Bulk Strategy Update"
	defaultPromotionDurationDays = 7
)

// fallbackExchangeRate is used when no resolved rate is cached. Rate
// acquisition itself is an external pipeline.
var fallbackExchangeRate = decimal.NewFromFloat(36.5)

type PricingService interface {
	// PreviewBulkUpdate computes the outcome of a bulk operation without
	// writing anything. Safe to call repeatedly and concurrently.
	PreviewBulkUpdate(ctx context.Context, tenantID uuid.UUID, criteria models.BulkUpdateCriteria, operation models.BulkPriceOperation) ([]models.PricePreviewEntry, error)
	// ExecuteBulkUpdate applies the operation, persisting each matched
	// product and writing exactly one audit entry for the whole batch.
	// Returns the number of variants (or, for promotions, products) changed.
	ExecuteBulkUpdate(ctx context.Context, tenantID, userID uuid.UUID, criteria models.BulkUpdateCriteria, operation models.BulkPriceOperation) (int, error)

	CalculateMargin(costPrice, sellingPrice decimal.Decimal) decimal.Decimal
	ApplyPricingRules(basePrice decimal.Decimal, rules models.PricingRules) decimal.Decimal
	GetExchangeRate(ctx context.Context) (decimal.Decimal, error)
}

type pricingService struct {
	productRepo   repositories.ProductRepository
	inventoryRepo repositories.InventoryRepository
	purchasesRepo repositories.PurchasesRepository
	auditLogsRepo repositories.AuditLogsRepository
	cacheService  caching.CacheService
	maxProducts   int
}

func NewPricingService(productRepo repositories.ProductRepository, inventoryRepo repositories.InventoryRepository, purchasesRepo repositories.PurchasesRepository, auditLogsRepo repositories.AuditLogsRepository, cacheService caching.CacheService, maxProducts int) PricingService {
	if maxProducts <= 0 {
		maxProducts = DefaultPreviewMaxProducts
	}
	return &pricingService{
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		purchasesRepo: purchasesRepo,
		auditLogsRepo: auditLogsRepo,
		cacheService:  cacheService,
		maxProducts:   maxProducts,
	}
}

func (s *pricingService) PreviewBulkUpdate(ctx context.Context, tenantID uuid.UUID, criteria models.BulkUpdateCriteria, operation models.BulkPriceOperation) ([]models.PricePreviewEntry, error) {
	products, err := s.findProductsByCriteria(ctx, tenantID, criteria)
	if err != nil {
		return nil, err
	}

	previews := []models.PricePreviewEntry{}
	for _, product := range products {
		for _, variant := range product.Variants {
			result := pricing.ComputeNewPrice(variant.BasePrice, variant.CostPrice, operation)
			previews = append(previews, models.PricePreviewEntry{
				ProductID:      product.ID,
				ProductName:    product.Name,
				SKU:            variant.SKU,
				CostPrice:      variant.CostPrice,
				CurrentPrice:   variant.BasePrice,
				NewPrice:       result.NewPrice,
				NewPriceUSD:    result.NewPriceUSD,
				DiffPercentage: result.DiffPercentage,
				HasError:       result.HasError,
				ErrorMessage:   result.ErrorMessage,
			})
		}
	}
	return previews, nil
}

func (s *pricingService) ExecuteBulkUpdate(ctx context.Context, tenantID, userID uuid.UUID, criteria models.BulkUpdateCriteria, operation models.BulkPriceOperation) (int, error) {
	products, err := s.findProductsByCriteria(ctx, tenantID, criteria)
	if err != nil {
		return 0, err
	}

	updatedCount := 0
	for _, product := range products {
		modified := false

		if promo, ok := operation.(models.PromotionLaunch); ok {
			if promo.DiscountPercentage.Sign() > 0 {
				applyPromotion(product, promo)
				modified = true
				updatedCount++
			}
		} else {
			for i := range product.Variants {
				variant := &product.Variants[i]
				result := pricing.ComputeNewPrice(variant.BasePrice, variant.CostPrice, operation)
				if result.HasError {
					// Partial-success policy: a variant that cannot be
					// priced is skipped, the rest of the batch proceeds.
					continue
				}
				if !result.NewPrice.Equal(variant.BasePrice) {
					variant.BasePrice = result.NewPrice
					modified = true
					updatedCount++
				}
			}
		}

		if modified {
			if err := s.productRepo.Save(ctx, product); err != nil {
				return 0, fmt.Errorf("failed to save product %s: %w", product.ID, err)
			}
		}
	}

	s.writeAuditEntry(ctx, tenantID, userID, criteria, operation, updatedCount)

	if updatedCount > 0 {
		if err := s.cacheService.InvalidateTenantProducts(ctx, tenantID); err != nil {
			log.Printf("WARN: failed to invalidate product cache for tenant %s: %v", tenantID, err)
		}
	}

	return updatedCount, nil
}

func applyPromotion(product *models.Product, promo models.PromotionLaunch) {
	start := time.Now()
	if promo.StartDate != nil {
		start = *promo.StartDate
	}
	duration := promo.DurationDays
	if duration <= 0 {
		duration = defaultPromotionDurationDays
	}
	reason := promo.Reason
	if reason == "" {
		reason = defaultPromotionReason
	}

	product.HasActivePromotion = true
	product.Promotion = &models.Promotion{
		IsActive:           true,
		DiscountPercentage: promo.DiscountPercentage,
		Reason:             reason,
		StartDate:          start,
		EndDate:            start.AddDate(0, 0, duration),
		DurationDays:       duration,
		AutoDeactivate:     true,
	}
}

// writeAuditEntry records the whole batch as one entry. A failure here is
// logged but not returned: the price writes are already durable.
func (s *pricingService) writeAuditEntry(ctx context.Context, tenantID, userID uuid.UUID, criteria models.BulkUpdateCriteria, operation models.BulkPriceOperation, updatedCount int) {
	entry := &models.AuditLog{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Action:      models.ActionBulkPriceUpdate,
		Entity:      models.EntityProduct,
		EntityID:    models.BulkEntityID,
		PerformedBy: userID,
		Details: models.JSONB{
			"criteria": criteriaDetails(criteria),
			"operation": models.JSONB{
				"type":    operation.Type(),
				"payload": operation.Details(),
			},
			"updated_count": updatedCount,
		},
		CreatedAt: time.Now(),
	}

	if err := s.auditLogsRepo.Create(ctx, entry); err != nil {
		log.Printf("ERROR: failed to create audit log for tenant %s: %v", tenantID, err)
	}
}

// findProductsByCriteria resolves the criteria into a ProductFilter and
// fetches the matched products. Inventory- and purchases-derived conditions
// are resolved first into id allowlists; an empty allowlist short-circuits
// to no matches without querying the catalog.
func (s *pricingService) findProductsByCriteria(ctx context.Context, tenantID uuid.UUID, criteria models.BulkUpdateCriteria) ([]*models.Product, error) {
	filter, empty, err := s.resolveCriteria(ctx, tenantID, criteria)
	if err != nil {
		return nil, err
	}
	if empty {
		return nil, nil
	}

	filter.Limit = s.maxProducts
	return s.productRepo.FindByFilter(ctx, tenantID, filter)
}

func (s *pricingService) resolveCriteria(ctx context.Context, tenantID uuid.UUID, criteria models.BulkUpdateCriteria) (*models.ProductFilter, bool, error) {
	filter := &models.ProductFilter{
		Category:                criteria.Category,
		Subcategory:             criteria.Subcategory,
		Brand:                   criteria.Brand,
		SupplierID:              criteria.SupplierID,
		SupplierIDs:             criteria.SupplierIDs,
		SupplierPaymentCurrency: criteria.SupplierPaymentCurrency,
		SupplierPaymentMethod:   criteria.SupplierPaymentMethod,
		UsesParallelRate:        criteria.UsesParallelRate,
	}

	switch criteria.Status {
	case models.StatusInactive:
		inactive := false
		filter.IsActive = &inactive
	case models.StatusAll:
		// no status constraint
	default:
		// Empty status selects active products only.
		active := true
		filter.IsActive = &active
	}

	if len(criteria.IDs) > 0 {
		filter.IDs = criteria.IDs
	}

	// Legacy purchase-history filter, only when the direct supplier payment
	// filters are absent.
	if criteria.PaymentMethod != "" && criteria.SupplierPaymentMethod == "" && criteria.SupplierPaymentCurrency == "" {
		ids, err := s.purchasesRepo.FindProductIDsByPaymentMethod(ctx, tenantID, criteria.PaymentMethod)
		if err != nil {
			return nil, false, fmt.Errorf("failed to resolve payment method criteria: %w", err)
		}
		if len(ids) == 0 {
			return nil, true, nil
		}
		filter.IDs = intersectIDs(filter.IDs, ids)
		if len(filter.IDs) == 0 {
			return nil, true, nil
		}
	}

	inventoryFilter := inventoryFilterFor(criteria)
	if !inventoryFilter.Empty() {
		ids, err := s.inventoryRepo.FindProductIDs(ctx, tenantID, inventoryFilter)
		if err != nil {
			return nil, false, fmt.Errorf("failed to resolve inventory criteria: %w", err)
		}
		if len(ids) == 0 {
			return nil, true, nil
		}
		filter.IDs = intersectIDs(filter.IDs, ids)
		if len(filter.IDs) == 0 {
			return nil, true, nil
		}
	}

	return filter, false, nil
}

func inventoryFilterFor(criteria models.BulkUpdateCriteria) *models.InventoryIDFilter {
	filter := &models.InventoryIDFilter{}

	switch criteria.StockLevel {
	case models.StockLevelLow:
		flagged := true
		filter.LowStockAlert = &flagged
	case models.StockLevelHigh:
		flagged := true
		filter.OverstockAlert = &flagged
	}

	switch criteria.Velocity {
	case models.VelocityHigh:
		threshold := float64(models.HighVelocityTurnoverRate)
		filter.TurnoverRateAtLeast = &threshold
	case models.VelocityLow:
		threshold := float64(models.HighVelocityTurnoverRate)
		filter.TurnoverRateBelow = &threshold
	}

	return filter
}

// intersectIDs ANDs two allowlists. A nil existing list means "no allowlist
// yet", so the resolved ids pass through as-is.
func intersectIDs(existing, resolved []uuid.UUID) []uuid.UUID {
	if existing == nil {
		return resolved
	}
	seen := make(map[uuid.UUID]struct{}, len(resolved))
	for _, id := range resolved {
		seen[id] = struct{}{}
	}
	out := []uuid.UUID{}
	for _, id := range existing {
		if _, ok := seen[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func (s *pricingService) CalculateMargin(costPrice, sellingPrice decimal.Decimal) decimal.Decimal {
	return pricing.CalculateMargin(costPrice, sellingPrice)
}

func (s *pricingService) ApplyPricingRules(basePrice decimal.Decimal, rules models.PricingRules) decimal.Decimal {
	return pricing.ApplyPricingRules(basePrice, rules)
}

// GetExchangeRate returns the cached VES/USD rate, falling back to a fixed
// default when nothing is cached. The acquisition pipeline that fills the
// cache lives outside this module.
func (s *pricingService) GetExchangeRate(ctx context.Context) (decimal.Decimal, error) {
	rate, found, err := s.cacheService.GetExchangeRate(ctx)
	if err != nil {
		log.Printf("WARN: exchange rate cache lookup failed: %v", err)
		return fallbackExchangeRate, nil
	}
	if !found {
		return fallbackExchangeRate, nil
	}
	return rate, nil
}

// criteriaDetails flattens the criteria for the audit trail, keeping only
// the dimensions that were actually constrained.
func criteriaDetails(criteria models.BulkUpdateCriteria) models.JSONB {
	details := models.JSONB{}
	if criteria.Category != "" {
		details["category"] = criteria.Category
	}
	if criteria.Subcategory != "" {
		details["subcategory"] = criteria.Subcategory
	}
	if criteria.Brand != "" {
		details["brand"] = criteria.Brand
	}
	if criteria.Status != "" {
		details["status"] = criteria.Status
	}
	if len(criteria.IDs) > 0 {
		ids := make([]string, len(criteria.IDs))
		for i, id := range criteria.IDs {
			ids[i] = id.String()
		}
		details["ids"] = ids
	}
	if criteria.SupplierID != nil {
		details["supplier_id"] = criteria.SupplierID.String()
	}
	if len(criteria.SupplierIDs) > 0 {
		ids := make([]string, len(criteria.SupplierIDs))
		for i, id := range criteria.SupplierIDs {
			ids[i] = id.String()
		}
		details["supplier_ids"] = ids
	}
	if criteria.SupplierPaymentCurrency != "" {
		details["supplier_payment_currency"] = criteria.SupplierPaymentCurrency
	}
	if criteria.SupplierPaymentMethod != "" {
		details["supplier_payment_method"] = criteria.SupplierPaymentMethod
	}
	if criteria.UsesParallelRate != nil {
		details["uses_parallel_rate"] = *criteria.UsesParallelRate
	}
	if criteria.PaymentMethod != "" {
		details["payment_method"] = criteria.PaymentMethod
	}
	if criteria.StockLevel != "" {
		details["stock_level"] = criteria.StockLevel
	}
	if criteria.Velocity != "" {
		details["velocity"] = criteria.Velocity
	}
	return details
}
