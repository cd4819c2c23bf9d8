package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bodegamart/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Database is the subset of pgxpool.Pool the repositories need. Tests swap
// in a pgxmock pool through the same interface.
type Database interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error)
	// Save overwrites the whole product document, embedded values included.
	Save(ctx context.Context, product *models.Product) error
	FindByFilter(ctx context.Context, tenantID uuid.UUID, filter *models.ProductFilter) ([]*models.Product, error)
	CountByFilter(ctx context.Context, tenantID uuid.UUID, filter *models.ProductFilter) (int, error)
	// DeactivateExpiredPromotions clears auto-deactivating promotions whose
	// end date has passed, across all tenants. Returns the number of
	// products touched.
	DeactivateExpiredPromotions(ctx context.Context, now time.Time) (int64, error)
}

type productRepo struct {
	db Database
}

func NewProductRepo(db Database) ProductRepository {
	return &productRepo{db: db}
}

const productColumns = `id, tenant_id, name, category, subcategory, brand, is_active, has_active_promotion, promotion, variants, suppliers, created_at, updated_at`

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	promotion, variants, suppliers, err := marshalEmbedded(product)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO products (id, tenant_id, name, category, subcategory, brand, is_active, has_active_promotion, promotion, variants, suppliers, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
	`
	_, err = r.db.Exec(ctx, query, product.ID, product.TenantID, product.Name, product.Category, product.Subcategory, product.Brand, product.IsActive, product.HasActivePromotion, promotion, variants, suppliers)
	return err
}

func (r *productRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE tenant_id = $1 AND id = $2
	`
	return scanProduct(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *productRepo) Save(ctx context.Context, product *models.Product) error {
	promotion, variants, suppliers, err := marshalEmbedded(product)
	if err != nil {
		return err
	}

	query := `
		UPDATE products
		SET name = $1, category = $2, subcategory = $3, brand = $4, is_active = $5, has_active_promotion = $6, promotion = $7, variants = $8, suppliers = $9, updated_at = NOW()
		WHERE tenant_id = $10 AND id = $11
	`
	tag, err := r.db.Exec(ctx, query, product.Name, product.Category, product.Subcategory, product.Brand, product.IsActive, product.HasActivePromotion, promotion, variants, suppliers, product.TenantID, product.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %s not found for tenant %s", product.ID, product.TenantID)
	}
	return nil
}

func (r *productRepo) FindByFilter(ctx context.Context, tenantID uuid.UUID, filter *models.ProductFilter) ([]*models.Product, error) {
	query, args := buildFilterQuery(`SELECT `+productColumns+` FROM products`, tenantID, filter)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func (r *productRepo) CountByFilter(ctx context.Context, tenantID uuid.UUID, filter *models.ProductFilter) (int, error) {
	noLimit := *filter
	noLimit.Limit = 0
	query, args := buildFilterQuery(`SELECT COUNT(*) FROM products`, tenantID, &noLimit)

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *productRepo) DeactivateExpiredPromotions(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE products
		SET has_active_promotion = FALSE,
		    promotion = jsonb_set(promotion, '{is_active}', 'false'),
		    updated_at = NOW()
		WHERE has_active_promotion = TRUE
		  AND promotion IS NOT NULL
		  AND (promotion->>'auto_deactivate')::bool = TRUE
		  AND (promotion->>'end_date')::timestamptz <= $1
	`
	tag, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// buildFilterQuery translates a resolved ProductFilter into SQL. Supplier
// conditions each run over the embedded suppliers jsonb array independently,
// matching a product when any of its links qualifies.
func buildFilterQuery(selectClause string, tenantID uuid.UUID, filter *models.ProductFilter) (string, []interface{}) {
	query := selectClause + ` WHERE tenant_id = $1`
	args := []interface{}{tenantID}
	argCount := 1

	if filter == nil {
		return query, args
	}

	if filter.IsActive != nil {
		argCount++
		query += fmt.Sprintf(` AND is_active = $%d`, argCount)
		args = append(args, *filter.IsActive)
	}

	if len(filter.IDs) > 0 {
		argCount++
		query += fmt.Sprintf(` AND id = ANY($%d)`, argCount)
		args = append(args, filter.IDs)
	}

	if filter.Category != "" {
		argCount++
		query += fmt.Sprintf(` AND category = $%d`, argCount)
		args = append(args, filter.Category)
	}

	if filter.Subcategory != "" {
		argCount++
		query += fmt.Sprintf(` AND subcategory = $%d`, argCount)
		args = append(args, filter.Subcategory)
	}

	if filter.Brand != "" {
		argCount++
		query += fmt.Sprintf(` AND brand = $%d`, argCount)
		args = append(args, filter.Brand)
	}

	if filter.SupplierID != nil {
		argCount++
		query += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM jsonb_array_elements(suppliers) s
			WHERE s->>'supplier_id' = $%d
		)`, argCount)
		args = append(args, filter.SupplierID.String())
	}

	if len(filter.SupplierIDs) > 0 {
		ids := make([]string, len(filter.SupplierIDs))
		for i, id := range filter.SupplierIDs {
			ids[i] = id.String()
		}
		argCount++
		query += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM jsonb_array_elements(suppliers) s
			WHERE s->>'supplier_id' = ANY($%d)
		)`, argCount)
		args = append(args, ids)
	}

	if filter.SupplierPaymentCurrency != "" {
		argCount++
		query += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM jsonb_array_elements(suppliers) s
			WHERE s->>'payment_currency' = $%d
		)`, argCount)
		args = append(args, filter.SupplierPaymentCurrency)
	}

	if filter.SupplierPaymentMethod != "" {
		// Preferred OR accepted, a single disjunction over each link.
		argCount++
		query += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM jsonb_array_elements(suppliers) s
			WHERE s->>'preferred_payment_method' = $%d
			   OR s->'accepted_payment_methods' @> to_jsonb($%d::text)
		)`, argCount, argCount)
		args = append(args, filter.SupplierPaymentMethod)
	}

	if filter.UsesParallelRate != nil {
		argCount++
		query += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM jsonb_array_elements(suppliers) s
			WHERE (s->>'uses_parallel_rate')::bool = $%d
		)`, argCount)
		args = append(args, *filter.UsesParallelRate)
	}

	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		argCount++
		query += fmt.Sprintf(` LIMIT $%d`, argCount)
		args = append(args, filter.Limit)
	}

	return query, args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	product := &models.Product{}
	var promotion, variants, suppliers []byte

	err := row.Scan(&product.ID, &product.TenantID, &product.Name, &product.Category, &product.Subcategory, &product.Brand, &product.IsActive, &product.HasActivePromotion, &promotion, &variants, &suppliers, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(promotion) > 0 {
		product.Promotion = &models.Promotion{}
		if err := json.Unmarshal(promotion, product.Promotion); err != nil {
			return nil, fmt.Errorf("failed to unmarshal promotion: %w", err)
		}
	}
	if len(variants) > 0 {
		if err := json.Unmarshal(variants, &product.Variants); err != nil {
			return nil, fmt.Errorf("failed to unmarshal variants: %w", err)
		}
	}
	if len(suppliers) > 0 {
		if err := json.Unmarshal(suppliers, &product.Suppliers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal suppliers: %w", err)
		}
	}
	return product, nil
}

func marshalEmbedded(product *models.Product) (promotion, variants, suppliers []byte, err error) {
	if product.Promotion != nil {
		promotion, err = json.Marshal(product.Promotion)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal promotion: %w", err)
		}
	}

	if product.Variants == nil {
		product.Variants = []models.Variant{}
	}
	variants, err = json.Marshal(product.Variants)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal variants: %w", err)
	}

	if product.Suppliers == nil {
		product.Suppliers = []models.SupplierLink{}
	}
	suppliers, err = json.Marshal(product.Suppliers)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal suppliers: %w", err)
	}
	return promotion, variants, suppliers, nil
}
