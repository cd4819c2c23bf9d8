package models

import (
	"time"

	"github.com/google/uuid"
)

// JSONB represents a PostgreSQL jsonb value.
type JSONB map[string]interface{}

// AuditLog is one append-only entry in the tenant's activity trail. Bulk
// price updates write exactly one entry per call, with the criteria, the
// operation and the final count in Details.
type AuditLog struct {
	ID          uuid.UUID `json:"id" db:"id"`
	TenantID    uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Action      string    `json:"action" db:"action"`
	Entity      string    `json:"entity" db:"entity"`
	EntityID    string    `json:"entity_id" db:"entity_id"`
	PerformedBy uuid.UUID `json:"performed_by" db:"performed_by"`
	Details     JSONB     `json:"details" db:"details"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Action and entity constants for audit logs
const (
	ActionBulkPriceUpdate = "bulk_price_update"

	EntityProduct = "product"

	// BulkEntityID marks entries that cover a whole batch rather than one record.
	BulkEntityID = "bulk"
)
