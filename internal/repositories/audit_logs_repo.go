package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bodegamart/internal/models"

	"github.com/google/uuid"
)

// AuditLogsRepository is the append-only activity trail. Entries are never
// updated or deleted by the pricing engine.
type AuditLogsRepository interface {
	Create(ctx context.Context, auditLog *models.AuditLog) error
	ListByAction(ctx context.Context, tenantID uuid.UUID, action string, limit, offset int) ([]*models.AuditLog, error)
}

type auditLogsRepo struct {
	db Database
}

func NewAuditLogsRepo(db Database) AuditLogsRepository {
	return &auditLogsRepo{db: db}
}

func (r *auditLogsRepo) Create(ctx context.Context, auditLog *models.AuditLog) error {
	if auditLog.ID == uuid.Nil {
		auditLog.ID = uuid.New()
	}
	if auditLog.CreatedAt.IsZero() {
		auditLog.CreatedAt = time.Now()
	}

	var details []byte
	if auditLog.Details != nil {
		var err error
		details, err = json.Marshal(auditLog.Details)
		if err != nil {
			return fmt.Errorf("failed to marshal details: %w", err)
		}
	}

	query := `
		INSERT INTO audit_logs (id, tenant_id, action, entity, entity_id, performed_by, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query, auditLog.ID, auditLog.TenantID, auditLog.Action, auditLog.Entity, auditLog.EntityID, auditLog.PerformedBy, details, auditLog.CreatedAt)
	return err
}

func (r *auditLogsRepo) ListByAction(ctx context.Context, tenantID uuid.UUID, action string, limit, offset int) ([]*models.AuditLog, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}

	query := `
		SELECT id, tenant_id, action, entity, entity_id, performed_by, details, created_at
		FROM audit_logs
		WHERE tenant_id = $1 AND action = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, tenantID, action, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.AuditLog
	for rows.Next() {
		entry := &models.AuditLog{}
		var details []byte
		if err := rows.Scan(&entry.ID, &entry.TenantID, &entry.Action, &entry.Entity, &entry.EntityID, &entry.PerformedBy, &details, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &entry.Details); err != nil {
				return nil, fmt.Errorf("failed to unmarshal details: %w", err)
			}
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
