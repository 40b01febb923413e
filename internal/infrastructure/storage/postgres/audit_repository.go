package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"workpro/internal/domain/conflict"

	"golang.org/x/exp/slog"
)

type AuditRepository struct {
	db  DB
	log *slog.Logger
}

func NewAuditRepository(db DB, log *slog.Logger) *AuditRepository {
	return &AuditRepository{
		db:  db,
		log: log.With("component", "audit_repository"),
	}
}

func (r *AuditRepository) Append(ctx context.Context, rec *conflict.AuditRecord) error {
	const query = `
		INSERT INTO audit_records (id, tenant_id, actor_id, entity_type, entity_id, action, before, after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	before, err := json.Marshal(rec.Before)
	if err != nil {
		return fmt.Errorf("marshal before: %w", err)
	}
	after, err := json.Marshal(rec.After)
	if err != nil {
		return fmt.Errorf("marshal after: %w", err)
	}

	_, err = QuerierFromCtx(ctx, r.db).Exec(ctx, query,
		rec.ID, rec.TenantID, rec.ActorID, rec.EntityType, rec.EntityID, rec.Action, before, after, rec.CreatedAt)
	if err != nil {
		r.log.Error("failed to append audit record", "entity_id", rec.EntityID, "error", err)
		return fmt.Errorf("append audit record: %w", err)
	}
	return nil
}
