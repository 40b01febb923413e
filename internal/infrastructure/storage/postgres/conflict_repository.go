package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"workpro/internal/domain/conflict"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/exp/slog"
)

const conflictColumns = `id, tenant_id, user_id, device_id, entity_type, entity_id, server_version,
	client_version, payload, status, resolution, resolved_by, resolved_at, notes, created_at`

var conflictColumnList = []string{
	"id", "tenant_id", "user_id", "device_id", "entity_type", "entity_id", "server_version",
	"client_version", "payload", "status", "resolution", "resolved_by", "resolved_at", "notes", "created_at",
}

type ConflictRepository struct {
	db  DB
	log *slog.Logger
}

func NewConflictRepository(db DB, log *slog.Logger) *ConflictRepository {
	return &ConflictRepository{
		db:  db,
		log: log.With("component", "conflict_repository"),
	}
}

// Upsert опирается на частичный уникальный индекс по pending-конфликтам:
// новый отчёт о той же тройке замещает данные существующей строки.
func (r *ConflictRepository) Upsert(ctx context.Context, c *conflict.SyncConflict) error {
	const query = `
		INSERT INTO sync_conflicts (id, tenant_id, user_id, device_id, entity_type, entity_id,
		                            server_version, client_version, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'pending', $10)
		ON CONFLICT (tenant_id, entity_type, entity_id, device_id) WHERE status = 'pending'
		DO UPDATE SET user_id        = EXCLUDED.user_id,
		              server_version = EXCLUDED.server_version,
		              client_version = EXCLUDED.client_version,
		              payload        = EXCLUDED.payload,
		              created_at     = EXCLUDED.created_at
		RETURNING id, created_at`

	payload, err := marshalNullable(c.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	err = QuerierFromCtx(ctx, r.db).QueryRow(ctx, query,
		c.ID, c.TenantID, c.UserID, c.DeviceID, c.EntityType, c.EntityID,
		c.ServerVersion, c.ClientVersion, payload, c.CreatedAt,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		r.log.Error("failed to upsert conflict",
			"entity_type", c.EntityType, "entity_id", c.EntityID, "device_id", c.DeviceID, "error", err)
		return fmt.Errorf("upsert conflict: %w", err)
	}
	c.Status = conflict.StatusPending
	return nil
}

func (r *ConflictRepository) Get(ctx context.Context, tenantID, id string) (*conflict.SyncConflict, error) {
	return r.get(ctx, tenantID, id, "")
}

func (r *ConflictRepository) GetForUpdate(ctx context.Context, tenantID, id string) (*conflict.SyncConflict, error) {
	return r.get(ctx, tenantID, id, " FOR UPDATE")
}

func (r *ConflictRepository) get(ctx context.Context, tenantID, id, suffix string) (*conflict.SyncConflict, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, conflict.ErrNotFound
	}

	query := `
		SELECT ` + conflictColumns + `
		FROM sync_conflicts
		WHERE tenant_id = $1 AND id = $2` + suffix

	c, err := scanConflict(QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if isNoRows(err) {
			return nil, conflict.ErrNotFound
		}
		r.log.Error("failed to get conflict", "conflict_id", id, "error", err)
		return nil, fmt.Errorf("get conflict: %w", err)
	}
	return c, nil
}

func (r *ConflictRepository) MarkResolved(ctx context.Context, c *conflict.SyncConflict) error {
	const query = `
		UPDATE sync_conflicts
		SET status = 'resolved', resolution = $3, resolved_by = $4, resolved_at = $5, notes = $6
		WHERE tenant_id = $1 AND id = $2 AND status = 'pending'`

	var resolution *string
	if c.Resolution != nil {
		s := string(*c.Resolution)
		resolution = &s
	}

	tag, err := QuerierFromCtx(ctx, r.db).Exec(ctx, query,
		c.TenantID, c.ID, resolution, c.ResolvedBy, c.ResolvedAt, c.Notes)
	if err != nil {
		r.log.Error("failed to resolve conflict", "conflict_id", c.ID, "error", err)
		return fmt.Errorf("resolve conflict: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return conflict.ErrAlreadyResolved
	}
	return nil
}

func (r *ConflictRepository) List(ctx context.Context, filter conflict.Filter) ([]conflict.SyncConflict, error) {
	qb := psql.Select(conflictColumnList...).
		From("sync_conflicts").
		Where(squirrel.Eq{"tenant_id": filter.TenantID}).
		OrderBy("created_at DESC", "id")
	if filter.Status != nil {
		qb = qb.Where(squirrel.Eq{"status": string(*filter.Status)})
	}
	if filter.Resolution != nil {
		qb = qb.Where(squirrel.Eq{"resolution": string(*filter.Resolution)})
	}
	if filter.DeviceID != "" {
		qb = qb.Where(squirrel.Eq{"device_id": filter.DeviceID})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list conflicts query: %w", err)
	}

	rows, err := QuerierFromCtx(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to list conflicts", "tenant_id", filter.TenantID, "error", err)
		return nil, fmt.Errorf("list conflicts: %w", err)
	}
	defer rows.Close()

	out := make([]conflict.SyncConflict, 0)
	for rows.Next() {
		c, err := scanConflict(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conflict: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conflicts: %w", err)
	}
	return out, nil
}

func scanConflict(row pgx.Row) (*conflict.SyncConflict, error) {
	var (
		c          conflict.SyncConflict
		status     string
		resolution *string
		payload    []byte
	)
	err := row.Scan(
		&c.ID, &c.TenantID, &c.UserID, &c.DeviceID, &c.EntityType, &c.EntityID, &c.ServerVersion,
		&c.ClientVersion, &payload, &status, &resolution, &c.ResolvedBy, &c.ResolvedAt, &c.Notes, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Status = conflict.Status(status)
	if resolution != nil {
		res := conflict.Resolution(*resolution)
		c.Resolution = &res
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &c.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal payload: %w", err)
		}
	}
	return &c, nil
}

// marshalNullable сериализует значение в JSON; nil-map сохраняется как SQL NULL
func marshalNullable(v map[string]any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
