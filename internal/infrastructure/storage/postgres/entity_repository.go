package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"workpro/internal/domain/entity"

	"github.com/jackc/pgx/v5"
	"golang.org/x/exp/slog"
)

const entityColumns = `tenant_id, entity_type, id, fields, version, updated_at, deleted_at`

type EntityRepository struct {
	db  DB
	log *slog.Logger
}

func NewEntityRepository(db DB, log *slog.Logger) *EntityRepository {
	return &EntityRepository{
		db:  db,
		log: log.With("component", "entity_repository"),
	}
}

func (r *EntityRepository) Get(ctx context.Context, tenantID, entityType, id string) (*entity.Entity, error) {
	const query = `
		SELECT ` + entityColumns + `
		FROM entities
		WHERE tenant_id = $1 AND entity_type = $2 AND id = $3 AND deleted_at IS NULL`

	e, err := scanEntity(QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, tenantID, entityType, id))
	if err != nil {
		if isNoRows(err) {
			return nil, entity.ErrNotFound
		}
		r.log.Error("failed to get entity", "type", entityType, "id", id, "error", err)
		return nil, fmt.Errorf("get entity: %w", err)
	}
	return e, nil
}

func (r *EntityRepository) Create(ctx context.Context, e *entity.Entity) error {
	const query = `
		INSERT INTO entities (tenant_id, entity_type, id, fields, version, updated_at)
		VALUES ($1, $2, $3, $4, 1, clock_timestamp())
		RETURNING version, updated_at`

	fields, err := json.Marshal(e.Fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}

	err = QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, e.TenantID, e.Type, e.ID, fields).
		Scan(&e.Version, &e.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return entity.ErrAlreadyExists
		}
		r.log.Error("failed to create entity", "type", e.Type, "id", e.ID, "error", err)
		return fmt.Errorf("create entity: %w", err)
	}
	return nil
}

// UpdateFields - условная запись: при expectedVersion > 0 строка меняется,
// только если её версия не изменилась с момента чтения.
func (r *EntityRepository) UpdateFields(ctx context.Context, tenantID, entityType, id string, expectedVersion int64,
	patch map[string]any) (*entity.Entity, error) {
	const query = `
		UPDATE entities
		SET fields = fields || $4::jsonb, version = version + 1, updated_at = clock_timestamp()
		WHERE tenant_id = $1 AND entity_type = $2 AND id = $3 AND deleted_at IS NULL
		  AND ($5::bigint = 0 OR version = $5::bigint)
		RETURNING ` + entityColumns

	if patch == nil {
		patch = map[string]any{}
	}
	raw, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("marshal patch: %w", err)
	}

	q := QuerierFromCtx(ctx, r.db)
	e, err := scanEntity(q.QueryRow(ctx, query, tenantID, entityType, id, raw, expectedVersion))
	if err == nil {
		return e, nil
	}
	if !isNoRows(err) {
		r.log.Error("failed to update entity", "type", entityType, "id", id, "error", err)
		return nil, fmt.Errorf("update entity: %w", err)
	}
	if expectedVersion == 0 {
		return nil, entity.ErrNotFound
	}

	const existsQuery = `
		SELECT EXISTS (
			SELECT 1 FROM entities
			WHERE tenant_id = $1 AND entity_type = $2 AND id = $3 AND deleted_at IS NULL
		)`
	var exists bool
	if err := q.QueryRow(ctx, existsQuery, tenantID, entityType, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check entity exists: %w", err)
	}
	if !exists {
		return nil, entity.ErrNotFound
	}
	return nil, entity.ErrVersionConflict
}

func (r *EntityRepository) SoftDelete(ctx context.Context, tenantID, entityType, id string) error {
	const query = `
		UPDATE entities
		SET deleted_at = clock_timestamp(), updated_at = clock_timestamp(), version = version + 1
		WHERE tenant_id = $1 AND entity_type = $2 AND id = $3 AND deleted_at IS NULL`

	tag, err := QuerierFromCtx(ctx, r.db).Exec(ctx, query, tenantID, entityType, id)
	if err != nil {
		r.log.Error("failed to delete entity", "type", entityType, "id", id, "error", err)
		return fmt.Errorf("delete entity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func scanEntity(row pgx.Row) (*entity.Entity, error) {
	var (
		e      entity.Entity
		fields []byte
	)
	if err := row.Scan(&e.TenantID, &e.Type, &e.ID, &fields, &e.Version, &e.UpdatedAt, &e.DeletedAt); err != nil {
		return nil, err
	}
	e.Fields = map[string]any{}
	if len(fields) > 0 {
		if err := json.Unmarshal(fields, &e.Fields); err != nil {
			return nil, fmt.Errorf("unmarshal fields: %w", err)
		}
	}
	return &e, nil
}
