package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"workpro/internal/domain/entity"
	"workpro/internal/domain/ledger"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"golang.org/x/exp/slog"
)

const actionColumns = `id, tenant_id, user_id, device_id, client_action_id, entity_type, entity_id,
	operation, payload, idempotency_key, status, error, created_at, applied_at`

var actionColumnList = []string{
	"id", "tenant_id", "user_id", "device_id", "client_action_id", "entity_type", "entity_id",
	"operation", "payload", "idempotency_key", "status", "error", "created_at", "applied_at",
}

type ActionRepository struct {
	db  DB
	log *slog.Logger
}

func NewActionRepository(db DB, log *slog.Logger) *ActionRepository {
	return &ActionRepository{
		db:  db,
		log: log.With("component", "action_repository"),
	}
}

// Insert атомарно вставляет действие, если ключ идемпотентности свободен.
// При конфликте ключа возвращается уже сохранённая строка.
func (r *ActionRepository) Insert(ctx context.Context, a *ledger.OfflineAction) (*ledger.OfflineAction, bool, error) {
	const query = `
		INSERT INTO offline_actions (id, tenant_id, user_id, device_id, client_action_id, entity_type,
		                             entity_id, operation, payload, idempotency_key, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (tenant_id, user_id, idempotency_key) DO NOTHING
		RETURNING ` + actionColumns

	payload, err := json.Marshal(a.Payload)
	if err != nil {
		return nil, false, fmt.Errorf("marshal payload: %w", err)
	}

	q := QuerierFromCtx(ctx, r.db)
	row := q.QueryRow(ctx, query,
		a.ID, a.TenantID, a.UserID, a.DeviceID, a.ClientActionID, a.EntityType,
		a.EntityID, string(a.Operation), payload, a.IdempotencyKey, string(a.Status), a.CreatedAt,
	)
	stored, err := scanAction(row)
	if err == nil {
		return stored, true, nil
	}
	if !isNoRows(err) {
		r.log.Error("failed to insert action", "idempotency_key", a.IdempotencyKey, "error", err)
		return nil, false, fmt.Errorf("insert action: %w", err)
	}

	existing, err := r.getByKey(ctx, a.TenantID, a.UserID, a.IdempotencyKey)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *ActionRepository) getByKey(ctx context.Context, tenantID, userID, key string) (*ledger.OfflineAction, error) {
	const query = `
		SELECT ` + actionColumns + `
		FROM offline_actions
		WHERE tenant_id = $1 AND user_id = $2 AND idempotency_key = $3`

	a, err := scanAction(QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, tenantID, userID, key))
	if err != nil {
		if isNoRows(err) {
			return nil, ledger.ErrNotFound
		}
		r.log.Error("failed to get action by key", "idempotency_key", key, "error", err)
		return nil, fmt.Errorf("get action by key: %w", err)
	}
	return a, nil
}

func (r *ActionRepository) MarkApplied(ctx context.Context, id string, entityID *string, appliedAt time.Time) error {
	const query = `
		UPDATE offline_actions
		SET status = 'applied', entity_id = COALESCE($2, entity_id), applied_at = $3, error = NULL
		WHERE id = $1 AND status = 'pending'`

	tag, err := QuerierFromCtx(ctx, r.db).Exec(ctx, query, id, entityID, appliedAt)
	if err != nil {
		r.log.Error("failed to mark action applied", "action_id", id, "error", err)
		return fmt.Errorf("mark action applied: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (r *ActionRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	const query = `
		UPDATE offline_actions
		SET status = 'failed', error = $2
		WHERE id = $1 AND status = 'pending'`

	tag, err := QuerierFromCtx(ctx, r.db).Exec(ctx, query, id, reason)
	if err != nil {
		r.log.Error("failed to mark action failed", "action_id", id, "error", err)
		return fmt.Errorf("mark action failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (r *ActionRepository) List(ctx context.Context, filter ledger.PendingFilter) ([]ledger.OfflineAction, error) {
	qb := psql.Select(actionColumnList...).
		From("offline_actions").
		Where(squirrel.Eq{"tenant_id": filter.TenantID}).
		OrderBy("created_at", "id")
	if filter.UserID != "" {
		qb = qb.Where(squirrel.Eq{"user_id": filter.UserID})
	}
	if filter.DeviceID != "" {
		qb = qb.Where(squirrel.Eq{"device_id": filter.DeviceID})
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		qb = qb.Where(squirrel.Eq{"status": statuses})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list actions query: %w", err)
	}

	rows, err := QuerierFromCtx(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to list actions", "tenant_id", filter.TenantID, "error", err)
		return nil, fmt.Errorf("list actions: %w", err)
	}
	defer rows.Close()

	actions := make([]ledger.OfflineAction, 0)
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		actions = append(actions, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actions: %w", err)
	}
	return actions, nil
}

func scanAction(row pgx.Row) (*ledger.OfflineAction, error) {
	var (
		a         ledger.OfflineAction
		operation string
		status    string
		payload   []byte
	)
	err := row.Scan(
		&a.ID, &a.TenantID, &a.UserID, &a.DeviceID, &a.ClientActionID, &a.EntityType, &a.EntityID,
		&operation, &payload, &a.IdempotencyKey, &status, &a.Error, &a.CreatedAt, &a.AppliedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Operation = entity.Operation(operation)
	a.Status = ledger.Status(status)
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &a.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal payload: %w", err)
		}
	}
	return &a, nil
}
