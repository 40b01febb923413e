package postgres

import (
	"context"
	"fmt"
	"time"

	"workpro/internal/domain/telemetry"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"golang.org/x/exp/slog"
)

const telemetryColumns = `tenant_id, device_id, user_id, platform, app_version, last_seen_at, last_sync_at,
	pending_actions, failed_actions, total_conflicts, last_failure_reason, updated_at`

var telemetryColumnList = []string{
	"tenant_id", "device_id", "user_id", "platform", "app_version", "last_seen_at", "last_sync_at",
	"pending_actions", "failed_actions", "total_conflicts", "last_failure_reason", "updated_at",
}

type TelemetryRepository struct {
	db  DB
	log *slog.Logger
}

func NewTelemetryRepository(db DB, log *slog.Logger) *TelemetryRepository {
	return &TelemetryRepository{
		db:  db,
		log: log.With("component", "telemetry_repository"),
	}
}

// Upsert - одно выражение INSERT ... ON CONFLICT: параллельные приращения
// от разных запросов не теряются, счётчики не опускаются ниже нуля.
func (r *TelemetryRepository) Upsert(ctx context.Context, in telemetry.Input, seenAt time.Time) (*telemetry.DeviceTelemetry, error) {
	const query = `
		INSERT INTO device_telemetry (tenant_id, device_id, user_id, platform, app_version,
		                              last_seen_at, last_sync_at, pending_actions, failed_actions,
		                              total_conflicts, last_failure_reason, updated_at)
		VALUES ($1, $2, $3, $4, $5,
		        $6::timestamptz, CASE WHEN $7::boolean THEN $6::timestamptz END,
		        GREATEST($8::bigint, 0), GREATEST($9::bigint, 0), GREATEST($10::bigint, 0),
		        $11, $6::timestamptz)
		ON CONFLICT (tenant_id, device_id) DO UPDATE SET
			user_id             = COALESCE(NULLIF(EXCLUDED.user_id, ''), device_telemetry.user_id),
			platform            = COALESCE(EXCLUDED.platform, device_telemetry.platform),
			app_version         = COALESCE(EXCLUDED.app_version, device_telemetry.app_version),
			last_seen_at        = EXCLUDED.last_seen_at,
			last_sync_at        = COALESCE(EXCLUDED.last_sync_at, device_telemetry.last_sync_at),
			pending_actions     = GREATEST(device_telemetry.pending_actions + $8::bigint, 0),
			failed_actions      = GREATEST(device_telemetry.failed_actions + $9::bigint, 0),
			total_conflicts     = device_telemetry.total_conflicts + GREATEST($10::bigint, 0),
			last_failure_reason = COALESCE(EXCLUDED.last_failure_reason, device_telemetry.last_failure_reason),
			updated_at          = EXCLUDED.updated_at
		RETURNING ` + telemetryColumns

	row := QuerierFromCtx(ctx, r.db).QueryRow(ctx, query,
		in.TenantID, in.DeviceID, in.UserID, in.Platform, in.AppVersion,
		seenAt, in.Synced, in.PendingDelta, in.FailedDelta, in.ConflictDelta, in.FailureReason,
	)
	t, err := scanTelemetry(row)
	if err != nil {
		r.log.Error("failed to upsert telemetry", "device_id", in.DeviceID, "error", err)
		return nil, fmt.Errorf("upsert telemetry: %w", err)
	}
	return t, nil
}

func (r *TelemetryRepository) List(ctx context.Context, filter telemetry.Filter) ([]telemetry.DeviceTelemetry, error) {
	qb := psql.Select(telemetryColumnList...).
		From("device_telemetry").
		Where(squirrel.Eq{"tenant_id": filter.TenantID}).
		OrderBy("device_id")
	if filter.UserID != "" {
		qb = qb.Where(squirrel.Eq{"user_id": filter.UserID})
	}
	if filter.DeviceID != "" {
		qb = qb.Where(squirrel.Eq{"device_id": filter.DeviceID})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list telemetry query: %w", err)
	}

	rows, err := QuerierFromCtx(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to list telemetry", "tenant_id", filter.TenantID, "error", err)
		return nil, fmt.Errorf("list telemetry: %w", err)
	}
	defer rows.Close()

	out := make([]telemetry.DeviceTelemetry, 0)
	for rows.Next() {
		t, err := scanTelemetry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan telemetry: %w", err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate telemetry: %w", err)
	}
	return out, nil
}

// RecountActions приводит счётчики pending/failed к фактическому состоянию журнала
func (r *TelemetryRepository) RecountActions(ctx context.Context) (int64, error) {
	const query = `
		UPDATE device_telemetry t
		SET pending_actions = COALESCE(c.pending, 0),
		    failed_actions  = COALESCE(c.failed, 0),
		    updated_at      = now()
		FROM device_telemetry d
		LEFT JOIN (
			SELECT tenant_id, device_id,
			       COUNT(*) FILTER (WHERE status = 'pending') AS pending,
			       COUNT(*) FILTER (WHERE status = 'failed')  AS failed
			FROM offline_actions
			GROUP BY tenant_id, device_id
		) c ON c.tenant_id = d.tenant_id AND c.device_id = d.device_id
		WHERE t.tenant_id = d.tenant_id AND t.device_id = d.device_id
		  AND (t.pending_actions <> COALESCE(c.pending, 0) OR t.failed_actions <> COALESCE(c.failed, 0))`

	tag, err := QuerierFromCtx(ctx, r.db).Exec(ctx, query)
	if err != nil {
		r.log.Error("failed to recount telemetry", "error", err)
		return 0, fmt.Errorf("recount telemetry: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanTelemetry(row pgx.Row) (*telemetry.DeviceTelemetry, error) {
	var t telemetry.DeviceTelemetry
	err := row.Scan(
		&t.TenantID, &t.DeviceID, &t.UserID, &t.Platform, &t.AppVersion, &t.LastSeenAt, &t.LastSyncAt,
		&t.PendingActions, &t.FailedActions, &t.TotalConflicts, &t.LastFailureReason, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
