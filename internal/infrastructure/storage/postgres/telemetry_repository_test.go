package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"workpro/internal/domain/telemetry"

	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestTelemetryRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	mock := newMockDB(t)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	platform := "android"
	reason := "WorkOrder WO-1 not found"
	in := telemetry.Input{TenantID: "t1", UserID: "u1", DeviceID: "d1", Platform: &platform,
		PendingDelta: -1, FailedDelta: 1, FailureReason: &reason}

	mock.ExpectQuery(`INSERT INTO device_telemetry .* ON CONFLICT \(tenant_id, device_id\) DO UPDATE SET`).
		WithArgs("t1", "d1", "u1", &platform, (*string)(nil), now, false, int64(-1), int64(1), int64(0), &reason).
		WillReturnRows(pgxmock.NewRows(telemetryColumnList).
			AddRow("t1", "d1", "u1", &platform, (*string)(nil), now, (*time.Time)(nil),
				int64(0), int64(3), int64(2), &reason, now))
	repo := NewTelemetryRepository(mock, slog.Default())

	got, err := repo.Upsert(ctx, in, now)

	require.NoError(t, err)
	assert.Equal(t, int64(0), got.PendingActions)
	assert.Equal(t, int64(3), got.FailedActions)
	assert.Equal(t, int64(2), got.TotalConflicts)
	assert.Equal(t, "android", *got.Platform)
}

func TestTelemetryRepository_List(t *testing.T) {
	ctx := context.Background()
	mock := newMockDB(t)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* FROM device_telemetry WHERE tenant_id = \$1 AND user_id = \$2 ORDER BY device_id`).
		WithArgs("t1", "u1").
		WillReturnRows(pgxmock.NewRows(telemetryColumnList).
			AddRow("t1", "d1", "u1", (*string)(nil), (*string)(nil), now, &now, int64(0), int64(0), int64(0), (*string)(nil), now).
			AddRow("t1", "d2", "u1", (*string)(nil), (*string)(nil), now, (*time.Time)(nil), int64(1), int64(0), int64(0), (*string)(nil), now))
	repo := NewTelemetryRepository(mock, slog.Default())

	got, err := repo.List(ctx, telemetry.Filter{TenantID: "t1", UserID: "u1"})

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "d2", got[1].DeviceID)
	assert.NotNil(t, got[0].LastSyncAt)
}

func TestTelemetryRepository_RecountActions(t *testing.T) {
	ctx := context.Background()

	t.Run("updates drifted rows", func(t *testing.T) {
		mock := newMockDB(t)
		mock.ExpectExec(`UPDATE device_telemetry t\s+SET pending_actions = COALESCE\(c.pending, 0\)`).
			WillReturnResult(pgxmock.NewResult("UPDATE", 4))
		repo := NewTelemetryRepository(mock, slog.Default())

		n, err := repo.RecountActions(ctx)

		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
	})

	t.Run("error", func(t *testing.T) {
		mock := newMockDB(t)
		mock.ExpectExec(`UPDATE device_telemetry`).WillReturnError(errors.New("deadlock detected"))
		repo := NewTelemetryRepository(mock, slog.Default())

		_, err := repo.RecountActions(ctx)

		assert.ErrorContains(t, err, "deadlock detected")
	})
}
