package client

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var ErrActionNotFound = errors.New("действие не найдено")

type SQLiteStorage struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы данных: %w", err)
	}

	storage := &SQLiteStorage{db: db, now: time.Now}

	if err := storage.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка инициализации таблиц: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) initTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS outbox (
			id               TEXT PRIMARY KEY,
			entity_type      TEXT NOT NULL,
			entity_id        TEXT,
			operation        TEXT NOT NULL,
			payload          TEXT NOT NULL DEFAULT '{}',
			idempotency_key  TEXT NOT NULL UNIQUE,
			status           TEXT NOT NULL DEFAULT 'queued',
			error            TEXT NOT NULL DEFAULT '',
			server_entity_id TEXT NOT NULL DEFAULT '',
			attempts         INTEGER NOT NULL DEFAULT 0,
			created_at       DATETIME NOT NULL,
			updated_at       DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_outbox_status ON outbox(status, created_at);
	`)

	return err
}

// Enqueue сохраняет действие в очередь со статусом queued
func (s *SQLiteStorage) Enqueue(ctx context.Context, a *OutboxAction) error {
	payload, err := json.Marshal(a.Payload)
	if err != nil {
		return fmt.Errorf("ошибка сериализации payload: %w", err)
	}

	now := s.now().UTC()
	a.Status = OutboxQueued
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO outbox (id, entity_type, entity_id, operation, payload, idempotency_key,
		                    status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.EntityType, a.EntityID, a.Operation, string(payload), a.IdempotencyKey,
		a.Status, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка сохранения действия: %w", err)
	}

	return nil
}

// Unsent возвращает действия без окончательного исхода в порядке постановки в очередь
func (s *SQLiteStorage) Unsent(ctx context.Context) ([]*OutboxAction, error) {
	return s.list(ctx, `WHERE status IN ('queued', 'pending')`)
}

func (s *SQLiteStorage) List(ctx context.Context) ([]*OutboxAction, error) {
	return s.list(ctx, "")
}

func (s *SQLiteStorage) list(ctx context.Context, where string) ([]*OutboxAction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, entity_type, entity_id, operation, payload, idempotency_key, status,
		       error, server_entity_id, attempts, created_at, updated_at
		FROM outbox `+where+`
		ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	var actions []*OutboxAction
	for rows.Next() {
		var (
			a        OutboxAction
			entityID sql.NullString
			payload  string
		)
		if err := rows.Scan(&a.ID, &a.EntityType, &entityID, &a.Operation, &payload, &a.IdempotencyKey,
			&a.Status, &a.Error, &a.ServerEntityID, &a.Attempts, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования действия: %w", err)
		}
		if entityID.Valid {
			a.EntityID = &entityID.String
		}
		if err := json.Unmarshal([]byte(payload), &a.Payload); err != nil {
			return nil, fmt.Errorf("ошибка парсинга payload: %w", err)
		}
		actions = append(actions, &a)
	}

	return actions, rows.Err()
}

// MarkResult записывает исход, полученный от сервера
func (s *SQLiteStorage) MarkResult(ctx context.Context, id string, status OutboxStatus, errMsg, serverEntityID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE outbox
		SET status = ?, error = ?, server_entity_id = CASE WHEN ? = '' THEN server_entity_id ELSE ? END,
		    attempts = attempts + 1, updated_at = ?
		WHERE id = ?
	`, status, errMsg, serverEntityID, serverEntityID, s.now().UTC(), id)
	if err != nil {
		return fmt.Errorf("ошибка обновления действия: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка обновления действия: %w", err)
	}
	if n == 0 {
		return ErrActionNotFound
	}
	return nil
}

// Counts - число действий по статусам
func (s *SQLiteStorage) Counts(ctx context.Context) (map[OutboxStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM outbox GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчета действий: %w", err)
	}
	defer rows.Close()

	counts := map[OutboxStatus]int{OutboxQueued: 0, OutboxPending: 0, OutboxOK: 0, OutboxError: 0}
	for rows.Next() {
		var (
			status OutboxStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("ошибка подсчета действий: %w", err)
		}
		counts[status] = n
	}

	return counts, rows.Err()
}

// Prune удаляет успешно применённые действия старше before
func (s *SQLiteStorage) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM outbox WHERE status = 'ok' AND updated_at < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("ошибка очистки очереди: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
