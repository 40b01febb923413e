package conflict

import "context"

// Repository интерфейс хранилища конфликтов
type Repository interface {
	// Upsert вставляет конфликт или обновляет pending-конфликт той же тройки.
	// Заполняет ID и CreatedAt сохранённой строки.
	Upsert(ctx context.Context, c *SyncConflict) error
	Get(ctx context.Context, tenantID, id string) (*SyncConflict, error)
	// GetForUpdate блокирует строку до конца транзакции
	GetForUpdate(ctx context.Context, tenantID, id string) (*SyncConflict, error)
	// MarkResolved переводит только pending-конфликт; иначе ErrAlreadyResolved
	MarkResolved(ctx context.Context, c *SyncConflict) error
	List(ctx context.Context, filter Filter) ([]SyncConflict, error)
}

type AuditRepository interface {
	Append(ctx context.Context, rec *AuditRecord) error
}

// TxManager выполняет fn в одной транзакции хранилища
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
