package ledger

import (
	"context"
	"time"
)

// Repository интерфейс журнала офлайн-действий
type Repository interface {
	// Insert вставляет действие, если его ключ идемпотентности ещё не встречался.
	// Возвращает сохранённую строку и признак того, что вставка произошла.
	Insert(ctx context.Context, a *OfflineAction) (*OfflineAction, bool, error)

	// MarkApplied и MarkFailed переводят только pending-действия.
	MarkApplied(ctx context.Context, id string, entityID *string, appliedAt time.Time) error
	MarkFailed(ctx context.Context, id string, reason string) error

	List(ctx context.Context, filter PendingFilter) ([]OfflineAction, error)
}

// TxManager выполняет fn в одной транзакции хранилища. RunInSavepoint внутри
// открытой транзакции откатывает только то, что сделала fn.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	RunInSavepoint(ctx context.Context, fn func(ctx context.Context) error) error
}
