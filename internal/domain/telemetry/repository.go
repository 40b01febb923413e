package telemetry

import (
	"context"
	"time"
)

// Repository интерфейс хранилища телеметрии устройств
type Repository interface {
	// Upsert создаёт или обновляет запись одним атомарным выражением
	Upsert(ctx context.Context, in Input, seenAt time.Time) (*DeviceTelemetry, error)
	List(ctx context.Context, filter Filter) ([]DeviceTelemetry, error)
	// RecountActions пересчитывает pending/failed по журналу действий, возвращает число изменённых строк
	RecountActions(ctx context.Context) (int64, error)
}
