package client

import (
	"context"
	"fmt"

	"workpro/internal/domain/ledger"

	"golang.org/x/exp/slog"
)

// Outbox локальная очередь действий
type Outbox interface {
	Unsent(ctx context.Context) ([]*OutboxAction, error)
	MarkResult(ctx context.Context, id string, status OutboxStatus, errMsg, serverEntityID string) error
}

// Transport отправляет пакет действий на сервер
type Transport interface {
	SubmitActions(ctx context.Context, actions []ledger.ActionInput) ([]ledger.ActionResult, error)
}

// Pusher отправляет неотправленные действия пакетами. Повторная отправка безопасна:
// сервер узнаёт действие по ключу идемпотентности и возвращает прежний исход.
type Pusher struct {
	outbox    Outbox
	transport Transport
	batchSize int
	log       *slog.Logger
}

func NewPusher(outbox Outbox, transport Transport, batchSize int, log *slog.Logger) *Pusher {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Pusher{
		outbox:    outbox,
		transport: transport,
		batchSize: batchSize,
		log:       log.With("component", "pusher"),
	}
}

func (p *Pusher) Push(ctx context.Context) (*PushResult, error) {
	unsent, err := p.outbox.Unsent(ctx)
	if err != nil {
		return nil, err
	}

	result := &PushResult{}
	for start := 0; start < len(unsent); start += p.batchSize {
		end := min(start+p.batchSize, len(unsent))
		batch := unsent[start:end]

		results, err := p.transport.SubmitActions(ctx, toInputs(batch))
		if err != nil {
			return result, fmt.Errorf("пакет %d: %w", result.Batches+1, err)
		}
		result.Batches++
		result.Sent += len(batch)

		if err := p.apply(ctx, batch, results, result); err != nil {
			return result, err
		}
	}

	p.log.Debug("push finished",
		"sent", result.Sent, "applied", result.Applied, "failed", result.Failed, "pending", result.Pending)
	return result, nil
}

func (p *Pusher) apply(ctx context.Context, batch []*OutboxAction, results []ledger.ActionResult, total *PushResult) error {
	byID := make(map[string]ledger.ActionResult, len(results))
	for _, r := range results {
		byID[r.ID] = r
	}

	for _, a := range batch {
		r, ok := byID[a.ID]
		if !ok {
			p.log.Warn("no result for action", "action_id", a.ID)
			total.Pending++
			continue
		}

		status := OutboxPending
		switch r.Status {
		case ledger.ResultOK:
			status = OutboxOK
			total.Applied++
		case ledger.ResultError:
			status = OutboxError
			total.Failed++
		default:
			total.Pending++
		}

		if err := p.outbox.MarkResult(ctx, a.ID, status, r.Error, r.EntityID); err != nil {
			return fmt.Errorf("сохранение исхода %s: %w", a.ID, err)
		}
	}
	return nil
}

func toInputs(batch []*OutboxAction) []ledger.ActionInput {
	inputs := make([]ledger.ActionInput, 0, len(batch))
	for _, a := range batch {
		inputs = append(inputs, ledger.ActionInput{
			ID:             a.ID,
			EntityType:     a.EntityType,
			EntityID:       a.EntityID,
			Operation:      a.Operation,
			Payload:        a.Payload,
			IdempotencyKey: a.IdempotencyKey,
		})
	}
	return inputs
}
