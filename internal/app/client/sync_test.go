package client

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"workpro/internal/domain/entity"
	"workpro/internal/domain/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) SubmitActions(ctx context.Context, actions []ledger.ActionInput) ([]ledger.ActionResult, error) {
	args := m.Called(ctx, actions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.ActionResult), args.Error(1)
}

// idempotentServer запоминает исход по ключу, как это делает сервер
type idempotentServer struct {
	outcomes map[string]ledger.ActionResult
	applied  int
	batches  [][]ledger.ActionInput
}

func (s *idempotentServer) SubmitActions(_ context.Context, actions []ledger.ActionInput) ([]ledger.ActionResult, error) {
	s.batches = append(s.batches, actions)
	results := make([]ledger.ActionResult, 0, len(actions))
	for _, a := range actions {
		r, ok := s.outcomes[a.IdempotencyKey]
		if !ok {
			r = ledger.ActionResult{ID: a.ID, Status: ledger.ResultOK, EntityID: fmt.Sprintf("WO-%d", s.applied+1)}
			if a.Operation == entity.OperationDelete {
				r = ledger.ActionResult{ID: a.ID, Status: ledger.ResultError, Error: "WorkOrder not found"}
			} else {
				s.applied++
			}
			s.outcomes[a.IdempotencyKey] = r
		}
		results = append(results, r)
	}
	return results, nil
}

func queueN(t *testing.T, s *SQLiteStorage, ops ...entity.Operation) {
	t.Helper()
	for i, op := range ops {
		id := fmt.Sprintf("a%d", i+1)
		require.NoError(t, s.Enqueue(context.Background(), &OutboxAction{
			ID: id, EntityType: "WorkOrder", Operation: op, IdempotencyKey: "key-" + id,
		}))
	}
}

func TestPusher_Push_Batches(t *testing.T) {
	// Arrange
	s := newTestStorage(t)
	queueN(t, s, entity.OperationCreate, entity.OperationCreate, entity.OperationDelete,
		entity.OperationCreate, entity.OperationCreate)
	server := &idempotentServer{outcomes: map[string]ledger.ActionResult{}}
	p := NewPusher(s, server, 2, slog.Default())

	// Act
	res, err := p.Push(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, &PushResult{Sent: 5, Applied: 4, Failed: 1, Batches: 3}, res)
	require.Len(t, server.batches, 3)
	assert.Equal(t, "a1", server.batches[0][0].ID)
	assert.Equal(t, "a5", server.batches[2][0].ID)

	unsent, err := s.Unsent(context.Background())
	require.NoError(t, err)
	assert.Empty(t, unsent)
}

func TestPusher_Push_NothingToSend(t *testing.T) {
	s := newTestStorage(t)
	transport := &MockTransport{}
	p := NewPusher(s, transport, 10, slog.Default())

	res, err := p.Push(context.Background())

	require.NoError(t, err)
	assert.Equal(t, &PushResult{}, res)
	transport.AssertNotCalled(t, "SubmitActions", mock.Anything, mock.Anything)
}

func TestPusher_Push_PendingStaysQueued(t *testing.T) {
	// Arrange
	s := newTestStorage(t)
	queueN(t, s, entity.OperationCreate, entity.OperationCreate)
	transport := &MockTransport{}
	transport.On("SubmitActions", mock.Anything, mock.Anything).Return([]ledger.ActionResult{
		{ID: "a1", Status: ledger.ResultOK},
		{ID: "a2", Status: ledger.ResultPending},
	}, nil).Once()
	p := NewPusher(s, transport, 10, slog.Default())

	// Act
	res, err := p.Push(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pending)
	unsent, err := s.Unsent(context.Background())
	require.NoError(t, err)
	require.Len(t, unsent, 1)
	assert.Equal(t, "a2", unsent[0].ID)
	assert.Equal(t, OutboxPending, unsent[0].Status)
}

func TestPusher_Push_TransportErrorKeepsQueue(t *testing.T) {
	// Arrange
	s := newTestStorage(t)
	queueN(t, s, entity.OperationCreate, entity.OperationCreate, entity.OperationCreate)
	transport := &MockTransport{}
	transport.On("SubmitActions", mock.Anything, mock.Anything).Return([]ledger.ActionResult{
		{ID: "a1", Status: ledger.ResultOK},
	}, nil).Once()
	transport.On("SubmitActions", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused")).Once()
	p := NewPusher(s, transport, 1, slog.Default())

	// Act
	res, err := p.Push(context.Background())

	// Assert
	require.Error(t, err)
	assert.Equal(t, 1, res.Applied)
	unsent, err := s.Unsent(context.Background())
	require.NoError(t, err)
	assert.Len(t, unsent, 2)
}

func TestPusher_Push_ResendIsSafe(t *testing.T) {
	// Arrange
	s := newTestStorage(t)
	queueN(t, s, entity.OperationCreate)
	server := &idempotentServer{outcomes: map[string]ledger.ActionResult{}}
	ctx := context.Background()

	// ответ первого пакета потерян: действие остаётся в очереди
	lost := &MockTransport{}
	lost.On("SubmitActions", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			_, _ = server.SubmitActions(ctx, args.Get(1).([]ledger.ActionInput))
		}).
		Return(nil, errors.New("timeout")).Once()
	_, err := NewPusher(s, lost, 10, slog.Default()).Push(ctx)
	require.Error(t, err)

	// Act
	res, err := NewPusher(s, server, 10, slog.Default()).Push(ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, res.Applied)
	assert.Equal(t, 1, server.applied)
}
