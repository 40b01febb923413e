package entity

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// Applier - типизированный обработчик одного типа сущности.
// Validate проверяет полезную нагрузку до записи в хранилище.
type Applier interface {
	EntityType() string
	Validate(op Operation, payload map[string]any) error
}

// Registry направляет мутации обработчику по типу сущности и записывает их в хранилище.
type Registry struct {
	appliers map[string]Applier
	repo     Repository
	log      *slog.Logger
}

func NewRegistry(repo Repository, log *slog.Logger, appliers ...Applier) (*Registry, error) {
	r := &Registry{
		appliers: make(map[string]Applier, len(appliers)),
		repo:     repo,
		log:      log.With("component", "entity_registry"),
	}
	for _, a := range appliers {
		if err := r.Register(a); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(a Applier) error {
	t := a.EntityType()
	if t == "" {
		return errors.New("applier with empty entity type")
	}
	if _, ok := r.appliers[t]; ok {
		return fmt.Errorf("applier for %q already registered", t)
	}
	r.appliers[t] = a
	return nil
}

func (r *Registry) Lookup(entityType string) (Applier, bool) {
	a, ok := r.appliers[entityType]
	return a, ok
}

// Types возвращает зарегистрированные типы в алфавитном порядке.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.appliers))
	for t := range r.appliers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Apply проверяет и применяет мутацию. Отказы предметной области возвращаются как *ApplyError,
// ошибки хранилища оборачиваются как есть.
func (r *Registry) Apply(ctx context.Context, req ApplyRequest) (*ApplyResult, error) {
	a, ok := r.Lookup(req.EntityType)
	if !ok {
		return nil, newApplyError(ErrUnsupportedType, "unsupported entity type %q", req.EntityType)
	}
	if !req.Operation.Valid() {
		return nil, newApplyError(ErrInvalidPayload, "unknown operation %q", req.Operation)
	}
	if err := a.Validate(req.Operation, req.Payload); err != nil {
		return nil, newApplyError(err, "invalid %s payload", req.EntityType)
	}

	switch req.Operation {
	case OperationCreate:
		return r.create(ctx, req)
	case OperationUpdate:
		return r.update(ctx, req)
	default:
		return r.delete(ctx, req)
	}
}

func (r *Registry) create(ctx context.Context, req ApplyRequest) (*ApplyResult, error) {
	id := req.EntityID
	if id == "" {
		id = uuid.NewString()
	}
	e := &Entity{
		TenantID: req.TenantID,
		Type:     req.EntityType,
		ID:       id,
		Fields:   req.Payload,
	}
	if e.Fields == nil {
		e.Fields = map[string]any{}
	}
	if err := r.repo.Create(ctx, e); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, newApplyError(err, "%s %s already exists", req.EntityType, id)
		}
		return nil, fmt.Errorf("create %s: %w", req.EntityType, err)
	}
	r.log.Debug("entity created", "type", req.EntityType, "id", id)
	return &ApplyResult{EntityID: e.ID, Version: e.Version}, nil
}

func (r *Registry) update(ctx context.Context, req ApplyRequest) (*ApplyResult, error) {
	if req.EntityID == "" {
		return nil, newApplyError(ErrInvalidPayload, "entityId is required for update")
	}
	e, err := r.repo.UpdateFields(ctx, req.TenantID, req.EntityType, req.EntityID, 0, req.Payload)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, newApplyError(err, "%s %s not found", req.EntityType, req.EntityID)
		}
		return nil, fmt.Errorf("update %s: %w", req.EntityType, err)
	}
	return &ApplyResult{EntityID: e.ID, Version: e.Version}, nil
}

func (r *Registry) delete(ctx context.Context, req ApplyRequest) (*ApplyResult, error) {
	if req.EntityID == "" {
		return nil, newApplyError(ErrInvalidPayload, "entityId is required for delete")
	}
	if err := r.repo.SoftDelete(ctx, req.TenantID, req.EntityType, req.EntityID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, newApplyError(err, "%s %s not found", req.EntityType, req.EntityID)
		}
		return nil, fmt.Errorf("delete %s: %w", req.EntityType, err)
	}
	return &ApplyResult{EntityID: req.EntityID}, nil
}
